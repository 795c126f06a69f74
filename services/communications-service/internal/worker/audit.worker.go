// services/communications-service/internal/worker/audit.worker.go
package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vanditkunapareddi-jpg/procurement-app/shared/contracts"
	pkgkafka "github.com/vanditkunapareddi-jpg/procurement-app/shared/kafka"
)

// AuditLogHandler writes every tenancy audit event to the log, one line per
// event. Undecodable messages are skipped so they cannot block the partition.
func AuditLogHandler(logger *slog.Logger) pkgkafka.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(ctx context.Context, key, value []byte) error {
		var rec contracts.AuditRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			logger.Warn("skipping malformed audit event", "key", string(key), "error", err)
			return nil
		}
		if rec.Action == "" {
			logger.Warn("skipping audit event without action", "key", string(key))
			return nil
		}
		logger.Info("audit",
			"id", rec.ID,
			"action", rec.Action,
			"account_id", rec.AccountID,
			"actor_uid", rec.ActorUserID,
			"target_id", rec.TargetID,
			"metadata", rec.Metadata,
			"created_at", rec.CreatedAt,
		)
		return nil
	}
}
