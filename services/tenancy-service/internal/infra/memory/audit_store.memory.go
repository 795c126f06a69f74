// services/tenancy-service/internal/infra/memory/audit_store.memory.go
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
)

// AuditStore keeps events in process and mirrors them to the logger.
// Used when no Kafka broker is configured, and by tests.
type AuditStore struct {
	mu     sync.Mutex
	events []audit.AuditEvent
	logger *slog.Logger
}

func NewAuditStore(logger *slog.Logger) *AuditStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuditStore{logger: logger}
}

func (a *AuditStore) Append(ctx context.Context, event *audit.AuditEvent) error {
	a.mu.Lock()
	a.events = append(a.events, *event)
	a.mu.Unlock()

	a.logger.Info("audit event",
		"action", event.Action,
		"account_id", event.AccountID,
		"actor_uid", event.ActorUserID,
		"target_id", event.TargetID,
	)
	return nil
}

// Events returns a copy of everything appended so far, oldest first.
func (a *AuditStore) Events() []audit.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.AuditEvent, len(a.events))
	copy(out, a.events)
	return out
}
