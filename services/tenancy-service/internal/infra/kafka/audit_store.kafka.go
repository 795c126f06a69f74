// services/tenancy-service/internal/infra/kafka/audit_store.kafka.go
package kafka

import (
	"context"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
	pkgkafka "github.com/vanditkunapareddi-jpg/procurement-app/shared/kafka"
)

var _ repository.AuditStore = (*AuditStore)(nil)

// AuditStore streams audit events to Kafka, keyed by account id so one
// account's history stays ordered on a single partition.
type AuditStore struct {
	publisher pkgkafka.Publisher
}

func NewAuditStore(publisher pkgkafka.Publisher) *AuditStore {
	return &AuditStore{publisher: publisher}
}

func (a *AuditStore) Append(ctx context.Context, event *audit.AuditEvent) error {
	return a.publisher.Publish(ctx, event.AccountID, event)
}
