// services/tenancy-service/internal/ports/repository/audit_store.go

package repository

import (
	"context"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
)

type AuditStore interface {
	// Append is "Write Only". Events are never updated or deleted.
	Append(ctx context.Context, event *audit.AuditEvent) error
}
