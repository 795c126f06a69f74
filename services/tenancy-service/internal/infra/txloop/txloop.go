// services/tenancy-service/internal/infra/txloop/txloop.go

// Package txloop is the optimistic retry loop shared by the tenant stores.
package txloop

import (
	"context"
	"errors"
	"log/slog"

	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

// Attempt is one try of a transaction as seen by the loop.
type Attempt interface {
	repository.TenantTx
	// Commit applies the buffered writes if nothing in the read set changed,
	// and returns domainErr.ErrTxConflict if something did.
	Commit(ctx context.Context) error
	// Stale reports whether any document in the read set changed.
	Stale(ctx context.Context) (bool, error)
}

// Run executes fn against fresh attempts until one commits, fn fails on a
// consistent read set, or maxAttempts is used up.
func Run(
	ctx context.Context,
	maxAttempts int,
	logger *slog.Logger,
	begin func() Attempt,
	fn func(ctx context.Context, tx repository.TenantTx) error,
) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := begin()
		if fnErr := fn(ctx, tx); fnErr != nil {
			// A decision made on data that has since moved is not trusted: retry it.
			stale, err := tx.Stale(ctx)
			if err != nil {
				return err
			}
			if stale {
				logger.Debug("transaction read stale data, retrying", "attempt", attempt, "error", fnErr)
				continue
			}
			return fnErr
		}
		err := tx.Commit(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domainErr.ErrTxConflict) {
			return err
		}
		logger.Debug("transaction conflict, retrying", "attempt", attempt)
	}
	logger.Warn("transaction aborted", "attempts", maxAttempts)
	return domainErr.ErrTransactionAborted
}
