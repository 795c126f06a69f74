//services/tenancy-service/internal/ports/repository/tx_manager.repo.go

package repository

import "context"

// TransactionManager runs fn as one optimistic transaction over a single
// account's documents (account + members + invites).
//
// fn must do all of its reads before its first write. If any document read
// by fn changes before commit, the attempt is discarded and fn is run again
// from scratch, up to the store's attempt limit; fn must therefore have no
// side effects outside tx. When the limit is hit RunInTx returns
// errors.ErrTransactionAborted. An error returned by fn is returned as is,
// unless the documents it read have changed meanwhile; then the attempt is
// retried like a commit conflict.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx TenantTx) error) error
}
