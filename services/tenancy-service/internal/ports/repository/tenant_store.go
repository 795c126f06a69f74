//services/tenancy-service/internal/ports/repository/tenant_store.go

package repository

import (
	"context"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
)

// TenantTx is the view of the store inside one transaction attempt.
//
// Get* return (nil, nil) when the document does not exist; the observed
// version (including "absent") becomes part of the read set checked at commit.
// Put*/Delete* are buffered and applied atomically at commit. Calling a Get
// after any Put/Delete fails with errors.ErrReadAfterWrite.
// Reads are safe to issue from several goroutines at once.
type TenantTx interface {
	GetAccount(ctx context.Context, accountID string) (*account.Account, error)
	GetMember(ctx context.Context, accountID, uid string) (*membership.Member, error)
	GetInvite(ctx context.Context, accountID, email string) (*invite.Invite, error)

	PutAccount(acc *account.Account)
	PutMember(m *membership.Member)
	DeleteMember(accountID, uid string)
	PutInvite(inv *invite.Invite)
	DeleteInvite(accountID, email string)
}

// TenantStore is the transactional document store holding
// accounts/{id}, accounts/{id}/members/{uid} and accounts/{id}/invites/{email}.
type TenantStore interface {
	TransactionManager

	// Strongly consistent single reads outside a transaction. (nil, nil) when absent.
	GetAccount(ctx context.Context, accountID string) (*account.Account, error)
	GetMember(ctx context.Context, accountID, uid string) (*membership.Member, error)

	// FindPendingInvite looks up the email -> invite index across all accounts
	// and returns the oldest pending invite for the normalized email, or (nil, nil).
	// The result is not part of any transaction.
	FindPendingInvite(ctx context.Context, email string) (*invite.Invite, error)

	// Read paths for display. Members ordered by JoinedAt then UID,
	// invites by CreatedAt then Email.
	ListMembers(ctx context.Context, accountID string) ([]membership.Member, error)
	ListInvites(ctx context.Context, accountID string) ([]invite.Invite, error)

	Close() error
}

// Key rules:
// context.Context always first
// No sql.ErrNoRows leaks -> absent documents are nil, everything else is an error
