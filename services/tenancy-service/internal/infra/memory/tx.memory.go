// services/tenancy-service/internal/infra/memory/tx.memory.go
package memory

import (
	"context"
	"sync"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
)

type pendingWrite struct {
	path   string
	value  any
	delete bool
}

// memTx is one attempt of a transaction. Reads record the version they saw;
// writes are buffered until commit.
type memTx struct {
	store *TenantStore

	mu     sync.Mutex
	reads  map[string]uint64
	writes []pendingWrite
}

func (tx *memTx) Stale(ctx context.Context) (bool, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	s := tx.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for path, seen := range tx.reads {
		if s.versionLocked(path) != seen {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memTx) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for path, seen := range tx.reads {
		if s.versionLocked(path) != seen {
			return domainErr.ErrTxConflict
		}
	}
	for _, w := range tx.writes {
		s.applyLocked(w)
	}
	return nil
}

func (tx *memTx) get(ctx context.Context, path string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if len(tx.writes) > 0 {
		return nil, domainErr.ErrReadAfterWrite
	}
	value, version := tx.store.read(path)
	if _, seen := tx.reads[path]; !seen {
		tx.reads[path] = version
	}
	return value, nil
}

func (tx *memTx) put(path string, value any, del bool) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.writes = append(tx.writes, pendingWrite{path: path, value: value, delete: del})
}

func (tx *memTx) GetAccount(ctx context.Context, accountID string) (*account.Account, error) {
	v, err := tx.get(ctx, accountPath(accountID))
	if err != nil {
		return nil, err
	}
	return asAccount(v), nil
}

func (tx *memTx) GetMember(ctx context.Context, accountID, uid string) (*membership.Member, error) {
	v, err := tx.get(ctx, memberPath(accountID, uid))
	if err != nil {
		return nil, err
	}
	return asMember(v), nil
}

func (tx *memTx) GetInvite(ctx context.Context, accountID, email string) (*invite.Invite, error) {
	v, err := tx.get(ctx, invitePath(accountID, invite.NormalizeEmail(email)))
	if err != nil {
		return nil, err
	}
	return asInvite(v), nil
}

func (tx *memTx) PutAccount(acc *account.Account) {
	tx.put(accountPath(acc.AccountID), *acc, false)
}

func (tx *memTx) PutMember(m *membership.Member) {
	tx.put(memberPath(m.AccountID, m.UID), *m, false)
}

func (tx *memTx) DeleteMember(accountID, uid string) {
	tx.put(memberPath(accountID, uid), nil, true)
}

func (tx *memTx) PutInvite(inv *invite.Invite) {
	stored := *inv
	stored.Email = invite.NormalizeEmail(stored.Email)
	if stored.AcceptedAt != nil {
		at := *stored.AcceptedAt
		stored.AcceptedAt = &at
	}
	tx.put(invitePath(stored.AccountID, stored.Email), stored, false)
}

func (tx *memTx) DeleteInvite(accountID, email string) {
	tx.put(invitePath(accountID, invite.NormalizeEmail(email)), nil, true)
}
