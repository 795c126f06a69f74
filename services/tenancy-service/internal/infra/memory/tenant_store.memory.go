// services/tenancy-service/internal/infra/memory/tenant_store.memory.go
package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/infra/txloop"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

// Ensure TenantStore implements the interface at compile time
var _ repository.TenantStore = (*TenantStore)(nil)

const DefaultMaxAttempts = 5

// entry is one stored document. version comes from a store-wide counter, so
// a document that is deleted and recreated never reuses an old version.
// version 0 means "absent".
type entry struct {
	version uint64
	value   any
}

// TenantStore keeps every document in a map keyed by its path
// (accounts/{id}, accounts/{id}/members/{uid}, accounts/{id}/invites/{email})
// and implements optimistic transactions over it.
type TenantStore struct {
	mu      sync.RWMutex
	docs    map[string]entry
	counter uint64
	// pendingByEmail is the email -> accountIDs index of pending invites.
	pendingByEmail map[string]map[string]struct{}

	maxAttempts int
	logger      *slog.Logger
}

// NewTenantStore creates an empty store. maxAttempts <= 0 uses DefaultMaxAttempts;
// a nil logger discards.
func NewTenantStore(maxAttempts int, logger *slog.Logger) *TenantStore {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TenantStore{
		docs:           make(map[string]entry),
		pendingByEmail: make(map[string]map[string]struct{}),
		maxAttempts:    maxAttempts,
		logger:         logger,
	}
}

func accountPath(accountID string) string { return "accounts/" + accountID }
func membersPrefix(accountID string) string {
	return accountPath(accountID) + "/members/"
}
func invitesPrefix(accountID string) string {
	return accountPath(accountID) + "/invites/"
}
func memberPath(accountID, uid string) string { return membersPrefix(accountID) + uid }
func invitePath(accountID, email string) string {
	return invitesPrefix(accountID) + email
}

func (s *TenantStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.TenantTx) error) error {
	return txloop.Run(ctx, s.maxAttempts, s.logger, func() txloop.Attempt {
		return &memTx{store: s, reads: make(map[string]uint64)}
	}, fn)
}

func (s *TenantStore) versionLocked(path string) uint64 {
	return s.docs[path].version
}

func (s *TenantStore) applyLocked(w pendingWrite) {
	if inv, ok := s.docs[w.path].value.(invite.Invite); ok {
		s.unindexLocked(inv)
	}
	if w.delete {
		delete(s.docs, w.path)
		return
	}
	s.counter++
	s.docs[w.path] = entry{version: s.counter, value: w.value}
	if inv, ok := w.value.(invite.Invite); ok && inv.IsPending() {
		accounts, ok := s.pendingByEmail[inv.Email]
		if !ok {
			accounts = make(map[string]struct{})
			s.pendingByEmail[inv.Email] = accounts
		}
		accounts[inv.AccountID] = struct{}{}
	}
}

func (s *TenantStore) unindexLocked(inv invite.Invite) {
	accounts, ok := s.pendingByEmail[inv.Email]
	if !ok {
		return
	}
	delete(accounts, inv.AccountID)
	if len(accounts) == 0 {
		delete(s.pendingByEmail, inv.Email)
	}
}

// read returns a copy of the document and its version.
func (s *TenantStore) read(path string) (any, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[path]
	if !ok {
		return nil, 0
	}
	return e.value, e.version
}

func (s *TenantStore) GetAccount(ctx context.Context, accountID string) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, _ := s.read(accountPath(accountID))
	return asAccount(v), nil
}

func (s *TenantStore) GetMember(ctx context.Context, accountID, uid string) (*membership.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, _ := s.read(memberPath(accountID, uid))
	return asMember(v), nil
}

func (s *TenantStore) FindPendingInvite(ctx context.Context, email string) (*invite.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = invite.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *invite.Invite
	for accountID := range s.pendingByEmail[email] {
		inv := asInvite(s.docs[invitePath(accountID, email)].value)
		if inv == nil || !inv.IsPending() {
			continue
		}
		if found == nil || inv.CreatedAt.Before(found.CreatedAt) ||
			(inv.CreatedAt.Equal(found.CreatedAt) && inv.AccountID < found.AccountID) {
			found = inv
		}
	}
	return found, nil
}

func (s *TenantStore) ListMembers(ctx context.Context, accountID string) ([]membership.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := membersPrefix(accountID)
	s.mu.RLock()
	var members []membership.Member
	for path, e := range s.docs {
		if strings.HasPrefix(path, prefix) {
			members = append(members, *asMember(e.value))
		}
	}
	s.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool {
		if !members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].JoinedAt.Before(members[j].JoinedAt)
		}
		return members[i].UID < members[j].UID
	})
	return members, nil
}

func (s *TenantStore) ListInvites(ctx context.Context, accountID string) ([]invite.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := invitesPrefix(accountID)
	s.mu.RLock()
	var invites []invite.Invite
	for path, e := range s.docs {
		if strings.HasPrefix(path, prefix) {
			invites = append(invites, *asInvite(e.value))
		}
	}
	s.mu.RUnlock()

	sort.Slice(invites, func(i, j int) bool {
		if !invites[i].CreatedAt.Equal(invites[j].CreatedAt) {
			return invites[i].CreatedAt.Before(invites[j].CreatedAt)
		}
		return invites[i].Email < invites[j].Email
	})
	return invites, nil
}

func (s *TenantStore) Close() error { return nil }

func asAccount(v any) *account.Account {
	acc, ok := v.(account.Account)
	if !ok {
		return nil
	}
	return &acc
}

func asMember(v any) *membership.Member {
	m, ok := v.(membership.Member)
	if !ok {
		return nil
	}
	return &m
}

func asInvite(v any) *invite.Invite {
	inv, ok := v.(invite.Invite)
	if !ok {
		return nil
	}
	if inv.AcceptedAt != nil {
		at := *inv.AcceptedAt
		inv.AcceptedAt = &at
	}
	return &inv
}
