// services/tenancy-service/internal/app/queries/account.queries.go
package queries

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/policy"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

// AccountQueries are the read paths behind the team pages. Every query
// requires the caller to be a member of the account.
type AccountQueries struct {
	store repository.TenantStore
}

func NewAccountQueries(s repository.TenantStore) *AccountQueries {
	return &AccountQueries{store: s}
}

// AccountView is an account as seen by one of its members.
type AccountView struct {
	Account    account.Account
	CallerRole membership.Role
}

func (q *AccountQueries) GetAccount(ctx context.Context, caller identity.Caller, accountID string) (*AccountView, error) {
	acc, member, err := q.authorize(ctx, caller, accountID)
	if err != nil {
		return nil, err
	}
	return &AccountView{Account: *acc, CallerRole: policy.EffectiveRole(acc, member)}, nil
}

func (q *AccountQueries) ListMembers(ctx context.Context, caller identity.Caller, accountID string) ([]membership.Member, error) {
	acc, _, err := q.authorize(ctx, caller, accountID)
	if err != nil {
		return nil, err
	}
	members, err := q.store.ListMembers(ctx, acc.AccountID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].Role = policy.EffectiveRole(acc, &members[i])
	}
	return members, nil
}

func (q *AccountQueries) ListInvites(ctx context.Context, caller identity.Caller, accountID string) ([]invite.Invite, error) {
	acc, _, err := q.authorize(ctx, caller, accountID)
	if err != nil {
		return nil, err
	}
	return q.store.ListInvites(ctx, acc.AccountID)
}

func (q *AccountQueries) authorize(ctx context.Context, caller identity.Caller, accountID string) (*account.Account, *membership.Member, error) {
	if strings.TrimSpace(caller.UID) == "" {
		return nil, nil, domainErr.ErrUnauthenticated
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, nil, domainErr.ErrAccountIDRequired
	}

	var (
		acc    *account.Account
		member *membership.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := q.store.GetAccount(gctx, accountID)
		acc = a
		return err
	})
	g.Go(func() error {
		m, err := q.store.GetMember(gctx, accountID, caller.UID)
		member = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if acc == nil {
		return nil, nil, domainErr.ErrAccountNotFound
	}
	if member == nil {
		return nil, nil, domainErr.ErrNotAccountMember
	}
	return acc, member, nil
}
