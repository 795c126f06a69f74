// services/tenancy-service/internal/app/commands/resolve_account.commands.go
package commands

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

type Reason string

const (
	ReasonExisting       Reason = "existing"
	ReasonAcceptedInvite Reason = "acceptedInvite"
	ReasonCreated        Reason = "created"
)

/*
RESOLVE ACCOUNT FOR USER

Priority order, first match wins:
 1. requested account where the caller already has a Member doc → existing
 2. requested account owned by someone else → request is dropped, target acc_<uid>
 3. pending invite for the caller's verified email → accept it → acceptedInvite
 4. create or repair the target account with the caller as owner → created / existing

Only step 3 and step 4 write, each in a single transaction.
*/

type ResolveAccountCmd struct {
	store     repository.TenantStore
	auditRepo repository.AuditStore
	opts      Options
}

func NewResolveAccountCmd(s repository.TenantStore, a repository.AuditStore, opts Options) *ResolveAccountCmd {
	return &ResolveAccountCmd{store: s, auditRepo: a, opts: opts.withDefaults()}
}

type ResolveAccountParams struct {
	Caller             identity.Caller
	RequestedAccountID string
	Name               string
	Plan               string
}

type ResolveAccountResult struct {
	AccountID string
	Reason    Reason
}

func (c *ResolveAccountCmd) Handle(ctx context.Context, params ResolveAccountParams) (*ResolveAccountResult, error) {
	if err := requireCaller(params.Caller); err != nil {
		return nil, err
	}
	uid := params.Caller.UID
	email := invite.NormalizeEmail(params.Caller.Email)
	requested := strings.TrimSpace(params.RequestedAccountID)

	if requested != "" {
		var (
			member *membership.Member
			acc    *account.Account
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			m, err := c.store.GetMember(gctx, requested, uid)
			member = m
			return err
		})
		g.Go(func() error {
			a, err := c.store.GetAccount(gctx, requested)
			acc = a
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if member != nil {
			return &ResolveAccountResult{AccountID: requested, Reason: ReasonExisting}, nil
		}
		if acc != nil && acc.HasForeignOwner(uid) {
			c.opts.Logger.Info("requested account is owned by another user, using default",
				"account_id", requested,
				"uid", uid,
			)
			requested = ""
		}
	}

	if email != "" {
		res, err := c.tryPendingInvite(ctx, uid, email)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}

	target := requested
	if target == "" {
		target = account.DefaultAccountID(uid)
	}
	return c.provision(ctx, target, uid, email, params.Name, params.Plan)
}

// tryPendingInvite accepts the oldest pending invite for email. It returns
// (nil, nil) to fall through when there is none, or when the invite went away
// between the index lookup and the transaction.
func (c *ResolveAccountCmd) tryPendingInvite(ctx context.Context, uid, email string) (*ResolveAccountResult, error) {
	inv, err := c.store.FindPendingInvite(ctx, email)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, nil
	}

	accepted, err := acceptInvite(ctx, c.store, inv.AccountID, uid, email, c.opts)
	if err != nil {
		if isBusinessError(err) {
			c.opts.Logger.Warn("pending invite could not be accepted, provisioning instead",
				"account_id", inv.AccountID,
				"uid", uid,
				"error", err,
			)
			return nil, nil
		}
		return nil, err
	}
	recordAudit(ctx, c.auditRepo, c.opts.Logger, accepted.event(uid, inv.AccountID, email))
	return &ResolveAccountResult{AccountID: inv.AccountID, Reason: ReasonAcceptedInvite}, nil
}

func isBusinessError(err error) bool {
	return errors.Is(err, domainErr.ErrInviteNotFound) ||
		errors.Is(err, domainErr.ErrInviteNotPending) ||
		errors.Is(err, domainErr.ErrAccountNotFound) ||
		errors.Is(err, domainErr.ErrMemberLimitReached)
}

func (c *ResolveAccountCmd) provision(ctx context.Context, target, uid, email, name, plan string) (*ResolveAccountResult, error) {
	var (
		accountCreated bool
		wrote          bool
	)
	err := c.store.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		accountCreated, wrote = false, false

		var (
			acc    *account.Account
			member *membership.Member
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a, err := tx.GetAccount(gctx, target)
			acc = a
			return err
		})
		g.Go(func() error {
			m, err := tx.GetMember(gctx, target, uid)
			member = m
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		now := c.opts.Now()
		accountDirty := false
		switch {
		case acc == nil:
			acc = account.NewPersonal(target, uid, name, plan, now)
			accountCreated, accountDirty = true, true
		case acc.HasForeignOwner(uid):
			return domainErr.ErrForeignAccount
		default:
			if acc.OwnerUID == "" {
				// Ownerless account: the caller claims it.
				acc.OwnerUID = uid
				acc.UpdatedAt = now
				accountDirty = true
			}
			if acc.RepairMemberCount(now) {
				accountDirty = true
			} else if member == nil {
				acc.MemberAdded(now)
				accountDirty = true
			}
		}

		if accountDirty {
			tx.PutAccount(acc)
			wrote = true
		}
		switch {
		case member == nil:
			tx.PutMember(&membership.Member{
				AccountID: target,
				UID:       uid,
				Role:      membership.RoleOwner,
				Email:     email,
				JoinedAt:  now,
			})
			wrote = true
		case member.Role != membership.RoleOwner:
			// Only reachable after claiming an ownerless account.
			member.Role = membership.RoleOwner
			tx.PutMember(member)
			wrote = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wrote {
		recordAudit(ctx, c.auditRepo, c.opts.Logger, audit.NewEvent(uid, target, audit.ActionAccountProvisioned, uid, map[string]any{
			"account_created": accountCreated,
		}))
	}
	reason := ReasonExisting
	if accountCreated {
		reason = ReasonCreated
	}
	return &ResolveAccountResult{AccountID: target, Reason: reason}, nil
}
