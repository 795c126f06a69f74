// services/tenancy-service/internal/app/commands/accept_invitation.commands.go
package commands

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

/*
ACCEPT INVITATION: STATE TRANSITION

  Invite: pending → accepted, exactly once.
  Member: created with the invite's role unless it already exists.
  Account.memberCount: +1 only when the member was created.

The invite status is re-read inside the transaction, so of two racing
accepts the loser sees "accepted" on retry and fails closed.
*/

type AcceptInvitationCmd struct {
	store     repository.TenantStore
	auditRepo repository.AuditStore
	opts      Options
}

func NewAcceptInvitationCmd(s repository.TenantStore, a repository.AuditStore, opts Options) *AcceptInvitationCmd {
	return &AcceptInvitationCmd{store: s, auditRepo: a, opts: opts.withDefaults()}
}

type AcceptInvitationParams struct {
	Caller    identity.Caller
	AccountID string
}

func (c *AcceptInvitationCmd) Handle(ctx context.Context, params AcceptInvitationParams) error {
	if err := requireCaller(params.Caller); err != nil {
		return err
	}
	accountID := strings.TrimSpace(params.AccountID)
	if accountID == "" {
		return domainErr.ErrAccountIDRequired
	}
	// The invite is keyed by the caller's own verified address.
	email := invite.NormalizeEmail(params.Caller.Email)
	if email == "" {
		return domainErr.ErrEmailRequired
	}

	res, err := acceptInvite(ctx, c.store, accountID, params.Caller.UID, email, c.opts)
	if err != nil {
		return err
	}
	recordAudit(ctx, c.auditRepo, c.opts.Logger, res.event(params.Caller.UID, accountID, email))
	return nil
}

type acceptResult struct {
	memberCreated bool
	role          membership.Role
}

func (r *acceptResult) event(uid, accountID, email string) *audit.AuditEvent {
	return audit.NewEvent(uid, accountID, audit.ActionInviteAccepted, email, map[string]any{
		"role":           r.role,
		"member_created": r.memberCreated,
	})
}

// acceptInvite runs the accept transaction. The resolver's automatic path
// and the explicit accept call share it.
func acceptInvite(ctx context.Context, store repository.TenantStore, accountID, uid, email string, opts Options) (*acceptResult, error) {
	var res *acceptResult
	err := store.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		r, err := acceptInviteTx(ctx, tx, accountID, uid, email, opts.MaxMembers, opts.Now())
		res = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func acceptInviteTx(ctx context.Context, tx repository.TenantTx, accountID, uid, email string, maxMembers int, now time.Time) (*acceptResult, error) {
	var (
		acc    *account.Account
		member *membership.Member
		inv    *invite.Invite
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := tx.GetAccount(gctx, accountID)
		acc = a
		return err
	})
	g.Go(func() error {
		m, err := tx.GetMember(gctx, accountID, uid)
		member = m
		return err
	})
	g.Go(func() error {
		i, err := tx.GetInvite(gctx, accountID, email)
		inv = i
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if inv == nil {
		return nil, domainErr.ErrInviteNotFound
	}
	if !inv.IsPending() {
		return nil, domainErr.ErrInviteNotPending
	}
	if acc == nil {
		return nil, domainErr.ErrAccountNotFound
	}

	res := &acceptResult{}
	if member == nil {
		if acc.IsFull(maxMembers) {
			return nil, domainErr.ErrMemberLimitReached
		}
		member = &membership.Member{
			AccountID: accountID,
			UID:       uid,
			Role:      inv.MemberRole(),
			Email:     email,
			JoinedAt:  now,
		}
		acc.MemberAdded(now)
		tx.PutMember(member)
		tx.PutAccount(acc)
		res.memberCreated = true
	}
	res.role = member.Role

	if err := inv.Accept(uid, now); err != nil {
		return nil, err
	}
	tx.PutInvite(inv)
	return res, nil
}
