// services/tenancy-service/internal/app/commands/revoke_invite.commands.go
package commands

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/policy"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

type RevokeInviteCmd struct {
	store     repository.TenantStore
	auditRepo repository.AuditStore
	opts      Options
}

func NewRevokeInviteCmd(s repository.TenantStore, a repository.AuditStore, opts Options) *RevokeInviteCmd {
	return &RevokeInviteCmd{store: s, auditRepo: a, opts: opts.withDefaults()}
}

type RevokeInviteParams struct {
	Caller    identity.Caller
	AccountID string
	Email     string
}

// Handle deletes the invite. Revoking an invite that does not exist succeeds.
func (cmd *RevokeInviteCmd) Handle(ctx context.Context, params RevokeInviteParams) error {
	if err := requireCaller(params.Caller); err != nil {
		return err
	}
	accountID := strings.TrimSpace(params.AccountID)
	if accountID == "" {
		return domainErr.ErrAccountIDRequired
	}
	email := invite.NormalizeEmail(params.Email)
	if email == "" {
		return domainErr.ErrEmailRequired
	}

	var deleted *invite.Invite
	err := cmd.store.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		deleted = nil

		var (
			acc    *account.Account
			caller *membership.Member
			inv    *invite.Invite
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a, err := tx.GetAccount(gctx, accountID)
			acc = a
			return err
		})
		g.Go(func() error {
			m, err := tx.GetMember(gctx, accountID, params.Caller.UID)
			caller = m
			return err
		})
		g.Go(func() error {
			i, err := tx.GetInvite(gctx, accountID, email)
			inv = i
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		if acc == nil {
			return domainErr.ErrAccountNotFound
		}
		if err := policy.RequireTeamManager(acc, caller); err != nil {
			return err
		}
		if inv == nil {
			return nil // Idempotent success
		}
		tx.DeleteInvite(accountID, email)
		deleted = inv
		return nil
	})
	if err != nil {
		return err
	}

	if deleted != nil {
		recordAudit(ctx, cmd.auditRepo, cmd.opts.Logger, audit.NewEvent(params.Caller.UID, accountID, audit.ActionInviteRevoked, email, map[string]any{
			"status_at_revoke": deleted.Status,
		}))
	}
	return nil
}
