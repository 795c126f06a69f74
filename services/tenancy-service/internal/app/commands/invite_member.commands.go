// services/tenancy-service/internal/app/commands/invite_member.commands.go
package commands

import (
	"context"
	"strings"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/policy"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/messaging"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

type InviteMemberCmd struct {
	store     repository.TenantStore
	auditRepo repository.AuditStore
	notifier  messaging.InviteNotifier
	opts      Options
}

func NewInviteMemberCmd(
	s repository.TenantStore,
	a repository.AuditStore,
	n messaging.InviteNotifier,
	opts Options,
) *InviteMemberCmd {
	if n == nil {
		n = messaging.NopNotifier{}
	}
	return &InviteMemberCmd{store: s, auditRepo: a, notifier: n, opts: opts.withDefaults()}
}

type InviteMemberParams struct {
	Caller    identity.Caller // must be owner or admin of AccountID
	AccountID string
	Email     string // person being invited
	Role      string // admin or member; empty means member
}

func (h *InviteMemberCmd) Handle(ctx context.Context, params InviteMemberParams) error {
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
	role, err := membership.ParseAssignableRole(params.Role)
	if err != nil {
		return err
	}

	var (
		written     *invite.Invite
		accountName string
	)
	err = h.store.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		view, err := readTeam(ctx, tx, accountID, params.Caller.UID, "")
		if err != nil {
			return err
		}
		if view.account == nil {
			return domainErr.ErrAccountNotFound
		}
		if err := policy.RequireTeamManager(view.account, view.caller); err != nil {
			return err
		}
		if view.account.IsFull(h.opts.MaxMembers) {
			return domainErr.ErrMemberLimitReached
		}

		// Upsert keyed by email: a second invite to the same address refreshes it.
		written = invite.NewPending(accountID, email, role, params.Caller.UID, h.opts.Now())
		accountName = view.account.Name
		tx.PutInvite(written)
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(ctx, h.auditRepo, h.opts.Logger, audit.NewEvent(params.Caller.UID, accountID, audit.ActionMemberInvited, email, map[string]any{
		"role": role,
	}))
	if err := h.notifier.NotifyInvite(ctx, messaging.InviteNotification{Invite: *written, AccountName: accountName}); err != nil {
		h.opts.Logger.Error("failed to enqueue invite email",
			"account_id", accountID,
			"error", err,
		)
	}
	return nil
}
