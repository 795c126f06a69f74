// services/tenancy-service/internal/app/commands/remove_member.commands.go
package commands

import (
	"context"
	"strings"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/audit"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/policy"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/identity"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

type RemoveMemberCmd struct {
	store     repository.TenantStore
	auditRepo repository.AuditStore
	opts      Options
}

func NewRemoveMemberCmd(s repository.TenantStore, a repository.AuditStore, opts Options) *RemoveMemberCmd {
	return &RemoveMemberCmd{store: s, auditRepo: a, opts: opts.withDefaults()}
}

type RemoveMemberParams struct {
	Caller    identity.Caller // Who is doing the removing?
	AccountID string
	MemberUID string // Who is being removed?
}

func (cmd *RemoveMemberCmd) Handle(ctx context.Context, params RemoveMemberParams) error {
	if err := requireCaller(params.Caller); err != nil {
		return err
	}
	accountID := strings.TrimSpace(params.AccountID)
	if accountID == "" {
		return domainErr.ErrAccountIDRequired
	}
	memberUID := strings.TrimSpace(params.MemberUID)
	if memberUID == "" {
		return domainErr.ErrMemberUIDRequired
	}
	//Self-Protection, checked before touching the store.
	if memberUID == params.Caller.UID {
		return domainErr.ErrCannotRemoveSelf
	}

	var removedRole membership.Role
	err := cmd.store.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		view, err := readTeam(ctx, tx, accountID, params.Caller.UID, memberUID)
		if err != nil {
			return err
		}
		if view.account == nil {
			return domainErr.ErrAccountNotFound
		}
		if view.caller == nil || view.target == nil {
			return domainErr.ErrMemberNotFound
		}
		if err := policy.RequireTeamManager(view.account, view.caller); err != nil {
			return err
		}
		if policy.IsOwnerSlot(view.account, view.target) {
			return domainErr.ErrCannotRemoveOwner
		}

		removedRole = view.target.Role
		view.account.MemberRemoved(cmd.opts.Now())
		tx.DeleteMember(accountID, memberUID)
		tx.PutAccount(view.account)
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(ctx, cmd.auditRepo, cmd.opts.Logger, audit.NewEvent(params.Caller.UID, accountID, audit.ActionMemberRemoved, memberUID, map[string]any{
		"role_at_removal": removedRole,
	}))
	return nil
}
