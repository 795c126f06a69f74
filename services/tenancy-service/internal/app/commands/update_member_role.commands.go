// services/tenancy-service/internal/app/commands/update_member_role.commands.go
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

/*
UPDATE MEMBER ROLE

The owner slot is fixed at account creation:
  - the owner can never be re-roled, not even by themselves
  - nobody can be promoted to owner (rejected at parse time)
Admins and owners may move anyone else between admin and member.
*/

type UpdateMemberRoleCmd struct {
	store     repository.TenantStore
	auditRepo repository.AuditStore
	opts      Options
}

func NewUpdateMemberRoleCmd(s repository.TenantStore, a repository.AuditStore, opts Options) *UpdateMemberRoleCmd {
	return &UpdateMemberRoleCmd{store: s, auditRepo: a, opts: opts.withDefaults()}
}

type UpdateMemberRoleParams struct {
	Caller    identity.Caller
	AccountID string
	MemberUID string
	Role      string
}

func (cmd *UpdateMemberRoleCmd) Handle(ctx context.Context, params UpdateMemberRoleParams) error {
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
	role, err := membership.ParseAssignableRole(params.Role)
	if err != nil {
		return err
	}

	var previous membership.Role
	changed := false
	err = cmd.store.RunInTx(ctx, func(ctx context.Context, tx repository.TenantTx) error {
		changed = false

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
			return domainErr.ErrOwnerImmutable
		}

		previous = view.target.Role
		if previous == role {
			return nil
		}
		view.target.Role = role
		tx.PutMember(view.target)
		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		recordAudit(ctx, cmd.auditRepo, cmd.opts.Logger, audit.NewEvent(params.Caller.UID, accountID, audit.ActionMemberRoleUpdated, memberUID, map[string]any{
			"old_role": previous,
			"new_role": role,
		}))
	}
	return nil
}
