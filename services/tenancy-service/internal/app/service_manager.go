// services/tenancy-service/internal/app/service_manager.go
package app

import (
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/app/commands"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/app/queries"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/messaging"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
)

// ServiceManager wires every command and query against one store.
type ServiceManager struct {
	ResolveAccount   *commands.ResolveAccountCmd
	InviteMember     *commands.InviteMemberCmd
	RevokeInvite     *commands.RevokeInviteCmd
	AcceptInvitation *commands.AcceptInvitationCmd
	UpdateMemberRole *commands.UpdateMemberRoleCmd
	RemoveMember     *commands.RemoveMemberCmd
	Accounts         *queries.AccountQueries
}

func NewServiceManager(
	store repository.TenantStore,
	auditStore repository.AuditStore,
	notifier messaging.InviteNotifier,
	opts commands.Options,
) *ServiceManager {
	return &ServiceManager{
		ResolveAccount:   commands.NewResolveAccountCmd(store, auditStore, opts),
		InviteMember:     commands.NewInviteMemberCmd(store, auditStore, notifier, opts),
		RevokeInvite:     commands.NewRevokeInviteCmd(store, auditStore, opts),
		AcceptInvitation: commands.NewAcceptInvitationCmd(store, auditStore, opts),
		UpdateMemberRole: commands.NewUpdateMemberRoleCmd(store, auditStore, opts),
		RemoveMember:     commands.NewRemoveMemberCmd(store, auditStore, opts),
		Accounts:         queries.NewAccountQueries(store),
	}
}
