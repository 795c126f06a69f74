// services/tenancy-service/internal/domain/policy/role_policy.go
package policy

import (
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
)

// EffectiveRole calculates the authority a member document grants.
// The member whose uid is the account's OwnerUID is always owner; nobody
// else can be owner, whatever their stored role says.
func EffectiveRole(acc *account.Account, m *membership.Member) membership.Role {
	if m == nil {
		return ""
	}
	if acc != nil && acc.OwnerUID != "" && acc.OwnerUID == m.UID {
		return membership.RoleOwner
	}
	if m.Role == membership.RoleOwner {
		// A stray owner role on a non-owner document carries no more than admin.
		return membership.RoleAdmin
	}
	return m.Role
}

// RequireTeamManager checks that the caller is a member with owner or admin role.
func RequireTeamManager(acc *account.Account, caller *membership.Member) error {
	if caller == nil {
		return domainErr.ErrNotAccountMember
	}
	if !EffectiveRole(acc, caller).CanManageTeam() {
		return domainErr.ErrNotAccountAdmin
	}
	return nil
}

// IsOwnerSlot reports whether the target member holds the owner role,
// either by stored role or by being the account owner. Such a member can
// never be re-roled or removed.
func IsOwnerSlot(acc *account.Account, target *membership.Member) bool {
	if target == nil {
		return false
	}
	return target.Role == membership.RoleOwner || (acc != nil && acc.OwnerUID == target.UID)
}
