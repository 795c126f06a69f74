// services/tenancy-service/internal/domain/membership/membership.domain.go
package membership

import (
	"strings"
	"time"

	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole is the only place a role string enters the system.
// Empty input means member; anything outside the enum is rejected.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleMember:
		return RoleMember, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOwner:
		return RoleOwner, nil
	}
	return "", domainErr.ErrInvalidRole
}

// ParseAssignableRole parses a role that a caller may hand out (invite or role change).
// Owner is bound to the account at creation and is never assignable.
func ParseAssignableRole(raw string) (Role, error) {
	role, err := ParseRole(raw)
	if err != nil {
		return "", err
	}
	if role == RoleOwner {
		return "", domainErr.ErrRoleNotAssignable
	}
	return role, nil
}

// CanManageTeam reports whether the role may invite, revoke, re-role and remove.
func (r Role) CanManageTeam() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Member is stored at accounts/{AccountID}/members/{UID}.
type Member struct {
	AccountID string
	UID       string
	Role      Role
	Email     string
	JoinedAt  time.Time
}
