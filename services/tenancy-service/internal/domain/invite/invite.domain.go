// services/tenancy-service/internal/domain/invite/invite.domain.go
package invite

import (
	"strings"
	"time"

	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/membership"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// Invite is stored at accounts/{AccountID}/invites/{Email}. The normalized
// email is the document key, which is what keeps one invite per email per
// account.
type Invite struct {
	AccountID  string
	Email      string
	Role       membership.Role
	Status     Status
	InvitedBy  string
	CreatedAt  time.Time
	AcceptedAt *time.Time
	AcceptedBy string
}

// NormalizeEmail trims and lowercases an address so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewPending builds a fresh pending invite. Writing it over an existing
// document refreshes the invite (new role, inviter and createdAt).
func NewPending(accountID, email string, role membership.Role, invitedBy string, now time.Time) *Invite {
	return &Invite{
		AccountID: accountID,
		Email:     NormalizeEmail(email),
		Role:      role,
		Status:    StatusPending,
		InvitedBy: invitedBy,
		CreatedAt: now,
	}
}

func (i *Invite) IsPending() bool {
	return i.Status == StatusPending
}

// Accept moves pending -> accepted. It is the only legal transition besides
// deletion, and it can happen once.
//
//	PENDING
//	   ├── accept → ACCEPTED (terminal)
//	   └── revoke → (deleted)
func (i *Invite) Accept(uid string, now time.Time) error {
	if i.Status != StatusPending {
		return domainErr.ErrInviteNotPending
	}
	i.Status = StatusAccepted
	i.AcceptedAt = &now
	i.AcceptedBy = uid
	return nil
}

// MemberRole is the role granted on acceptance. Stored invites only ever
// carry admin or member; anything else degrades to member.
func (i *Invite) MemberRole() membership.Role {
	if i.Role == membership.RoleAdmin {
		return membership.RoleAdmin
	}
	return membership.RoleMember
}
