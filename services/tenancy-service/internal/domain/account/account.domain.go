// services/tenancy-service/internal/domain/account/account.domain.go
package account

import (
	"strings"
	"time"
)

const (
	DefaultName = "My Workspace"
	DefaultPlan = "free"

	// DefaultMaxMembers caps the number of Member documents per account.
	DefaultMaxMembers = 4

	defaultIDPrefix = "acc_"
)

// Account is a tenant/workspace, stored at accounts/{AccountID}.
// OwnerUID is set once at creation and never changes.
// MemberCount is maintained incrementally inside the same transaction that
// adds or deletes a Member document; it is never recomputed by counting.
type Account struct {
	AccountID   string
	Name        string
	Plan        string
	OwnerUID    string
	MemberCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultAccountID is the personal account every user owns implicitly.
func DefaultAccountID(uid string) string {
	return defaultIDPrefix + uid
}

// NewPersonal builds the account provisioned for a caller on first contact.
// The owner counts as the first member.
func NewPersonal(accountID, ownerUID, name, plan string, now time.Time) *Account {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	plan = strings.TrimSpace(plan)
	if plan == "" {
		plan = DefaultPlan
	}
	return &Account{
		AccountID:   accountID,
		Name:        name,
		Plan:        plan,
		OwnerUID:    ownerUID,
		MemberCount: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasForeignOwner reports whether a different user owns the account.
// An account without an owner is not foreign to anyone.
func (a *Account) HasForeignOwner(uid string) bool {
	return a.OwnerUID != "" && a.OwnerUID != uid
}

// IsFull reports whether another member would exceed maxMembers.
func (a *Account) IsFull(maxMembers int) bool {
	return a.MemberCount >= maxMembers
}

func (a *Account) MemberAdded(now time.Time) {
	a.MemberCount++
	a.UpdatedAt = now
}

// MemberRemoved decrements the counter, floored at 1 so it never drops below the owner.
func (a *Account) MemberRemoved(now time.Time) {
	a.MemberCount--
	if a.MemberCount < 1 {
		a.MemberCount = 1
	}
	a.UpdatedAt = now
}

// RepairMemberCount fixes an owned account whose counter was never set.
// It reports whether anything changed.
func (a *Account) RepairMemberCount(now time.Time) bool {
	if a.MemberCount > 0 {
		return false
	}
	a.MemberCount = 1
	a.UpdatedAt = now
	return true
}
