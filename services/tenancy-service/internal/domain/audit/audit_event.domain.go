// services/tenancy-service/internal/domain/audit/audit_event.domain.go
package audit

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionAccountProvisioned = "ACCOUNT_PROVISIONED"
	ActionInviteAccepted     = "INVITE_ACCEPTED"
	ActionMemberInvited      = "MEMBER_INVITED"
	ActionInviteRevoked      = "INVITE_REVOKED"
	ActionMemberRoleUpdated  = "MEMBER_ROLE_UPDATED"
	ActionMemberRemoved      = "MEMBER_REMOVED"
)

// AuditEvent is an immutable record of a committed membership change.
// It answers: who did what, in which account, to whom, and when.
type AuditEvent struct {
	ID          uuid.UUID      `json:"id"`
	ActorUserID string         `json:"actor_uid"`
	AccountID   string         `json:"account_id"`
	Action      string         `json:"action"`
	TargetID    string         `json:"target_id,omitempty"` // member uid or invite email
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewEvent stamps a fresh id and time.
func NewEvent(actor, accountID, action, target string, metadata map[string]any) *AuditEvent {
	return &AuditEvent{
		ID:          uuid.New(),
		ActorUserID: actor,
		AccountID:   accountID,
		Action:      action,
		TargetID:    target,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
}

/*Audit events are append-only.

Emit exactly one per successful state-changing command, after commit:
  account provisioned, invite accepted, member invited,
  invite revoked, member role updated, member removed.

Never emit for reads, failed authorization or validation errors,
or resolver paths that wrote nothing.
*/
