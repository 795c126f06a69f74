// services/tenancy-service/internal/ports/messaging/invite_notifier.go
package messaging

import (
	"context"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/invite"
)

// InviteNotification is everything a mailer needs to tell someone they were invited.
type InviteNotification struct {
	Invite      invite.Invite
	AccountName string
}

// InviteNotifier hands invite notifications to an out-of-process mailer.
// It runs after the invite transaction committed and must not block on delivery.
type InviteNotifier interface {
	NotifyInvite(ctx context.Context, n InviteNotification) error
}

// NopNotifier drops notifications. Used when no mail queue is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyInvite(context.Context, InviteNotification) error { return nil }
