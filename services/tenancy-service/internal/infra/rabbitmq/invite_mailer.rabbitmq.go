// services/tenancy-service/internal/infra/rabbitmq/invite_mailer.rabbitmq.go
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/messaging"
	"github.com/vanditkunapareddi-jpg/procurement-app/shared/contracts"
	pkgrabbit "github.com/vanditkunapareddi-jpg/procurement-app/shared/rabbitmq"
)

var _ messaging.InviteNotifier = (*InviteMailer)(nil)

// InviteMailer turns committed invites into e-mail jobs.
type InviteMailer struct {
	publisher pkgrabbit.Publisher
	queue     string
	baseURL   string
}

// NewInviteMailer declares the queue and returns a mailer publishing to it.
// An empty queue uses contracts.EmailQueue.
func NewInviteMailer(publisher pkgrabbit.Publisher, queue, baseURL string) (*InviteMailer, error) {
	if queue == "" {
		queue = contracts.EmailQueue
	}
	if err := publisher.CreateQueue(queue); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &InviteMailer{
		publisher: publisher,
		queue:     queue,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

func (m *InviteMailer) NotifyInvite(ctx context.Context, n messaging.InviteNotification) error {
	job := m.buildJob(n)
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}
	if err := m.publisher.Publish(ctx, m.queue, body); err != nil {
		return fmt.Errorf("failed to publish email job: %w", err)
	}
	return nil
}

func (m *InviteMailer) buildJob(n messaging.InviteNotification) contracts.EmailJob {
	name := n.AccountName
	if name == "" {
		name = n.Invite.AccountID
	}
	link := fmt.Sprintf("%s/invite?accountId=%s", m.baseURL, url.QueryEscape(n.Invite.AccountID))
	return contracts.EmailJob{
		JobID:   uuid.NewString(),
		Type:    contracts.EmailJobAccountInvite,
		To:      n.Invite.Email,
		Subject: fmt.Sprintf("You have been invited to %s", name),
		Body: fmt.Sprintf("You have been invited to join %s as %s.\n\nAccept the invite: %s\n",
			name, n.Invite.MemberRole(), link),
		AccountID: n.Invite.AccountID,
	}
}
