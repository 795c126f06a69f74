// Package contracts holds the message shapes that cross service boundaries.
package contracts

import "time"

const (
	// EmailQueue is the RabbitMQ queue the communications worker drains.
	EmailQueue = "email_Jobs"
	// AuditTopic is the Kafka topic tenancy audit events are streamed to.
	AuditTopic = "tenancy.audit"
)

// EmailJobAccountInvite is the only job type the tenancy service produces.
const EmailJobAccountInvite = "account_invite"

// EmailJob is one message on EmailQueue.
type EmailJob struct {
	JobID     string `json:"job_id"`
	Type      string `json:"type"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	AccountID string `json:"account_id,omitempty"`
}

// AuditRecord is the consumer view of a tenancy audit event on AuditTopic.
type AuditRecord struct {
	ID          string         `json:"id"`
	ActorUserID string         `json:"actor_uid"`
	AccountID   string         `json:"account_id"`
	Action      string         `json:"action"`
	TargetID    string         `json:"target_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
