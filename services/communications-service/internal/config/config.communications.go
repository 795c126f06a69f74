// services/communications-service/internal/config/config.communications.go
package config

import (
	"os"
	"strings"

	"github.com/vanditkunapareddi-jpg/procurement-app/shared/config"
	"github.com/vanditkunapareddi-jpg/procurement-app/shared/contracts"
)

// CommunicationsConfig configures the mail worker and the audit log sink.
type CommunicationsConfig struct {
	config.CommonConfig

	EmailQueue   string
	AuditTopic   string
	KafkaGroupID string

	// SMTP is optional; without a host, mail is written to the log.
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

func LoadConfig() *CommunicationsConfig {
	return &CommunicationsConfig{
		CommonConfig: *config.LoadCommonConfig(),
		EmailQueue:   stringEnv("INVITE_EMAIL_QUEUE", contracts.EmailQueue),
		AuditTopic:   stringEnv("KAFKA_AUDIT_TOPIC", contracts.AuditTopic),
		KafkaGroupID: stringEnv("KAFKA_GROUP_ID", "communications-group"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     stringEnv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     stringEnv("MAIL_FROM", "no-reply@procurement.local"),
	}
}

// SMTPEnabled reports whether a relay is configured.
func (c *CommunicationsConfig) SMTPEnabled() bool {
	return strings.TrimSpace(c.SMTPHost) != ""
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
