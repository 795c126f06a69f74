// services/communications-service/internal/mailer/sender.go
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/vanditkunapareddi-jpg/procurement-app/shared/contracts"
)

// Sender delivers one e-mail job.
type Sender interface {
	Send(ctx context.Context, job contracts.EmailJob) error
}

// LogSender writes mail to the log instead of delivering it. Used in
// development and when no SMTP relay is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, job contracts.EmailJob) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email (not delivered, no smtp relay)",
		"job_id", job.JobID,
		"to", job.To,
		"subject", job.Subject,
		"account_id", job.AccountID,
	)
	return nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender relays mail through an SMTP server with PLAIN auth.
type SMTPSender struct {
	addr     string
	host     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

func NewSMTPSender(host, port, user, password, from string) *SMTPSender {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(host, port),
		host:     host,
		from:     from,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, job contracts.EmailJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := strings.TrimSpace(job.To)
	if to == "" || strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("smtp: invalid recipient %q", job.To)
	}
	if err := s.sendMail(s.addr, s.auth, s.from, []string{to}, s.render(to, job)); err != nil {
		return fmt.Errorf("smtp: send to %s: %w", to, err)
	}
	return nil
}

func (s *SMTPSender) render(to string, job contracts.EmailJob) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", headerSafe(job.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	if job.JobID != "" {
		fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", job.JobID, s.host)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(job.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// headerSafe strips line breaks so a subject cannot inject headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
