// services/communications-service/internal/worker/email.worker.go
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/communications-service/internal/mailer"
	"github.com/vanditkunapareddi-jpg/procurement-app/shared/contracts"
)

// EmailWorker drains e-mail jobs and hands them to a Sender.
//
//	decoded and sent      → ack
//	malformed             → reject, dropped
//	send failed, 1st time → nack, requeued
//	send failed again     → nack, dropped
type EmailWorker struct {
	sender mailer.Sender
	logger *slog.Logger
}

func NewEmailWorker(sender mailer.Sender, logger *slog.Logger) *EmailWorker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EmailWorker{sender: sender, logger: logger}
}

// Run consumes msgs until ctx is cancelled or the channel closes.
func (w *EmailWorker) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("email worker stopping")
			return
		case d, ok := <-msgs:
			if !ok {
				w.logger.Warn("email delivery channel closed")
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *EmailWorker) handle(ctx context.Context, d amqp.Delivery) {
	var job contracts.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil || strings.TrimSpace(job.To) == "" {
		w.logger.Error("dropping malformed email job", "delivery_tag", d.DeliveryTag, "error", err)
		w.settle(d.Reject(false))
		return
	}

	if err := w.sender.Send(ctx, job); err != nil {
		requeue := !d.Redelivered
		w.logger.Error("email send failed",
			"job_id", job.JobID,
			"account_id", job.AccountID,
			"requeue", requeue,
			"error", err,
		)
		w.settle(d.Nack(false, requeue))
		return
	}

	w.logger.Info("email sent", "job_id", job.JobID, "type", job.Type, "account_id", job.AccountID)
	w.settle(d.Ack(false))
}

func (w *EmailWorker) settle(err error) {
	if err != nil {
		w.logger.Error("failed to acknowledge delivery", "error", err)
	}
}
