// services/communications-service/cmd/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/communications-service/internal/config"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/communications-service/internal/mailer"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/communications-service/internal/worker"
	pkgkafka "github.com/vanditkunapareddi-jpg/procurement-app/shared/kafka"
	pkgrabbit "github.com/vanditkunapareddi-jpg/procurement-app/shared/rabbitmq"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	flagSet := pflag.NewFlagSet("communications-service", pflag.ExitOnError)
	debug := flagSet.Bool("debug", false, "enable debug logging")
	noAudit := flagSet.Bool("no-audit", false, "do not consume the audit topic even if Kafka is configured")
	_ = flagSet.Parse(os.Args[1:])

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if !cfg.RabbitMQEnabled() {
		log.Fatalf("RABBITMQ_HOST is required")
	}
	log.Printf("Connecting to RabbitMQ at: %s", cfg.RABBITMQ_HOST)
	rabbitClient, err := pkgrabbit.NewClient(cfg.GetRabbitMQURL())
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	// Closed explicitly after the workers drain.

	if err := rabbitClient.CreateQueue(cfg.EmailQueue); err != nil {
		log.Fatalf("Failed to create email queue: %v", err)
	}
	msgs, err := rabbitClient.Consume(cfg.EmailQueue)
	if err != nil {
		log.Fatalf("Failed to consume email queue: %v", err)
	}

	var sender mailer.Sender = mailer.LogSender{Logger: logger}
	if cfg.SMTPEnabled() {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		logger.Warn("SMTP_HOST not set; e-mail jobs are logged, not delivered")
	}

	var auditConsumer *pkgkafka.Consumer
	if cfg.KafkaEnabled() && !*noAudit {
		log.Printf("Connecting to Kafka at: %s, Topic: %s", cfg.KAFKA_BROKER, cfg.AuditTopic)
		auditConsumer = pkgkafka.NewConsumer([]string{cfg.KAFKA_BROKER}, cfg.AuditTopic, cfg.KafkaGroupID, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.NewEmailWorker(sender, logger).Run(ctx, msgs)
	}()

	if auditConsumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditConsumer.Start(ctx, worker.AuditLogHandler(logger))
		}()
	}

	log.Println("Communications service running. Press Ctrl+C to stop")
	<-ctx.Done()
	log.Println("Shutdown signal received, waiting for workers...")

	wg.Wait()
	if err := rabbitClient.Close(); err != nil {
		log.Printf("Failed to close RabbitMQ connection: %v", err)
	}
	if auditConsumer != nil {
		if err := auditConsumer.Close(); err != nil {
			log.Printf("Failed to close Kafka consumer: %v", err)
		}
	}
	log.Println("Service shutdown complete")
}
