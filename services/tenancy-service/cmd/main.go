// services/tenancy-service/cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/app"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/app/commands"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/config"
	infrajwt "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/infra/jwt"
	infrakafka "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/infra/kafka"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/infra/memory"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/infra/postgres"
	infrarabbit "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/infra/rabbitmq"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/messaging"
	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/ports/repository"
	transport "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/transport/http"
	pkgkafka "github.com/vanditkunapareddi-jpg/procurement-app/shared/kafka"
	pkgrabbit "github.com/vanditkunapareddi-jpg/procurement-app/shared/rabbitmq"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	flagSet := pflag.NewFlagSet("tenancy-service", pflag.ExitOnError)
	flagSet.StringVar(&cfg.Store, "store", cfg.Store, "tenant store driver: memory or postgres")
	flagSet.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	debug := flagSet.Bool("debug", false, "enable debug logging")
	_ = flagSet.Parse(os.Args[1:])
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tenant store
	var store repository.TenantStore
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := postgres.NewTenantStore(cfg.CommonConfig.GetDBURL(), cfg.TxMaxAttempts, logger)
		if err != nil {
			log.Fatalf("failed to create store: %v", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare schema: %v", err)
		}
		store = pg
	default:
		logger.Warn("using in-memory tenant store; data is lost on restart")
		store = memory.NewTenantStore(cfg.TxMaxAttempts, logger)
	}
	defer store.Close()

	// Audit stream
	var auditStore repository.AuditStore
	if cfg.CommonConfig.KafkaEnabled() {
		log.Printf("Connecting to Kafka at: %s, Topic: %s", cfg.CommonConfig.KAFKA_BROKER, cfg.AuditTopic)
		producer := pkgkafka.NewKafkaProducer(cfg.CommonConfig.KAFKA_BROKER, cfg.AuditTopic, logger)
		defer producer.Close()
		auditStore = infrakafka.NewAuditStore(producer)
	} else {
		auditStore = memory.NewAuditStore(logger)
	}

	// Invite e-mail jobs
	var notifier messaging.InviteNotifier = messaging.NopNotifier{}
	if cfg.CommonConfig.RabbitMQEnabled() {
		log.Printf("Connecting to RabbitMQ at: %s", cfg.CommonConfig.RABBITMQ_HOST)
		rabbitClient, err := pkgrabbit.NewClient(cfg.CommonConfig.GetRabbitMQURL())
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rabbitClient.Close()
		mailer, err := infrarabbit.NewInviteMailer(rabbitClient, cfg.InviteEmailQueue, cfg.AppBaseURL)
		if err != nil {
			log.Fatalf("Failed to create email queue: %v", err)
		}
		notifier = mailer
	}

	verifier, err := infrajwt.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		log.Fatalf("failed to create token verifier: %v", err)
	}

	sm := app.NewServiceManager(store, auditStore, notifier, commands.Options{
		MaxMembers: cfg.MaxMembers,
		Logger:     logger,
	})

	gin.SetMode(gin.ReleaseMode)
	router := transport.SetupRoutes(transport.NewTenancyHandler(sm), verifier, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Tenancy Service starting on port %s (store=%s)", cfg.Port, cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, draining requests...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	log.Println("Service shutdown complete")
}
