// services/tenancy-service/internal/config/config.tenancy.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/account"
	"github.com/vanditkunapareddi-jpg/procurement-app/shared/config"
	"github.com/vanditkunapareddi-jpg/procurement-app/shared/contracts"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type TenancyConfig struct {
	CommonConfig *config.CommonConfig // DB, Kafka and RabbitMQ settings

	JWTSecret string
	JWTIssuer string

	Port       string
	Store      string // memory or postgres
	MaxMembers int
	// TxMaxAttempts bounds optimistic transaction retries.
	TxMaxAttempts int

	AuditTopic       string
	InviteEmailQueue string
	AppBaseURL       string
}

// LoadConfig loads the tenancy service configuration from the environment.
func LoadConfig() (*TenancyConfig, error) {
	common := config.LoadCommonConfig()

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	maxMembers, err := intEnv("MAX_MEMBERS", account.DefaultMaxMembers)
	if err != nil {
		return nil, err
	}
	attempts, err := intEnv("TX_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	cfg := &TenancyConfig{
		CommonConfig:     common,
		JWTSecret:        secret,
		JWTIssuer:        os.Getenv("AUTH_JWT_ISSUER"),
		Port:             stringEnv("PORT", "8080"),
		Store:            strings.ToLower(stringEnv("TENANCY_STORE", StoreMemory)),
		MaxMembers:       maxMembers,
		TxMaxAttempts:    attempts,
		AuditTopic:       stringEnv("KAFKA_AUDIT_TOPIC", contracts.AuditTopic),
		InviteEmailQueue: stringEnv("INVITE_EMAIL_QUEUE", contracts.EmailQueue),
		AppBaseURL:       stringEnv("APP_BASE_URL", "http://localhost:3000"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that flags may have overridden after loading.
func (c *TenancyConfig) Validate() error {
	switch c.Store {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("TENANCY_STORE must be %q or %q, got %q", StoreMemory, StorePostgres, c.Store)
	}
	if c.MaxMembers < 1 {
		return fmt.Errorf("MAX_MEMBERS must be at least 1")
	}
	if c.TxMaxAttempts < 1 {
		return fmt.Errorf("TX_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
