// shared/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
)

// CommonConfig holds infrastructure details shared by services:
// the Postgres tenant store, the Kafka audit stream and RabbitMQ mail jobs.
type CommonConfig struct {
	//Database (PostgreSQL) config
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_HOST     string
	DB_PORT     string
	// DATABASE_URL wins over the DB_* parts when set.
	DATABASE_URL string
	//Kafka config
	KAFKA_BROKER string
	//RabbitMQ config
	RABBITMQ_USER     string
	RABBITMQ_PASSWORD string
	RABBITMQ_HOST     string
	RABBITMQ_PORT     string
}

// LoadCommonConfig reads the shared infrastructure config from the environment.
func LoadCommonConfig() *CommonConfig {
	return &CommonConfig{
		DB_USER:      os.Getenv("DB_USER"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_HOST:      os.Getenv("DB_HOST"),
		DB_PORT:      os.Getenv("DB_PORT"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DATABASE_URL: os.Getenv("DATABASE_URL"),

		KAFKA_BROKER: os.Getenv("KAFKA_BROKER"),

		RABBITMQ_USER:     os.Getenv("RABBITMQ_USER"),
		RABBITMQ_PASSWORD: os.Getenv("RABBITMQ_PASSWORD"),
		RABBITMQ_HOST:     os.Getenv("RABBITMQ_HOST"),
		RABBITMQ_PORT:     os.Getenv("RABBITMQ_PORT"),
	}
}

// GetDBURL formats the config into a PostgreSQL connection string
func (c *CommonConfig) GetDBURL() string {
	if c.DATABASE_URL != "" {
		return c.DATABASE_URL
	}
	host := c.DB_HOST
	if host == "" {
		host = "localhost"
	}
	port := c.DB_PORT
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DB_USER, c.DB_PASSWORD, host, port, c.DB_NAME)
}

// KafkaEnabled reports whether a broker is configured.
func (c *CommonConfig) KafkaEnabled() bool {
	return strings.TrimSpace(c.KAFKA_BROKER) != ""
}

// RabbitMQEnabled reports whether a RabbitMQ host is configured.
func (c *CommonConfig) RabbitMQEnabled() bool {
	return strings.TrimSpace(c.RABBITMQ_HOST) != ""
}

// GetRabbitMQURL formats the config into a RabbitMQ connection string
func (c *CommonConfig) GetRabbitMQURL() string {
	// default to the standard port when missing
	port := c.RABBITMQ_PORT
	if port == "" {
		port = "5672"
	}

	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.RABBITMQ_USER, c.RABBITMQ_PASSWORD, c.RABBITMQ_HOST, port)
}
