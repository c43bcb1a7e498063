package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	// JWTSecret may be left empty in production, in which case it is fetched
	// from Secret Manager at startup (JWT_SECRET_NAME).
	JWTSecret     string `envconfig:"JWT_SECRET"`
	JWTSecretName string `envconfig:"JWT_SECRET_NAME" default:"enrollment-jwt-secret"`

	GCPProjectID string `envconfig:"GCP_PROJECT_ID"`

	// Topics consumed by the session-tracking collaborator.
	PubSubBookedTopic    string `envconfig:"PUBSUB_BOOKED_TOPIC" default:"enrollment-booked"`
	PubSubCancelledTopic string `envconfig:"PUBSUB_CANCELLED_TOPIC" default:"enrollment-cancelled"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN assembles the Postgres connection string. SSL is disabled only in
// development.
func (c *Config) DSN() string {
	sslmode := "require"
	if c.Environment == "development" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, sslmode)
}
