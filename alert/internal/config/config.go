// Package config loads the alert service configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the alert service.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Database     DatabaseConfig     `mapstructure:"database"`
	NATS         NATSConfig         `mapstructure:"nats"`
	Notification NotificationConfig `mapstructure:"notification"`
	Retention    RetentionConfig    `mapstructure:"retention"`
	Consumer     ConsumerConfig     `mapstructure:"consumer"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig holds log level and format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString builds the pgx connection string.
func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// NATSConfig holds message bus settings.
type NATSConfig struct {
	URL  string `mapstructure:"url"`
	Name string `mapstructure:"name"`
}

// NotificationConfig holds delivery channel settings.
type NotificationConfig struct {
	Email   EmailConfig   `mapstructure:"email"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// EmailConfig holds SMTP channel settings. The channel is active only
// when at least one recipient is configured.
type EmailConfig struct {
	Host       string   `mapstructure:"host"`
	Port       int      `mapstructure:"port"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	From       string   `mapstructure:"from"`
	Recipients []string `mapstructure:"recipients"`
}

// WebhookConfig holds webhook channel settings. The channel is active
// only when a URL is configured.
type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RetentionConfig holds the marker TTL and the sweep interval.
type RetentionConfig struct {
	ProcessedEventTTL time.Duration `mapstructure:"processed_event_ttl"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
}

// ConsumerConfig holds bus delivery/retry settings.
type ConsumerConfig struct {
	MaxDeliver int           `mapstructure:"max_deliver"`
	Backoff    time.Duration `mapstructure:"backoff"`
	AckWait    time.Duration `mapstructure:"ack_wait"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8092)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "fraudwatch")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "fraudwatch_alert")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.name", "alert")

	v.SetDefault("notification.email.host", "localhost")
	v.SetDefault("notification.email.port", 587)
	v.SetDefault("notification.email.from", "alerts@fraudwatch.local")
	v.SetDefault("notification.email.recipients", []string{})
	v.SetDefault("notification.webhook.url", "")
	v.SetDefault("notification.webhook.timeout", "10s")

	v.SetDefault("retention.processed_event_ttl", "1h")
	v.SetDefault("retention.sweep_interval", "5m")

	v.SetDefault("consumer.max_deliver", 4)
	v.SetDefault("consumer.backoff", "1s")
	v.SetDefault("consumer.ack_wait", "30s")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ALERT")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
