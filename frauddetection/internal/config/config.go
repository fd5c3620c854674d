// Package config loads the fraud detection service configuration.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/rules"
)

// Config holds all configuration for the fraud detection service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Retention RetentionConfig `mapstructure:"retention"`
	Consumer  ConsumerConfig  `mapstructure:"consumer"`
}

// ServerConfig holds the metrics/health HTTP server configuration.
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
	URL            string        `mapstructure:"url"`
	Name           string        `mapstructure:"name"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

// RulesConfig holds the fraud rule parameters.
type RulesConfig struct {
	HighAmountThreshold     string        `mapstructure:"high_amount_threshold"`
	VelocityMaxTransactions int           `mapstructure:"velocity_max_transactions"`
	VelocityWindow          time.Duration `mapstructure:"velocity_window"`
	CountryChangeWindow     time.Duration `mapstructure:"country_change_window"`
	HighRiskMerchants       []string      `mapstructure:"high_risk_merchants"`
}

// ToEngineConfig converts the raw config into engine parameters.
func (c RulesConfig) ToEngineConfig() (rules.Config, error) {
	threshold, err := decimal.NewFromString(c.HighAmountThreshold)
	if err != nil {
		return rules.Config{}, fmt.Errorf("invalid high amount threshold %q: %w", c.HighAmountThreshold, err)
	}
	return rules.Config{
		HighAmountThreshold:     threshold,
		VelocityMaxTransactions: c.VelocityMaxTransactions,
		VelocityWindow:          c.VelocityWindow,
		CountryChangeWindow:     c.CountryChangeWindow,
		HighRiskMerchants:       c.HighRiskMerchants,
	}, nil
}

// RetentionConfig holds purge TTLs and the sweep interval.
type RetentionConfig struct {
	ProcessedEventTTL time.Duration `mapstructure:"processed_event_ttl"`
	HistoryTTL        time.Duration `mapstructure:"history_ttl"`
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

	v.SetDefault("server.port", 8091)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "fraudwatch")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "fraudwatch_frauddetection")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.name", "frauddetection")
	v.SetDefault("nats.publish_timeout", "5s")

	v.SetDefault("rules.high_amount_threshold", "10000.00")
	v.SetDefault("rules.velocity_max_transactions", 5)
	v.SetDefault("rules.velocity_window", "1m")
	v.SetDefault("rules.country_change_window", "30m")
	v.SetDefault("rules.high_risk_merchants", []string{})

	v.SetDefault("retention.processed_event_ttl", "1h")
	v.SetDefault("retention.history_ttl", "1h")
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

	v.SetEnvPrefix("FRAUDDETECTION")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
