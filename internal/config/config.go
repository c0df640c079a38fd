// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Event brokers
const (
	BrokerAMQP = "amqp"
	BrokerNATS = "nats"
	BrokerNone = "none"
)

// Config holds all the configuration variables for the ledger service
type Config struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	GRPCPort    string `mapstructure:"GRPC_PORT"`
	APIToken    string `mapstructure:"API_TOKEN"`
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	BoltPath    string `mapstructure:"BOLT_PATH"`

	EventBroker   string `mapstructure:"EVENT_BROKER"`
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	EventExchange string `mapstructure:"EVENT_EXCHANGE"`
	NATSURL       string `mapstructure:"NATS_URL"`

	RedisURL           string `mapstructure:"REDIS_URL"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	ReportSchedule     string        `mapstructure:"REPORT_SCHEDULE"`
	StaleCheckoutAfter time.Duration `mapstructure:"STALE_CHECKOUT_AFTER"`

	CheckoutRefundOnReject bool     `mapstructure:"CHECKOUT_REFUND_ON_REJECT"`
	CORSAllowedOrigins     []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	SeedDemoData           bool     `mapstructure:"SEED_DEMO_DATA"`
}

var keys = []string{
	"HTTP_PORT", "GRPC_PORT", "API_TOKEN", "STORE_DRIVER", "DATABASE_URL", "BOLT_PATH",
	"EVENT_BROKER", "RABBITMQ_URL", "EVENT_EXCHANGE", "NATS_URL",
	"REDIS_URL", "RATE_LIMIT_PER_MINUTE",
	"REPORT_SCHEDULE", "STALE_CHECKOUT_AFTER",
	"CHECKOUT_REFUND_ON_REJECT", "CORS_ALLOWED_ORIGINS", "SEED_DEMO_DATA",
}

// LoadConfig reads configuration from environment variables, falling back to
// a .env file in path and then to defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8081")
	v.SetDefault("GRPC_PORT", "8080")
	v.SetDefault("API_TOKEN", "dev-token")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("BOLT_PATH", "workledger.db")
	v.SetDefault("EVENT_BROKER", BrokerNone)
	v.SetDefault("EVENT_EXCHANGE", "ledger_events")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("REPORT_SCHEDULE", "@hourly")
	v.SetDefault("STALE_CHECKOUT_AFTER", "72h")
	v.SetDefault("CHECKOUT_REFUND_ON_REJECT", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("SEED_DEMO_DATA", false)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.EventBroker = strings.ToLower(strings.TrimSpace(cfg.EventBroker))
	cfg.CORSAllowedOrigins = splitOrigins(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the selected drivers have what they need
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case DriverBolt:
		if c.BoltPath == "" {
			return errors.New("BOLT_PATH is required when STORE_DRIVER=bolt")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.EventBroker {
	case BrokerAMQP:
		if c.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required when EVENT_BROKER=amqp")
		}
	case BrokerNATS:
		if c.NATSURL == "" {
			return errors.New("NATS_URL is required when EVENT_BROKER=nats")
		}
	case BrokerNone, "":
	default:
		return fmt.Errorf("unknown EVENT_BROKER %q", c.EventBroker)
	}

	if c.StaleCheckoutAfter < 0 {
		return errors.New("STALE_CHECKOUT_AFTER cannot be negative")
	}
	if c.APIToken == "" {
		return errors.New("API_TOKEN cannot be empty")
	}

	return nil
}

// splitOrigins accepts both a decoded list and a single comma-separated entry
func splitOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, origin := range strings.Split(entry, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}
	return origins
}
