// Package config loads the application configuration from environment
// variables (prefix CONFIRMTRACK_) and validates it before anything else is
// wired up.
package config

import (
	"time"

	"github.com/gabapcia/confirmtrack/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the environment variable prefix shared by all settings.
const envPrefix = "confirmtrack"

// Config holds every runtime setting of the service. Values are immutable
// after Load.
type Config struct {
	// LogLevel is the minimum level of the global logger.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// TelemetryEnabled turns on OTLP telemetry export. It requires a
	// reachable OTLP gRPC endpoint (standard OTEL_* environment applies).
	TelemetryEnabled bool `envconfig:"TELEMETRY_ENABLED" default:"false"`

	// ServiceName identifies this service in telemetry backends.
	ServiceName string `envconfig:"SERVICE_NAME" default:"confirmtrack" validate:"required"`

	// RPCEndpoint is the JSON-RPC URL of the Ethereum-compatible node.
	RPCEndpoint string `envconfig:"RPC_ENDPOINT" validate:"required,url"`

	// SubscribeNewHeads selects push mode: when true the tracker observes a
	// new-heads feed; when false it polls on PollInterval.
	SubscribeNewHeads bool `envconfig:"SUBSCRIBE_NEW_HEADS" default:"true"`

	// RequiredConfirmations is how many confirming blocks must accumulate
	// before a transaction counts as confirmed.
	RequiredConfirmations int `envconfig:"REQUIRED_CONFIRMATIONS" default:"12" validate:"gt=0"`

	// MaxConfirmationChecks is the timeout budget, counted in observation
	// cycles rather than wall-clock time.
	MaxConfirmationChecks int `envconfig:"MAX_CONFIRMATION_CHECKS" default:"40" validate:"gt=0"`

	// PollInterval is the fixed period between polling cycles (poll mode).
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"15s" validate:"gt=0"`

	// RedisAddr enables the Redis progress notifier when non-empty.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
