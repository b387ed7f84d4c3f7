package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Database drivers understood by the application
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full runtime configuration.
// Values come from defaults, then an optional YAML file, then the environment.
type Config struct {
	// HTTP
	Port string `yaml:"port" envconfig:"PORT"`
	Env  string `yaml:"env" envconfig:"ENV"`
	// Logging
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	// DB
	DatabaseDriver string `yaml:"database_driver" envconfig:"DATABASE_DRIVER"`
	DatabaseDSN    string `yaml:"database_dsn" envconfig:"DATABASE_DSN"`
	SeedDemoData   bool   `yaml:"seed_demo_data" envconfig:"SEED_DEMO_DATA"`
	// Auth
	JWTSecret  string        `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	JWTTTL     time.Duration `yaml:"jwt_ttl" envconfig:"JWT_TTL"`
	BcryptCost int           `yaml:"bcrypt_cost" envconfig:"BCRYPT_COST"`
	// Rate limiting of /auth
	AuthRateLimitEnabled bool    `yaml:"auth_rate_limit_enabled" envconfig:"AUTH_RATE_LIMIT_ENABLED"`
	AuthRateLimitRPS     float64 `yaml:"auth_rate_limit_rps" envconfig:"AUTH_RATE_LIMIT_RPS"`
	AuthRateLimitBurst   int     `yaml:"auth_rate_limit_burst" envconfig:"AUTH_RATE_LIMIT_BURST"`
	// Events
	AMQPURL      string `yaml:"amqp_url" envconfig:"AMQP_URL"`
	AMQPExchange string `yaml:"amqp_exchange" envconfig:"AMQP_EXCHANGE"`
	// Tracing
	OTLPEndpoint string `yaml:"otlp_endpoint" envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name" envconfig:"OTEL_SERVICE_NAME"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Port:                 "8080",
		Env:                  "dev",
		LogLevel:             "info",
		DatabaseDriver:       DriverMemory,
		JWTSecret:            "",
		JWTTTL:               24 * time.Hour,
		BcryptCost:           10,
		AuthRateLimitEnabled: true,
		AuthRateLimitRPS:     5,
		AuthRateLimitBurst:   10,
		AMQPExchange:         "marketplace.events",
		ServiceName:          "bidding-marketplace",
	}
}

// Load builds the configuration. path may be empty; otherwise the YAML file it
// names is applied on top of the defaults. Environment variables win over both.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadFile(filepath.Clean(path), &cfg); err != nil {
			return cfg, err
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.JWTSecret == "" && cfg.IsDev() {
		cfg.JWTSecret = "dev-insecure-secret"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) // #nosec G304 - config path comes from the operator
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// IsDev reports whether the process runs in a development environment
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev" || c.Env == "test"
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	return ":" + c.Port
}

// Validate checks field combinations that would otherwise fail at startup
func (c Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	switch c.DatabaseDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("database_dsn is required for driver %q", c.DatabaseDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database_driver %q", c.DatabaseDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required outside dev"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("jwt_ttl must be positive"))
	}
	if c.AuthRateLimitEnabled && (c.AuthRateLimitRPS <= 0 || c.AuthRateLimitBurst <= 0) {
		errs = append(errs, errors.New("auth rate limit rps and burst must be positive when enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
