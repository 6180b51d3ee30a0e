package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Auth     AuthConfig     `yaml:"auth" mapstructure:"auth"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32       `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32       `yaml:"min_conns" mapstructure:"min_conns"`
	Retry       RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig configures retries of transient connection failures.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ReadTimeoutSecs     int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs    int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	RequestTimeoutSecs  int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	PurgeIntervalMins   int      `yaml:"purge_interval_mins" mapstructure:"purge_interval_mins"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// AuthConfig configures password hashing and session tokens.
type AuthConfig struct {
	JWTSecret     string  `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTLHours int     `yaml:"token_ttl_hours" mapstructure:"token_ttl_hours"`
	BcryptCost    int     `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
	SigninRate    float64 `yaml:"signin_rate" mapstructure:"signin_rate"`
	SigninBurst   int     `yaml:"signin_burst" mapstructure:"signin_burst"`
}

// AnalysisConfig configures history paging and batch analysis.
type AnalysisConfig struct {
	HistoryLimit     int `yaml:"history_limit" mapstructure:"history_limit"`
	BatchConcurrency int `yaml:"batch_concurrency" mapstructure:"batch_concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MinJWTSecretLen is the shortest accepted HS256 signing secret.
const MinJWTSecretLen = 16

// TokenTTL returns the session token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// Validation modes, one per family of commands.
const (
	ModeStore = "store" // commands that only touch the database
	ModeAuth  = "auth"  // commands that issue or verify tokens
	ModeServe = "serve" // the HTTP API
)

// Validate checks the settings required by mode and reports every problem
// found in a single error.
func (c *Config) Validate(mode string) error {
	var errs []string

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite", "postgres":
		default:
			errs = append(errs, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	}
	checkAuth := func() {
		if len(c.Auth.JWTSecret) < MinJWTSecretLen {
			errs = append(errs, fmt.Sprintf("auth.jwt_secret must be at least %d bytes", MinJWTSecretLen))
		}
		if c.Auth.TokenTTLHours <= 0 {
			errs = append(errs, "auth.token_ttl_hours must be > 0")
		}
	}
	checkAnalysis := func() {
		if c.Analysis.BatchConcurrency < 1 || c.Analysis.BatchConcurrency > 64 {
			errs = append(errs, "analysis.batch_concurrency must be between 1 and 64")
		}
	}

	switch mode {
	case ModeStore:
		checkStore()
	case ModeAuth:
		checkStore()
		checkAuth()
		checkAnalysis()
	case ModeServe:
		checkStore()
		checkAuth()
		checkAnalysis()
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Auth.SigninRate <= 0 || c.Auth.SigninBurst <= 0 {
			errs = append(errs, "auth.signin_rate and auth.signin_burst must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOANALYTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "geo-analytics.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("store.retry.max_attempts", 5)
	v.SetDefault("store.retry.initial_backoff_ms", 250)
	v.SetDefault("store.retry.max_backoff_ms", 5000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout_secs", 10)
	v.SetDefault("server.write_timeout_secs", 30)
	v.SetDefault("server.request_timeout_secs", 15)
	v.SetDefault("server.purge_interval_mins", 60)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	// Keys without a default must still be registered for AutomaticEnv to
	// reach them through Unmarshal.
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.signin_rate", 1.0)
	v.SetDefault("auth.signin_burst", 5)
	v.SetDefault("analysis.history_limit", 10)
	v.SetDefault("analysis.batch_concurrency", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
