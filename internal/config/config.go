// Package config loads runtime settings from the environment and flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pricofy/omnicode/internal/oracle"
	"github.com/pricofy/omnicode/internal/prompt"
)

// Config holds all settings for the gateway binaries.
type Config struct {
	Environment string

	Oracle          oracle.Config
	MaxSourceTokens int

	Addr      string
	Port      int
	RateLimit float64
	RateBurst int

	DBDriver string
	DBDSN    string

	DebounceWindow time.Duration
}

// ErrMissingAPIKey mirrors the message returned to callers when the model
// credentials are absent.
var ErrMissingAPIKey = errors.New("Server API configuration missing (API_KEY)")

// envKeys binds config keys to their environment variable names.
var envKeys = map[string]string{
	"environment":            "ENVIRONMENT",
	"api-key":                "API_KEY",
	"oracle.backend":         "ORACLE_BACKEND",
	"oracle.model":           "ORACLE_MODEL",
	"oracle.base-url":        "ORACLE_BASE_URL",
	"oracle.function":        "ORACLE_FUNCTION",
	"oracle.timeout":         "ORACLE_TIMEOUT",
	"oracle.thinking-budget": "ORACLE_THINKING_BUDGET",
	"max-source-tokens":      "MAX_SOURCE_TOKENS",
	"addr":                   "ADDR",
	"port":                   "PORT",
	"rate-limit":             "RATE_LIMIT",
	"rate-burst":             "RATE_BURST",
	"db.driver":              "DB_DRIVER",
	"db.dsn":                 "DB_DSN",
	"client.debounce-window": "DEBOUNCE_WINDOW",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")
	v.SetDefault("oracle.backend", oracle.BackendGemini)
	v.SetDefault("oracle.timeout", 120*time.Second)
	v.SetDefault("oracle.thinking-budget", oracle.DefaultThinkingBudget)
	v.SetDefault("max-source-tokens", prompt.DefaultMaxSourceTokens)
	v.SetDefault("port", 8080)
	v.SetDefault("rate-limit", 5.0)
	v.SetDefault("rate-burst", 10)
	v.SetDefault("client.debounce-window", 2*time.Second)
}

// Load reads settings from v. Flags bound on v take precedence over env.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		Environment: v.GetString("environment"),
		Oracle: oracle.Config{
			Backend:        strings.ToLower(v.GetString("oracle.backend")),
			APIKey:         v.GetString("api-key"),
			Model:          v.GetString("oracle.model"),
			BaseURL:        v.GetString("oracle.base-url"),
			FunctionName:   v.GetString("oracle.function"),
			ThinkingBudget: v.GetInt("oracle.thinking-budget"),
			Timeout:        v.GetDuration("oracle.timeout"),
		},
		MaxSourceTokens: v.GetInt("max-source-tokens"),
		Addr:            v.GetString("addr"),
		Port:            v.GetInt("port"),
		RateLimit:       v.GetFloat64("rate-limit"),
		RateBurst:       v.GetInt("rate-burst"),
		DBDriver:        v.GetString("db.driver"),
		DBDSN:           v.GetString("db.dsn"),
		DebounceWindow:  v.GetDuration("client.debounce-window"),
	}

	return cfg, nil
}

// Validate checks the settings needed to serve conversions.
func (c *Config) Validate() error {
	switch c.Oracle.Backend {
	case oracle.BackendGemini, oracle.BackendOpenAI:
		if c.Oracle.APIKey == "" {
			return ErrMissingAPIKey
		}
	case oracle.BackendLambda:
		if c.Oracle.FunctionName == "" {
			return fmt.Errorf("ORACLE_FUNCTION is required for the lambda backend")
		}
	default:
		return fmt.Errorf("unknown ORACLE_BACKEND %q", c.Oracle.Backend)
	}
	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// IsDev reports whether the process runs outside production.
func (c *Config) IsDev() bool {
	return c.Environment != "prod"
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Addr, c.Port)
}
