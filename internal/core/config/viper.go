package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrSecretInConfig is returned when a config file carries an HMAC secret.
var ErrSecretInConfig = errors.New("HMAC secrets not allowed in config files (use SB_HMAC_SECRET environment variable)")

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"host":         "server.host",
	"port":         "server.port",
	"database-url": "database.url",
	"rules":        "rules.file",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// Load reads configuration with flags > environment > config file > defaults
// precedence. flags may be nil; only flags the user changed override.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_connections", d.Server.MaxConnections)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout.String())
	v.SetDefault("database.url", "")
	v.SetDefault("rules.file", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix("SB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			MaxConnections: v.GetInt("server.max_connections"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
		},
		Database: DatabaseConfig{URL: v.GetString("database.url")},
		Rules:    RulesConfig{File: v.GetString("rules.file")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks port range and positive limits.
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	return nil
}

// validateNoSecretsInConfig keeps secrets environment-only.
func validateNoSecretsInConfig(v *viper.Viper) error {
	for _, key := range []string{"hmac_secret", "server.hmac_secret", "auth.hmac_secret"} {
		if v.InConfig(key) {
			return ErrSecretInConfig
		}
	}
	return nil
}
