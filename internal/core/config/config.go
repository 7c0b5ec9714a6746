// Package config provides configuration management for subordinate services.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the settings of the rule service and CLI.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Rules    RulesConfig
	Log      LogConfig
}

// ServerConfig holds configuration for the gRPC rule API.
type ServerConfig struct {
	Host           string
	Port           int
	MaxConnections int
	RequestTimeout time.Duration
}

// DatabaseConfig selects the rule set store.
// URL is sqlite://<path> or postgres://...; commands that need storage
// fail when it is empty.
type DatabaseConfig struct {
	URL string
}

// RulesConfig names the rule file check and apply use when no file
// argument is given.
type RulesConfig struct {
	File string
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string
	Format string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           50061,
			MaxConnections: 1000,
			RequestTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Address returns host:port.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HMACSecrets extracts API key HMAC secrets from environment variables.
// Supports SB_HMAC_SECRET (single) and SB_HMAC_SECRET_N (rotation).
// Returns map of secret_id -> decoded secret bytes.
func HMACSecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)

	add := func(key, val string) error {
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if _, exists := secrets[secretID]; exists {
			return fmt.Errorf("duplicate secret_id '%s' (check SB_HMAC_SECRET and SB_HMAC_SECRET_* for conflicts)", secretID)
		}
		secrets[secretID] = decoded
		return nil
	}

	if val := os.Getenv("SB_HMAC_SECRET"); val != "" {
		if err := add("SB_HMAC_SECRET", val); err != nil {
			return nil, err
		}
	}

	// Numbered secrets keep old keys valid while rotating.
	for i := 1; ; i++ {
		key := fmt.Sprintf("SB_HMAC_SECRET_%d", i)
		val := os.Getenv(key)
		if val == "" {
			break
		}
		if err := add(key, val); err != nil {
			return nil, err
		}
	}

	return secrets, nil
}

// ParseHMACSecretWithID parses secret_id:base64_secret format.
// Secret ID must be 32 lowercase hex chars.
func ParseHMACSecretWithID(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if len(secretID) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars")
	}
	for _, c := range secretID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", nil, fmt.Errorf("secret_id must be hex chars only")
		}
	}

	secret, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(secret) < 32 {
		return "", nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(secret))
	}

	return secretID, secret, nil
}
