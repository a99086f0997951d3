// Package config реализует загрузку конфигурации CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/udisondev/webauth/pkg/strkey"
	"github.com/udisondev/webauth/pkg/xdr"
)

// Config конфигурация CLI.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Network      NetworkConfig      `yaml:"network"`
	Auth         AuthConfig         `yaml:"auth"`
	ClientDomain ClientDomainConfig `yaml:"client_domain"`
	Audit        AuditConfig        `yaml:"audit"`
	Log          LogConfig          `yaml:"log"`
}

// ServerConfig описывает сервер аутентификации. Либо Domain (остальное
// берётся из stellar.toml), либо AuthEndpoint, SigningKey и HomeDomain.
type ServerConfig struct {
	Domain       string `yaml:"domain"`
	AuthEndpoint string `yaml:"auth_endpoint"`
	SigningKey   string `yaml:"signing_key"`
	HomeDomain   string `yaml:"home_domain"`
}

// NetworkConfig конфигурация сети.
type NetworkConfig struct {
	Passphrase string `yaml:"passphrase"`
}

// AuthConfig параметры аутентификации.
type AuthConfig struct {
	KeyFile         string        `yaml:"key_file"` // seed аккаунта
	GracePeriod     time.Duration `yaml:"grace_period"`
	Timeout         time.Duration `yaml:"timeout"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"` // 0 = без ограничения
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	UserAgent       string        `yaml:"user_agent"`
}

// ClientDomainConfig подпись client domain: локальным ключом или
// удалённым сервером подписи.
type ClientDomainConfig struct {
	Domain      string `yaml:"domain"`
	KeyFile     string `yaml:"key_file"`
	SignerURL   string `yaml:"signer_url"`
	SignerToken string `yaml:"signer_token"`
}

// AuditConfig конфигурация публикации аудита в NATS.
type AuditConfig struct {
	Enabled       bool          `yaml:"enabled"`
	URLs          []string      `yaml:"urls"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
	MaxReconnects int           `yaml:"max_reconnects"`
	SubjectPrefix string        `yaml:"subject_prefix"`
}

// LogConfig конфигурация логирования.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"` // путь к файлу логов (пустой = stderr)
}

// Validate проверяет корректность конфигурации.
func (c *Config) Validate() error {
	var errs []error

	// Server
	if c.Server.Domain == "" {
		if c.Server.AuthEndpoint == "" {
			errs = append(errs, fmt.Errorf("server.auth_endpoint is required without server.domain"))
		}
		if !strkey.IsValid(strkey.VersionByteAccountID, c.Server.SigningKey) {
			errs = append(errs, fmt.Errorf("server.signing_key is invalid: %q", c.Server.SigningKey))
		}
		if c.Server.HomeDomain == "" {
			errs = append(errs, fmt.Errorf("server.home_domain is required without server.domain"))
		}
		if c.Network.Passphrase == "" {
			errs = append(errs, fmt.Errorf("network.passphrase is required without server.domain"))
		}
	}

	// Auth
	if c.Auth.KeyFile == "" {
		errs = append(errs, fmt.Errorf("auth.key_file is required"))
	} else if _, err := os.Stat(c.Auth.KeyFile); err != nil {
		errs = append(errs, fmt.Errorf("auth.key_file: %w", err))
	}
	if c.Auth.GracePeriod < 0 {
		errs = append(errs, fmt.Errorf("auth.grace_period must not be negative"))
	}
	if c.Auth.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("auth.timeout must be positive"))
	}
	if c.Auth.RateLimitPerSec < 0 {
		errs = append(errs, fmt.Errorf("auth.rate_limit_per_sec must not be negative"))
	}
	if c.Auth.RateLimitPerSec > 0 && c.Auth.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("auth.rate_limit_burst must be positive"))
	}

	// Client domain
	if (c.ClientDomain.KeyFile != "" || c.ClientDomain.SignerURL != "") && c.ClientDomain.Domain == "" {
		errs = append(errs, fmt.Errorf("client_domain.domain is required with a client domain signer"))
	}
	if c.ClientDomain.KeyFile != "" {
		if _, err := os.Stat(c.ClientDomain.KeyFile); err != nil {
			errs = append(errs, fmt.Errorf("client_domain.key_file: %w", err))
		}
	}

	// Audit
	if c.Audit.Enabled && len(c.Audit.URLs) == 0 {
		errs = append(errs, fmt.Errorf("audit.urls is required when audit is enabled"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log.level: %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid log.format: %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			Passphrase: xdr.TestNetworkPassphrase,
		},
		Auth: AuthConfig{
			GracePeriod:     5 * time.Minute,
			Timeout:         30 * time.Second,
			RateLimitPerSec: 10,
			RateLimitBurst:  5,
			UserAgent:       "webauth-go/1",
		},
		Audit: AuditConfig{
			URLs:          []string{"nats://localhost:4222"},
			ReconnectWait: 2 * time.Second,
			MaxReconnects: -1,
			SubjectPrefix: "webauth.audit",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
