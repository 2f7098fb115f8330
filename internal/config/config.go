// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package config loads SolHub configuration from defaults, an optional YAML
// file, the environment, and command-line flags, in that order of precedence.
package config

import (
	"time"

	"github.com/samber/oops"

	"github.com/solhub/solhub/internal/logging"
)

// MinSessionSecretLength is the shortest accepted session secret, in bytes.
const MinSessionSecretLength = 16

// Config is the full SolHub configuration.
type Config struct {
	Web      WebConfig      `koanf:"web" json:"web,omitempty" jsonschema:"description=Public web server"`
	Metrics  MetricsConfig  `koanf:"metrics" json:"metrics,omitempty" jsonschema:"description=Prometheus and health probe listener"`
	Database DatabaseConfig `koanf:"database" json:"database,omitempty"`
	Session  SessionConfig  `koanf:"session" json:"session,omitempty"`
	Log      LogConfig      `koanf:"log" json:"log,omitempty"`
}

// WebConfig configures the public HTTP listener.
type WebConfig struct {
	Addr            string    `koanf:"addr" json:"addr,omitempty" jsonschema:"description=host:port to listen on,example=:3000"`
	ShutdownTimeout int       `koanf:"shutdown_timeout" json:"shutdown_timeout,omitempty" jsonschema:"description=Graceful shutdown timeout in seconds,minimum=1"`
	TLS             TLSConfig `koanf:"tls" json:"tls,omitempty" jsonschema:"description=Serve HTTPS instead of HTTP"`
}

// TLSConfig selects the web listener's certificate. With neither a key
// pair nor SelfSigned the site is served over plain HTTP.
type TLSConfig struct {
	CertFile   string   `koanf:"cert_file" json:"cert_file,omitempty" jsonschema:"description=PEM certificate chain"`
	KeyFile    string   `koanf:"key_file" json:"key_file,omitempty" jsonschema:"description=PEM private key"`
	SelfSigned bool     `koanf:"self_signed" json:"self_signed,omitempty" jsonschema:"description=Generate a development CA and certificate in the certs directory"`
	Hosts      []string `koanf:"hosts" json:"hosts,omitempty" jsonschema:"description=Extra DNS names or IPs for the self-signed certificate"`
}

// Enabled reports whether the web listener serves HTTPS.
func (t TLSConfig) Enabled() bool {
	return t.SelfSigned || t.CertFile != ""
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty" jsonschema:"example=127.0.0.1:9100"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL            string `koanf:"url" json:"url,omitempty" jsonschema:"description=PostgreSQL connection URL; DATABASE_URL overrides it"`
	MaxConns       int32  `koanf:"max_conns" json:"max_conns,omitempty" jsonschema:"minimum=1"`
	ConnectRetries uint64 `koanf:"connect_retries" json:"connect_retries,omitempty"`
}

// SessionConfig configures the login session cookie.
type SessionConfig struct {
	Secret        string `koanf:"secret" json:"secret,omitempty" jsonschema:"description=Cookie signing key; SOLHUB_SESSION_SECRET overrides it"`
	MaxAge        int    `koanf:"max_age" json:"max_age,omitempty" jsonschema:"description=Session lifetime in seconds,minimum=60"`
	RefreshWindow int    `koanf:"refresh_window" json:"refresh_window,omitempty" jsonschema:"description=Seconds of inactivity after which the cookie is re-issued,minimum=0"`
	SecureCookie  bool   `koanf:"secure_cookie" json:"secure_cookie,omitempty"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Web: WebConfig{
			Addr:            ":3000",
			ShutdownTimeout: 10,
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9100",
		},
		Database: DatabaseConfig{
			MaxConns:       10,
			ConnectRetries: 5,
		},
		Session: SessionConfig{
			MaxAge:        int((2 * time.Hour).Seconds()),
			RefreshWindow: int((5 * time.Minute).Seconds()),
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
	}
}

// Validate checks values that every command depends on. Settings only
// some commands need are checked by RequireDatabase and RequireSession.
func (c *Config) Validate() error {
	if c.Web.Addr == "" {
		return invalid("web.addr", "web.addr is required")
	}
	if c.Web.ShutdownTimeout <= 0 {
		return invalid("web.shutdown_timeout", "web.shutdown_timeout must be positive")
	}
	if (c.Web.TLS.CertFile == "") != (c.Web.TLS.KeyFile == "") {
		return invalid("web.tls", "web.tls.cert_file and web.tls.key_file must be set together")
	}
	if c.Web.TLS.SelfSigned && c.Web.TLS.CertFile != "" {
		return invalid("web.tls.self_signed", "web.tls.self_signed cannot be combined with web.tls.cert_file")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "log.level: %v", err)
	}
	if c.Database.MaxConns < 1 {
		return invalid("database.max_conns", "database.max_conns must be at least 1")
	}
	if c.Session.MaxAge < 60 {
		return invalid("session.max_age", "session.max_age must be at least 60 seconds")
	}
	if c.Session.RefreshWindow < 0 || c.Session.RefreshWindow >= c.Session.MaxAge {
		return invalid("session.refresh_window", "session.refresh_window must be between 0 and session.max_age")
	}
	return nil
}

// RequireDatabase reports a missing database URL.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return invalid("database.url", "database URL is required (set DATABASE_URL or database.url)")
	}
	return nil
}

// RequireSession reports a missing or short session secret.
func (c *Config) RequireSession() error {
	if len(c.Session.Secret) < MinSessionSecretLength {
		return invalid("session.secret",
			"session secret must be at least %d bytes (set SOLHUB_SESSION_SECRET or session.secret)",
			MinSessionSecretLength)
	}
	return nil
}

// SessionMaxAge returns the session lifetime.
func (c *Config) SessionMaxAge() time.Duration {
	return time.Duration(c.Session.MaxAge) * time.Second
}

// SessionRefreshWindow returns the sliding refresh window.
func (c *Config) SessionRefreshWindow() time.Duration {
	return time.Duration(c.Session.RefreshWindow) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Web.ShutdownTimeout) * time.Second
}

func invalid(key, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
}
