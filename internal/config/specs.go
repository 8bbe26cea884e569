// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port     int `envconfig:"port" default:"8080"`
	GRPCPort int `envconfig:"grpc_port" default:"50051"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	JWTSecret       string `envconfig:"jwt_secret" required:"true"`
	AccessTokenTTL  int    `envconfig:"access_token_ttl" default:"900"`
	RefreshTokenTTL int    `envconfig:"refresh_token_ttl" default:"604800"`
	TenantClaim     string `envconfig:"tenant_claim" default:"tenant"`
	PasswordCost    int    `envconfig:"password_cost" default:"10"`

	DefaultTenant string `envconfig:"default_tenant" default:"default"`
	TenantHeader  string `envconfig:"tenant_header" default:"X-Tenant-ID"`

	CookieDomain   string `envconfig:"cookie_domain" default:""`
	CookiePath     string `envconfig:"cookie_path" default:"/"`
	CookieSecure   bool   `envconfig:"cookie_secure" default:"true"`
	CookieSameSite string `envconfig:"cookie_samesite" default:"Lax"`

	RefreshSweepInterval time.Duration `envconfig:"refresh_sweep_interval" default:"1h"`

	LoginRateLimit  int           `envconfig:"login_rate_limit" default:"10"`
	LoginRateWindow time.Duration `envconfig:"login_rate_window" default:"1m"`
	RedisAddr       string        `envconfig:"redis_addr"`
	RedisPassword   string        `envconfig:"redis_password"`
	RedisDB         int           `envconfig:"redis_db" default:"0"`
}

func (s *EnvSpec) AccessTTL() time.Duration {
	return time.Duration(s.AccessTokenTTL) * time.Second
}

func (s *EnvSpec) RefreshTTL() time.Duration {
	return time.Duration(s.RefreshTokenTTL) * time.Second
}

// Redacted returns a copy safe to log, secrets are masked
func (s *EnvSpec) Redacted() EnvSpec {
	c := *s

	for _, secret := range []*string{&c.JWTSecret, &c.RedisPassword, &c.DSN} {
		if *secret != "" {
			*secret = "[redacted]"
		}
	}

	return c
}
