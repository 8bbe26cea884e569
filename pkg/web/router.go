// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/tenant-auth/internal/db"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/ratelimit"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/pkg/authentication"
	"github.com/canonical/tenant-auth/pkg/metrics"
	"github.com/canonical/tenant-auth/pkg/rbac"
	"github.com/canonical/tenant-auth/pkg/session"
	"github.com/canonical/tenant-auth/pkg/status"
	"github.com/canonical/tenant-auth/pkg/tenant"
)

type Config struct {
	CORSAllowedOrigins []string
	TenantHeader       string
	DefaultTenant      string
}

// NewRouter builds the HTTP surface. Every request gets its own tenant binding
// before the authenticator runs, so nothing leaks between requests.
func NewRouter(
	cfg Config,
	sessionService session.ServiceInterface,
	cookies *session.CookieManager,
	limiter ratelimit.LimiterInterface,
	rbacService rbac.ServiceInterface,
	authenticator *authentication.Middleware,
	dbClient db.DBClientInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(cfg.CORSAllowedOrigins),
		tenant.NewMiddleware(tracer, monitor, logger).HTTPMiddleware,
		authenticator.Authenticate(),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(dbClient, tracer, monitor, logger).RegisterEndpoints(router)
	session.NewAPI(sessionService, cookies, limiter, cfg.TenantHeader, cfg.DefaultTenant, tracer, monitor, logger).RegisterEndpoints(router)
	rbac.NewAPI(rbacService, dbClient, tracer, monitor, logger).RegisterEndpoints(router)

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
