// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/storage"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/pkg/tenant"
)

// Middleware establishes the principal of a request from its bearer token.
// It never rejects a request: a missing or unusable token leaves the request anonymous
// and enforcement is left to RequireAuthority.
type Middleware struct {
	verifier TokenVerifierInterface
	users    StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (m *Middleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authentication.Middleware.Authenticate")
			defer span.End()

			ctx, release := m.authenticate(ctx, r.Header.Get("Authorization"))
			defer release()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GRPCInterceptor is the unary interceptor counterpart of Authenticate
func (m *Middleware) GRPCInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	ctx, span := m.tracer.Start(ctx, "authentication.Middleware.GRPCInterceptor")
	defer span.End()

	header := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("authorization"); len(values) > 0 {
			header = values[0]
		}
	}

	ctx, release := m.authenticate(ctx, header)
	defer release()

	return handler(ctx, req)
}

// authenticate returns the context to serve the request with and the func clearing
// the tenant it set, the func must be called once the request is served
func (m *Middleware) authenticate(ctx context.Context, header string) (context.Context, func()) {
	noop := func() {}

	token, found := m.getBearerToken(header)
	if !found || PrincipalFromContext(ctx) != nil {
		return ctx, noop
	}

	claims, err := m.verifier.VerifyAccess(token)
	if err != nil {
		m.logger.Debugf("access token rejected: %v", err)
		return ctx, noop
	}

	if claims.Tenant == "" {
		m.logger.Debugf("access token of %s carries no tenant", claims.Subject)
		return ctx, noop
	}

	authCtx, release := tenant.Acquire(ctx, claims.Tenant)

	user, err := m.users.GetUserByUsername(authCtx, claims.Tenant, claims.Subject)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Errorf("failed to load principal: %v", err)
		}
		release()
		return ctx, noop
	}

	if !user.Enabled {
		m.logger.Debugf("principal %s is disabled", user.ID)
		release()
		return ctx, noop
	}

	principal := &Principal{
		UserID:      user.ID,
		Username:    user.Username,
		TenantID:    claims.Tenant,
		Authorities: claims.Authorities,
	}

	return WithPrincipal(authCtx, principal), release
}

func (m *Middleware) getBearerToken(header string) (string, bool) {
	// Only support "Bearer <token>" format (RFC 6750)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	return token, token != ""
}

func NewMiddleware(verifier TokenVerifierInterface, users StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		verifier: verifier,
		users:    users,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
