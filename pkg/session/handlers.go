// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-auth/internal/apierror"
	"github.com/canonical/tenant-auth/internal/http/types"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/ratelimit"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/internal/validation"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Password string `json:"password" validate:"required,min=1,max=120"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type API struct {
	service       ServiceInterface
	cookies       *CookieManager
	limiter       ratelimit.LimiterInterface
	validator     *validation.Validator
	tenantHeader  string
	defaultTenant string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/api/auth/login", a.login)
	mux.Post("/api/auth/refresh", a.refresh)
	mux.Post("/api/auth/logout", a.logout)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	req := new(LoginRequest)
	if err := a.validator.DecodeJSON(r, req); err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	tenantHint := strings.TrimSpace(r.Header.Get(a.tenantHeader))

	// keyed on the resolved tenant, so omitting the header shares the default tenant's budget
	if !a.allow(w, r, ResolveTenant(tenantHint, a.defaultTenant)+"|"+clientIP(r)) {
		return
	}

	tokens, err := a.service.Login(r.Context(), req.Username, req.Password, tenantHint)
	if err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	a.writeTokens(w, tokens)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	tokens, err := a.service.Refresh(r.Context(), a.cookies.Read(r))
	if err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	a.writeTokens(w, tokens)
}

// logout always drops the cookie, whatever the outcome of the revocation
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)

	if err := a.service.Logout(r.Context(), a.cookies.Read(r)); err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// allow applies the login rate limit, limiter failures let the request through
func (a *API) allow(w http.ResponseWriter, r *http.Request, key string) bool {
	decision, err := a.limiter.Allow(r.Context(), key)
	if err != nil {
		a.logger.Warnf("login rate limiter unavailable: %v", err)
		return true
	}

	if decision.Allowed {
		return true
	}

	if wait := time.Until(decision.ResetAt); wait > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
	}

	apierror.Write(w, apierror.ErrRateLimited, a.logger)
	return false
}

func (a *API) writeTokens(w http.ResponseWriter, tokens *Tokens) {
	a.cookies.Set(w, tokens.RefreshToken, tokens.RefreshTTL)

	w.Header().Set("Cache-Control", "no-store")

	response := TokenResponse{
		AccessToken: tokens.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tokens.AccessTTL.Seconds()),
	}

	if err := types.WriteJSON(w, http.StatusOK, response); err != nil {
		a.logger.Errorf("failed to encode token response: %v", err)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func NewAPI(
	service ServiceInterface,
	cookies *CookieManager,
	limiter ratelimit.LimiterInterface,
	tenantHeader string,
	defaultTenant string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	a := new(API)

	a.service = service
	a.cookies = cookies
	a.limiter = limiter
	a.validator = validation.NewValidator()
	a.tenantHeader = tenantHeader
	a.defaultTenant = defaultTenant

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
