// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"net/http"

	"github.com/canonical/tenant-auth/internal/apierror"
	"github.com/canonical/tenant-auth/internal/logging"
)

// RequireAuthority is the access decision point for HTTP routes: anonymous requests get
// 401 and principals lacking authority get 403
func RequireAuthority(authority string, logger logging.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())

			if principal == nil {
				apierror.Write(w, apierror.ErrUnauthorized, logger)
				return
			}

			if !principal.HasAuthority(authority) {
				logger.Security().AuthzFailure(principal.Username, r.Method+" "+r.URL.Path)
				apierror.Write(w, apierror.WithDetails(apierror.KindForbidden, map[string]any{"required": authority}), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
