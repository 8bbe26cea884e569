// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc"

	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/tracing"
)

func newTestMiddleware() *Middleware {
	logger := logging.NewNoopLogger()
	return NewMiddleware(tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
}

func TestMiddleware_HTTPMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "cleared after success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				FromContext(r.Context()).Set("acme")
				w.WriteHeader(http.StatusOK)
			},
		},
		{
			name: "cleared after panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				FromContext(r.Context()).Set("acme")
				panic("handler failed")
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var seen *Holder

			wrapped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = FromContext(r.Context())
				test.handler(w, r)
			})

			func() {
				defer func() { _ = recover() }()
				newTestMiddleware().HTTPMiddleware(wrapped).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			}()

			if seen == nil {
				t.Fatal("expected a holder on the request context")
			}

			if seen.Get() != "" {
				t.Fatalf("expected tenant to be cleared, got %q", seen.Get())
			}
		})
	}
}

func TestMiddleware_GRPCInterceptor(t *testing.T) {
	var seen *Holder

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = FromContext(ctx)
		seen.Set("acme")
		return "ok", nil
	}

	resp, err := newTestMiddleware().GRPCInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
	if err != nil || resp != "ok" {
		t.Fatalf("unexpected result %v, %v", resp, err)
	}

	if seen == nil || seen.Get() != "" {
		t.Fatal("expected tenant holder to be cleared after the call")
	}
}
