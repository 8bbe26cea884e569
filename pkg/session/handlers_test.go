// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-auth/internal/apierror"
	httptypes "github.com/canonical/tenant-auth/internal/http/types"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/ratelimit"
	"github.com/canonical/tenant-auth/internal/tracing"
)

func newTestAPI(t *testing.T, service ServiceInterface, limit int) *chi.Mux {
	t.Helper()

	cookies, err := NewCookieManager(CookieConfig{Path: "/", Secure: true, SameSite: http.SameSiteLaxMode})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := logging.NewNoopLogger()
	api := NewAPI(
		service,
		cookies,
		ratelimit.NewMemoryLimiter(limit, time.Minute, nil),
		"X-Tenant-ID",
		"default",
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("test", logger),
		logger,
	)

	mux := chi.NewMux()
	api.RegisterEndpoints(mux)

	return mux
}

func refreshCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == RefreshCookieName {
			return c
		}
	}
	return nil
}

func TestAPI_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		tenantHeader   string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		expectedCode   string
		expectCookie   bool
	}{
		{
			name:         "success",
			body:         `{"username":"admin","password":"Admin@12345"}`,
			tenantHeader: "acme",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Login(gomock.Any(), "admin", "Admin@12345", "acme").Return(&Tokens{
					AccessToken:  "access",
					AccessTTL:    accessTTL,
					RefreshToken: "refresh",
					RefreshTTL:   refreshTTL,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectCookie:   true,
		},
		{
			name:           "invalid body",
			body:           `{"username":"ad"}`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   string(apierror.KindValidation),
		},
		{
			name: "invalid credentials",
			body: `{"username":"admin","password":"wrong"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Login(gomock.Any(), "admin", "wrong", "").Return(nil, apierror.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   string(apierror.KindInvalidCredentials),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockServiceInterface(ctrl)
			test.setupMocks(service)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(test.body))
			if test.tenantHeader != "" {
				req.Header.Set("X-Tenant-ID", test.tenantHeader)
			}
			rr := httptest.NewRecorder()

			newTestAPI(t, service, 10).ServeHTTP(rr, req)

			if rr.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", test.expectedStatus, rr.Code, rr.Body.String())
			}

			if test.expectedCode != "" {
				var body httptypes.ErrorResponse
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode error: %v", err)
				}
				if body.Code != test.expectedCode {
					t.Fatalf("expected code %s, got %s", test.expectedCode, body.Code)
				}
			}

			cookie := refreshCookie(rr)
			if test.expectCookie != (cookie != nil) {
				t.Fatalf("expected cookie %v, got %+v", test.expectCookie, cookie)
			}

			if !test.expectCookie {
				return
			}

			if cookie.Value != "refresh" || !cookie.HttpOnly || cookie.MaxAge != int(refreshTTL.Seconds()) {
				t.Fatalf("unexpected cookie %+v", cookie)
			}

			var body TokenResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if body.AccessToken != "access" || body.TokenType != "Bearer" || body.ExpiresIn != 900 {
				t.Fatalf("unexpected body %+v", body)
			}

			if rr.Header().Get("Cache-Control") != "no-store" {
				t.Fatal("expected token response to be marked no-store")
			}
		})
	}
}

func TestAPI_LoginRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockServiceInterface(ctrl)
	service.EXPECT().Login(gomock.Any(), "admin", "wrong", "").Return(nil, apierror.ErrInvalidCredentials).Times(2)

	mux := newTestAPI(t, service, 2)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		statuses = append(statuses, rr.Code)

		if i == 2 && rr.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
	}

	expected := []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}
	for i := range expected {
		if statuses[i] != expected[i] {
			t.Fatalf("expected statuses %v, got %v", expected, statuses)
		}
	}
}

func TestAPI_LoginRateLimitSharedByDefaultTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockServiceInterface(ctrl)
	service.EXPECT().Login(gomock.Any(), "admin", "wrong", gomock.Any()).Return(nil, apierror.ErrInvalidCredentials).Times(2)

	mux := newTestAPI(t, service, 2)

	hints := []string{"", "default", " default "}
	expected := []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}

	for i, hint := range hints {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
		if hint != "" {
			req.Header.Set("X-Tenant-ID", hint)
		}

		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if rr.Code != expected[i] {
			t.Fatalf("attempt %d with hint %q: expected status %d, got %d", i+1, hint, expected[i], rr.Code)
		}
	}
}

func TestResolveTenant(t *testing.T) {
	tests := []struct {
		hint     string
		expected string
	}{
		{hint: "", expected: "default"},
		{hint: "   ", expected: "default"},
		{hint: "acme", expected: "acme"},
		{hint: " acme ", expected: "acme"},
	}

	for _, test := range tests {
		if got := ResolveTenant(test.hint, "default"); got != test.expected {
			t.Errorf("hint %q: expected %q, got %q", test.hint, test.expected, got)
		}
	}
}

func TestAPI_Refresh(t *testing.T) {
	tests := []struct {
		name           string
		cookie         string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		expectCookie   bool
	}{
		{
			name:   "success",
			cookie: "old-refresh",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Refresh(gomock.Any(), "old-refresh").Return(&Tokens{
					AccessToken:  "access",
					AccessTTL:    accessTTL,
					RefreshToken: "new-refresh",
					RefreshTTL:   refreshTTL,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectCookie:   true,
		},
		{
			name: "missing cookie",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Refresh(gomock.Any(), "").Return(nil, apierror.ErrMissingRefreshToken)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "revoked",
			cookie: "old-refresh",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Refresh(gomock.Any(), "old-refresh").Return(nil, apierror.ErrRefreshExpiredOrRevoked)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockServiceInterface(ctrl)
			test.setupMocks(service)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
			if test.cookie != "" {
				req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: test.cookie})
			}
			rr := httptest.NewRecorder()

			newTestAPI(t, service, 10).ServeHTTP(rr, req)

			if rr.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", test.expectedStatus, rr.Code, rr.Body.String())
			}

			cookie := refreshCookie(rr)
			if test.expectCookie && (cookie == nil || cookie.Value != "new-refresh") {
				t.Fatalf("expected rotated cookie, got %+v", cookie)
			}

			if !test.expectCookie && cookie != nil {
				t.Fatalf("expected no cookie, got %+v", cookie)
			}
		})
	}
}

func TestAPI_Logout(t *testing.T) {
	tests := []struct {
		name           string
		cookie         string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name:   "success",
			cookie: "refresh",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Logout(gomock.Any(), "refresh").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "invalid token still clears the cookie",
			cookie: "garbage",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Logout(gomock.Any(), "garbage").Return(apierror.ErrTokenInvalid)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockServiceInterface(ctrl)
			test.setupMocks(service)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
			req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: test.cookie})
			rr := httptest.NewRecorder()

			newTestAPI(t, service, 10).ServeHTTP(rr, req)

			if rr.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d", test.expectedStatus, rr.Code)
			}

			cookie := refreshCookie(rr)
			if cookie == nil || cookie.MaxAge >= 0 {
				t.Fatalf("expected cookie to be expired, got %+v", cookie)
			}
		})
	}
}
