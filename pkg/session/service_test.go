// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-auth/internal/apierror"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/storage"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/internal/types"
	"github.com/canonical/tenant-auth/pkg/tenant"
	"github.com/canonical/tenant-auth/pkg/tokens"
)

//go:generate mockgen -build_flags=--mod=mod -package session -destination ./mock_interfaces.go -source=./interfaces.go

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	accessTTL  = 900 * time.Second
	refreshTTL = 604800 * time.Second
)

var (
	testNow   = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	adminUser = &types.User{ID: "u-1", TenantID: "default", Username: "admin", Enabled: true}
	adminAuth = []string{"PERM_USER_CREATE", "PERM_USER_VIEW", "ROLE_ADMIN"}
)

func newTestCodec(t *testing.T) *tokens.Codec {
	t.Helper()

	c, err := tokens.NewCodec(testSecret, "tenant", tokens.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func newTestService(t *testing.T, verifier CredentialVerifierInterface, resolver AuthorityResolverInterface, store StorageInterface) *Service {
	t.Helper()

	logger := logging.NewNoopLogger()
	s := NewService(
		Config{AccessTTL: accessTTL, RefreshTTL: refreshTTL, DefaultTenant: "default"},
		verifier,
		resolver,
		newTestCodec(t),
		store,
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("test", logger),
		logger,
	)

	var seq atomic.Int64
	s.now = func() time.Time { return testNow }
	s.newID = func() string { return fmt.Sprintf("rt-%d", seq.Add(1)) }
	s.newJTI = func() string { return fmt.Sprintf("jti-%d", seq.Add(1)) }

	return s
}

func issueRefresh(t *testing.T, tenantID, jti string) string {
	t.Helper()

	token, err := newTestCodec(t).IssueRefresh("admin", tenantID, jti, refreshTTL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return token
}

func TestService_Login(t *testing.T) {
	tests := []struct {
		name           string
		tenantHint     string
		expectedTenant string
		setupMocks     func(*MockCredentialVerifierInterface, *MockAuthorityResolverInterface, *MockStorageInterface, string)
		expectedErr    error
	}{
		{
			name:           "default tenant",
			tenantHint:     "  ",
			expectedTenant: "default",
			setupMocks: func(v *MockCredentialVerifierInterface, r *MockAuthorityResolverInterface, s *MockStorageInterface, tenantID string) {
				v.EXPECT().Verify(gomock.Any(), "admin", "Admin@12345", tenantID).DoAndReturn(
					func(ctx context.Context, _, _, tenantID string) (*types.User, error) {
						if tenant.Get(ctx) != tenantID {
							t.Errorf("expected tenant %q on the context, got %q", tenantID, tenant.Get(ctx))
						}
						return adminUser, nil
					},
				)
				r.EXPECT().Resolve(gomock.Any(), "admin", tenantID).Return(adminAuth, nil)
				s.EXPECT().CreateRefreshToken(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, rec *types.RefreshToken) error {
						expected := types.NewRefreshToken("rt-2", "jti-1", "u-1", tenantID, testNow, testNow.Add(refreshTTL))
						if !reflect.DeepEqual(rec, expected) {
							t.Errorf("expected record %+v, got %+v", expected, rec)
						}
						return nil
					},
				)
			},
		},
		{
			name:           "tenant hint",
			tenantHint:     "acme",
			expectedTenant: "acme",
			setupMocks: func(v *MockCredentialVerifierInterface, r *MockAuthorityResolverInterface, s *MockStorageInterface, tenantID string) {
				v.EXPECT().Verify(gomock.Any(), "admin", "Admin@12345", tenantID).Return(adminUser, nil)
				r.EXPECT().Resolve(gomock.Any(), "admin", tenantID).Return(adminAuth, nil)
				s.EXPECT().CreateRefreshToken(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:           "invalid credentials",
			expectedTenant: "default",
			setupMocks: func(v *MockCredentialVerifierInterface, r *MockAuthorityResolverInterface, s *MockStorageInterface, tenantID string) {
				v.EXPECT().Verify(gomock.Any(), "admin", "Admin@12345", tenantID).Return(nil, apierror.ErrInvalidCredentials)
			},
			expectedErr: apierror.ErrInvalidCredentials,
		},
		{
			name:           "disabled user",
			expectedTenant: "default",
			setupMocks: func(v *MockCredentialVerifierInterface, r *MockAuthorityResolverInterface, s *MockStorageInterface, tenantID string) {
				v.EXPECT().Verify(gomock.Any(), "admin", "Admin@12345", tenantID).Return(nil, apierror.ErrPrincipalDisabled)
			},
			expectedErr: apierror.ErrPrincipalDisabled,
		},
		{
			name:           "identity missing after authentication",
			expectedTenant: "default",
			setupMocks: func(v *MockCredentialVerifierInterface, r *MockAuthorityResolverInterface, s *MockStorageInterface, tenantID string) {
				v.EXPECT().Verify(gomock.Any(), "admin", "Admin@12345", tenantID).Return(nil, nil)
			},
			expectedErr: apierror.ErrPrincipalNotFound,
		},
		{
			name:           "resolver failure",
			expectedTenant: "default",
			setupMocks: func(v *MockCredentialVerifierInterface, r *MockAuthorityResolverInterface, s *MockStorageInterface, tenantID string) {
				v.EXPECT().Verify(gomock.Any(), "admin", "Admin@12345", tenantID).Return(adminUser, nil)
				r.EXPECT().Resolve(gomock.Any(), "admin", tenantID).Return(nil, apierror.ErrPrincipalNotFound)
			},
			expectedErr: apierror.ErrPrincipalNotFound,
		},
		{
			name:           "store failure",
			expectedTenant: "default",
			setupMocks: func(v *MockCredentialVerifierInterface, r *MockAuthorityResolverInterface, s *MockStorageInterface, tenantID string) {
				v.EXPECT().Verify(gomock.Any(), "admin", "Admin@12345", tenantID).Return(adminUser, nil)
				r.EXPECT().Resolve(gomock.Any(), "admin", tenantID).Return(adminAuth, nil)
				s.EXPECT().CreateRefreshToken(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
			},
			expectedErr: errors.New("connection reset"),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			verifier := NewMockCredentialVerifierInterface(ctrl)
			resolver := NewMockAuthorityResolverInterface(ctrl)
			store := NewMockStorageInterface(ctrl)
			test.setupMocks(verifier, resolver, store, test.expectedTenant)

			s := newTestService(t, verifier, resolver, store)

			ctx, holder := tenant.NewContext(context.Background())
			result, err := s.Login(ctx, "admin", "Admin@12345", test.tenantHint)

			if holder.Get() != "" {
				t.Fatalf("expected tenant to be cleared, got %q", holder.Get())
			}

			if test.expectedErr != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", test.expectedErr)
				}

				var apiErr *apierror.Error
				if errors.As(test.expectedErr, &apiErr) && !errors.Is(err, test.expectedErr) {
					t.Fatalf("expected error %v, got %v", test.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.AccessTTL != accessTTL || result.RefreshTTL != refreshTTL {
				t.Fatalf("unexpected ttls %v/%v", result.AccessTTL, result.RefreshTTL)
			}

			claims, err := newTestCodec(t).VerifyAccess(result.AccessToken)
			if err != nil {
				t.Fatalf("access token does not verify: %v", err)
			}

			if claims.Tenant != test.expectedTenant || claims.Subject != "admin" {
				t.Fatalf("unexpected claims %+v", claims)
			}

			if !reflect.DeepEqual(claims.Authorities, adminAuth) {
				t.Fatalf("expected authorities %v, got %v", adminAuth, claims.Authorities)
			}

			refresh, err := newTestCodec(t).VerifyRefresh(result.RefreshToken)
			if err != nil || refresh.JTI != "jti-1" || refresh.Tenant != test.expectedTenant {
				t.Fatalf("unexpected refresh token %+v (%v)", refresh, err)
			}
		})
	}
}

func TestService_Refresh(t *testing.T) {
	active := func() *types.RefreshToken {
		return types.NewRefreshToken("rt-0", "jti-0", "u-1", "default", testNow.Add(-time.Hour), testNow.Add(time.Hour))
	}

	tests := []struct {
		name        string
		token       func(*testing.T) string
		setupMocks  func(*MockAuthorityResolverInterface, *MockStorageInterface)
		expectedErr error
	}{
		{
			name:  "rotates the token",
			token: func(t *testing.T) string { return issueRefresh(t, "default", "jti-0") },
			setupMocks: func(r *MockAuthorityResolverInterface, s *MockStorageInterface) {
				s.EXPECT().GetRefreshToken(gomock.Any(), "jti-0", "default").Return(active(), nil)
				r.EXPECT().Resolve(gomock.Any(), "admin", "default").Return([]string{"ROLE_USER"}, nil)
				s.EXPECT().RotateRefreshToken(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, current, next *types.RefreshToken) error {
						if tenant.Get(ctx) != "default" {
							t.Errorf("expected tenant on the context, got %q", tenant.Get(ctx))
						}
						if current.ID != "rt-0" {
							t.Errorf("expected current record rt-0, got %s", current.ID)
						}
						expected := types.NewRefreshToken("rt-2", "jti-1", "u-1", "default", testNow, testNow.Add(refreshTTL))
						if !reflect.DeepEqual(next, expected) {
							t.Errorf("expected successor %+v, got %+v", expected, next)
						}
						return nil
					},
				)
			},
		},
		{
			name:        "missing token",
			token:       func(*testing.T) string { return "" },
			setupMocks:  func(*MockAuthorityResolverInterface, *MockStorageInterface) {},
			expectedErr: apierror.ErrMissingRefreshToken,
		},
		{
			name:        "garbage token",
			token:       func(*testing.T) string { return "garbage" },
			setupMocks:  func(*MockAuthorityResolverInterface, *MockStorageInterface) {},
			expectedErr: apierror.ErrTokenInvalid,
		},
		{
			name: "access token presented",
			token: func(t *testing.T) string {
				token, _ := newTestCodec(t).IssueAccess("admin", "default", adminAuth, accessTTL)
				return token
			},
			setupMocks:  func(*MockAuthorityResolverInterface, *MockStorageInterface) {},
			expectedErr: apierror.ErrTokenInvalid,
		},
		{
			name:  "unknown record",
			token: func(t *testing.T) string { return issueRefresh(t, "default", "jti-0") },
			setupMocks: func(r *MockAuthorityResolverInterface, s *MockStorageInterface) {
				s.EXPECT().GetRefreshToken(gomock.Any(), "jti-0", "default").Return(nil, storage.ErrNotFound)
			},
			expectedErr: apierror.ErrRefreshRevoked,
		},
		{
			name:  "revoked record",
			token: func(t *testing.T) string { return issueRefresh(t, "default", "jti-0") },
			setupMocks: func(r *MockAuthorityResolverInterface, s *MockStorageInterface) {
				rec := active()
				rec.Revoked = true
				s.EXPECT().GetRefreshToken(gomock.Any(), "jti-0", "default").Return(rec, nil)
			},
			expectedErr: apierror.ErrRefreshExpiredOrRevoked,
		},
		{
			name:  "expired record",
			token: func(t *testing.T) string { return issueRefresh(t, "default", "jti-0") },
			setupMocks: func(r *MockAuthorityResolverInterface, s *MockStorageInterface) {
				rec := active()
				rec.ExpiresAt = testNow.Add(-time.Second)
				s.EXPECT().GetRefreshToken(gomock.Any(), "jti-0", "default").Return(rec, nil)
			},
			expectedErr: apierror.ErrRefreshExpiredOrRevoked,
		},
		{
			name:  "lost rotation race",
			token: func(t *testing.T) string { return issueRefresh(t, "default", "jti-0") },
			setupMocks: func(r *MockAuthorityResolverInterface, s *MockStorageInterface) {
				s.EXPECT().GetRefreshToken(gomock.Any(), "jti-0", "default").Return(active(), nil)
				r.EXPECT().Resolve(gomock.Any(), "admin", "default").Return([]string{"ROLE_USER"}, nil)
				s.EXPECT().RotateRefreshToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyRevoked)
			},
			expectedErr: apierror.ErrRefreshExpiredOrRevoked,
		},
		{
			name:  "user disabled since login",
			token: func(t *testing.T) string { return issueRefresh(t, "default", "jti-0") },
			setupMocks: func(r *MockAuthorityResolverInterface, s *MockStorageInterface) {
				s.EXPECT().GetRefreshToken(gomock.Any(), "jti-0", "default").Return(active(), nil)
				r.EXPECT().Resolve(gomock.Any(), "admin", "default").Return(nil, apierror.ErrPrincipalDisabled)
			},
			expectedErr: apierror.ErrPrincipalDisabled,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			resolver := NewMockAuthorityResolverInterface(ctrl)
			store := NewMockStorageInterface(ctrl)
			test.setupMocks(resolver, store)

			s := newTestService(t, NewMockCredentialVerifierInterface(ctrl), resolver, store)

			ctx, holder := tenant.NewContext(context.Background())
			result, err := s.Refresh(ctx, test.token(t))

			if holder.Get() != "" {
				t.Fatalf("expected tenant to be cleared, got %q", holder.Get())
			}

			if test.expectedErr != nil {
				if !errors.Is(err, test.expectedErr) {
					t.Fatalf("expected error %v, got %v", test.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			claims, err := newTestCodec(t).VerifyAccess(result.AccessToken)
			if err != nil || !reflect.DeepEqual(claims.Authorities, []string{"ROLE_USER"}) {
				t.Fatalf("expected fresh authorities, got %+v (%v)", claims, err)
			}
		})
	}
}

func TestService_Logout(t *testing.T) {
	tests := []struct {
		name        string
		token       func(*testing.T) string
		setupMocks  func(*MockStorageInterface)
		expectedErr error
	}{
		{
			name:  "revokes the record",
			token: func(t *testing.T) string { return issueRefresh(t, "default", "jti-0") },
			setupMocks: func(s *MockStorageInterface) {
				rec := types.NewRefreshToken("rt-0", "jti-0", "u-1", "default", testNow, testNow.Add(time.Hour))
				s.EXPECT().GetRefreshToken(gomock.Any(), "jti-0", "default").Return(rec, nil)
				s.EXPECT().RevokeRefreshToken(gomock.Any(), rec).Return(nil)
			},
		},
		{
			name:  "already revoked",
			token: func(t *testing.T) string { return issueRefresh(t, "default", "jti-0") },
			setupMocks: func(s *MockStorageInterface) {
				rec := types.NewRefreshToken("rt-0", "jti-0", "u-1", "default", testNow, testNow.Add(time.Hour))
				rec.Revoked = true
				s.EXPECT().GetRefreshToken(gomock.Any(), "jti-0", "default").Return(rec, nil)
			},
		},
		{
			name:  "unknown record",
			token: func(t *testing.T) string { return issueRefresh(t, "default", "jti-0") },
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetRefreshToken(gomock.Any(), "jti-0", "default").Return(nil, storage.ErrNotFound)
			},
		},
		{
			name:        "missing token",
			token:       func(*testing.T) string { return "" },
			setupMocks:  func(*MockStorageInterface) {},
			expectedErr: apierror.ErrMissingRefreshToken,
		},
		{
			name:        "unsigned token cannot revoke",
			token:       func(*testing.T) string { return "eyJhbGciOiJub25lIn0.eyJzdWIiOiJhZG1pbiIsImp0aSI6Imp0aS0wIn0." },
			setupMocks:  func(*MockStorageInterface) {},
			expectedErr: apierror.ErrTokenInvalid,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStorageInterface(ctrl)
			test.setupMocks(store)

			s := newTestService(t, NewMockCredentialVerifierInterface(ctrl), NewMockAuthorityResolverInterface(ctrl), store)

			ctx, holder := tenant.NewContext(context.Background())
			err := s.Logout(ctx, test.token(t))

			if holder.Get() != "" {
				t.Fatalf("expected tenant to be cleared, got %q", holder.Get())
			}

			if test.expectedErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if test.expectedErr != nil && !errors.Is(err, test.expectedErr) {
				t.Fatalf("expected error %v, got %v", test.expectedErr, err)
			}
		})
	}
}

// memoryStore keeps refresh records in memory with the same rotation semantics as the database
type memoryStore struct {
	mu      sync.Mutex
	records map[string]*types.RefreshToken
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*types.RefreshToken)}
}

func (m *memoryStore) CreateRefreshToken(_ context.Context, t *types.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *t
	m.records[t.JTI] = &c
	return nil
}

func (m *memoryStore) GetRefreshToken(_ context.Context, jti, tenantID string) (*types.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[jti]
	if !ok || rec.TenantID != tenantID {
		return nil, storage.ErrNotFound
	}

	c := *rec
	return &c, nil
}

func (m *memoryStore) RevokeRefreshToken(_ context.Context, t *types.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.records[t.JTI]; ok {
		rec.Revoked = true
	}
	t.Revoked = true
	return nil
}

func (m *memoryStore) RotateRefreshToken(_ context.Context, current, next *types.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[current.JTI]
	if !ok || rec.Revoked {
		return storage.ErrAlreadyRevoked
	}

	rec.Revoked = true
	c := *next
	m.records[next.JTI] = &c
	return nil
}

func (m *memoryStore) PurgeRefreshTokensExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for jti, rec := range m.records {
		if rec.ExpiresAt.Before(cutoff) {
			delete(m.records, jti)
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.records)
}

func newSessionFlow(t *testing.T, ctrl *gomock.Controller, store StorageInterface) *Service {
	t.Helper()

	verifier := NewMockCredentialVerifierInterface(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), "admin", "Admin@12345", "default").Return(adminUser, nil).AnyTimes()

	resolver := NewMockAuthorityResolverInterface(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "admin", "default").Return(adminAuth, nil).AnyTimes()

	return newTestService(t, verifier, resolver, store)
}

func TestService_RefreshIsSingleUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newMemoryStore()
	s := newSessionFlow(t, ctrl, store)

	login, err := s.Login(context.Background(), "admin", "Admin@12345", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rotated, err := s.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected error on first refresh: %v", err)
	}

	if _, err := s.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, apierror.ErrRefreshExpiredOrRevoked) {
		t.Fatalf("expected replay to be rejected, got %v", err)
	}

	if store.count() != 2 {
		t.Fatalf("expected replay to create no record, got %d records", store.count())
	}

	if _, err := s.Refresh(context.Background(), rotated.RefreshToken); err != nil {
		t.Fatalf("expected successor to be usable, got %v", err)
	}
}

func TestService_ConcurrentRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newMemoryStore()
	s := newSessionFlow(t, ctrl, store)

	login, err := s.Login(context.Background(), "admin", "Admin@12345", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		rejected  atomic.Int32
	)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := s.Refresh(context.Background(), login.RefreshToken)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, apierror.ErrRefreshExpiredOrRevoked):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	if successes.Load() != 1 || rejected.Load() != 9 {
		t.Fatalf("expected exactly one rotation, got %d successes and %d rejections", successes.Load(), rejected.Load())
	}
}

func TestService_LogoutIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newMemoryStore()
	s := newSessionFlow(t, ctrl, store)

	login, err := s.Login(context.Background(), "admin", "Admin@12345", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Logout(context.Background(), login.RefreshToken); err != nil {
			t.Fatalf("logout %d: unexpected error: %v", i, err)
		}
	}

	if _, err := s.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, apierror.ErrRefreshExpiredOrRevoked) {
		t.Fatalf("expected logged out token to be rejected, got %v", err)
	}
}
