// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/canonical/tenant-auth/internal/apierror"
	"github.com/canonical/tenant-auth/internal/ids"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/storage"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/internal/types"
	"github.com/canonical/tenant-auth/pkg/tenant"
	"github.com/canonical/tenant-auth/pkg/tokens"
)

// Tokens is the result of a successful credential exchange
type Tokens struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken string
	RefreshTTL   time.Duration
}

type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	DefaultTenant string
}

// Service exchanges credentials and refresh tokens for token pairs
type Service struct {
	credentials CredentialVerifierInterface
	authorities AuthorityResolverInterface
	codec       TokenCodecInterface
	storage     StorageInterface

	accessTTL     time.Duration
	refreshTTL    time.Duration
	defaultTenant string

	now    func() time.Time
	newID  func() string
	newJTI func() string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// ResolveTenant picks the tenant a login targets, a blank hint means defaultTenant
func ResolveTenant(hint, defaultTenant string) string {
	if id := strings.TrimSpace(hint); id != "" {
		return id
	}
	return defaultTenant
}

func (s *Service) Login(ctx context.Context, username, password, tenantHint string) (*Tokens, error) {
	ctx, span := s.tracer.Start(ctx, "session.Service.Login")
	defer span.End()

	tenantID := ResolveTenant(tenantHint, s.defaultTenant)

	ctx, release := tenant.Acquire(ctx, tenantID)
	defer release()

	user, err := s.credentials.Verify(ctx, username, password, tenantID)
	if err != nil {
		if kind := apierror.KindOf(err); kind == apierror.KindInvalidCredentials || kind == apierror.KindPrincipalDisabled {
			s.logger.Security().AuthnLoginFail(tenantID, username)
		}
		return nil, err
	}

	if user == nil {
		return nil, apierror.ErrPrincipalNotFound
	}

	authorities, err := s.authorities.Resolve(ctx, user.Username, tenantID)
	if err != nil {
		return nil, err
	}

	pair, jti, err := s.issue(user.Username, tenantID, authorities)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := types.NewRefreshToken(s.newID(), jti, user.ID, tenantID, now, now.Add(s.refreshTTL))

	if err := s.storage.CreateRefreshToken(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.logger.Security().AuthnLoginSuccess(tenantID, user.Username)

	return pair, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair is issued.
// A refresh token can be exchanged once, any later attempt fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	ctx, span := s.tracer.Start(ctx, "session.Service.Refresh")
	defer span.End()

	claims, err := s.verify(refreshToken)
	if err != nil {
		return nil, err
	}

	ctx, release := tenant.Acquire(ctx, claims.Tenant)
	defer release()

	current, err := s.storage.GetRefreshToken(ctx, claims.JTI, claims.Tenant)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.ErrRefreshRevoked
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	if !current.Active(s.now()) {
		if current.Revoked {
			s.logger.Security().AuthnTokenReuse(claims.Tenant, claims.Subject)
		}
		return nil, apierror.ErrRefreshExpiredOrRevoked
	}

	// authorities are resolved again so role changes apply from this point on
	authorities, err := s.authorities.Resolve(ctx, claims.Subject, claims.Tenant)
	if err != nil {
		return nil, err
	}

	pair, jti, err := s.issue(claims.Subject, claims.Tenant, authorities)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next := types.NewRefreshToken(s.newID(), jti, current.UserID, claims.Tenant, now, now.Add(s.refreshTTL))

	err = s.storage.RotateRefreshToken(ctx, current, next)
	if errors.Is(err, storage.ErrAlreadyRevoked) {
		s.logger.Security().AuthnTokenReuse(claims.Tenant, claims.Subject)
		return nil, apierror.ErrRefreshExpiredOrRevoked
	}

	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return pair, nil
}

// Logout revokes the presented refresh token, unknown or already revoked tokens are not an error
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	ctx, span := s.tracer.Start(ctx, "session.Service.Logout")
	defer span.End()

	claims, err := s.verify(refreshToken)
	if err != nil {
		return err
	}

	ctx, release := tenant.Acquire(ctx, claims.Tenant)
	defer release()

	current, err := s.storage.GetRefreshToken(ctx, claims.JTI, claims.Tenant)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to load refresh token: %w", err)
	}

	if current.Revoked {
		return nil
	}

	if err := s.storage.RevokeRefreshToken(ctx, current); err != nil {
		return err
	}

	s.logger.Security().AuthnTokenRevoked(claims.Tenant, claims.Subject)

	return nil
}

func (s *Service) verify(refreshToken string) (*tokens.Claims, error) {
	if refreshToken == "" {
		return nil, apierror.ErrMissingRefreshToken
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.Tenant == "" {
		return nil, apierror.Wrap(apierror.KindTokenInvalid, errors.New("refresh token carries no tenant"))
	}

	return claims, nil
}

func (s *Service) issue(subject, tenantID string, authorities []string) (*Tokens, string, error) {
	access, err := s.codec.IssueAccess(subject, tenantID, authorities, s.accessTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue access token: %w", err)
	}

	jti := s.newJTI()

	refresh, err := s.codec.IssueRefresh(subject, tenantID, jti, s.refreshTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &Tokens{
		AccessToken:  access,
		AccessTTL:    s.accessTTL,
		RefreshToken: refresh,
		RefreshTTL:   s.refreshTTL,
	}, jti, nil
}

func NewService(
	cfg Config,
	credentials CredentialVerifierInterface,
	authorities AuthorityResolverInterface,
	codec TokenCodecInterface,
	storage StorageInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.credentials = credentials
	s.authorities = authorities
	s.codec = codec
	s.storage = storage

	s.accessTTL = cfg.AccessTTL
	s.refreshTTL = cfg.RefreshTTL
	s.defaultTenant = cfg.DefaultTenant

	s.now = time.Now
	s.newID = ids.New
	s.newJTI = ids.NewTokenID

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
