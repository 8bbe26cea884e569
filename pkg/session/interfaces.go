// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"time"

	"github.com/canonical/tenant-auth/internal/types"
	"github.com/canonical/tenant-auth/pkg/tokens"
)

type ServiceInterface interface {
	Login(ctx context.Context, username, password, tenantHint string) (*Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

type StorageInterface interface {
	CreateRefreshToken(ctx context.Context, t *types.RefreshToken) error
	GetRefreshToken(ctx context.Context, jti, tenantID string) (*types.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, t *types.RefreshToken) error
	RotateRefreshToken(ctx context.Context, current, next *types.RefreshToken) error
	PurgeRefreshTokensExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type CredentialVerifierInterface interface {
	Verify(ctx context.Context, username, password, tenantID string) (*types.User, error)
}

type AuthorityResolverInterface interface {
	Resolve(ctx context.Context, username, tenantID string) ([]string, error)
}

type TokenCodecInterface interface {
	IssueAccess(subject, tenant string, authorities []string, ttl time.Duration) (string, error)
	IssueRefresh(subject, tenant, jti string, ttl time.Duration) (string, error)
	VerifyRefresh(token string) (*tokens.Claims, error)
}
