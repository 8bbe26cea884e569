// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenant-auth/internal/types"
)

func (s *Storage) CreateRefreshToken(ctx context.Context, t *types.RefreshToken) error {
	ctx, span := s.tracer.Start(ctx, "storage.CreateRefreshToken")
	defer span.End()

	return s.insertRefreshToken(ctx, t)
}

func (s *Storage) insertRefreshToken(ctx context.Context, t *types.RefreshToken) error {
	if t.TenantID == "" {
		return ErrMissingTenant
	}

	_, err := s.db.Statement(ctx).
		Insert("refresh_tokens").
		Columns("id", "jti", "user_id", "tenant_id", "created_at", "expires_at", "revoked").
		Values(t.ID, t.JTI, t.UserID, t.TenantID, t.CreatedAt, t.ExpiresAt, t.Revoked).
		ExecContext(ctx)
	if err != nil {
		return wrapWriteError(err, "insert refresh token")
	}

	return nil
}

// GetRefreshToken looks a record up by jti within the tenant, whatever its revoked state
func (s *Storage) GetRefreshToken(ctx context.Context, jti, tenantID string) (*types.RefreshToken, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetRefreshToken")
	defer span.End()

	t := new(types.RefreshToken)
	err := s.db.Statement(ctx).
		Select("id", "jti", "user_id", "tenant_id", "created_at", "expires_at", "revoked").
		From("refresh_tokens").
		Where(sq.Eq{"jti": jti, "tenant_id": tenantID}).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.JTI, &t.UserID, &t.TenantID, &t.CreatedAt, &t.ExpiresAt, &t.Revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return t, nil
}

// RevokeRefreshToken flips the revoked flag, revoking twice is not an error
func (s *Storage) RevokeRefreshToken(ctx context.Context, t *types.RefreshToken) error {
	ctx, span := s.tracer.Start(ctx, "storage.RevokeRefreshToken")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Update("refresh_tokens").
		Set("revoked", true).
		Where(sq.Eq{"id": t.ID, "tenant_id": t.TenantID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	t.Revoked = true

	return nil
}

// RotateRefreshToken revokes current and persists next in one transaction.
// The revoke only matches a record that is still active, so among concurrent rotations
// of the same record exactly one succeeds and the others get ErrAlreadyRevoked.
func (s *Storage) RotateRefreshToken(ctx context.Context, current, next *types.RefreshToken) error {
	ctx, span := s.tracer.Start(ctx, "storage.RotateRefreshToken")
	defer span.End()

	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		result, err := s.db.Statement(txCtx).
			Update("refresh_tokens").
			Set("revoked", true).
			Where(sq.Eq{"id": current.ID, "tenant_id": current.TenantID, "revoked": false}).
			ExecContext(txCtx)
		if err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}

		if n == 0 {
			return ErrAlreadyRevoked
		}

		return s.insertRefreshToken(txCtx, next)
	})
	if err != nil {
		return err
	}

	current.Revoked = true

	return nil
}

// PurgeRefreshTokensExpiredBefore deletes expired records only, live rows are never touched
func (s *Storage) PurgeRefreshTokensExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.PurgeRefreshTokensExpiredBefore")
	defer span.End()

	result, err := s.db.Statement(ctx).
		Delete("refresh_tokens").
		Where(sq.Lt{"expires_at": cutoff}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge refresh tokens: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return n, nil
}
