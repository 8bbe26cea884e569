// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenant-auth/internal/types"
)

var userColumns = []string{"id", "tenant_id", "username", "password_hash", "enabled", "created_at"}

func scanUser(row sq.RowScanner) (*types.User, error) {
	u := new(types.User)
	if err := row.Scan(&u.ID, &u.TenantID, &u.Username, &u.PasswordHash, &u.Enabled, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *types.User) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateUser")
	defer span.End()

	if u.TenantID == "" {
		return nil, ErrMissingTenant
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}

	created, err := scanUser(
		s.db.Statement(ctx).
			Insert("users").
			Columns("id", "tenant_id", "username", "password_hash", "enabled").
			Values(id, u.TenantID, u.Username, u.PasswordHash, u.Enabled).
			Suffix("RETURNING id, tenant_id, username, password_hash, enabled, created_at").
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "insert user")
	}

	return created, nil
}

// GetUserByUsername matches the username case-insensitively within the tenant
func (s *Storage) GetUserByUsername(ctx context.Context, tenantID, username string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByUsername")
	defer span.End()

	u, err := scanUser(
		s.db.Statement(ctx).
			Select(userColumns...).
			From("users").
			Where(tenantScope(tenantID)).
			Where("lower(username) = lower(?)", username).
			QueryRowContext(ctx),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context, tenantID string) ([]*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListUsers")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(userColumns...).
		From("users").
		Where(tenantScope(tenantID)).
		OrderBy("username").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*types.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// AddUserRole is a no-op when the assignment already exists
func (s *Storage) AddUserRole(ctx context.Context, tenantID, userID, roleID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.AddUserRole")
	defer span.End()

	if tenantID == "" {
		return ErrMissingTenant
	}

	_, err := s.db.Statement(ctx).
		Insert("user_roles").
		Columns("user_id", "role_id", "tenant_id").
		Values(userID, roleID, tenantID).
		Suffix("ON CONFLICT DO NOTHING").
		ExecContext(ctx)
	if err != nil {
		return wrapWriteError(err, "assign role")
	}

	return nil
}
