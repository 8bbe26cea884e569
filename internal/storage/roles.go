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

func scanRole(row sq.RowScanner) (*types.Role, error) {
	r := new(types.Role)
	if err := row.Scan(&r.ID, &r.TenantID, &r.Name, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Storage) CreateRole(ctx context.Context, r *types.Role) (*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateRole")
	defer span.End()

	if r.TenantID == "" {
		return nil, ErrMissingTenant
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}

	created, err := scanRole(
		s.db.Statement(ctx).
			Insert("roles").
			Columns("id", "tenant_id", "name").
			Values(id, r.TenantID, r.Name).
			Suffix("RETURNING id, tenant_id, name, created_at").
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "insert role")
	}

	return created, nil
}

func (s *Storage) GetRoleByID(ctx context.Context, tenantID, id string) (*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetRoleByID")
	defer span.End()

	return s.getRole(ctx, sq.Eq{"tenant_id": tenantID, "id": id})
}

func (s *Storage) GetRoleByName(ctx context.Context, tenantID, name string) (*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetRoleByName")
	defer span.End()

	return s.getRole(ctx, sq.Eq{"tenant_id": tenantID, "name": name})
}

func (s *Storage) getRole(ctx context.Context, where sq.Eq) (*types.Role, error) {
	r, err := scanRole(
		s.db.Statement(ctx).
			Select("id", "tenant_id", "name", "created_at").
			From("roles").
			Where(where).
			QueryRowContext(ctx),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapLookupError(err, "get role")
	}

	return r, nil
}

func (s *Storage) ListRoles(ctx context.Context, tenantID string) ([]*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListRoles")
	defer span.End()

	return s.listRoles(
		ctx,
		s.db.Statement(ctx).
			Select("id", "tenant_id", "name", "created_at").
			From("roles").
			Where(tenantScope(tenantID)).
			OrderBy("name"),
	)
}

func (s *Storage) ListRolesByUserID(ctx context.Context, tenantID, userID string) ([]*types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListRolesByUserID")
	defer span.End()

	return s.listRoles(
		ctx,
		s.db.Statement(ctx).
			Select("r.id", "r.tenant_id", "r.name", "r.created_at").
			From("roles r").
			Join("user_roles ur ON ur.role_id = r.id").
			Where(sq.Eq{"ur.user_id": userID, "ur.tenant_id": tenantID, "r.tenant_id": tenantID}).
			OrderBy("r.name"),
	)
}

func (s *Storage) listRoles(ctx context.Context, query sq.SelectBuilder) ([]*types.Role, error) {
	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]*types.Role, 0)
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}

	return roles, nil
}

// DeleteRole removes the role and, through cascading keys, its assignments
func (s *Storage) DeleteRole(ctx context.Context, tenantID, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteRole")
	defer span.End()

	result, err := s.db.Statement(ctx).
		Delete("roles").
		Where(sq.Eq{"tenant_id": tenantID, "id": id}).
		ExecContext(ctx)
	if err != nil {
		return wrapLookupError(err, "delete role")
	}

	return expectAffected(result)
}

// AddRolePermissions attaches permissions to a role keeping existing assignments
func (s *Storage) AddRolePermissions(ctx context.Context, tenantID, roleID string, permissionIDs []string) error {
	ctx, span := s.tracer.Start(ctx, "storage.AddRolePermissions")
	defer span.End()

	if tenantID == "" {
		return ErrMissingTenant
	}

	if len(permissionIDs) == 0 {
		return nil
	}

	query := s.db.Statement(ctx).
		Insert("role_permissions").
		Columns("role_id", "permission_id", "tenant_id")

	for _, permissionID := range permissionIDs {
		query = query.Values(roleID, permissionID, tenantID)
	}

	if _, err := query.Suffix("ON CONFLICT DO NOTHING").ExecContext(ctx); err != nil {
		return wrapWriteError(err, "assign permissions")
	}

	return nil
}

func expectAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}
