// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenant-auth/internal/types"
)

func scanPermission(row sq.RowScanner) (*types.Permission, error) {
	p := new(types.Permission)
	if err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Storage) CreatePermission(ctx context.Context, p *types.Permission) (*types.Permission, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreatePermission")
	defer span.End()

	if p.TenantID == "" {
		return nil, ErrMissingTenant
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}

	created, err := scanPermission(
		s.db.Statement(ctx).
			Insert("permissions").
			Columns("id", "tenant_id", "name").
			Values(id, p.TenantID, p.Name).
			Suffix("RETURNING id, tenant_id, name, created_at").
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "insert permission")
	}

	return created, nil
}

func (s *Storage) GetPermissionsByNames(ctx context.Context, tenantID string, names []string) ([]*types.Permission, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetPermissionsByNames")
	defer span.End()

	if len(names) == 0 {
		return []*types.Permission{}, nil
	}

	return s.listPermissions(
		ctx,
		s.db.Statement(ctx).
			Select("id", "tenant_id", "name", "created_at").
			From("permissions").
			Where(sq.Eq{"tenant_id": tenantID, "name": names}).
			OrderBy("name"),
	)
}

func (s *Storage) ListPermissions(ctx context.Context, tenantID string) ([]*types.Permission, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListPermissions")
	defer span.End()

	return s.listPermissions(
		ctx,
		s.db.Statement(ctx).
			Select("id", "tenant_id", "name", "created_at").
			From("permissions").
			Where(tenantScope(tenantID)).
			OrderBy("name"),
	)
}

func (s *Storage) ListPermissionsByRoleID(ctx context.Context, tenantID, roleID string) ([]*types.Permission, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListPermissionsByRoleID")
	defer span.End()

	return s.listPermissions(
		ctx,
		s.db.Statement(ctx).
			Select("p.id", "p.tenant_id", "p.name", "p.created_at").
			From("permissions p").
			Join("role_permissions rp ON rp.permission_id = p.id").
			Where(sq.Eq{"rp.role_id": roleID, "rp.tenant_id": tenantID, "p.tenant_id": tenantID}).
			OrderBy("p.name"),
	)
}

func (s *Storage) listPermissions(ctx context.Context, query sq.SelectBuilder) ([]*types.Permission, error) {
	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]*types.Permission, 0)
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		permissions = append(permissions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating permission rows: %w", err)
	}

	return permissions, nil
}

func (s *Storage) DeletePermission(ctx context.Context, tenantID, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeletePermission")
	defer span.End()

	result, err := s.db.Statement(ctx).
		Delete("permissions").
		Where(sq.Eq{"tenant_id": tenantID, "id": id}).
		ExecContext(ctx)
	if err != nil {
		return wrapLookupError(err, "delete permission")
	}

	return expectAffected(result)
}
