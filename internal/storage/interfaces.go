// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/tenant-auth/internal/types"
)

// StorageInterface is the tenant partitioned persistence layer, every lookup takes the tenant explicitly
type StorageInterface interface {
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByUsername(ctx context.Context, tenantID, username string) (*types.User, error)
	ListUsers(ctx context.Context, tenantID string) ([]*types.User, error)
	AddUserRole(ctx context.Context, tenantID, userID, roleID string) error

	CreateRole(ctx context.Context, r *types.Role) (*types.Role, error)
	GetRoleByID(ctx context.Context, tenantID, id string) (*types.Role, error)
	GetRoleByName(ctx context.Context, tenantID, name string) (*types.Role, error)
	ListRoles(ctx context.Context, tenantID string) ([]*types.Role, error)
	ListRolesByUserID(ctx context.Context, tenantID, userID string) ([]*types.Role, error)
	DeleteRole(ctx context.Context, tenantID, id string) error
	AddRolePermissions(ctx context.Context, tenantID, roleID string, permissionIDs []string) error

	CreatePermission(ctx context.Context, p *types.Permission) (*types.Permission, error)
	GetPermissionsByNames(ctx context.Context, tenantID string, names []string) ([]*types.Permission, error)
	ListPermissions(ctx context.Context, tenantID string) ([]*types.Permission, error)
	ListPermissionsByRoleID(ctx context.Context, tenantID, roleID string) ([]*types.Permission, error)
	DeletePermission(ctx context.Context, tenantID, id string) error

	CreateRefreshToken(ctx context.Context, t *types.RefreshToken) error
	GetRefreshToken(ctx context.Context, jti, tenantID string) (*types.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, t *types.RefreshToken) error
	RotateRefreshToken(ctx context.Context, current, next *types.RefreshToken) error
	PurgeRefreshTokensExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
