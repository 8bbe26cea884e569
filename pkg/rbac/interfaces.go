// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package rbac

import (
	"context"

	"github.com/canonical/tenant-auth/internal/types"
)

type ServiceInterface interface {
	CreatePermission(ctx context.Context, name string) (*types.Permission, error)
	ListPermissions(ctx context.Context) ([]*types.Permission, error)
	DeletePermission(ctx context.Context, id string) error

	CreateRole(ctx context.Context, name string) (*types.RoleWithPermissions, error)
	AssignPermissions(ctx context.Context, roleID string, permissions []string) (*types.RoleWithPermissions, error)
	ListRoles(ctx context.Context) ([]*types.RoleWithPermissions, error)
	DeleteRole(ctx context.Context, id string) error

	CreateUser(ctx context.Context, username, password string) (*types.UserWithAuthorities, error)
	ListUsers(ctx context.Context) ([]*types.UserWithAuthorities, error)
}

type StorageInterface interface {
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
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
}

type HasherInterface interface {
	Hash(password string) (string, error)
}
