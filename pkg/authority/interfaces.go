// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authority

import (
	"context"

	"github.com/canonical/tenant-auth/internal/types"
)

type ResolverInterface interface {
	Resolve(ctx context.Context, username, tenantID string) ([]string, error)
}

// StorageInterface is the read side of the user, role and permission tables
type StorageInterface interface {
	GetUserByUsername(ctx context.Context, tenantID, username string) (*types.User, error)
	ListRolesByUserID(ctx context.Context, tenantID, userID string) ([]*types.Role, error)
	ListPermissionsByRoleID(ctx context.Context, tenantID, roleID string) ([]*types.Permission, error)
}
