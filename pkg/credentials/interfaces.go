// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package credentials

import (
	"context"

	"github.com/canonical/tenant-auth/internal/types"
)

type VerifierInterface interface {
	Verify(ctx context.Context, username, password, tenantID string) (*types.User, error)
}

type HasherInterface interface {
	Hash(password string) (string, error)
}

type StorageInterface interface {
	GetUserByUsername(ctx context.Context, tenantID, username string) (*types.User, error)
}
