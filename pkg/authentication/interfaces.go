// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/canonical/tenant-auth/internal/types"
	"github.com/canonical/tenant-auth/pkg/tokens"
)

type TokenVerifierInterface interface {
	// VerifyAccess verifies signature and expiry of an access token and returns its claims
	VerifyAccess(token string) (*tokens.Claims, error)
}

type StorageInterface interface {
	GetUserByUsername(ctx context.Context, tenantID, username string) (*types.User, error)
}
