// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authority

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/canonical/tenant-auth/internal/apierror"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/storage"
	"github.com/canonical/tenant-auth/internal/tracing"
)

// Resolver turns the role and permission assignments of a user into a flat authority set
type Resolver struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Resolve returns the sorted union of the role names of the user and the permission
// names attached to those roles, all scoped to tenantID
func (r *Resolver) Resolve(ctx context.Context, username, tenantID string) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "authority.Resolver.Resolve")
	defer span.End()

	user, err := r.storage.GetUserByUsername(ctx, tenantID, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.ErrPrincipalNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Enabled {
		return nil, apierror.ErrPrincipalDisabled
	}

	roles, err := r.storage.ListRolesByUserID(ctx, tenantID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	authorities := make([]string, 0, len(roles))

	for _, role := range roles {
		authorities = append(authorities, role.Name)

		permissions, err := r.storage.ListPermissionsByRoleID(ctx, tenantID, role.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load permissions of role %s: %w", role.Name, err)
		}

		for _, p := range permissions {
			authorities = append(authorities, p.Name)
		}
	}

	slices.Sort(authorities)

	return slices.Compact(authorities), nil
}

func NewResolver(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Resolver {
	r := new(Resolver)

	r.storage = storage

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
