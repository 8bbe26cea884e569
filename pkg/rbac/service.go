// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package rbac

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/canonical/tenant-auth/internal/apierror"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/storage"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/internal/types"
	"github.com/canonical/tenant-auth/pkg/tenant"
)

// DefaultUserRole is attached to every new user when the tenant defines it
const DefaultUserRole = "ROLE_USER"

// Service manages the roles, permissions and users of the tenant bound to the request
type Service struct {
	storage StorageInterface
	hasher  HasherInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) CreatePermission(ctx context.Context, name string) (*types.Permission, error) {
	ctx, span := s.tracer.Start(ctx, "rbac.Service.CreatePermission")
	defer span.End()

	tenantID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.storage.CreatePermission(ctx, &types.Permission{TenantID: tenantID, Name: strings.TrimSpace(name)})
	if err != nil {
		return nil, mapStorageError(err)
	}

	s.logger.Infof("created permission %s in tenant %s", p.Name, tenantID)

	return p, nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]*types.Permission, error) {
	ctx, span := s.tracer.Start(ctx, "rbac.Service.ListPermissions")
	defer span.End()

	tenantID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	permissions, err := s.storage.ListPermissions(ctx, tenantID)
	if err != nil {
		return nil, mapStorageError(err)
	}

	return permissions, nil
}

func (s *Service) DeletePermission(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "rbac.Service.DeletePermission")
	defer span.End()

	tenantID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	if err := validID(id); err != nil {
		return err
	}

	if err := s.storage.DeletePermission(ctx, tenantID, id); err != nil {
		return mapStorageError(err)
	}

	return nil
}

func (s *Service) CreateRole(ctx context.Context, name string) (*types.RoleWithPermissions, error) {
	ctx, span := s.tracer.Start(ctx, "rbac.Service.CreateRole")
	defer span.End()

	tenantID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	role, err := s.storage.CreateRole(ctx, &types.Role{TenantID: tenantID, Name: strings.TrimSpace(name)})
	if err != nil {
		return nil, mapStorageError(err)
	}

	s.logger.Infof("created role %s in tenant %s", role.Name, tenantID)

	return &types.RoleWithPermissions{Role: *role, Permissions: []string{}}, nil
}

// AssignPermissions attaches the named permissions to the role, permissions already attached are kept.
// Every name must exist in the tenant or nothing is attached.
func (s *Service) AssignPermissions(ctx context.Context, id string, permissions []string) (*types.RoleWithPermissions, error) {
	ctx, span := s.tracer.Start(ctx, "rbac.Service.AssignPermissions")
	defer span.End()

	tenantID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	if err := validID(id); err != nil {
		return nil, err
	}

	role, err := s.storage.GetRoleByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapStorageError(err)
	}

	names := normalizeNames(permissions)

	found, err := s.storage.GetPermissionsByNames(ctx, tenantID, names)
	if err != nil {
		return nil, mapStorageError(err)
	}

	ids := make([]string, 0, len(found))
	known := make(map[string]bool, len(found))
	for _, p := range found {
		ids = append(ids, p.ID)
		known[p.Name] = true
	}

	for _, name := range names {
		if !known[name] {
			return nil, apierror.WithDetails(apierror.KindNotFound, map[string]any{"permission": name})
		}
	}

	if err := s.storage.AddRolePermissions(ctx, tenantID, role.ID, ids); err != nil {
		return nil, mapStorageError(err)
	}

	return s.withPermissions(ctx, tenantID, role)
}

func (s *Service) ListRoles(ctx context.Context) ([]*types.RoleWithPermissions, error) {
	ctx, span := s.tracer.Start(ctx, "rbac.Service.ListRoles")
	defer span.End()

	tenantID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := s.storage.ListRoles(ctx, tenantID)
	if err != nil {
		return nil, mapStorageError(err)
	}

	views := make([]*types.RoleWithPermissions, 0, len(roles))
	for _, role := range roles {
		view, err := s.withPermissions(ctx, tenantID, role)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *Service) DeleteRole(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "rbac.Service.DeleteRole")
	defer span.End()

	tenantID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	if err := validID(id); err != nil {
		return err
	}

	if err := s.storage.DeleteRole(ctx, tenantID, id); err != nil {
		return mapStorageError(err)
	}

	return nil
}

// CreateUser stores an enabled user with a bcrypt hash of password and attaches
// DefaultUserRole when the tenant has it
func (s *Service) CreateUser(ctx context.Context, username, password string) (*types.UserWithAuthorities, error) {
	ctx, span := s.tracer.Start(ctx, "rbac.Service.CreateUser")
	defer span.End()

	tenantID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, err)
	}

	user, err := s.storage.CreateUser(ctx, &types.User{
		TenantID:     tenantID,
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Enabled:      true,
	})
	if err != nil {
		return nil, mapStorageError(err)
	}

	role, err := s.storage.GetRoleByName(ctx, tenantID, DefaultUserRole)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.logger.Debugf("tenant %s has no %s, user %s created without roles", tenantID, DefaultUserRole, user.Username)
	case err != nil:
		return nil, mapStorageError(err)
	default:
		if err := s.storage.AddUserRole(ctx, tenantID, user.ID, role.ID); err != nil {
			return nil, mapStorageError(err)
		}
	}

	s.logger.Infof("created user %s in tenant %s", user.Username, tenantID)

	return s.withAuthorities(ctx, tenantID, user)
}

func (s *Service) ListUsers(ctx context.Context) ([]*types.UserWithAuthorities, error) {
	ctx, span := s.tracer.Start(ctx, "rbac.Service.ListUsers")
	defer span.End()

	tenantID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.storage.ListUsers(ctx, tenantID)
	if err != nil {
		return nil, mapStorageError(err)
	}

	views := make([]*types.UserWithAuthorities, 0, len(users))
	for _, user := range users {
		view, err := s.withAuthorities(ctx, tenantID, user)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *Service) withPermissions(ctx context.Context, tenantID string, role *types.Role) (*types.RoleWithPermissions, error) {
	permissions, err := s.storage.ListPermissionsByRoleID(ctx, tenantID, role.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}

	names := make([]string, 0, len(permissions))
	for _, p := range permissions {
		names = append(names, p.Name)
	}
	slices.Sort(names)

	return &types.RoleWithPermissions{Role: *role, Permissions: names}, nil
}

func (s *Service) withAuthorities(ctx context.Context, tenantID string, user *types.User) (*types.UserWithAuthorities, error) {
	roles, err := s.storage.ListRolesByUserID(ctx, tenantID, user.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}

	view := &types.UserWithAuthorities{
		ID:          user.ID,
		Username:    user.Username,
		Enabled:     user.Enabled,
		Roles:       make([]string, 0, len(roles)),
		Permissions: make([]string, 0),
	}

	for _, role := range roles {
		view.Roles = append(view.Roles, role.Name)

		withPermissions, err := s.withPermissions(ctx, tenantID, role)
		if err != nil {
			return nil, err
		}
		view.Permissions = append(view.Permissions, withPermissions.Permissions...)
	}

	slices.Sort(view.Roles)
	slices.Sort(view.Permissions)
	view.Permissions = slices.Compact(view.Permissions)

	return view, nil
}

func normalizeNames(names []string) []string {
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			normalized = append(normalized, name)
		}
	}

	slices.Sort(normalized)
	return slices.Compact(normalized)
}

// validID rejects ids that cannot name a stored row, they are reported as missing
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apierror.WithDetails(apierror.KindNotFound, map[string]any{"id": id})
	}
	return nil
}

// mapStorageError turns storage sentinels into their API kinds
func mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return apierror.Wrap(apierror.KindDuplicateName, err)
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrForeignKeyViolation):
		return apierror.Wrap(apierror.KindNotFound, err)
	case errors.Is(err, storage.ErrMissingTenant):
		return apierror.Wrap(apierror.KindMissingTenant, err)
	default:
		return fmt.Errorf("storage failure: %w", err)
	}
}

func NewService(storage StorageInterface, hasher HasherInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.storage = storage
	s.hasher = hasher

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
