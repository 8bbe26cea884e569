// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-auth/internal/apierror"
	"github.com/canonical/tenant-auth/internal/db"
	"github.com/canonical/tenant-auth/internal/http/types"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/internal/validation"
	"github.com/canonical/tenant-auth/pkg/authentication"
)

const (
	PermPermissionCreate = "PERM_PERMISSION_CREATE"
	PermPermissionView   = "PERM_PERMISSION_VIEW"
	PermPermissionDelete = "PERM_PERMISSION_DELETE"
	PermRoleCreate       = "PERM_ROLE_CREATE"
	PermRoleView         = "PERM_ROLE_VIEW"
	PermRoleDelete       = "PERM_ROLE_DELETE"
	PermUserCreate       = "PERM_USER_CREATE"
	PermUserView         = "PERM_USER_VIEW"
)

type CreatePermissionRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateRoleRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AssignPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1,dive,required"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Password string `json:"password" validate:"required,min=6,max=120"`
}

type API struct {
	service   ServiceInterface
	validator *validation.Validator
	tx        func(http.Handler) http.Handler

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Route("/api/permissions", func(r chi.Router) {
		r.Use(a.tx)
		r.With(a.require(PermPermissionCreate)).Post("/", a.createPermission)
		r.With(a.require(PermPermissionView)).Get("/", a.listPermissions)
		r.With(a.require(PermPermissionDelete)).Delete("/{id}", a.deletePermission)
	})

	mux.Route("/api/roles", func(r chi.Router) {
		r.Use(a.tx)
		r.With(a.require(PermRoleCreate)).Post("/", a.createRole)
		r.With(a.require(PermRoleCreate)).Post("/{id}/permissions", a.assignPermissions)
		r.With(a.require(PermRoleView)).Get("/", a.listRoles)
		r.With(a.require(PermRoleDelete)).Delete("/{id}", a.deleteRole)
	})

	mux.Route("/api/users", func(r chi.Router) {
		r.Use(a.tx)
		r.With(a.require(PermUserCreate)).Post("/", a.createUser)
		r.With(a.require(PermUserView)).Get("/", a.listUsers)
	})
}

func (a *API) require(authority string) func(http.Handler) http.Handler {
	return authentication.RequireAuthority(authority, a.logger)
}

func (a *API) createPermission(w http.ResponseWriter, r *http.Request) {
	req := new(CreatePermissionRequest)
	if err := a.validator.DecodeJSON(r, req); err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	permission, err := a.service.CreatePermission(r.Context(), req.Name)
	a.respond(w, http.StatusCreated, permission, err)
}

func (a *API) listPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := a.service.ListPermissions(r.Context())
	a.respond(w, http.StatusOK, permissions, err)
}

func (a *API) deletePermission(w http.ResponseWriter, r *http.Request) {
	a.respondEmpty(w, a.service.DeletePermission(r.Context(), chi.URLParam(r, "id")))
}

func (a *API) createRole(w http.ResponseWriter, r *http.Request) {
	req := new(CreateRoleRequest)
	if err := a.validator.DecodeJSON(r, req); err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	role, err := a.service.CreateRole(r.Context(), req.Name)
	a.respond(w, http.StatusCreated, role, err)
}

func (a *API) assignPermissions(w http.ResponseWriter, r *http.Request) {
	req := new(AssignPermissionsRequest)
	if err := a.validator.DecodeJSON(r, req); err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	role, err := a.service.AssignPermissions(r.Context(), chi.URLParam(r, "id"), req.Permissions)
	a.respond(w, http.StatusOK, role, err)
}

func (a *API) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := a.service.ListRoles(r.Context())
	a.respond(w, http.StatusOK, roles, err)
}

func (a *API) deleteRole(w http.ResponseWriter, r *http.Request) {
	a.respondEmpty(w, a.service.DeleteRole(r.Context(), chi.URLParam(r, "id")))
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	req := new(CreateUserRequest)
	if err := a.validator.DecodeJSON(r, req); err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	user, err := a.service.CreateUser(r.Context(), req.Username, req.Password)
	a.respond(w, http.StatusCreated, user, err)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.service.ListUsers(r.Context())
	a.respond(w, http.StatusOK, users, err)
}

func (a *API) respond(w http.ResponseWriter, status int, body interface{}, err error) {
	if err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	if err := types.WriteJSON(w, status, body); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func (a *API) respondEmpty(w http.ResponseWriter, err error) {
	if err != nil {
		apierror.Write(w, err, a.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NewAPI wires the RBAC routes, a nil dbClient leaves requests outside of transactions
func NewAPI(service ServiceInterface, dbClient db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service
	a.validator = validation.NewValidator()

	a.tx = func(next http.Handler) http.Handler { return next }
	if dbClient != nil {
		a.tx = db.TransactionMiddleware(dbClient, logger)
	}

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
