// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package apierror defines the single error type surfaced by the authentication core.
// Each Kind maps to a stable machine readable code, an HTTP status and a gRPC code,
// the mapping happens once at the transport boundary.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

type Kind string

const (
	KindInvalidCredentials      Kind = "INVALID_CREDENTIALS"
	KindPrincipalNotFound       Kind = "USER_NOT_FOUND"
	KindPrincipalDisabled       Kind = "USER_DISABLED"
	KindTokenInvalid            Kind = "TOKEN_INVALID"
	KindMissingRefreshToken     Kind = "NO_REFRESH_COOKIE"
	KindRefreshRevoked          Kind = "REFRESH_REVOKED"
	KindRefreshExpiredOrRevoked Kind = "REFRESH_EXPIRED_OR_REVOKED"
	KindMissingTenant           Kind = "MISSING_TENANT"
	KindDuplicateName           Kind = "DUPLICATE_NAME"
	KindNotFound                Kind = "NOT_FOUND"
	KindValidation              Kind = "VALIDATION_ERROR"
	KindUnauthorized            Kind = "UNAUTHORIZED"
	KindForbidden               Kind = "FORBIDDEN"
	KindRateLimited             Kind = "RATE_LIMITED"
	KindInternal                Kind = "INTERNAL_ERROR"
)

var (
	ErrInvalidCredentials      = New(KindInvalidCredentials)
	ErrPrincipalNotFound       = New(KindPrincipalNotFound)
	ErrPrincipalDisabled       = New(KindPrincipalDisabled)
	ErrTokenInvalid            = New(KindTokenInvalid)
	ErrMissingRefreshToken     = New(KindMissingRefreshToken)
	ErrRefreshRevoked          = New(KindRefreshRevoked)
	ErrRefreshExpiredOrRevoked = New(KindRefreshExpiredOrRevoked)
	ErrMissingTenant           = New(KindMissingTenant)
	ErrDuplicateName           = New(KindDuplicateName)
	ErrNotFound                = New(KindNotFound)
	ErrUnauthorized            = New(KindUnauthorized)
	ErrForbidden               = New(KindForbidden)
	ErrRateLimited             = New(KindRateLimited)
)

// Error is a tagged error, Err keeps the underlying cause for logs and is never rendered
type Error struct {
	Kind    Kind
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrTokenInvalid) holds for wrapped causes
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Status() int {
	return Status(e.Kind)
}

func (e *Error) Message() string {
	return message(e.Kind)
}

func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func WithDetails(kind Kind, details map[string]any) *Error {
	return &Error{Kind: kind, Details: details}
}

// From returns the tagged error carried by err, anything else becomes an internal error
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(KindInternal, err)
}

// KindOf is a shortcut for From(err).Kind
func KindOf(err error) Kind {
	return From(err).Kind
}

func Status(kind Kind) int {
	switch kind {
	case KindInvalidCredentials, KindPrincipalDisabled, KindTokenInvalid, KindUnauthorized:
		return http.StatusUnauthorized
	case KindPrincipalNotFound, KindMissingRefreshToken, KindRefreshRevoked, KindRefreshExpiredOrRevoked, KindMissingTenant, KindValidation:
		return http.StatusBadRequest
	case KindDuplicateName:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Code(kind Kind) codes.Code {
	switch kind {
	case KindInvalidCredentials, KindPrincipalDisabled, KindTokenInvalid, KindUnauthorized:
		return codes.Unauthenticated
	case KindPrincipalNotFound, KindMissingRefreshToken, KindMissingTenant, KindValidation:
		return codes.InvalidArgument
	case KindRefreshRevoked, KindRefreshExpiredOrRevoked:
		return codes.FailedPrecondition
	case KindDuplicateName:
		return codes.AlreadyExists
	case KindNotFound:
		return codes.NotFound
	case KindForbidden:
		return codes.PermissionDenied
	case KindRateLimited:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

func message(kind Kind) string {
	switch kind {
	case KindInvalidCredentials:
		return "invalid username or password"
	case KindPrincipalNotFound:
		return "user not found"
	case KindPrincipalDisabled:
		return "user is disabled"
	case KindTokenInvalid:
		return "token is invalid or expired"
	case KindMissingRefreshToken:
		return "refresh token cookie is missing"
	case KindRefreshRevoked:
		return "refresh token is not recognised"
	case KindRefreshExpiredOrRevoked:
		return "refresh token is expired or revoked"
	case KindMissingTenant:
		return "tenant is required"
	case KindDuplicateName:
		return "name already exists in tenant"
	case KindNotFound:
		return "resource not found"
	case KindValidation:
		return "request validation failed"
	case KindUnauthorized:
		return "authentication required"
	case KindForbidden:
		return "access denied"
	case KindRateLimited:
		return "too many requests"
	default:
		return "internal server error"
	}
}
