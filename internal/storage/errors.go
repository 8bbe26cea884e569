// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrMissingTenant       = errors.New("tenant id is required")
	// ErrAlreadyRevoked is returned when a rotation loses the race on the revoked flag
	ErrAlreadyRevoked = errors.New("refresh token already revoked")
)

// PostgreSQL error codes
const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
	pgErrCodeInvalidText         = "22P02"
)

// IsDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCodeUniqueViolation
	}
	return false
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCodeForeignKeyViolation
	}
	return false
}

// IsInvalidTextRepresentation checks if the error is a PostgreSQL cast failure, such as a malformed uuid.
func IsInvalidTextRepresentation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCodeInvalidText
	}
	return false
}

// wrapLookupError reports rows addressed by a malformed id as missing
func wrapLookupError(err error, context string) error {
	if IsInvalidTextRepresentation(err) {
		return fmt.Errorf("%s: %w", context, ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", context, err)
}

// wrapWriteError maps constraint violations to sentinels and wraps anything else
func wrapWriteError(err error, context string) error {
	switch {
	case IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", context, ErrDuplicateKey)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", context, ErrForeignKeyViolation)
	default:
		return fmt.Errorf("failed to %s: %w", context, err)
	}
}
