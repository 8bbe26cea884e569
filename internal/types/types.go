// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

// User is a tenant-scoped identity, usernames are unique per tenant regardless of case
type User struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Enabled      bool      `db:"enabled" json:"enabled"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Role struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Permission struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RefreshToken is the server-side record of an issued refresh token.
// It is only ever mutated to flip Revoked to true.
type RefreshToken struct {
	ID        string    `db:"id"`
	JTI       string    `db:"jti"`
	UserID    string    `db:"user_id"`
	TenantID  string    `db:"tenant_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
}

// NewRefreshToken builds an active record, the tenant is always explicit
func NewRefreshToken(id, jti, userID, tenantID string, createdAt, expiresAt time.Time) *RefreshToken {
	return &RefreshToken{
		ID:        id,
		JTI:       jti,
		UserID:    userID,
		TenantID:  tenantID,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
}

// Active reports whether the record can still be exchanged at the given instant
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// RoleWithPermissions is the listing view of a role
type RoleWithPermissions struct {
	Role
	Permissions []string `json:"permissions"`
}

// UserWithAuthorities is the listing view of a user
type UserWithAuthorities struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Enabled     bool     `json:"enabled"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}
