// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tokens

import (
	"time"
)

type Kind int

const (
	KindAccess Kind = iota + 1
	KindRefresh
)

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Claims is the verified content of a token.
// Access tokens carry Authorities, refresh tokens carry JTI, never both.
type Claims struct {
	Kind        Kind      `json:"kind"`
	Subject     string    `json:"sub"`
	Tenant      string    `json:"tenant,omitempty"`
	Authorities []string  `json:"authorities,omitempty"`
	JTI         string    `json:"jti,omitempty"`
	IssuedAt    time.Time `json:"iat"`
	ExpiresAt   time.Time `json:"exp"`
}
