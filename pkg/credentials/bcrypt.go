// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package credentials checks usernames and passwords against the stored bcrypt hashes.
package credentials

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/tenant-auth/internal/apierror"
	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/storage"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/internal/types"
)

type Hasher struct {
	cost int
}

func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// NewHasher returns a bcrypt hasher, out of range costs fall back to bcrypt.DefaultCost
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Verifier authenticates a username and password within a tenant
type Verifier struct {
	storage StorageInterface

	// compared against when the user does not exist so both failure paths cost one bcrypt run
	dummyHash []byte

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Verify returns the user owning the credentials.
// Unknown users and wrong passwords are indistinguishable, a disabled user is only
// reported once the password matched.
func (v *Verifier) Verify(ctx context.Context, username, password, tenantID string) (*types.User, error) {
	ctx, span := v.tracer.Start(ctx, "credentials.Verifier.Verify")
	defer span.End()

	user, err := v.storage.GetUserByUsername(ctx, tenantID, username)

	if errors.Is(err, storage.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
		return nil, apierror.ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			v.logger.Errorf("stored password hash of user %s is unusable: %v", user.ID, err)
		}
		return nil, apierror.ErrInvalidCredentials
	}

	if !user.Enabled {
		return nil, apierror.ErrPrincipalDisabled
	}

	return user, nil
}

func NewVerifier(storage StorageInterface, hasher HasherInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Verifier, error) {
	v := new(Verifier)

	v.storage = storage

	v.tracer = tracer
	v.monitor = monitor
	v.logger = logger

	dummy := make([]byte, 32)
	if _, err := rand.Read(dummy); err != nil {
		return nil, fmt.Errorf("failed to seed dummy password: %w", err)
	}

	hash, err := hasher.Hash(fmt.Sprintf("%x", dummy))
	if err != nil {
		return nil, err
	}

	v.dummyHash = []byte(hash)

	return v, nil
}
