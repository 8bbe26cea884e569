// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package tenant carries the tenant of the request being served.
// Every request gets its own Holder, attached to the request context by the boundary
// middleware, so concurrent requests never observe each other's tenant.
package tenant

import (
	"context"
	"sync"

	"github.com/canonical/tenant-auth/internal/apierror"
)

type contextKey struct{}

var holderContextKey = contextKey{}

// Holder is a request scoped tenant cell
type Holder struct {
	mu sync.RWMutex
	id string
}

func (h *Holder) Set(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.id = id
}

// Get returns the current tenant or an empty string when none is set
func (h *Holder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.id
}

func (h *Holder) Clear() {
	h.Set("")
}

// NewContext returns a child context carrying a fresh, empty Holder
func NewContext(ctx context.Context) (context.Context, *Holder) {
	h := new(Holder)
	return context.WithValue(ctx, holderContextKey, h), h
}

// FromContext returns the Holder carried by ctx, nil when there is none
func FromContext(ctx context.Context) *Holder {
	h, _ := ctx.Value(holderContextKey).(*Holder)
	return h
}

// Get returns the tenant set on ctx, empty when nothing is set
func Get(ctx context.Context) string {
	if h := FromContext(ctx); h != nil {
		return h.Get()
	}
	return ""
}

// Require returns the tenant set on ctx or a MISSING_TENANT error, it never defaults
func Require(ctx context.Context) (string, error) {
	id := Get(ctx)
	if id == "" {
		return "", apierror.ErrMissingTenant
	}
	return id, nil
}

// Acquire sets id as the tenant of ctx until release is called.
// When ctx carries no Holder one is attached to the returned context.
// release puts back the tenant that was set before, so nested acquisitions unwind
// to the outer one. It is idempotent and must be deferred by the caller:
//
//	ctx, release := tenant.Acquire(ctx, id)
//	defer release()
func Acquire(ctx context.Context, id string) (context.Context, func()) {
	h := FromContext(ctx)
	if h == nil {
		ctx, h = NewContext(ctx)
	}

	previous := h.Get()
	h.Set(id)

	var once sync.Once
	return ctx, func() {
		once.Do(func() { h.Set(previous) })
	}
}
