// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/canonical/tenant-auth/internal/apierror"
)

func TestGetWithoutHolder(t *testing.T) {
	if id := Get(context.Background()); id != "" {
		t.Fatalf("expected empty tenant, got %q", id)
	}

	if _, err := Require(context.Background()); !errors.Is(err, apierror.ErrMissingTenant) {
		t.Fatalf("expected missing tenant error, got %v", err)
	}
}

func TestAcquire(t *testing.T) {
	tests := []struct {
		name   string
		parent func() (context.Context, *Holder)
	}{
		{
			name: "uses the request holder",
			parent: func() (context.Context, *Holder) {
				return NewContext(context.Background())
			},
		},
		{
			name: "attaches a holder when missing",
			parent: func() (context.Context, *Holder) {
				return context.Background(), nil
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			parent, holder := test.parent()

			ctx, release := Acquire(parent, "acme")

			if id, err := Require(ctx); err != nil || id != "acme" {
				t.Fatalf("expected tenant acme, got %q (%v)", id, err)
			}

			if holder != nil && holder.Get() != "acme" {
				t.Fatalf("expected request holder to see acme, got %q", holder.Get())
			}

			release()
			release()

			if id := Get(ctx); id != "" {
				t.Fatalf("expected tenant to be cleared, got %q", id)
			}
		})
	}
}

func TestAcquireNestedRestoresOuterTenant(t *testing.T) {
	ctx, releaseOuter := Acquire(context.Background(), "tenant-a")

	inner, releaseInner := Acquire(ctx, "tenant-b")
	if id := Get(inner); id != "tenant-b" {
		t.Fatalf("expected inner tenant tenant-b, got %q", id)
	}

	releaseInner()
	releaseInner()

	if id := Get(ctx); id != "tenant-a" {
		t.Fatalf("expected outer tenant tenant-a after inner release, got %q", id)
	}

	releaseOuter()

	if id := Get(ctx); id != "" {
		t.Fatalf("expected tenant to be cleared after outer release, got %q", id)
	}
}

func TestAcquireReleasedOnError(t *testing.T) {
	ctx, holder := NewContext(context.Background())

	fail := func() (err error) {
		ctx, release := Acquire(ctx, "acme")
		defer release()

		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("recovered: %v", r)
			}
		}()

		if Get(ctx) != "acme" {
			return errors.New("tenant not set")
		}

		panic("store unavailable")
	}

	if err := fail(); err == nil {
		t.Fatal("expected error")
	}

	if holder.Get() != "" {
		t.Fatalf("expected tenant to be cleared after failure, got %q", holder.Get())
	}
}

func TestHoldersAreRequestLocal(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			ctx, _ := NewContext(context.Background())
			id := fmt.Sprintf("tenant-%d", i)

			ctx, release := Acquire(ctx, id)
			defer release()

			for j := 0; j < 100; j++ {
				if got := Get(ctx); got != id {
					errs <- fmt.Errorf("expected %q, got %q", id, got)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
