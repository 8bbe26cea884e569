// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/internal/types"
)

func newTestSweeper(store StorageInterface, interval time.Duration) *Sweeper {
	logger := logging.NewNoopLogger()
	s := NewSweeper(store, interval, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
	s.now = func() time.Time { return testNow }
	return s
}

func TestSweeper_Sweep(t *testing.T) {
	tests := []struct {
		name          string
		purged        int64
		err           error
		expectedCount int64
	}{
		{name: "purges expired records", purged: 3, expectedCount: 3},
		{name: "nothing to purge", purged: 0, expectedCount: 0},
		{name: "storage failure", err: errors.New("connection reset")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStorageInterface(ctrl)
			store.EXPECT().PurgeRefreshTokensExpiredBefore(gomock.Any(), testNow).Return(test.purged, test.err)

			n, err := newTestSweeper(store, time.Hour).Sweep(context.Background())

			if (err != nil) != (test.err != nil) {
				t.Fatalf("expected error %v, got %v", test.err, err)
			}

			if n != test.expectedCount {
				t.Fatalf("expected %d purged, got %d", test.expectedCount, n)
			}
		})
	}
}

func TestSweeper_SweepKeepsLiveRecords(t *testing.T) {
	store := newMemoryStore()

	_ = store.CreateRefreshToken(context.Background(), newRecord("jti-expired", testNow.Add(-time.Minute)))
	_ = store.CreateRefreshToken(context.Background(), newRecord("jti-live", testNow.Add(time.Minute)))

	n, err := newTestSweeper(store, time.Hour).Sweep(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("expected one record purged, got %d (%v)", n, err)
	}

	if _, err := store.GetRefreshToken(context.Background(), "jti-live", "default"); err != nil {
		t.Fatalf("expected live record to survive, got %v", err)
	}
}

func TestSweeper_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	swept := make(chan struct{}, 10)

	store := NewMockStorageInterface(ctrl)
	store.EXPECT().PurgeRefreshTokensExpiredBefore(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, time.Time) (int64, error) {
			swept <- struct{}{}
			return 0, nil
		},
	).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		newTestSweeper(store, 5*time.Millisecond).Run(ctx)
		close(done)
	}()

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("sweeper never ran")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancellation")
	}
}

func TestSweeper_RunDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	done := make(chan struct{})
	go func() {
		newTestSweeper(NewMockStorageInterface(ctrl), 0).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled sweeper should return immediately")
	}
}

func newRecord(jti string, expiresAt time.Time) *types.RefreshToken {
	return types.NewRefreshToken("rt-"+jti, jti, "u-1", "default", testNow.Add(-time.Hour), expiresAt)
}
