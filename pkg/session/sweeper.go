// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"time"

	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/tracing"
)

// Sweeper deletes expired refresh token records
type Sweeper struct {
	storage  StorageInterface
	interval time.Duration
	now      func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Sweep purges every record that expired before now and returns how many were removed
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "session.Sweeper.Sweep")
	defer span.End()

	n, err := s.storage.PurgeRefreshTokensExpiredBefore(ctx, s.now())
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.logger.Infof("purged %d expired refresh tokens", n)
	}

	return n, nil
}

// Run sweeps every interval until ctx is cancelled, a non positive interval disables it
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("refresh token sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Errorf("failed to purge expired refresh tokens: %v", err)
			}
		}
	}
}

func NewSweeper(storage StorageInterface, interval time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Sweeper {
	s := new(Sweeper)

	s.storage = storage
	s.interval = interval
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
