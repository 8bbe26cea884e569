// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultMaxKeys = 10000

type bucket struct {
	key      string
	limiter  *rate.Limiter
	lastSeen time.Time
	element  *list.Element
}

// MemoryLimiter is a per key token bucket kept in process memory, it refills limit tokens per window.
// At most maxKeys buckets are kept, the least recently seen one is evicted first.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	order   *list.List // least recently seen at the front

	limit   int
	window  time.Duration
	maxKeys int
	now     func() time.Time
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	if m.limit <= 0 {
		return Decision{Allowed: true}, nil
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if ok {
		m.order.MoveToBack(b.element)
	} else {
		m.evict(now)

		b = &bucket{key: key, limiter: rate.NewLimiter(rate.Every(m.window/time.Duration(m.limit)), m.limit)}
		b.element = m.order.PushBack(b)
		m.buckets[key] = b
	}

	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	resetAt := now
	if tokens < 1 {
		resetAt = now.Add(time.Duration((1 - tokens) * float64(m.window) / float64(m.limit)))
	}

	return Decision{
		Allowed:   allowed,
		Limit:     m.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// evict makes room for one more bucket. Buckets idle for a whole window are full again
// and dropped first, then the least recently seen ones while the limiter is at capacity.
func (m *MemoryLimiter) evict(now time.Time) {
	for front := m.order.Front(); front != nil; front = m.order.Front() {
		b, _ := front.Value.(*bucket)
		if now.Sub(b.lastSeen) <= m.window && len(m.buckets) < m.maxKeys {
			return
		}

		m.order.Remove(front)
		delete(m.buckets, b.key)
	}
}

func NewMemoryLimiter(limit int, window time.Duration, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}

	if window <= 0 {
		window = time.Minute
	}

	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		order:   list.New(),
		limit:   limit,
		window:  window,
		maxKeys: defaultMaxKeys,
		now:     now,
	}
}
