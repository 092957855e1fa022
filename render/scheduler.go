// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler drives a render callback at a target frame rate using a
// monotonic ticker. When the callback overruns its frame budget, pending
// ticks are dropped rather than queued, so a slow frame never causes a
// burst of catch-up frames.
//
// Start and Stop are explicit; the zero frame callback is never invoked
// after Stop returns.
type Scheduler struct {
	mu      sync.Mutex
	tick    func(now time.Time)
	nanos   atomic.Int64 // frame interval
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScheduler creates a stopped scheduler. targetFPS values below 1 are
// treated as 1.
func NewScheduler(targetFPS int, tick func(now time.Time)) *Scheduler {
	s := &Scheduler{tick: tick}
	s.SetTargetFPS(targetFPS)
	return s
}

// SetTargetFPS changes the frame interval. The running loop picks up the
// new interval on its next tick.
func (s *Scheduler) SetTargetFPS(fps int) {
	if fps < 1 {
		fps = 1
	}
	s.nanos.Store(int64(time.Second) / int64(fps))
}

// TargetFPS returns the current target frame rate.
func (s *Scheduler) TargetFPS() int {
	return int(int64(time.Second) / s.nanos.Load())
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the frame loop. Starting an already-running scheduler is
// a no-op. The loop exits when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(ctx, s.done)
}

// Stop halts the loop and waits for the in-flight frame, if any, to
// finish. Idempotent; safe to call on a never-started scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	interval := time.Duration(s.nanos.Load())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if next := time.Duration(s.nanos.Load()); next != interval {
				interval = next
				ticker.Reset(interval)
			}
			s.tick(now)
		}
	}
}
