// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerTicks(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(200, func(time.Time) { ticks.Add(1) })

	s.Start(context.Background())
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("got %d ticks, want at least 3", ticks.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSchedulerStopIsSynchronous(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(500, func(time.Time) { ticks.Add(1) })

	s.Start(context.Background())
	for ticks.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	s.Stop()

	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Errorf("ticks after Stop: %d -> %d", after, got)
	}
	if s.Running() {
		t.Error("Running() true after Stop")
	}
}

func TestSchedulerIdempotentStartStop(t *testing.T) {
	s := NewScheduler(100, func(time.Time) {})

	s.Stop() // never started
	s.Start(context.Background())
	s.Start(context.Background())
	if !s.Running() {
		t.Fatal("scheduler should be running")
	}
	s.Stop()
	s.Stop()
	if s.Running() {
		t.Fatal("scheduler should be stopped")
	}

	// Restartable after Stop.
	var ticks atomic.Int64
	s2 := NewScheduler(500, func(time.Time) { ticks.Add(1) })
	s2.Start(context.Background())
	for ticks.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	s2.Stop()
	n := ticks.Load()
	s2.Start(context.Background())
	defer s2.Stop()
	deadline := time.After(2 * time.Second)
	for ticks.Load() == n {
		select {
		case <-deadline:
			t.Fatal("scheduler did not tick after restart")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSchedulerContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int64
	s := NewScheduler(500, func(time.Time) { ticks.Add(1) })

	s.Start(ctx)
	for ticks.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	time.Sleep(20 * time.Millisecond)
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Errorf("ticks after cancel: %d -> %d", after, got)
	}
	s.Stop()
}

func TestSchedulerSetTargetFPS(t *testing.T) {
	s := NewScheduler(60, func(time.Time) {})
	if got := s.TargetFPS(); got != 60 {
		t.Errorf("TargetFPS = %d, want 60", got)
	}
	s.SetTargetFPS(30)
	if got := s.TargetFPS(); got != 30 {
		t.Errorf("TargetFPS = %d, want 30", got)
	}
	s.SetTargetFPS(0) // clamped
	if got := s.TargetFPS(); got != 1 {
		t.Errorf("TargetFPS = %d, want 1", got)
	}
}
