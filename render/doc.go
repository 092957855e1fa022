// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the per-tick render engine of the camstudio core.
//
// The engine uploads the source frame, binds the grading parameters, LUT,
// and collaborator textures, executes the grading pipeline, and publishes a
// stats snapshot — once per display-refresh tick.
//
// # Key Principle
//
// The engine RECEIVES a GPU device from the host application, it does NOT
// create its own. All GPU resources trace back to exactly one owning Engine
// instance; there is no ambient device singleton.
//
// # Core pieces
//
//   - Engine: per-frame orchestration (Render, Resize, Dispose, stats)
//   - Program: the grading pipeline with bindings resolved at build time
//   - Lifecycle: the Valid → Lost → Valid / Disposed context state machine
//   - Scheduler: cooperative per-tick driver with Start/Stop
//   - Backend: optional GPU acceleration; the CPU pipeline is the
//     reference implementation and the fallback
//
// # Usage
//
//	engine, err := render.New(render.Options{Width: 1280, Height: 720})
//	if err != nil {
//	    return err
//	}
//	defer engine.Dispose()
//
//	sched := render.NewScheduler(30, func(now time.Time) {
//	    frame := capture.Latest()
//	    _ = engine.Render(frame, render.Inputs{
//	        Grade: ui.Grade(),
//	        Time:  now.Sub(start).Seconds(),
//	    })
//	})
//	sched.Start(ctx)
//
// On context loss the host calls engine.Lifecycle().OnContextLost();
// frames arriving while the context is lost are dropped, not queued. On
// restore, OnContextRestored recreates the program, LUT texture, and
// backing textures exactly once.
//
// # Thread Safety
//
// The engine is driven from one render goroutine. Lifecycle transitions may
// arrive from other goroutines (event delivery) and are the only methods
// safe to call concurrently with Render.
package render
