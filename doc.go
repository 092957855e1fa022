// Package camstudio provides the real-time color-grading render core for
// camera-studio applications.
//
// # Overview
//
// camstudio turns a live video frame into a graded, composited output frame
// every tick. It is built for the GoGPU ecosystem: the render engine receives
// a GPU device from the host application (it never creates one), executes a
// fixed per-pixel grading pipeline, and adapts resolution and feature tiers
// to sustain the target frame rate, surviving GPU context loss along the way.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/camstudio"
//	    "github.com/gogpu/camstudio/render"
//	)
//
//	engine, err := render.New(render.Options{Width: 1280, Height: 720})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Dispose()
//
//	frame := camstudio.NewPixmap(1280, 720)
//	err = engine.Render(frame, render.Inputs{
//	    Grade: camstudio.GradeParams{Exposure: 0.3, Saturation: 1.1},
//	})
//
// # Architecture
//
// The library is organized into:
//   - Root package: parameter model, frame pixmaps, stats snapshots
//   - lut: 3D lookup-table parsing, generation, and cached loading
//   - render: engine, per-pixel pipeline, context lifecycle, scheduler
//   - quality: advisory adaptive-quality controller
//   - backend/wgpu: optional GPU backend built on gogpu/wgpu
//
// Rendering is CPU-based by default and GPU-accelerated when a backend is
// registered and a device handle is supplied. The CPU path is the reference
// implementation; backends must match its output.
package camstudio
