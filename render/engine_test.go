// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/camstudio"
	"github.com/gogpu/camstudio/lut"
)

// fakeBackend records calls and paints frames a recognizable solid color.
type fakeBackend struct {
	initErr     error
	gradeErr    error
	grades      int
	invalidates int
	restores    int
	destroyed   bool
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Init(dev DeviceHandle, prog *Program) error { return f.initErr }

func (f *fakeBackend) Grade(dst, src *camstudio.Pixmap, u *Uniforms, b *Bindings) error {
	f.grades++
	if f.gradeErr != nil {
		return f.gradeErr
	}
	dst.Fill(camstudio.RGBA{R: 1, A: 1})
	return nil
}

func (f *fakeBackend) Invalidate()    { f.invalidates++ }
func (f *fakeBackend) Restore() error { f.restores++; return nil }
func (f *fakeBackend) Destroy()       { f.destroyed = true }

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Width == 0 {
		opts.Width, opts.Height = 64, 48
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Dispose)
	return e
}

func TestNewRejectsInvalidSize(t *testing.T) {
	if _, err := New(Options{Width: 0, Height: 100}); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := New(Options{Width: 100, Height: -1}); err == nil {
		t.Error("expected error for negative height")
	}
}

func TestEngineRendersSoftware(t *testing.T) {
	e := newTestEngine(t, Options{})

	frame := testFrame(64, 48)
	if err := e.Render(frame, Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := e.Output()
	if out == nil {
		t.Fatal("Output nil after render")
	}
	if out.Width() != 64 || out.Height() != 48 {
		t.Errorf("output size = %dx%d, want 64x48", out.Width(), out.Height())
	}
	stats := e.Stats()
	if stats.FPS <= 0 {
		t.Errorf("stats FPS = %v, want > 0", stats.FPS)
	}
	if stats.Width != 64 || stats.Height != 48 {
		t.Errorf("stats size = %dx%d, want 64x48", stats.Width, stats.Height)
	}
}

func TestEngineNilFrame(t *testing.T) {
	e := newTestEngine(t, Options{})
	if err := e.Render(nil, Inputs{}); err == nil {
		t.Error("expected error for nil frame")
	}
}

func TestEngineDisposeIdempotent(t *testing.T) {
	e := newTestEngine(t, Options{})

	frame := testFrame(64, 48)
	if err := e.Render(frame, Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	e.Dispose()
	if got := e.Lifecycle().ValidHandles(); got != 0 {
		t.Errorf("ValidHandles after dispose = %d, want 0", got)
	}
	e.Dispose()

	if err := e.Render(frame, Inputs{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("Render after dispose = %v, want ErrDisposed", err)
	}
	if err := e.Resize(32, 32); !errors.Is(err, ErrDisposed) {
		t.Errorf("Resize after dispose = %v, want ErrDisposed", err)
	}
}

func TestEngineDropsFramesWhileLost(t *testing.T) {
	var events []ContextEvent
	e := newTestEngine(t, Options{
		OnContextEvent: func(ev ContextEvent) { events = append(events, ev) },
	})
	frame := testFrame(64, 48)
	in := Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}

	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render: %v", err)
	}

	e.Lifecycle().OnContextLost()
	for i := 0; i < 3; i++ {
		if err := e.Render(frame, in); err != nil {
			t.Fatalf("Render while lost should not error, got %v", err)
		}
	}
	if got := e.DroppedFrames(); got != 3 {
		t.Errorf("DroppedFrames = %d, want 3", got)
	}

	if err := e.Lifecycle().OnContextRestored(); err != nil {
		t.Fatalf("OnContextRestored: %v", err)
	}
	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render after restore: %v", err)
	}
	if got := e.DroppedFrames(); got != 3 {
		t.Errorf("DroppedFrames after restore = %d, want 3", got)
	}

	if len(events) != 2 || events[0] != EventContextLost || events[1] != EventContextRestored {
		t.Errorf("events = %v, want [lost restored]", events)
	}
}

func TestEngineRestoreRecreatesHandlesOnce(t *testing.T) {
	e := newTestEngine(t, Options{})
	e.SetLUT(lut.Identity(9))
	frame := testFrame(64, 48)
	in := Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}

	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render: %v", err)
	}
	before := e.Lifecycle().ValidHandles()
	if before == 0 {
		t.Fatal("no handles after first render")
	}

	e.Lifecycle().OnContextLost()
	if got := e.Lifecycle().ValidHandles(); got != 0 {
		t.Fatalf("ValidHandles while lost = %d, want 0", got)
	}

	// Repeated restore signals must not duplicate resources.
	for i := 0; i < 3; i++ {
		if err := e.Lifecycle().OnContextRestored(); err != nil {
			t.Fatalf("OnContextRestored: %v", err)
		}
	}
	if got := e.Lifecycle().ValidHandles(); got != before {
		t.Errorf("ValidHandles after restore = %d, want %d", got, before)
	}

	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render after restore: %v", err)
	}
	out := e.Output().(*PixmapTarget).Pixmap()
	if diff := pixelDiff(frame, out); diff > 1 {
		t.Errorf("restored render diverged: max diff %d", diff)
	}
}

func TestEngineResourceExhaustionDegradesOnce(t *testing.T) {
	fails := 2
	allocs := 0
	e := newTestEngine(t, Options{
		Width: 128, Height: 128,
		Alloc: func(w, h int) (*camstudio.Pixmap, error) {
			allocs++
			if fails > 0 {
				fails--
				return nil, fmt.Errorf("out of memory")
			}
			return camstudio.NewPixmap(w, h), nil
		},
	})
	frame := testFrame(128, 128)
	in := Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}

	// Both attempts fail: full size and the halved retry.
	if err := e.Render(frame, in); !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("Render = %v, want ErrResourceExhausted", err)
	}

	// One failure then success at half resolution.
	fails = 1
	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render after degrade: %v", err)
	}
	out := e.Output()
	if out.Width() != 64 || out.Height() != 64 {
		t.Errorf("degraded output = %dx%d, want 64x64", out.Width(), out.Height())
	}

	// Further frames reuse the degraded surface.
	n := allocs
	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if allocs != n {
		t.Errorf("steady state reallocated: %d -> %d", n, allocs)
	}
}

func TestEngineResizeNoopKeepsSurface(t *testing.T) {
	allocs := 0
	e := newTestEngine(t, Options{
		Width: 64, Height: 48,
		Alloc: func(w, h int) (*camstudio.Pixmap, error) {
			allocs++
			return camstudio.NewPixmap(w, h), nil
		},
	})
	frame := testFrame(64, 48)
	in := Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}

	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if allocs != 1 {
		t.Fatalf("allocs = %d, want 1", allocs)
	}

	if err := e.Resize(64, 48); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if allocs != 1 {
		t.Errorf("no-op resize reallocated: allocs = %d", allocs)
	}

	if err := e.Resize(32, 24); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if allocs != 2 {
		t.Errorf("real resize should reallocate: allocs = %d", allocs)
	}
	if out := e.Output(); out.Width() != 32 || out.Height() != 24 {
		t.Errorf("output = %dx%d, want 32x24", out.Width(), out.Height())
	}
}

func TestEngineApplyPerformanceMode(t *testing.T) {
	e := newTestEngine(t, Options{Width: 640, Height: 480})

	cfg := camstudio.PerformanceModeConfig{
		TargetFPS:           30,
		Resolution:          camstudio.Resolution{Width: 640, Height: 480},
		CanvasScalingFactor: 0.5,
		Features:            camstudio.FeatureFlags{},
	}
	if err := e.ApplyPerformanceMode(cfg); err != nil {
		t.Fatalf("ApplyPerformanceMode: %v", err)
	}
	if got := e.TargetFPS(); got != 30 {
		t.Errorf("TargetFPS = %d, want 30", got)
	}

	frame := testFrame(640, 480)
	if err := e.Render(frame, Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out := e.Output(); out.Width() != 320 || out.Height() != 240 {
		t.Errorf("scaled output = %dx%d, want 320x240", out.Width(), out.Height())
	}

	snap := e.SnapshotScaled(640, 480)
	if snap == nil || snap.Rect.Dx() != 640 || snap.Rect.Dy() != 480 {
		t.Errorf("SnapshotScaled returned %v, want 640x480 image", snap)
	}
}

func TestEngineBackendPath(t *testing.T) {
	fb := &fakeBackend{}
	e := newTestEngine(t, Options{Backend: fb})
	frame := testFrame(64, 48)
	in := Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}

	if err := e.Render(frame, in); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fb.grades != 1 {
		t.Errorf("backend grades = %d, want 1", fb.grades)
	}
	out := e.Output().(*PixmapTarget).Pixmap()
	if c := out.GetPixel(10, 10); c.R < 0.99 || c.G > 0.01 {
		t.Errorf("backend output not used: %+v", c)
	}

	e.Lifecycle().OnContextLost()
	if fb.invalidates != 1 {
		t.Errorf("invalidates = %d, want 1", fb.invalidates)
	}
	if err := e.Lifecycle().OnContextRestored(); err != nil {
		t.Fatalf("OnContextRestored: %v", err)
	}
	if fb.restores != 1 {
		t.Errorf("restores = %d, want 1", fb.restores)
	}

	e.Dispose()
	if !fb.destroyed {
		t.Error("backend not destroyed on dispose")
	}
}

func TestEngineBackendFallbackToSoftware(t *testing.T) {
	fb := &fakeBackend{gradeErr: ErrFallbackToCPU}
	e := newTestEngine(t, Options{Backend: fb})
	frame := testFrame(64, 48)

	if err := e.Render(frame, Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := e.Output().(*PixmapTarget).Pixmap()
	if diff := pixelDiff(frame, out); diff > 1 {
		t.Errorf("software fallback diverged from source: max diff %d", diff)
	}

	// Unexpected backend errors also fall back rather than failing the frame.
	fb.gradeErr = errors.New("device timeout")
	if err := e.Render(frame, Inputs{Grade: camstudio.NeutralGrade(), Transform: camstudio.IdentityTransform()}); err != nil {
		t.Fatalf("Render with failing backend: %v", err)
	}
}

func TestEngineBackendCompileFailureIsFatal(t *testing.T) {
	fb := &fakeBackend{initErr: &ShaderCompileError{Backend: "fake", Err: errors.New("bad wgsl")}}
	_, err := New(Options{Width: 64, Height: 48, Backend: fb, Workers: 1})

	var cerr *ShaderCompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("New = %v, want *ShaderCompileError", err)
	}
	if cerr.Backend != "fake" {
		t.Errorf("Backend = %q, want %q", cerr.Backend, "fake")
	}
}

func TestRegisterBackendSelection(t *testing.T) {
	RegisterBackend("test-low", 1, func() (Backend, error) { return &fakeBackend{}, nil }, nil)
	RegisterBackend("test-off", 50, func() (Backend, error) { return &fakeBackend{}, nil }, func() bool { return false })

	names := BackendNames()
	found := 0
	for _, n := range names {
		if n == "test-low" || n == "test-off" {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("registered backends missing from %v", names)
	}

	b := newBestBackend()
	if b == nil {
		t.Fatal("no backend selected")
	}
	if b.Name() != "fake" {
		t.Errorf("selected backend = %q", b.Name())
	}
}
