// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/camstudio"
	"github.com/gogpu/camstudio/internal/parallel"
	"github.com/gogpu/camstudio/lut"
)

const fpsWindowSize = 60

// Options configures an Engine. Width and Height are required; everything
// else has a usable zero value.
type Options struct {
	// Width, Height set the base canvas size in pixels.
	Width  int
	Height int

	// Device is the GPU device provided by the host. Nil selects the
	// pure software path.
	Device DeviceHandle

	// Backend overrides automatic backend selection. Nil with a non-nil
	// Device picks the best registered backend.
	Backend Backend

	// Workers sets the shading worker count. 0 means GOMAXPROCS.
	Workers int

	// OnStats receives a per-frame stats snapshot. Must not call back
	// into the engine.
	OnStats func(camstudio.Stats)

	// OnContextEvent receives context loss and restore notifications.
	OnContextEvent func(ContextEvent)

	// Logger overrides the package logger.
	Logger *slog.Logger

	// Alloc overrides output surface allocation. Tests use it to
	// simulate resource exhaustion.
	Alloc func(width, height int) (*camstudio.Pixmap, error)
}

// Inputs carries the per-frame dynamic state. Parameter structs are
// snapshotted and clamped at the start of the frame, so a frame never
// observes a mix of old and new values.
type Inputs struct {
	Grade     camstudio.GradeParams
	Transform camstudio.Transform
	Mode      camstudio.Mode
	GyroAngle float64
	Time      float64

	// Overlay is the HUD layer composited last, or nil.
	Overlay *camstudio.Pixmap

	// SkinMask and BackgroundMask gate the beauty and background blur
	// stages. Nil masks read as zero coverage.
	SkinMask       *Mask
	BackgroundMask *Mask
}

// Engine renders camera frames through the grading pipeline into an
// offscreen target. The software pipeline is always present; a GPU
// backend, when available, accelerates the identical shader and falls
// back to software per frame on ErrFallbackToCPU.
//
// All methods are safe for concurrent use.
type Engine struct {
	mu   sync.Mutex
	log  *slog.Logger
	opts Options

	baseW, baseH int
	scale        float64
	targetFPS    int
	features     camstudio.FeatureFlags

	pool    *parallel.WorkerPool
	program *Program
	lc      *Lifecycle
	backend Backend
	alloc   func(width, height int) (*camstudio.Pixmap, error)

	target  *PixmapTarget
	lutTab  lut.Table
	handles map[string]*Handle

	dropped  atomic.Uint64
	fpsWin   [fpsWindowSize]float64
	fpsHead  int
	fpsCount int
	stats    camstudio.Stats

	disposed bool
}

// New creates an Engine. Shader compilation failure on the selected GPU
// backend is fatal and reported as a *ShaderCompileError; construction
// without a device never fails on shader grounds because the software
// path needs no compilation.
func New(opts Options) (*Engine, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("render: invalid canvas size %dx%d", opts.Width, opts.Height)
	}

	log := opts.Logger
	if log == nil {
		log = camstudio.Logger()
	}

	e := &Engine{
		log:       log,
		opts:      opts,
		baseW:     opts.Width,
		baseH:     opts.Height,
		scale:     1,
		targetFPS: 60,
		features: camstudio.FeatureFlags{
			BackgroundBlur:    true,
			AutoFraming:       true,
			NoiseCancellation: true,
		},
		pool:    parallel.NewWorkerPool(opts.Workers),
		alloc:   opts.Alloc,
		handles: make(map[string]*Handle),
	}
	if e.alloc == nil {
		e.alloc = func(w, h int) (*camstudio.Pixmap, error) {
			return camstudio.NewPixmap(w, h), nil
		}
	}

	e.program = NewProgram(e.pool)
	e.lc = NewLifecycle(e.onContextEvent, log)
	e.lc.SetRestoreFunc(e.recreateResources)

	backend := opts.Backend
	if backend == nil && opts.Device != nil {
		backend = newBestBackend()
	}
	if backend != nil {
		if err := backend.Init(opts.Device, e.program); err != nil {
			var cerr *ShaderCompileError
			if errors.As(err, &cerr) {
				e.pool.Close()
				return nil, err
			}
			log.Warn("render: backend init failed, using software path", "backend", backend.Name(), "err", err)
			backend = nil
		}
	}
	e.backend = backend

	name := "software"
	if backend != nil {
		name = backend.Name()
	}
	log.Info("render: engine ready", "backend", name, "size", fmt.Sprintf("%dx%d", opts.Width, opts.Height))

	return e, nil
}

// Lifecycle exposes the context state machine so hosts can wire device
// loss and restore signals.
func (e *Engine) Lifecycle() *Lifecycle {
	return e.lc
}

// Render shades one camera frame into the output target. While the
// context is lost the frame is counted as dropped and nil is returned;
// rendering never panics across the frame boundary. After Dispose it
// returns ErrDisposed.
func (e *Engine) Render(frame *camstudio.Pixmap, in Inputs) error {
	if frame == nil {
		return errors.New("render: nil frame")
	}

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return ErrDisposed
	}
	if !e.lc.Usable() {
		e.dropped.Add(1)
		e.stats.DroppedFrames = e.dropped.Load()
		e.mu.Unlock()
		return nil
	}
	if err := e.ensureResources(); err != nil {
		e.mu.Unlock()
		return err
	}

	start := time.Now()

	u := Uniforms{
		Grade:     in.Grade.Clamped(),
		Transform: in.Transform.Clamped(),
		Mode:      in.Mode,
		GyroAngle: in.GyroAngle,
		Time:      in.Time,
	}
	b := Bindings{
		LUT:            e.lutTab,
		Overlay:        in.Overlay,
		SkinMask:       in.SkinMask,
		BackgroundMask: in.BackgroundMask,
	}
	if !e.features.NoiseCancellation {
		u.Grade.SkinSmoothing = 0
	}
	if !e.features.BackgroundBlur {
		b.BackgroundMask = nil
	}

	dst := e.target.Pixmap()
	software := true
	if e.backend != nil {
		switch err := e.backend.Grade(dst, frame, &u, &b); {
		case err == nil:
			software = false
		case errors.Is(err, ErrFallbackToCPU):
		default:
			e.log.Warn("render: backend frame failed, shading in software", "backend", e.backend.Name(), "err", err)
		}
	}
	if software {
		e.program.Execute(dst, frame, &u, &b)
	}

	// Loss between upload and present abandons the frame.
	if !e.lc.Usable() {
		e.dropped.Add(1)
		e.stats.DroppedFrames = e.dropped.Load()
		e.mu.Unlock()
		return nil
	}

	e.recordFrame(time.Since(start))
	stats, cb := e.stats, e.opts.OnStats
	e.mu.Unlock()

	if cb != nil {
		cb(stats)
	}
	return nil
}

// Resize changes the base canvas size. A call with the current size is a
// no-op and reallocates nothing.
func (e *Engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render: invalid canvas size %dx%d", width, height)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrDisposed
	}
	if width == e.baseW && height == e.baseH {
		return nil
	}
	e.baseW, e.baseH = width, height
	e.target = nil // reallocated lazily on the next frame
	return nil
}

// SetResolutionScale sets the backing surface scale factor in (0, 1].
func (e *Engine) SetResolutionScale(s float64) {
	if s <= 0 || s > 1 {
		s = 1
	}
	e.mu.Lock()
	e.scale = s
	e.mu.Unlock()
}

// SetLUT installs the active color lookup table. The zero Table removes
// any active LUT.
func (e *Engine) SetLUT(t lut.Table) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.lutTab = t
	if h, ok := e.handles["lut"]; ok {
		e.lc.Release(h)
		delete(e.handles, "lut")
	}
	if t.Size > 0 && e.target != nil {
		e.handles["lut"] = e.lc.NewHandle("lut")
	}
}

// ApplyPerformanceMode reconfigures size, backing scale, target frame
// rate, and feature gates from a quality tier config in one step.
func (e *Engine) ApplyPerformanceMode(cfg camstudio.PerformanceModeConfig) error {
	if cfg.Resolution.Width > 0 && cfg.Resolution.Height > 0 {
		if err := e.Resize(cfg.Resolution.Width, cfg.Resolution.Height); err != nil {
			return err
		}
	}
	e.SetResolutionScale(cfg.CanvasScalingFactor)

	e.mu.Lock()
	if cfg.TargetFPS > 0 {
		e.targetFPS = cfg.TargetFPS
	}
	e.features = cfg.Features
	e.mu.Unlock()

	e.log.Info("render: performance mode applied",
		"fps", cfg.TargetFPS, "scale", cfg.CanvasScalingFactor,
		"resolution", fmt.Sprintf("%dx%d", cfg.Resolution.Width, cfg.Resolution.Height))
	return nil
}

// TargetFPS returns the configured frame rate.
func (e *Engine) TargetFPS() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.targetFPS
}

// Output returns the render target, or nil before the first frame.
func (e *Engine) Output() Target {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.target == nil {
		return nil
	}
	return e.target
}

// SnapshotScaled copies the current output rescaled to the requested
// size, for consumers that need full resolution while the engine renders
// at a reduced backing scale. Returns nil before the first frame.
func (e *Engine) SnapshotScaled(width, height int) *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.target == nil || width <= 0 || height <= 0 {
		return nil
	}

	src := e.target.Image()
	if src.Rect.Dx() == width && src.Rect.Dy() == height {
		out := image.NewRGBA(src.Rect)
		copy(out.Pix, src.Pix)
		return out
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(out, out.Rect, src, src.Rect, xdraw.Src, nil)
	return out
}

// Stats returns the most recent frame statistics.
func (e *Engine) Stats() camstudio.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.DroppedFrames = e.dropped.Load()
	return s
}

// DroppedFrames returns the total number of frames dropped while the
// context was lost.
func (e *Engine) DroppedFrames() uint64 {
	return e.dropped.Load()
}

// Dispose releases all resources. Idempotent; rendering afterwards
// returns ErrDisposed.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	if e.backend != nil {
		e.backend.Destroy()
	}
	for name, h := range e.handles {
		e.lc.Release(h)
		delete(e.handles, name)
	}
	e.lc.Dispose()
	e.target = nil
	pool := e.pool
	e.mu.Unlock()

	pool.Close()
	e.log.Info("render: engine disposed")
}

// outputSize applies the backing scale to the base canvas size.
func (e *Engine) outputSize() (int, int) {
	w := int(math.Round(float64(e.baseW) * e.scale))
	h := int(math.Round(float64(e.baseH) * e.scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// ensureResources lazily allocates the output surface and resource
// handles. Allocation failure triggers one degrade-and-retry at half
// resolution before reporting ErrResourceExhausted. Called with e.mu
// held.
func (e *Engine) ensureResources() error {
	w, h := e.outputSize()
	if e.target == nil || e.target.Width() != w || e.target.Height() != h {
		pm, err := e.alloc(w, h)
		if err != nil {
			dw, dh := w/2, h/2
			if dw < 1 {
				dw = 1
			}
			if dh < 1 {
				dh = 1
			}
			pm, err = e.alloc(dw, dh)
			if err != nil {
				return fmt.Errorf("render: allocate %dx%d output: %w", w, h, ErrResourceExhausted)
			}
			e.log.Warn("render: output degraded after allocation failure",
				"want", fmt.Sprintf("%dx%d", w, h), "got", fmt.Sprintf("%dx%d", dw, dh))
			e.scale *= 0.5
		}
		e.target = NewPixmapTargetFromPixmap(pm)
	}

	e.ensureHandle("program")
	e.ensureHandle("source")
	e.ensureHandle("output")
	if e.lutTab.Size > 0 {
		e.ensureHandle("lut")
	}
	return nil
}

// ensureHandle keeps exactly one valid handle per logical resource.
func (e *Engine) ensureHandle(name string) {
	if h, ok := e.handles[name]; ok {
		if h.Valid() {
			return
		}
		e.lc.Release(h)
	}
	e.handles[name] = e.lc.NewHandle(name)
}

// recreateResources is the lifecycle restore hook; it rebuilds one handle
// per surviving logical resource and restores the backend. Ran at most
// once per loss/restore cycle.
func (e *Engine) recreateResources() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrDisposed
	}

	for name, h := range e.handles {
		e.lc.Release(h)
		e.handles[name] = e.lc.NewHandle(name)
	}
	if e.backend != nil {
		if err := e.backend.Restore(); err != nil {
			return fmt.Errorf("render: backend restore: %w", err)
		}
	}
	return nil
}

func (e *Engine) onContextEvent(ev ContextEvent) {
	if ev == EventContextLost {
		e.mu.Lock()
		b := e.backend
		e.mu.Unlock()
		if b != nil {
			b.Invalidate()
		}
	}
	if cb := e.opts.OnContextEvent; cb != nil {
		cb(ev)
	}
}

// recordFrame updates the rolling FPS estimate. Called with e.mu held.
func (e *Engine) recordFrame(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	e.fpsWin[e.fpsHead] = ms
	e.fpsHead = (e.fpsHead + 1) % fpsWindowSize
	if e.fpsCount < fpsWindowSize {
		e.fpsCount++
	}

	var sum float64
	for i := 0; i < e.fpsCount; i++ {
		sum += e.fpsWin[i]
	}
	avg := sum / float64(e.fpsCount)

	fps := 0.0
	if avg > 0 {
		fps = 1000 / avg
	}
	e.stats = camstudio.Stats{
		FPS:           fps,
		Width:         e.target.Width(),
		Height:        e.target.Height(),
		FrameTimeMs:   ms,
		DroppedFrames: e.dropped.Load(),
	}
}
