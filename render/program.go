// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/camstudio"
	"github.com/gogpu/camstudio/internal/parallel"
	"github.com/gogpu/camstudio/lut"
)

// Uniforms is the per-frame parameter snapshot consumed by the grading
// program. The engine captures it atomically with the frame upload, so a
// frame never renders against a stale or newer parameter set.
//
// Fields map to fixed binding slots resolved once at program build time;
// there is no per-frame name lookup.
type Uniforms struct {
	// Grade holds the clamped color-grading parameters.
	Grade camstudio.GradeParams

	// Transform holds the clamped view transform.
	Transform camstudio.Transform

	// Mode selects the analytic overlay.
	Mode camstudio.Mode

	// GyroAngle is the device roll in radians, used by ModeLevel.
	GyroAngle float64

	// Time in seconds drives the film grain animation.
	Time float64
}

// Bindings holds the textures bound alongside the uniforms. All fields are
// optional; absent textures have no effect.
type Bindings struct {
	// LUT is the active 3D lookup table. A table with Size < 2 is treated
	// as absent.
	LUT lut.Table

	// Overlay is the HUD texture, alpha-composited over the graded result.
	Overlay *camstudio.Pixmap

	// SkinMask is the analysis collaborator's skin-confidence texture.
	SkinMask *Mask

	// BackgroundMask is the segmentation texture for background blur.
	BackgroundMask *Mask
}

// Binding slots of the grading program. The order is fixed at build time
// and mirrored by the WGSL bind group layout; backends bind by slot, never
// by name.
const (
	SlotSource = iota
	SlotLUT
	SlotSkinMask
	SlotBackgroundMask
	SlotOverlay
	SlotUniforms
	SlotCount
)

// UniformWordCount is the length of the packed uniform block in 32-bit
// words. It matches the Params struct in ShaderSource.
const UniformWordCount = 28

// Program is the compiled grading pipeline. The CPU implementation is the
// reference; GPU backends compile ShaderSource and must match its output.
//
// A Program holds no per-frame state and may be rebuilt after context
// restore at the cost of one build.
type Program struct {
	pool *parallel.WorkerPool
}

// NewProgram builds the grading program. The pool is used to slice frames
// into row bands; a nil pool executes on the caller.
func NewProgram(pool *parallel.WorkerPool) *Program {
	return &Program{pool: pool}
}

// Execute shades every pixel of dst from src under the given uniforms and
// bindings.
func (p *Program) Execute(dst, src *camstudio.Pixmap, u *Uniforms, b *Bindings) {
	sc := newShadeContext(dst, src, u, b)
	parallel.ForRows(p.pool, dst.Height(), sc.shadeRows)
}

// ShaderSource returns the WGSL source of the grading shader for GPU
// backends. The uniform block layout matches PackUniforms.
func (p *Program) ShaderSource() string {
	return gradeShaderWGSL
}

// PackUniforms serializes u into the fixed uniform block layout consumed
// by the shader: one word per scalar in declaration order, then the
// derived values the shader expects precomputed.
func PackUniforms(u *Uniforms, dstW, dstH int) [UniformWordCount]float32 {
	g := &u.Grade
	return [UniformWordCount]float32{
		float32(g.Exposure),
		float32(g.Contrast),
		float32(g.Saturation),
		float32(g.Temperature),
		float32(g.Tint),
		float32(g.Lift),
		float32(g.Gamma),
		float32(g.Gain),
		float32(g.Highlights),
		float32(g.Shadows),
		float32(g.Blacks),
		float32(g.Vignette),
		float32(g.Grain),
		float32(g.Sharpness),
		float32(g.Denoise),
		float32(g.Distortion),
		float32(g.SkinSmoothing),
		float32(g.LutStrength),
		float32(g.PortraitLight),
		float32(u.Transform.Zoom),
		float32(u.Transform.Rotate),
		float32(u.Transform.PanX),
		float32(u.Transform.PanY),
		float32(u.Mode),
		float32(u.GyroAngle),
		float32(u.Time),
		float32(dstW),
		float32(dstH),
	}
}
