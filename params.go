package camstudio

// GradeParams holds the continuous color-grading parameters applied by the
// render pipeline, in documented domains. Callers may set any value; the
// engine clamps every field to its domain before use via Clamped — out-of-domain
// input is clamped, never rejected.
//
// Domains:
//   - Saturation: [0, 2] (0 = grayscale, 1 = unchanged)
//   - LutStrength, Grain, Sharpness, Denoise, SkinSmoothing, Vignette,
//     PortraitLight: [0, 1]
//   - Everything else: [-1, 1]
type GradeParams struct {
	// Exposure is the exposure adjustment in EV-like units. The pipeline
	// multiplies color by 2^Exposure.
	Exposure float64

	// Contrast scales color around middle gray: (c-0.5)*(1+Contrast)+0.5.
	Contrast float64

	// Saturation mixes between luma and the graded color.
	Saturation float64

	// Temperature shifts white balance toward warm (>0) or cool (<0).
	Temperature float64

	// Tint shifts white balance along the green-magenta axis.
	Tint float64

	// Lift is an additive shadow offset.
	Lift float64

	// Gamma adjusts midtones with exponent 1 - Gamma*0.5.
	Gamma float64

	// Gain is a multiplicative highlight boost.
	Gain float64

	// Highlights is an additive rolloff gated to bright luma.
	Highlights float64

	// Shadows is an additive rolloff gated to dark luma.
	Shadows float64

	// Blacks is an additive rolloff gated to near-black luma.
	Blacks float64

	// Vignette darkens the frame periphery; 0 leaves the frame unchanged.
	Vignette float64

	// Grain adds per-pixel film grain.
	Grain float64

	// Sharpness blends in a 4-neighbor unsharp mask.
	Sharpness float64

	// Denoise blends in an edge-preserving 3x3 smoothing.
	Denoise float64

	// Distortion is the radial lens-distortion coefficient.
	Distortion float64

	// SkinSmoothing blends skin-like pixels toward a local average.
	SkinSmoothing float64

	// LutStrength blends the 3D LUT result with the pre-LUT color.
	LutStrength float64

	// PortraitLight adds a radial brightness and warmth boost centered on
	// the frame.
	PortraitLight float64
}

// NeutralGrade returns parameters that leave the frame visually unchanged.
func NeutralGrade() GradeParams {
	return GradeParams{Saturation: 1}
}

// Clamped returns a copy with every field clamped to its documented domain.
func (p GradeParams) Clamped() GradeParams {
	p.Exposure = clampRange(p.Exposure, -1, 1)
	p.Contrast = clampRange(p.Contrast, -1, 1)
	p.Saturation = clampRange(p.Saturation, 0, 2)
	p.Temperature = clampRange(p.Temperature, -1, 1)
	p.Tint = clampRange(p.Tint, -1, 1)
	p.Lift = clampRange(p.Lift, -1, 1)
	p.Gamma = clampRange(p.Gamma, -1, 1)
	p.Gain = clampRange(p.Gain, -1, 1)
	p.Highlights = clampRange(p.Highlights, -1, 1)
	p.Shadows = clampRange(p.Shadows, -1, 1)
	p.Blacks = clampRange(p.Blacks, -1, 1)
	p.Vignette = clampRange(p.Vignette, 0, 1)
	p.Grain = clampRange(p.Grain, 0, 1)
	p.Sharpness = clampRange(p.Sharpness, 0, 1)
	p.Denoise = clampRange(p.Denoise, 0, 1)
	p.Distortion = clampRange(p.Distortion, -1, 1)
	p.SkinSmoothing = clampRange(p.SkinSmoothing, 0, 1)
	p.LutStrength = clampRange(p.LutStrength, 0, 1)
	p.PortraitLight = clampRange(p.PortraitLight, 0, 1)
	return p
}

// MinZoom is the floor applied to Transform.Zoom. Zoom never reaches 0.
const MinZoom = 0.01

// Transform holds the geometric parameters applied before grading.
type Transform struct {
	// Zoom is the magnification factor. The zero value means no zoom;
	// other values below MinZoom are clamped to MinZoom.
	Zoom float64

	// Rotate is the rotation angle in radians.
	Rotate float64

	// PanX and PanY offset the view in normalized [-1, 1] units.
	PanX, PanY float64
}

// IdentityTransform returns the transform that samples the frame as-is.
func IdentityTransform() Transform {
	return Transform{Zoom: 1}
}

// Clamped returns a copy with Zoom floored at MinZoom and pan clamped to
// the normalized range. A zero Zoom reads as 1, so the zero Transform is
// the identity.
func (t Transform) Clamped() Transform {
	switch {
	case t.Zoom == 0:
		t.Zoom = 1
	case t.Zoom < MinZoom:
		t.Zoom = MinZoom
	}
	t.PanX = clampRange(t.PanX, -1, 1)
	t.PanY = clampRange(t.PanY, -1, 1)
	return t
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
