// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"math"

	"github.com/gogpu/camstudio"
)

// Pipeline tuning constants. The denoise and skin-smoothing kernels use
// small fixed-radius windows on purpose: enlarging them changes the
// frame-time budget the adaptive quality loop is tuned against.
const (
	// denoiseRangeSigma controls how fast a neighbor's weight decays with
	// its color distance from the center sample.
	denoiseRangeSigma = 25.0

	// focusPeakThreshold is the horizontal gradient magnitude above which
	// focus peaking colorizes a pixel.
	focusPeakThreshold = 0.1

	// zebraLumaThreshold marks blown highlights.
	zebraLumaThreshold = 0.95

	// zebraStripePeriod is the diagonal stripe period in pixels.
	zebraStripePeriod = 20.0

	// levelLineHalfWidth is the horizon line half-thickness in normalized
	// units.
	levelLineHalfWidth = 0.002

	// backgroundBlurMax caps how far the background mask can pull a pixel
	// toward its local average.
	backgroundBlurMax = 0.85
)

// shadeContext holds one frame's worth of immutable shading state: the
// uploaded source, the bound textures, and the uniform snapshot. It is
// shared read-only across the row workers.
type shadeContext struct {
	src sampler2D
	dst []uint8

	dstW, dstH int

	// Output texel size in source UV units.
	texelX, texelY float32

	u *Uniforms
	b *Bindings

	hasLUT     bool
	hasOverlay bool
	overlay    sampler2D

	// Precomputed per-frame values.
	sinR, cosR   float32
	invZoom      float32
	gammaExp     float32
	exposureMul  float32
	contrastMul  float32
	levelNormalX float32
	levelNormalY float32
}

func newShadeContext(dst, src *camstudio.Pixmap, u *Uniforms, b *Bindings) *shadeContext {
	sc := &shadeContext{
		src:    newSampler2D(src),
		dst:    dst.Data(),
		dstW:   dst.Width(),
		dstH:   dst.Height(),
		texelX: 1 / float32(src.Width()),
		texelY: 1 / float32(src.Height()),
		u:      u,
		b:      b,
	}

	sc.hasLUT = b.LUT.Size >= 2 && u.Grade.LutStrength > 0
	if b.Overlay != nil {
		sc.hasOverlay = true
		sc.overlay = newSampler2D(b.Overlay)
	}

	sin, cos := math.Sincos(-u.Transform.Rotate)
	sc.sinR, sc.cosR = float32(sin), float32(cos)
	sc.invZoom = float32(1 / u.Transform.Zoom)
	sc.gammaExp = float32(1 - u.Grade.Gamma*0.5)
	sc.exposureMul = float32(math.Exp2(u.Grade.Exposure))
	sc.contrastMul = float32(1 + u.Grade.Contrast)

	sin, cos = math.Sincos(u.GyroAngle)
	sc.levelNormalX = float32(-sin)
	sc.levelNormalY = float32(cos)

	return sc
}

// shadeRows shades the half-open row range [y0, y1).
func (sc *shadeContext) shadeRows(y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < sc.dstW; x++ {
			r, g, b := sc.shade(x, y)
			i := (y*sc.dstW + x) * 4
			sc.dst[i+0] = toByte(r)
			sc.dst[i+1] = toByte(g)
			sc.dst[i+2] = toByte(b)
			sc.dst[i+3] = 255
		}
	}
}

// shade runs the full grading pipeline for one output pixel.
func (sc *shadeContext) shade(x, y int) (float32, float32, float32) {
	u := (float32(x) + 0.5) / float32(sc.dstW)
	v := (float32(y) + 0.5) / float32(sc.dstH)

	srcU, srcV, inFrame := sc.remap(u, v)

	var r, g, b float32
	if inFrame {
		r, g, b = sc.sampleGraded(srcU, srcV, u, v)
	}
	// Out-of-frame pixels stay black; overlay modes and HUD still apply.

	r, g, b = clamp01f(r), clamp01f(g), clamp01f(b)
	r, g, b = sc.applyMode(r, g, b, x, y, u, v, srcU, srcV)

	if sc.hasOverlay {
		// HUD texture uses a vertically flipped coordinate space.
		or, og, ob, oa := sc.overlay.sample(u, 1-v)
		r = r*(1-oa) + or*oa
		g = g*(1-oa) + og*oa
		b = b*(1-oa) + ob*oa
	}

	return r, g, b
}

// remap applies the inverse view transform and the radial lens distortion,
// reporting whether the remapped coordinate lands inside the source frame.
func (sc *shadeContext) remap(u, v float32) (float32, float32, bool) {
	px := (u - 0.5) * sc.invZoom
	py := (v - 0.5) * sc.invZoom

	px += float32(sc.u.Transform.PanX)
	py += float32(sc.u.Transform.PanY)

	rx := px*sc.cosR - py*sc.sinR
	ry := px*sc.sinR + py*sc.cosR

	// Radial lens distortion: coord' = (coord-0.5)*(1+k*r^2)+0.5, with the
	// centered coordinate already in hand.
	k := float32(sc.u.Grade.Distortion)
	r2 := rx*rx + ry*ry
	scale := 1 + k*r2
	srcU := rx*scale + 0.5
	srcV := ry*scale + 0.5

	in := srcU >= 0 && srcU <= 1 && srcV >= 0 && srcV <= 1
	return srcU, srcV, in
}

// sampleGraded runs steps 2-7 of the pipeline: spatial filters on the
// source neighborhood, then the tonal chain, LUT, saturation, and
// mask-driven local smoothing.
func (sc *shadeContext) sampleGraded(srcU, srcV, outU, outV float32) (float32, float32, float32) {
	grade := &sc.u.Grade

	cr, cg, cb, _ := sc.src.sample(srcU, srcV)

	// 3x3 box average, needed by denoise weighting and the mask-driven
	// smoothing below.
	var ar, ag, ab float32
	needAvg := grade.Denoise > 0 || grade.SkinSmoothing > 0 || sc.b.SkinMask != nil || sc.b.BackgroundMask != nil
	if needAvg {
		ar, ag, ab = sc.boxAverage(srcU, srcV)
	}

	if d := float32(grade.Denoise); d > 0 {
		dr, dg, db := sc.denoise(srcU, srcV, cr, cg, cb)
		cr = lerpf(cr, dr, d)
		cg = lerpf(cg, dg, d)
		cb = lerpf(cb, db, d)
	}

	if s := float32(grade.Sharpness); s > 0 {
		ur, ug, ub, _ := sc.src.sample(srcU, srcV-sc.texelY)
		dr2, dg2, db2, _ := sc.src.sample(srcU, srcV+sc.texelY)
		lr, lg, lb, _ := sc.src.sample(srcU-sc.texelX, srcV)
		rr, rg, rb, _ := sc.src.sample(srcU+sc.texelX, srcV)

		cr = lerpf(cr, cr*5-(ur+dr2+lr+rr), s)
		cg = lerpf(cg, cg*5-(ug+dg2+lg+rg), s)
		cb = lerpf(cb, cb*5-(ub+db2+lb+rb), s)
	}

	cr, cg, cb = sc.gradeColor(cr, cg, cb, outU, outV)

	// Skin-preserving local smoothing. The heuristic mask is combined with
	// the analysis collaborator's skin mask; an absent mask contributes 0.
	smoothing := float32(grade.SkinSmoothing)
	if smoothing > 0 || sc.b.BackgroundMask != nil {
		var sr, sg, sb float32
		gradedAvg := false

		if smoothing > 0 {
			mask := skinLikelihood(cr, cg, cb)
			if m := sc.b.SkinMask.Sample(srcU, srcV); m > mask {
				mask = m
			}
			if w := mask * smoothing; w > 0 {
				sr, sg, sb = sc.gradeColor(ar, ag, ab, outU, outV)
				gradedAvg = true
				cr = lerpf(cr, sr, w)
				cg = lerpf(cg, sg, w)
				cb = lerpf(cb, sb, w)
			}
		}

		// Background segmentation mask pulls toward the same local
		// average, approximating background blur within the fixed window.
		if bg := sc.b.BackgroundMask.Sample(srcU, srcV); bg > 0 {
			if !gradedAvg {
				sr, sg, sb = sc.gradeColor(ar, ag, ab, outU, outV)
			}
			w := bg * backgroundBlurMax
			cr = lerpf(cr, sr, w)
			cg = lerpf(cg, sg, w)
			cb = lerpf(cb, sb, w)
		}
	}

	if g := float32(grade.Grain); g > 0 {
		n := hash21(outU+float32(sc.u.Time), outV+float32(sc.u.Time)*0.7)
		cr += (n - 0.5) * g * 0.2
		cg += (n - 0.5) * g * 0.2
		cb += (n - 0.5) * g * 0.2
	}

	if vig := float32(grade.Vignette); vig > 0 {
		dx := outU - 0.5
		dy := outV - 0.5
		dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		fall := smoothstepf(0.8, 0.2, dist*(1+vig))
		m := lerpf(1, fall, vig)
		cr *= m
		cg *= m
		cb *= m
	}

	return cr, cg, cb
}

// gradeColor applies the scalar stages: tonal chain, LUT, and saturation.
// It has no neighborhood dependencies, so the local-average smoothing path
// can grade the averaged color through the identical chain.
func (sc *shadeContext) gradeColor(r, g, b, outU, outV float32) (float32, float32, float32) {
	grade := &sc.u.Grade

	// Lift: additive shadow offset.
	if l := float32(grade.Lift); l != 0 {
		r += l * 0.2
		g += l * 0.2
		b += l * 0.2
	}

	// Gain: multiplicative highlight boost.
	if gn := float32(grade.Gain); gn != 0 {
		m := 1 + gn*0.5
		r *= m
		g *= m
		b *= m
	}

	// Gamma: power law on midtones.
	if grade.Gamma != 0 {
		r = powf(r, sc.gammaExp)
		g = powf(g, sc.gammaExp)
		b = powf(b, sc.gammaExp)
	}

	// Exposure.
	r *= sc.exposureMul
	g *= sc.exposureMul
	b *= sc.exposureMul

	// White balance.
	t := float32(grade.Temperature)
	r += t * 0.2
	b -= t * 0.2
	g -= float32(grade.Tint) * 0.2

	// Contrast around middle gray.
	r = (r-0.5)*sc.contrastMul + 0.5
	g = (g-0.5)*sc.contrastMul + 0.5
	b = (b-0.5)*sc.contrastMul + 0.5

	// Luma-gated rolloffs.
	l := lumaf(r, g, b)
	if s := float32(grade.Shadows); s != 0 {
		w := 1 - smoothstepf(0, 0.5, l)
		r += s * 0.25 * w
		g += s * 0.25 * w
		b += s * 0.25 * w
	}
	if hl := float32(grade.Highlights); hl != 0 {
		w := smoothstepf(0.5, 1, l)
		r += hl * 0.25 * w
		g += hl * 0.25 * w
		b += hl * 0.25 * w
	}
	if bl := float32(grade.Blacks); bl != 0 {
		w := 1 - smoothstepf(0, 0.25, l)
		r += bl * 0.2 * w
		g += bl * 0.2 * w
		b += bl * 0.2 * w
	}

	// Portrait light: radial brightness and warmth boost from the frame
	// center.
	if pl := float32(grade.PortraitLight); pl > 0 {
		dx := outU - 0.5
		dy := outV - 0.5
		dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		fall := 1 - smoothstepf(0, 0.65, dist)
		boost := 1 + pl*0.4*fall
		r = r*boost + pl*0.05*fall
		g *= boost
		b *= boost
	}

	// 3D LUT, blended by strength against the pre-LUT color.
	if sc.hasLUT {
		lr, lg, lb := sc.b.LUT.Sample(clamp01f(r), clamp01f(g), clamp01f(b))
		s := float32(grade.LutStrength)
		r = lerpf(r, lr, s)
		g = lerpf(g, lg, s)
		b = lerpf(b, lb, s)
	}

	// Saturation: mix between luma and color.
	sat := float32(grade.Saturation)
	l = lumaf(r, g, b)
	r = lerpf(l, r, sat)
	g = lerpf(l, g, sat)
	b = lerpf(l, b, sat)

	return r, g, b
}

// denoise computes the range-weighted 3x3 average around (u, v).
// Spatial weight is implicit in the fixed window.
func (sc *shadeContext) denoise(u, v, cr, cg, cb float32) (float32, float32, float32) {
	var sumR, sumG, sumB, sumW float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nr, ng, nb, _ := sc.src.sample(u+float32(dx)*sc.texelX, v+float32(dy)*sc.texelY)
			dr := nr - cr
			dg := ng - cg
			db := nb - cb
			dist2 := dr*dr + dg*dg + db*db
			w := float32(math.Exp(float64(-dist2 * denoiseRangeSigma)))
			sumR += nr * w
			sumG += ng * w
			sumB += nb * w
			sumW += w
		}
	}
	if sumW <= 0 {
		return cr, cg, cb
	}
	return sumR / sumW, sumG / sumW, sumB / sumW
}

// boxAverage is the unweighted 3x3 average around (u, v).
func (sc *shadeContext) boxAverage(u, v float32) (float32, float32, float32) {
	var sumR, sumG, sumB float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nr, ng, nb, _ := sc.src.sample(u+float32(dx)*sc.texelX, v+float32(dy)*sc.texelY)
			sumR += nr
			sumG += ng
			sumB += nb
		}
	}
	return sumR / 9, sumG / 9, sumB / 9
}

// applyMode applies the active analytic overlay mode. Input color is
// already clamped to [0, 1].
func (sc *shadeContext) applyMode(r, g, b float32, x, y int, u, v, srcU, srcV float32) (float32, float32, float32) {
	switch sc.u.Mode {
	case camstudio.ModeFocusPeaking:
		lr, lg2, lb, _ := sc.src.sample(srcU-sc.texelX, srcV)
		rr, rg, rb, _ := sc.src.sample(srcU+sc.texelX, srcV)
		grad := lumaf(rr, rg, rb) - lumaf(lr, lg2, lb)
		if grad < 0 {
			grad = -grad
		}
		if grad > focusPeakThreshold {
			return 0.1, 1, 0.2
		}
		l := lumaf(r, g, b)
		return l, l, l

	case camstudio.ModeZebras:
		if lumaf(r, g, b) > zebraLumaThreshold {
			if fractf((float32(x)+float32(y))/zebraStripePeriod) > 0.5 {
				return 1, 0.1, 0.1
			}
		}
		return r, g, b

	case camstudio.ModeLevel:
		d := (u-0.5)*sc.levelNormalX + (v-0.5)*sc.levelNormalY
		if d < 0 {
			d = -d
		}
		if d < levelLineHalfWidth {
			return 0.2, 1, 0.2
		}
		return r, g, b

	case camstudio.ModeHeatmap:
		return falseColor(lumaf(r, g, b))

	default:
		return r, g, b
	}
}

// falseColor maps luma through the broadcast-style exposure ramp:
// purple, blue, green, pink, grey, yellow, red.
func falseColor(l float32) (float32, float32, float32) {
	switch {
	case l < 0.05:
		return 0.35, 0.05, 0.45
	case l < 0.15:
		return 0.1, 0.2, 0.85
	case l < 0.35:
		return 0.1, 0.6, 0.25
	case l < 0.55:
		return 0.9, 0.55, 0.65
	case l < 0.75:
		return l, l, l
	case l < 0.9:
		return 0.95, 0.85, 0.1
	default:
		return 0.9, 0.1, 0.1
	}
}

// skinLikelihood estimates skin confidence from hue/saturation/value
// heuristics: hue near 25 degrees, moderate saturation and value bands.
func skinLikelihood(r, g, b float32) float32 {
	h, s, v := rgbToHSV(r, g, b)

	dh := h - 25
	if dh < 0 {
		dh = -dh
	}
	if dh > 180 {
		dh = 360 - dh
	}
	hueW := 1 - smoothstepf(10, 40, dh)
	satW := smoothstepf(0.1, 0.3, s) * (1 - smoothstepf(0.6, 0.85, s))
	valW := smoothstepf(0.15, 0.4, v)

	return hueW * satW * valW
}

// rgbToHSV converts to hue in degrees [0, 360), saturation and value in
// [0, 1].
func rgbToHSV(r, g, b float32) (float32, float32, float32) {
	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	min := r
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}

	v := max
	d := max - min

	var s float32
	if max > 0 {
		s = d / max
	}

	var h float32
	if d > 0 {
		switch max {
		case r:
			h = (g - b) / d
			if h < 0 {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h *= 60
	}

	return h, s, v
}

// sampler2D samples a pixmap bilinearly in normalized UV coordinates with
// clamp-to-edge addressing.
type sampler2D struct {
	data []uint8
	w, h int
}

func newSampler2D(pm *camstudio.Pixmap) sampler2D {
	return sampler2D{data: pm.Data(), w: pm.Width(), h: pm.Height()}
}

func (s sampler2D) sample(u, v float32) (float32, float32, float32, float32) {
	if s.w == 0 || s.h == 0 {
		return 0, 0, 0, 0
	}
	// Clamp-to-edge, matching the shader sampler. Neighbor taps from the
	// filter kernels land outside [0,1] on the outermost rows; out-of-frame
	// view pixels are rejected by remap before sampling.
	u = clamp01f(u)
	v = clamp01f(v)

	fx := u*float32(s.w) - 0.5
	fy := v*float32(s.h) - 0.5

	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	r00, g00, b00, a00 := s.texel(x0, y0)
	r10, g10, b10, a10 := s.texel(x0+1, y0)
	r01, g01, b01, a01 := s.texel(x0, y0+1)
	r11, g11, b11, a11 := s.texel(x0+1, y0+1)

	r := lerpf(lerpf(r00, r10, tx), lerpf(r01, r11, tx), ty)
	g := lerpf(lerpf(g00, g10, tx), lerpf(g01, g11, tx), ty)
	b := lerpf(lerpf(b00, b10, tx), lerpf(b01, b11, tx), ty)
	a := lerpf(lerpf(a00, a10, tx), lerpf(a01, a11, tx), ty)
	return r, g, b, a
}

// texel fetches one pixel with clamp-to-edge addressing.
func (s sampler2D) texel(x, y int) (float32, float32, float32, float32) {
	if x < 0 {
		x = 0
	}
	if x >= s.w {
		x = s.w - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= s.h {
		y = s.h - 1
	}
	i := (y*s.w + x) * 4
	return float32(s.data[i]) / 255, float32(s.data[i+1]) / 255,
		float32(s.data[i+2]) / 255, float32(s.data[i+3]) / 255
}

// Math helpers, float32 throughout the hot path.

func lumaf(r, g, b float32) float32 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func lerpf(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clamp01f(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// smoothstepf is the GLSL smoothstep: hermite interpolation between edges.
// edge0 > edge1 gives the inverted (falling) step, as GLSL does.
func smoothstepf(edge0, edge1, x float32) float32 {
	t := clamp01f((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func fractf(v float32) float32 {
	return v - float32(math.Floor(float64(v)))
}

func powf(base, exp float32) float32 {
	if base <= 0 {
		return 0
	}
	return float32(math.Pow(float64(base), float64(exp)))
}

// hash21 is the classic GPU one-liner hash used for film grain.
func hash21(x, y float32) float32 {
	s := math.Sin(float64(x)*12.9898+float64(y)*78.233) * 43758.5453
	return float32(s - math.Floor(s))
}

func toByte(v float32) uint8 {
	v = clamp01f(v)
	return uint8(v*255 + 0.5)
}
