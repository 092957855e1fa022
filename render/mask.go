// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "image"

// Mask is a single-channel confidence texture in the same UV space as the
// source frame, supplied by the analysis collaborator (skin confidence,
// background segmentation). Values are in [0, 1].
//
// A nil *Mask behaves as all-zero: no effect on the pipeline.
type Mask struct {
	// W and H are the mask dimensions. They need not match the frame;
	// sampling is by normalized UV.
	W, H int

	// Data holds W*H values in row-major order.
	Data []float32
}

// NewMask creates a zero-filled mask.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Data: make([]float32, w*h)}
}

// MaskFromGray converts a grayscale image to a mask.
func MaskFromGray(img *image.Gray) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			m.Data[y*m.W+x] = float32(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y) / 255
		}
	}
	return m
}

// Sample returns the mask value at normalized (u, v), nearest-neighbor.
// Out-of-range coordinates and nil masks sample as 0.
func (m *Mask) Sample(u, v float32) float32 {
	if m == nil || m.W == 0 || m.H == 0 {
		return 0
	}
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return 0
	}
	x := int(u * float32(m.W-1))
	y := int(v * float32(m.H-1))
	return m.Data[y*m.W+x]
}
