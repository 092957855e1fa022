// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"testing"
)

func TestMaskSampleNearest(t *testing.T) {
	m := NewMask(4, 2)
	m.Data[0] = 1.0  // (0,0)
	m.Data[7] = 0.25 // (3,1)

	if got := m.Sample(0.05, 0.2); got != 1.0 {
		t.Errorf("Sample near (0,0) = %v, want 1", got)
	}
	if got := m.Sample(0.9, 0.8); got != 0.25 {
		t.Errorf("Sample near (3,1) = %v, want 0.25", got)
	}
	if got := m.Sample(0.4, 0.2); got != 0 {
		t.Errorf("Sample of untouched cell = %v, want 0", got)
	}
}

func TestMaskNilAndOutOfRange(t *testing.T) {
	var m *Mask
	if got := m.Sample(0.5, 0.5); got != 0 {
		t.Errorf("nil mask Sample = %v, want 0", got)
	}

	m = NewMask(2, 2)
	m.Data[0], m.Data[1], m.Data[2], m.Data[3] = 1, 1, 1, 1
	for _, uv := range [][2]float32{{-0.1, 0.5}, {1.1, 0.5}, {0.5, -0.1}, {0.5, 1.1}} {
		if got := m.Sample(uv[0], uv[1]); got != 0 {
			t.Errorf("Sample(%v, %v) = %v, want 0 outside [0,1]", uv[0], uv[1], got)
		}
	}
}

func TestMaskFromGray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.Pix[0] = 255
	gray.Pix[3] = 51

	m := MaskFromGray(gray)
	if m.W != 2 || m.H != 2 {
		t.Fatalf("size = %dx%d, want 2x2", m.W, m.H)
	}
	if m.Data[0] != 1 {
		t.Errorf("Data[0] = %v, want 1", m.Data[0])
	}
	if got := m.Data[3]; got < 0.19 || got > 0.21 {
		t.Errorf("Data[3] = %v, want 0.2", got)
	}
}
