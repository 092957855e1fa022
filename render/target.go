// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/camstudio"
)

// Target is the rendered backing surface. The graded output lands here and
// is consumed as an input texture/stream by the recording and
// virtual-camera collaborators.
//
// Targets may support CPU access (Pixels), GPU access, or both.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to pixel data, or nil for GPU-only
	// targets. For RGBA format, each pixel is 4 bytes: R, G, B, A.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// PixmapTarget is a CPU-backed render target wrapping a camstudio.Pixmap.
// It is the default target and the one the CPU pipeline writes to.
type PixmapTarget struct {
	pm *camstudio.Pixmap
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{pm: camstudio.NewPixmap(width, height)}
}

// NewPixmapTargetFromPixmap wraps an existing pixmap as a render target.
// The pixmap is used directly without copying.
func NewPixmapTargetFromPixmap(pm *camstudio.Pixmap) *PixmapTarget {
	return &PixmapTarget{pm: pm}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.pm.Width()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.pm.Height()
}

// Format returns RGBA8 for pixmap targets.
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns the raw RGBA pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.pm.Data()
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.pm.Width() * 4
}

// Pixmap returns the underlying pixmap.
func (t *PixmapTarget) Pixmap() *camstudio.Pixmap {
	return t.pm
}

// Image returns the target contents as an image.RGBA copy.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.pm.ToImage()
}

// Ensure PixmapTarget implements Target.
var _ Target = (*PixmapTarget)(nil)
