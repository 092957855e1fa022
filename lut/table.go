// Package lut provides 3D color lookup tables for the grading pipeline:
// identity generation, .cube parsing, trilinear sampling, and a memoizing
// loader for remote tables.
//
// A table is pure data with no GPU dependency; the render engine owns any
// GPU-side copy and invalidates it together with its other resources.
package lut

import "math"

// DefaultSize is the cube edge length used for generated identity tables.
const DefaultSize = 33

// Table is a 3D color lookup table: a cube of Size^3 RGB triples in [0, 1],
// stored flat with red varying fastest, then green, then blue (the .cube
// file order).
type Table struct {
	// Name identifies the table for logging and cache bookkeeping.
	Name string

	// Size is the cube edge length.
	Size int

	// Data holds Size^3 RGB triples, length Size*Size*Size*3.
	Data []float32
}

// Identity returns a table mapping every grid point to itself exactly.
// size values below 2 fall back to DefaultSize.
func Identity(size int) Table {
	if size < 2 {
		size = DefaultSize
	}

	data := make([]float32, size*size*size*3)
	scale := 1.0 / float32(size-1)

	i := 0
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				data[i+0] = float32(r) * scale
				data[i+1] = float32(g) * scale
				data[i+2] = float32(b) * scale
				i += 3
			}
		}
	}

	return Table{Name: "identity", Size: size, Data: data}
}

// IsIdentity reports whether the table maps every grid point to itself
// within tol.
func (t Table) IsIdentity(tol float32) bool {
	if t.Size < 2 || len(t.Data) != t.Size*t.Size*t.Size*3 {
		return false
	}
	id := Identity(t.Size)
	for i, v := range t.Data {
		if d := v - id.Data[i]; d > tol || d < -tol {
			return false
		}
	}
	return true
}

// Sample returns the trilinearly interpolated table value for the input
// color. Inputs are clamped to [0, 1].
func (t Table) Sample(r, g, b float32) (float32, float32, float32) {
	if t.Size < 2 {
		return r, g, b
	}

	n := t.Size
	fr, i0r, i1r := gridCoord(r, n)
	fg, i0g, i1g := gridCoord(g, n)
	fb, i0b, i1b := gridCoord(b, n)

	// Fetch the 8 surrounding lattice points and blend along r, then g,
	// then b.
	var out [3]float32
	for c := 0; c < 3; c++ {
		c000 := t.at(i0r, i0g, i0b, c)
		c100 := t.at(i1r, i0g, i0b, c)
		c010 := t.at(i0r, i1g, i0b, c)
		c110 := t.at(i1r, i1g, i0b, c)
		c001 := t.at(i0r, i0g, i1b, c)
		c101 := t.at(i1r, i0g, i1b, c)
		c011 := t.at(i0r, i1g, i1b, c)
		c111 := t.at(i1r, i1g, i1b, c)

		c00 := lerp(c000, c100, fr)
		c10 := lerp(c010, c110, fr)
		c01 := lerp(c001, c101, fr)
		c11 := lerp(c011, c111, fr)

		c0 := lerp(c00, c10, fg)
		c1 := lerp(c01, c11, fg)

		out[c] = lerp(c0, c1, fb)
	}

	return out[0], out[1], out[2]
}

// at returns one channel of the lattice point (r, g, b).
func (t Table) at(r, g, b, channel int) float32 {
	return t.Data[(b*t.Size*t.Size+g*t.Size+r)*3+channel]
}

// gridCoord maps v in [0,1] to a lattice segment: the fractional position
// within the segment and the two bounding indices.
func gridCoord(v float32, n int) (frac float32, i0, i1 int) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	f := float64(v) * float64(n-1)
	fi := math.Floor(f)
	i0 = int(fi)
	i1 = i0 + 1
	if i1 > n-1 {
		i1 = n - 1
	}
	return float32(f - fi), i0, i1
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
