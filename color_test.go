package camstudio

import (
	"image/color"
	"math"
	"testing"
)

func TestRGBConstructor(t *testing.T) {
	c := RGB(0.2, 0.4, 0.6)
	if c.R != 0.2 || c.G != 0.4 || c.B != 0.6 || c.A != 1 {
		t.Errorf("RGB(0.2, 0.4, 0.6) = %+v", c)
	}
}

func TestColorRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    RGBA
	}{
		{"opaque mid", RGBA{R: 0.5, G: 0.25, B: 0.75, A: 1}},
		{"black", RGBA{A: 1}},
		{"white", RGBA{R: 1, G: 1, B: 1, A: 1}},
		{"transparent", Transparent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromColor(tt.c.Color())
			if math.Abs(got.R-tt.c.R) > 1.0/255 ||
				math.Abs(got.G-tt.c.G) > 1.0/255 ||
				math.Abs(got.B-tt.c.B) > 1.0/255 ||
				math.Abs(got.A-tt.c.A) > 1.0/255 {
				t.Errorf("round trip %+v -> %+v", tt.c, got)
			}
		})
	}
}

func TestColorClampsOutOfRange(t *testing.T) {
	c := RGBA{R: 2, G: -1, B: 0.5, A: 1}
	nrgba, ok := c.Color().(color.NRGBA)
	if !ok {
		t.Fatalf("Color() returned %T, want color.NRGBA", c.Color())
	}
	if nrgba.R != 255 || nrgba.G != 0 {
		t.Errorf("out-of-range components not clamped: %+v", nrgba)
	}
}

func TestLuma(t *testing.T) {
	tests := []struct {
		name string
		c    RGBA
		want float64
	}{
		{"black", RGBA{A: 1}, 0},
		{"white", RGBA{R: 1, G: 1, B: 1, A: 1}, 1},
		{"green heavy", RGBA{G: 1, A: 1}, 0.7152},
		{"red", RGBA{R: 1, A: 1}, 0.2126},
		{"blue", RGBA{B: 1, A: 1}, 0.0722},
	}
	for _, tt := range tests {
		if got := tt.c.Luma(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: Luma() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
