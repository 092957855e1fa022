package camstudio

import (
	"math"
	"testing"
)

func TestGradeParamsClamped(t *testing.T) {
	tests := []struct {
		name string
		in   GradeParams
		want GradeParams
	}{
		{
			name: "in-domain values unchanged",
			in:   GradeParams{Exposure: 0.5, Saturation: 1.5, Vignette: 0.3},
			want: GradeParams{Exposure: 0.5, Saturation: 1.5, Vignette: 0.3},
		},
		{
			name: "bipolar fields clamp to [-1,1]",
			in:   GradeParams{Exposure: 3, Contrast: -9, Temperature: 2, Tint: -2},
			want: GradeParams{Exposure: 1, Contrast: -1, Temperature: 1, Tint: -1},
		},
		{
			name: "unipolar fields clamp to [0,1]",
			in:   GradeParams{Vignette: -1, Grain: 7, Denoise: -0.5, LutStrength: 1.5},
			want: GradeParams{Vignette: 0, Grain: 1, Denoise: 0, LutStrength: 1},
		},
		{
			name: "saturation clamps to [0,2]",
			in:   GradeParams{Saturation: 5},
			want: GradeParams{Saturation: 2},
		},
		{
			name: "negative saturation clamps to zero",
			in:   GradeParams{Saturation: -1},
			want: GradeParams{Saturation: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamped()
			if got != tt.want {
				t.Errorf("Clamped() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGradeParamsClampedExtremes(t *testing.T) {
	in := GradeParams{
		Exposure: math.Inf(1), Contrast: math.Inf(-1), Saturation: 1e9,
		Lift: -1e9, Grain: math.Inf(1), SkinSmoothing: 100,
	}
	got := in.Clamped()

	if got.Exposure != 1 || got.Contrast != -1 || got.Saturation != 2 {
		t.Errorf("extreme clamp: got %+v", got)
	}
	if got.Lift != -1 || got.Grain != 1 || got.SkinSmoothing != 1 {
		t.Errorf("extreme clamp: got %+v", got)
	}
}

func TestTransformClamped(t *testing.T) {
	zero := Transform{}.Clamped()
	if zero.Zoom != 1 {
		t.Errorf("zero-value Zoom = %v, want identity 1", zero.Zoom)
	}

	neg := Transform{Zoom: -4, PanX: 2, PanY: -2}.Clamped()
	if neg.Zoom != MinZoom {
		t.Errorf("negative Zoom = %v, want %v", neg.Zoom, MinZoom)
	}
	if neg.PanX != 1 || neg.PanY != -1 {
		t.Errorf("pan = (%v, %v), want (1, -1)", neg.PanX, neg.PanY)
	}

	id := IdentityTransform()
	if id.Clamped() != id {
		t.Errorf("identity transform should be stable under Clamped")
	}
}

func TestNeutralGrade(t *testing.T) {
	n := NeutralGrade()
	if n.Saturation != 1 {
		t.Errorf("NeutralGrade Saturation = %v, want 1", n.Saturation)
	}
	if n != n.Clamped() {
		t.Errorf("NeutralGrade must be in-domain")
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeStandard, "standard"},
		{ModeFocusPeaking, "focus-peaking"},
		{ModeZebras, "zebras"},
		{ModeLevel, "level"},
		{ModeHeatmap, "heatmap"},
		{Mode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
