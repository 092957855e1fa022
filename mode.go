package camstudio

// Mode selects the analytic overlay applied after grading.
// Exactly one mode is active at a time.
type Mode uint8

const (
	// ModeStandard renders the graded frame with no analytic overlay.
	ModeStandard Mode = iota

	// ModeFocusPeaking colorizes high-gradient edges green and desaturates
	// the rest of the frame.
	ModeFocusPeaking

	// ModeZebras draws diagonal red stripes over blown highlights.
	ModeZebras

	// ModeLevel draws a horizon line through the frame center at the
	// supplied gyro angle.
	ModeLevel

	// ModeHeatmap maps luma through a broadcast-style false-color ramp.
	ModeHeatmap
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeFocusPeaking:
		return "focus-peaking"
	case ModeZebras:
		return "zebras"
	case ModeLevel:
		return "level"
	case ModeHeatmap:
		return "heatmap"
	default:
		return "unknown"
	}
}
