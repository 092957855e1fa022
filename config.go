package camstudio

// Resolution is an output surface size in pixels.
type Resolution struct {
	Width  int `env:"WIDTH" envDefault:"1280"`
	Height int `env:"HEIGHT" envDefault:"720"`
}

// FeatureFlags toggles heavy optional features. The render engine gates
// the stages it owns (noise smoothing, background blur); the rest pass
// through to the collaborators that own each feature. The quality
// controller may recommend switching them off.
type FeatureFlags struct {
	BackgroundBlur    bool `env:"BACKGROUND_BLUR"`
	AutoFraming       bool `env:"AUTO_FRAMING"`
	NoiseCancellation bool `env:"NOISE_CANCELLATION"`
}

// PerformanceModeConfig bundles the knobs a performance mode adjusts.
//
// The render core consumes Resolution, CanvasScalingFactor, TargetFPS,
// and Features. RecorderBitrate and AnalysisSampling are carried for the
// recording and analysis collaborators and passed through untouched.
type PerformanceModeConfig struct {
	TargetFPS           int          `env:"TARGET_FPS" envDefault:"30"`
	Resolution          Resolution   `envPrefix:"RESOLUTION_"`
	RecorderBitrate     int          `env:"RECORDER_BITRATE" envDefault:"4000000"`
	AnalysisSampling    int          `env:"ANALYSIS_SAMPLING" envDefault:"2"`
	CanvasScalingFactor float64      `env:"CANVAS_SCALING_FACTOR" envDefault:"1.0"`
	Features            FeatureFlags `envPrefix:"FEATURE_"`
}
