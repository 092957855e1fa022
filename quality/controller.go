// Package quality provides the adaptive-quality controller: it observes
// frame timings published by the render engine and recommends a
// resolution/feature tier.
//
// The controller is purely advisory. It never touches GPU state, and every
// call is O(window size), so callers can poll it once per frame.
package quality

import "github.com/gogpu/camstudio"

// Tier names a bundle of resolution scale, target FPS, and feature flags.
type Tier uint8

const (
	// TierHigh is full resolution with all features enabled.
	TierHigh Tier = iota

	// TierMedium reduces resolution while keeping features on.
	TierMedium

	// TierLow halves resolution and disables heavy features.
	TierLow
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	default:
		return "unknown"
	}
}

// Features flags the heavy optional features a tier keeps enabled.
type Features struct {
	Beauty         bool
	BackgroundBlur bool
}

// State is a recommended quality configuration. It is recomputed on every
// evaluation and never persisted.
type State struct {
	Tier            Tier
	ResolutionScale float64
	TargetFPS       int
	Features        Features
	Reason          string
}

// PerformanceMode converts the recommendation into the config consumed by
// the render engine. The base resolution passes through unchanged; the
// tier is expressed via the canvas scaling factor and feature gates.
func (s State) PerformanceMode(base camstudio.Resolution) camstudio.PerformanceModeConfig {
	return camstudio.PerformanceModeConfig{
		TargetFPS:           s.TargetFPS,
		Resolution:          base,
		RecorderBitrate:     bitrateForTier(s.Tier),
		AnalysisSampling:    analysisSamplingForTier(s.Tier),
		CanvasScalingFactor: s.ResolutionScale,
		Features: camstudio.FeatureFlags{
			BackgroundBlur:    s.Features.BackgroundBlur,
			AutoFraming:       s.Tier != TierLow,
			NoiseCancellation: s.Features.Beauty,
		},
	}
}

func bitrateForTier(t Tier) int {
	switch t {
	case TierLow:
		return 1_500_000
	case TierMedium:
		return 2_500_000
	default:
		return 4_000_000
	}
}

func analysisSamplingForTier(t Tier) int {
	// Low tier analyzes every fourth frame, high every second.
	switch t {
	case TierLow:
		return 4
	case TierMedium:
		return 3
	default:
		return 2
	}
}

// Window and threshold constants for the control loop.
const (
	// windowCapacity is the number of timing samples retained.
	windowCapacity = 60

	// minSamples is the evaluation warm-up: below this the controller
	// stays optimistic and recommends the high tier.
	minSamples = 30

	// lowFPSThreshold and mediumFPSThreshold split the tiers.
	lowFPSThreshold    = 20.0
	mediumFPSThreshold = 30.0

	// downscaleStreak is the number of consecutive below-high evaluations
	// required before ShouldDownscale reports true. Hysteresis against
	// transient dips.
	downscaleStreak = 3
)

// Controller recommends quality tiers from a rolling window of frame
// timings. The zero value is ready to use.
//
// Controller is not safe for concurrent use; drive it from the render loop.
type Controller struct {
	samples [windowCapacity]float64
	head    int
	count   int

	badStreak int
}

// AddSample records one frame duration in milliseconds. When the window is
// full the oldest sample is evicted.
func (c *Controller) AddSample(durationMs float64) {
	c.samples[c.head] = durationMs
	c.head = (c.head + 1) % windowCapacity
	if c.count < windowCapacity {
		c.count++
	}
}

// Len returns the number of samples currently held.
func (c *Controller) Len() int {
	return c.count
}

// Recommend classifies the current window into a tier.
//
// With fewer than 30 samples the controller optimistically returns the high
// tier. Each call also advances the consecutive-bad streak consumed by
// ShouldDownscale: a below-high result increments it, a high result resets
// it to zero.
func (c *Controller) Recommend() State {
	if c.count < minSamples {
		return State{
			Tier:            TierHigh,
			ResolutionScale: 1.0,
			TargetFPS:       60,
			Features:        Features{Beauty: true, BackgroundBlur: true},
			Reason:          "warming up",
		}
	}

	var sum float64
	for i := 0; i < c.count; i++ {
		sum += c.samples[i]
	}
	avgMs := sum / float64(c.count)

	fps := 0.0
	if avgMs > 0 {
		fps = 1000.0 / avgMs
	}

	var s State
	switch {
	case fps <= lowFPSThreshold:
		s = State{
			Tier:            TierLow,
			ResolutionScale: 0.5,
			TargetFPS:       30,
			Features:        Features{},
			Reason:          "sustained frame rate at or below 20 fps",
		}
	case fps < mediumFPSThreshold:
		s = State{
			Tier:            TierMedium,
			ResolutionScale: 0.75,
			TargetFPS:       30,
			Features:        Features{Beauty: true, BackgroundBlur: true},
			Reason:          "frame rate below 30 fps",
		}
	default:
		s = State{
			Tier:            TierHigh,
			ResolutionScale: 1.0,
			TargetFPS:       60,
			Features:        Features{Beauty: true, BackgroundBlur: true},
		}
	}

	if s.Tier == TierHigh {
		c.badStreak = 0
	} else {
		c.badStreak++
	}

	return s
}

// ShouldDownscale reports whether the last 3 consecutive evaluations
// classified below the high tier. A single good evaluation resets the
// streak.
func (c *Controller) ShouldDownscale() bool {
	return c.badStreak >= downscaleStreak
}

// Reset clears the window and the downscale streak, typically after a
// manual performance-mode change.
func (c *Controller) Reset() {
	c.head = 0
	c.count = 0
	c.badStreak = 0
}
