// SPDX-License-Identifier: MIT
package blob

import "math"

// State is the smoothed parameter set driving geometry and color. It is
// owned by the Pipeline, mutated once per frame, and never shared across
// frames concurrently. Every scalar moves toward a per-frame target by
// exponential interpolation; only the boolean flags flip instantly.
type State struct {
	// Activity is the smoothed 0..1 engine on/off toggle.
	Activity float64

	// Deformation parameters.
	PassiveDeform     float64 // idle wobble amplitude
	TextureIntensity  float64 // fine-noise contribution
	WavinessInfluence float64 // melody-driven waviness contribution
	WavinessScale     float64 // spatial scale of the waviness noise
	AngularOffset     float64 // accumulating angular noise offset
	PeakExtension     float64 // overall active displacement magnitude
	EdgeSharpness     float64 // layer alpha falloff steepness
	TextureAlpha      float64 // internal texture visibility

	// Color parameters.
	Hue        float64
	Saturation float64
	Brightness float64
	Flash      float64 // transient flash intensity

	// Breathing and pause sub-state.
	SilenceFrames  int     // consecutive frames below the silence threshold
	Voiced         bool    // speech has occurred since the last pause
	Breathing      bool    // idle oscillation during sustained silence
	BreathPhase    float64 // breathing oscillator phase
	PauseTimer     int     // frames remaining in the pause effect
	PauseIntensity float64 // decaying pause effect strength
	InhaleAmount   float64 // signed core-radius bump, fraction of base radius
	RippleAge      int     // frames since the ripple started, -1 when inactive

	// Time is the noise time accumulator. It survives resizes so the
	// animation phase never jumps.
	Time float64
}

// newState returns the resting state for a preset.
func newState(p Preset) State {
	return State{
		PassiveDeform: p.IdleDeform,
		WavinessScale: 1.5,
		EdgeSharpness: 0.35,
		Hue:           p.BaseHue,
		Saturation:    p.BaseSaturation,
		Brightness:    p.BaseBrightness,
		RippleAge:     -1,
	}
}

func lerp(current, target, k float64) float64 {
	return current + (target-current)*k
}

// clamp maps NaN to lo so one bad signal frame cannot poison the
// smoothed state.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
