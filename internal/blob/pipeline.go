// SPDX-License-Identifier: MIT
/*
Package blob turns one frame of analysis signals into blob geometry: a
fixed ring of vertices displaced by coherent noise, plus the color and
overlay parameters a renderer or transport needs.

The pipeline is a soft state machine. Logical mode flips immediately on
Activate/Deactivate, but every rendered parameter lerps toward its new
target, so transitions are visually continuous. Numeric safety is a hard
contract here: every radius is clamped into a strictly positive band
before it leaves this package.
*/
package blob

import (
	"math"

	"aura/internal/analysis"
	"aura/internal/noise"
)

// Mode is the logical state of the visualization.
type Mode int

const (
	ModeIdle Mode = iota
	ModeConnecting
	ModeActive
)

func (m Mode) String() string {
	switch m {
	case ModeConnecting:
		return "connecting"
	case ModeActive:
		return "active"
	default:
		return "idle"
	}
}

// Frame is one rendered frame's worth of geometry and color, safe to
// hand to transports and renderers after Step returns.
type Frame struct {
	Seq      uint64  `json:"seq"`
	Mode     string  `json:"mode"`
	Activity float64 `json:"activity"`

	// Vertices are interleaved x,y pairs centered on the origin.
	Vertices   []float64 `json:"vertices"`
	BaseRadius float64   `json:"base_radius"`

	Hue         float64 `json:"hue"`
	Saturation  float64 `json:"saturation"`
	Brightness  float64 `json:"brightness"`
	Flash       float64 `json:"flash"`
	EdgeColor   string  `json:"edge_color"`
	CenterColor string  `json:"center_color"`

	TextureAlpha float64 `json:"texture_alpha"`
	Ripple       float64 `json:"ripple"` // expansion progress, 0 when inactive
	GlyphScale   float64 `json:"glyph_scale"`
	Recording    bool    `json:"recording"`

	LayerCount    int     `json:"layer_count"`
	EdgeAlpha     float64 `json:"edge_alpha"`
	CenterAlpha   float64 `json:"center_alpha"`
	EdgeSharpness float64 `json:"edge_sharpness"`
}

// Pipeline owns the animation state and produces one Frame per Step.
// It is not safe for concurrent use; the frame loop is its only caller.
type Pipeline struct {
	preset Preset
	field  noise.Field

	mode      Mode
	state     State
	recording bool

	baseRadius float64
	seq        uint64

	radii []float64
	ring  []float64 // interleaved x,y scratch
}

// NewPipeline creates a pipeline with the given tuning and noise field,
// sized for a nominal container until the first Resize.
func NewPipeline(preset Preset, field noise.Field) *Pipeline {
	if preset.VertexCount < 3 {
		preset = DefaultPreset()
	}
	p := &Pipeline{
		preset: preset,
		field:  field,
		state:  newState(preset),
		radii:  make([]float64, preset.VertexCount),
		ring:   make([]float64, preset.VertexCount*2),
	}
	p.Resize(480, 480)
	return p
}

// SetMode flips the logical state immediately. The rendered parameters
// follow over subsequent Steps.
func (p *Pipeline) SetMode(m Mode) {
	if p.mode == ModeActive && m == ModeIdle {
		// Leaving the active state ends any silence bookkeeping.
		p.state.SilenceFrames = 0
		p.state.Breathing = false
		p.state.Voiced = false
	}
	p.mode = m
}

// Mode returns the current logical state.
func (p *Pipeline) Mode() Mode {
	return p.mode
}

// SetRecording toggles the recording indicator on rendered frames.
func (p *Pipeline) SetRecording(on bool) {
	p.recording = on
}

// Resize recomputes the base radius from the smaller container
// dimension. Degenerate dimensions clamp to a positive floor, and the
// time accumulators are untouched so the animation phase never jumps.
func (p *Pipeline) Resize(width, height float64) {
	smaller := math.Min(width, height)
	if smaller < 1 || math.IsNaN(smaller) || math.IsInf(smaller, 0) {
		smaller = 1
	}
	p.baseRadius = math.Max(1, smaller*p.preset.RadiusRatio)
}

// BaseRadius returns the current base radius.
func (p *Pipeline) BaseRadius() float64 {
	return p.baseRadius
}

// State returns a copy of the animation state, for tests and debugging.
func (p *Pipeline) State() State {
	return p.state
}

// Step advances the animation one frame from the given signal set and
// returns the resulting frame.
func (p *Pipeline) Step(sig analysis.SignalFrame) Frame {
	pre := p.preset
	st := &p.state

	st.Time += pre.TimeStep
	st.AngularOffset += pre.AngularDrift * (0.5 + clamp01(sig.OverallLevel))

	// Activity follows the logical mode; everything audio-reactive is
	// additionally scaled by it so deactivation relaxes smoothly.
	activityTarget := 0.0
	if p.mode != ModeIdle {
		activityTarget = 1.0
	}
	st.Activity = clamp01(lerp(st.Activity, activityTarget, pre.ActivityLerp))

	p.updateParams(sig)
	p.updateSilence(sig)
	p.updateColor(sig)
	p.computeRing()

	return p.snapshot(sig)
}

// updateParams lerps every deformation parameter toward a clamped,
// mapped function of the current signals. Inputs are clamped before
// mapping so out-of-range audio cannot produce out-of-range geometry.
func (p *Pipeline) updateParams(sig analysis.SignalFrame) {
	pre := p.preset
	st := &p.state
	k := pre.ParamLerp

	st.PassiveDeform = lerp(st.PassiveDeform, pre.IdleDeform, k)

	// The peak extension tracks combined mid and treble energy.
	peakTarget := clamp01((clamp01(sig.MidLevel) + clamp01(sig.TrebleLevel)) * 0.75)
	st.PeakExtension = clamp01(lerp(st.PeakExtension, peakTarget, k))

	// The melody factor: fast pitch movement reads as melodic speech
	// and drives the waviness.
	melody := clamp01(sig.PitchChangeRate * 8)
	st.WavinessInfluence = clamp01(lerp(st.WavinessInfluence, melody, k))
	st.WavinessScale = lerp(st.WavinessScale, 1.5+clamp01(sig.FrequencySpread)*2, k)

	st.TextureIntensity = clamp01(lerp(st.TextureIntensity, clamp01(sig.SustainedMidLevel*1.2), k))
	st.EdgeSharpness = lerp(st.EdgeSharpness, 0.35+clamp01(sig.TrebleLevel)*0.5, k)
	st.TextureAlpha = clamp01(lerp(st.TextureAlpha, st.Activity*st.TextureIntensity*0.5, k))
}

// updateSilence tracks silence runs while active: sustained silence
// starts the breathing oscillation, and a long run after speech fires a
// one-shot pause ripple plus the inhale dip.
func (p *Pipeline) updateSilence(sig analysis.SignalFrame) {
	pre := p.preset
	st := &p.state

	if p.mode == ModeActive {
		if sig.OverallLevel < pre.SilenceThreshold {
			st.SilenceFrames++
		} else {
			st.SilenceFrames = 0
			st.Breathing = false
			st.Voiced = true
		}

		if st.SilenceFrames >= pre.BreathFrames {
			st.Breathing = true
		}
		if st.Breathing {
			st.BreathPhase += pre.BreathRate
		}

		if st.Voiced && st.SilenceFrames >= pre.PauseFrames {
			// One shot per silence run.
			st.Voiced = false
			st.PauseTimer = pre.PauseRippleFrames
			st.PauseIntensity = 1
			st.RippleAge = 0
		}
	}

	// The inhale dips the core radius, then rebounds past rest before
	// settling, like catching a breath.
	inhaleTarget := 0.0
	if st.PauseTimer > 0 {
		if st.PauseTimer > pre.PauseRippleFrames/2 {
			inhaleTarget = -pre.InhaleDepth
		} else {
			inhaleTarget = pre.InhaleDepth * 0.6
		}
		st.PauseTimer--
	}
	st.InhaleAmount = lerp(st.InhaleAmount, inhaleTarget, pre.InhaleLerp)
	st.PauseIntensity *= 0.94

	if st.RippleAge >= 0 {
		st.RippleAge++
		if st.RippleAge > pre.PauseRippleFrames {
			st.RippleAge = -1
		}
	}
}

// updateColor drifts the hue within a bounded band around the preset
// base hue and applies the bounded level boosts and transient flash.
func (p *Pipeline) updateColor(sig analysis.SignalFrame) {
	pre := p.preset
	st := &p.state
	k := pre.ColorLerp

	hueTarget := pre.BaseHue +
		(clamp01(sig.FrequencySpread)-0.5)*2*pre.HueRange +
		(clamp01(sig.PitchProxy)-0.5)*2*pre.PitchHueRange
	band := pre.HueRange + pre.PitchHueRange
	hueTarget = clamp(hueTarget, pre.BaseHue-band, pre.BaseHue+band)

	brightTarget := clamp(pre.BaseBrightness+clamp01(sig.OverallLevel)*pre.BrightnessBoost, 0, 1)

	if p.mode == ModeConnecting {
		// Distinct pulsing color while the session is established,
		// independent of (absent) audio.
		hueTarget = pre.ConnectingHue
		brightTarget = clamp(pre.BaseBrightness+0.1*math.Sin(st.Time*18), 0, 1)
	}

	if sig.IsTransientMoment && st.Flash < 0.9 {
		st.Flash = 0.9
	}
	st.Flash *= pre.FlashDecay

	satTarget := clamp(pre.BaseSaturation+clamp01(sig.OverallLevel)*pre.SaturationBoost+st.Flash*0.25, 0, 0.95)
	brightTarget = clamp(brightTarget+st.Flash*0.2, 0, 1)

	st.Hue = lerp(st.Hue, hueTarget, k)
	st.Saturation = lerp(st.Saturation, satTarget, k)
	st.Brightness = lerp(st.Brightness, brightTarget, k)
}

func (p *Pipeline) snapshot(sig analysis.SignalFrame) Frame {
	pre := p.preset
	st := &p.state
	p.seq++

	vertices := make([]float64, len(p.ring))
	copy(vertices, p.ring)

	edge, center := p.colors()

	ripple := 0.0
	if st.RippleAge >= 0 && pre.PauseRippleFrames > 0 {
		ripple = clamp01(float64(st.RippleAge) / float64(pre.PauseRippleFrames))
	}

	return Frame{
		Seq:        p.seq,
		Mode:       p.mode.String(),
		Activity:   st.Activity,
		Vertices:   vertices,
		BaseRadius: p.baseRadius,

		Hue:         st.Hue,
		Saturation:  st.Saturation,
		Brightness:  st.Brightness,
		Flash:       st.Flash,
		EdgeColor:   edge.Hex(),
		CenterColor: center.Hex(),

		TextureAlpha: st.TextureAlpha,
		Ripple:       ripple,
		GlyphScale:   1 + clamp01(sig.OverallLevel)*pre.GlyphScaleBoost,
		Recording:    p.recording,

		LayerCount:    pre.LayerCount,
		EdgeAlpha:     pre.EdgeAlpha,
		CenterAlpha:   pre.CenterAlpha,
		EdgeSharpness: st.EdgeSharpness,
	}
}
