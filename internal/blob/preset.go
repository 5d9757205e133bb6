// SPDX-License-Identifier: MIT
package blob

import "sort"

// Preset holds the tuning constants for one visual personality. The
// values were hand-tuned against live microphones; they are carried as
// configuration rather than derived from anything.
type Preset struct {
	Name string

	// Geometry
	VertexCount   int     // vertices in the ring
	LayerCount    int     // concentric translucent layers
	RadiusRatio   float64 // base radius as a fraction of min(width, height)
	MinRadiusFrac float64 // hard lower clamp, fraction of base radius
	MaxRadiusFrac float64 // hard upper clamp, fraction of base radius

	// Noise
	IdleNoiseScale    float64 // spatial scale of the idle wobble
	IdleDeform        float64 // idle wobble amplitude, fraction of base radius
	ShapeNoiseScale   float64 // coarse active deformation
	TextureNoiseScale float64 // fine active deformation
	ShapeWeight       float64
	TextureWeight     float64
	WavinessWeight    float64
	PeakExtensionMax  float64 // max active displacement, fraction of base radius
	TimeStep          float64 // noise time advance per frame
	AngularDrift      float64 // waviness angular offset advance per frame

	// Smoothing rates (per-frame lerp factors)
	ActivityLerp float64
	ParamLerp    float64
	ColorLerp    float64
	InhaleLerp   float64

	// Color
	BaseHue         float64 // degrees
	HueRange        float64 // drift band from frequency spread
	PitchHueRange   float64 // additional drift from pitch proxy
	BaseSaturation  float64
	SaturationBoost float64
	BaseBrightness  float64
	BrightnessBoost float64
	EdgeAlpha       float64 // outermost layer alpha
	CenterAlpha     float64 // innermost layer alpha
	ConnectingHue   float64 // hue while a session is being established
	FlashDecay      float64 // transient flash decay per frame

	// Breathing and pause punctuation
	SilenceThreshold  float64 // overall level below this counts as silence
	BreathFrames      int     // silent frames before breathing starts
	PauseFrames       int     // silent frames before the pause ripple
	BreathRate        float64 // breathing phase advance per frame
	BreathDepth       float64 // breathing amplitude, fraction of base radius
	InhaleDepth       float64 // inhale dip amplitude, fraction of base radius
	PauseRippleFrames int     // lifetime of the pause ripple

	// Overlay
	GlyphScaleBoost float64 // glyph growth at full level
}

// presets is the tuning table. One parameterized pipeline plus this
// table replaces what would otherwise be near-duplicate pipelines with
// slightly different constants.
var presets = map[string]Preset{
	"default": {
		Name:          "default",
		VertexCount:   140,
		LayerCount:    5,
		RadiusRatio:   0.22,
		MinRadiusFrac: 0.35,
		MaxRadiusFrac: 2.2,

		IdleNoiseScale:    0.8,
		IdleDeform:        0.06,
		ShapeNoiseScale:   0.9,
		TextureNoiseScale: 3.2,
		ShapeWeight:       0.55,
		TextureWeight:     0.22,
		WavinessWeight:    0.35,
		PeakExtensionMax:  0.85,
		TimeStep:          0.012,
		AngularDrift:      0.004,

		ActivityLerp: 0.08,
		ParamLerp:    0.1,
		ColorLerp:    0.1,
		InhaleLerp:   0.2,

		BaseHue:         210,
		HueRange:        24,
		PitchHueRange:   10,
		BaseSaturation:  0.55,
		SaturationBoost: 0.3,
		BaseBrightness:  0.8,
		BrightnessBoost: 0.15,
		EdgeAlpha:       0.16,
		CenterAlpha:     0.5,
		ConnectingHue:   275,
		FlashDecay:      0.88,

		SilenceThreshold:  0.045,
		BreathFrames:      45,
		PauseFrames:       110,
		BreathRate:        0.035,
		BreathDepth:       0.018,
		InhaleDepth:       0.05,
		PauseRippleFrames: 40,

		GlyphScaleBoost: 0.25,
	},

	"calm": {
		Name:          "calm",
		VertexCount:   140,
		LayerCount:    4,
		RadiusRatio:   0.2,
		MinRadiusFrac: 0.45,
		MaxRadiusFrac: 1.7,

		IdleNoiseScale:    0.6,
		IdleDeform:        0.04,
		ShapeNoiseScale:   0.7,
		TextureNoiseScale: 2.4,
		ShapeWeight:       0.45,
		TextureWeight:     0.15,
		WavinessWeight:    0.25,
		PeakExtensionMax:  0.55,
		TimeStep:          0.008,
		AngularDrift:      0.003,

		ActivityLerp: 0.05,
		ParamLerp:    0.07,
		ColorLerp:    0.07,
		InhaleLerp:   0.15,

		BaseHue:         170,
		HueRange:        14,
		PitchHueRange:   6,
		BaseSaturation:  0.4,
		SaturationBoost: 0.2,
		BaseBrightness:  0.85,
		BrightnessBoost: 0.1,
		EdgeAlpha:       0.12,
		CenterAlpha:     0.42,
		ConnectingHue:   200,
		FlashDecay:      0.92,

		SilenceThreshold:  0.04,
		BreathFrames:      40,
		PauseFrames:       100,
		BreathRate:        0.025,
		BreathDepth:       0.014,
		InhaleDepth:       0.035,
		PauseRippleFrames: 50,

		GlyphScaleBoost: 0.18,
	},

	"vivid": {
		Name:          "vivid",
		VertexCount:   140,
		LayerCount:    6,
		RadiusRatio:   0.24,
		MinRadiusFrac: 0.3,
		MaxRadiusFrac: 2.6,

		IdleNoiseScale:    1.0,
		IdleDeform:        0.08,
		ShapeNoiseScale:   1.2,
		TextureNoiseScale: 4.0,
		ShapeWeight:       0.65,
		TextureWeight:     0.3,
		WavinessWeight:    0.45,
		PeakExtensionMax:  1.1,
		TimeStep:          0.016,
		AngularDrift:      0.006,

		ActivityLerp: 0.1,
		ParamLerp:    0.14,
		ColorLerp:    0.14,
		InhaleLerp:   0.25,

		BaseHue:         300,
		HueRange:        36,
		PitchHueRange:   16,
		BaseSaturation:  0.7,
		SaturationBoost: 0.3,
		BaseBrightness:  0.85,
		BrightnessBoost: 0.15,
		EdgeAlpha:       0.2,
		CenterAlpha:     0.6,
		ConnectingHue:   330,
		FlashDecay:      0.85,

		SilenceThreshold:  0.05,
		BreathFrames:      50,
		PauseFrames:       120,
		BreathRate:        0.045,
		BreathDepth:       0.024,
		InhaleDepth:       0.06,
		PauseRippleFrames: 34,

		GlyphScaleBoost: 0.32,
	},
}

// DefaultPreset returns the stock tuning.
func DefaultPreset() Preset {
	return presets["default"]
}

// PresetByName looks up a tuning preset. The second return value is
// false for unknown names.
func PresetByName(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames returns the available preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
