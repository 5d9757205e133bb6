// SPDX-License-Identifier: MIT
package blob

import (
	"math"
	"testing"

	"aura/internal/analysis"
	"aura/internal/noise"
	"aura/pkg/utils"
)

func steadySignal(level float64) analysis.SignalFrame {
	return analysis.SignalFrame{
		OverallLevel:      level,
		MidLevel:          level * 0.8,
		TrebleLevel:       level * 0.5,
		FrequencySpread:   0.4,
		PitchProxy:        0.5,
		PitchChangeRate:   0.1,
		SustainedMidLevel: level * 0.8,
		AverageVolume:     level,
	}
}

func ringRadii(f Frame) []float64 {
	radii := make([]float64, len(f.Vertices)/2)
	for i := range radii {
		radii[i] = math.Hypot(f.Vertices[i*2], f.Vertices[i*2+1])
	}
	return radii
}

func assertRadiiInBounds(t *testing.T, p *Pipeline, f Frame) {
	t.Helper()
	minR, maxR := p.RadiusBounds()
	const eps = 1e-9
	for i, r := range ringRadii(f) {
		if math.IsNaN(r) || r < minR-eps || r > maxR+eps {
			t.Fatalf("vertex %d radius %v outside [%v, %v]", i, r, minR, maxR)
		}
	}
}

func TestRadiusClampUnderHostileInput(t *testing.T) {
	tests := []struct {
		name  string
		field noise.Field
		level float64
	}{
		{"silent", noise.NewPerlin(1), 0},
		{"full scale", noise.NewPerlin(1), 1},
		{"beyond full scale", noise.NewPerlin(1), 50},
		{"negative", noise.NewPerlin(1), -3},
		{"nan", noise.NewPerlin(1), math.NaN()},
		{"inf", noise.NewPerlin(1), math.Inf(1)},
		{"field stuck high", utils.FlatField{Value: 99}, 1},
		{"field stuck low", utils.FlatField{Value: -99}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(DefaultPreset(), tt.field)
			p.SetMode(ModeActive)

			var f Frame
			for i := 0; i < 200; i++ {
				f = p.Step(steadySignal(tt.level))
			}
			if got := len(f.Vertices); got != DefaultPreset().VertexCount*2 {
				t.Fatalf("vertex buffer length = %d, want %d", got, DefaultPreset().VertexCount*2)
			}
			assertRadiiInBounds(t, p, f)
		})
	}
}

func TestResizeDegenerateDimensions(t *testing.T) {
	p := NewPipeline(DefaultPreset(), noise.NewPerlin(1))
	p.SetMode(ModeActive)
	for i := 0; i < 30; i++ {
		p.Step(steadySignal(0.5))
	}
	timeBefore := p.State().Time

	tests := []struct {
		name string
		w, h float64
	}{
		{"zero", 0, 0},
		{"one pixel", 1, 1},
		{"negative", -100, 200},
		{"nan", math.NaN(), math.NaN()},
		{"inf", math.Inf(1), 480},
		{"tall sliver", 2, 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.Resize(tt.w, tt.h)
			base := p.BaseRadius()
			if math.IsNaN(base) || math.IsInf(base, 0) || base < 1 {
				t.Fatalf("base radius %v after Resize(%v, %v)", base, tt.w, tt.h)
			}
			f := p.Step(steadySignal(0.5))
			assertRadiiInBounds(t, p, f)
		})
	}

	if got := p.State().Time; got <= timeBefore {
		t.Fatalf("animation time went backwards across resizes: %v <= %v", got, timeBefore)
	}
}

func TestActivityFollowsMode(t *testing.T) {
	p := NewPipeline(DefaultPreset(), noise.NewPerlin(3))

	f := p.Step(steadySignal(0))
	if f.Activity != 0 {
		t.Fatalf("idle activity = %v, want 0", f.Activity)
	}

	p.SetMode(ModeActive)
	for i := 0; i < 100; i++ {
		f = p.Step(steadySignal(0.6))
	}
	if f.Activity < 0.99 {
		t.Fatalf("activity after 100 active frames = %v, want ~1", f.Activity)
	}

	p.SetMode(ModeIdle)
	for i := 0; i < 50; i++ {
		f = p.Step(steadySignal(0))
	}
	if f.Activity > 0.05 {
		t.Fatalf("activity after 50 idle frames = %v, want ~0", f.Activity)
	}
}

func TestConnectingModeOverridesHue(t *testing.T) {
	pre := DefaultPreset()
	p := NewPipeline(pre, noise.NewPerlin(3))
	p.SetMode(ModeConnecting)

	var f Frame
	for i := 0; i < 300; i++ {
		f = p.Step(analysis.SignalFrame{})
	}
	if math.Abs(f.Hue-pre.ConnectingHue) > 2 {
		t.Fatalf("connecting hue = %v, want near %v", f.Hue, pre.ConnectingHue)
	}
	if f.Mode != "connecting" {
		t.Fatalf("mode = %q, want connecting", f.Mode)
	}
}

func TestHueStaysInBand(t *testing.T) {
	pre := DefaultPreset()
	p := NewPipeline(pre, noise.NewPerlin(5))
	p.SetMode(ModeActive)

	band := pre.HueRange + pre.PitchHueRange
	levels := []float64{0, 0.2, 1, 5, -1, math.NaN()}
	for i := 0; i < 400; i++ {
		sig := steadySignal(levels[i%len(levels)])
		sig.FrequencySpread = float64(i%7) - 2 // deliberately out of range
		sig.PitchProxy = float64(i%5) * 0.7
		f := p.Step(sig)
		if f.Hue < pre.BaseHue-band-1 || f.Hue > pre.BaseHue+band+1 {
			t.Fatalf("frame %d hue %v escaped band %v +/- %v", i, f.Hue, pre.BaseHue, band)
		}
	}
}

func TestTransientFlash(t *testing.T) {
	p := NewPipeline(DefaultPreset(), noise.NewPerlin(7))
	p.SetMode(ModeActive)

	for i := 0; i < 20; i++ {
		p.Step(steadySignal(0.1))
	}
	if f := p.Step(steadySignal(0.1)); f.Flash > 0.1 {
		t.Fatalf("flash %v without a transient", f.Flash)
	}

	sig := steadySignal(0.5)
	sig.IsTransientMoment = true
	peak := p.Step(sig).Flash
	if peak < 0.5 {
		t.Fatalf("flash after transient = %v, want a visible spike", peak)
	}

	prev := peak
	for i := 0; i < 30; i++ {
		f := p.Step(steadySignal(0.1))
		if f.Flash > prev {
			t.Fatalf("flash rose without a transient: %v -> %v", prev, f.Flash)
		}
		prev = f.Flash
	}
	if prev > 0.05 {
		t.Fatalf("flash failed to decay, still %v", prev)
	}
}

func TestPauseRippleFiresOnce(t *testing.T) {
	pre := DefaultPreset()
	p := NewPipeline(pre, noise.NewPerlin(11))
	p.SetMode(ModeActive)

	// Speak, then go quiet.
	for i := 0; i < 10; i++ {
		p.Step(steadySignal(0.5))
	}

	sawBreathing := false
	sawRipple := false
	silent := steadySignal(0)
	for i := 0; i < pre.PauseFrames+pre.PauseRippleFrames+20; i++ {
		f := p.Step(silent)
		if p.State().Breathing {
			sawBreathing = true
		}
		if f.Ripple > 0 {
			sawRipple = true
		}
	}
	if !sawBreathing {
		t.Fatal("sustained silence never started breathing")
	}
	if !sawRipple {
		t.Fatal("long pause after speech never fired the ripple")
	}

	// The ripple is one-shot: continued silence stays quiet.
	for i := 0; i < pre.PauseFrames*2; i++ {
		if f := p.Step(silent); f.Ripple > 0 {
			t.Fatalf("ripple re-fired at silent frame %d without new speech", i)
		}
	}

	// Speaking re-arms it.
	for i := 0; i < 5; i++ {
		p.Step(steadySignal(0.5))
	}
	sawRipple = false
	for i := 0; i < pre.PauseFrames+pre.PauseRippleFrames+20; i++ {
		if f := p.Step(silent); f.Ripple > 0 {
			sawRipple = true
		}
	}
	if !sawRipple {
		t.Fatal("ripple did not re-arm after renewed speech")
	}
}

func TestRecordingIndicator(t *testing.T) {
	p := NewPipeline(DefaultPreset(), nil)
	if f := p.Step(steadySignal(0)); f.Recording {
		t.Fatal("recording flag set by default")
	}
	p.SetRecording(true)
	if f := p.Step(steadySignal(0)); !f.Recording {
		t.Fatal("recording flag not reflected in frame")
	}
}

func TestPresetLookup(t *testing.T) {
	for _, name := range PresetNames() {
		pre, ok := PresetByName(name)
		if !ok {
			t.Fatalf("preset %q listed but not found", name)
		}
		if pre.VertexCount < 3 {
			t.Fatalf("preset %q has %d vertices", name, pre.VertexCount)
		}
		if pre.MinRadiusFrac <= 0 || pre.MaxRadiusFrac <= pre.MinRadiusFrac {
			t.Fatalf("preset %q has inverted radius band [%v, %v]", name, pre.MinRadiusFrac, pre.MaxRadiusFrac)
		}
	}
	if _, ok := PresetByName("no-such-preset"); ok {
		t.Fatal("unknown preset name resolved")
	}
}

func TestSequenceMonotone(t *testing.T) {
	p := NewPipeline(DefaultPreset(), nil)
	var last uint64
	for i := 0; i < 10; i++ {
		f := p.Step(steadySignal(0.3))
		if f.Seq <= last {
			t.Fatalf("sequence not monotone: %d after %d", f.Seq, last)
		}
		last = f.Seq
	}
}
