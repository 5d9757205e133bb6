// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"

	"aura/pkg/utils"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(AnalyzerConfig{
		SampleRate: testSampleRate,
		FFTSize:    testFFTSize,
	})
}

func steadyLevels(overall float64) InstantLevels {
	return InstantLevels{
		Overall: overall,
		Mid:     overall * 0.8,
		Treble:  overall * 0.4,
		Spread:  0.3,
		Pitch:   0.6,
	}
}

func TestLevelsStayNormalized(t *testing.T) {
	a := newTestAnalyzer()

	// Out-of-range instantaneous input must not produce out-of-range
	// smoothed levels.
	for i := 0; i < 200; i++ {
		a.ObserveLevels(InstantLevels{Overall: 5.0, Mid: -3.0, Treble: 2.0, Spread: 9.0})
		f := a.Frame()
		for name, v := range map[string]float64{
			"overall": f.OverallLevel,
			"mid":     f.MidLevel,
			"treble":  f.TrebleLevel,
			"spread":  f.FrequencySpread,
		} {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("frame %d: %s level out of [0,1]: %f", i, name, v)
			}
		}
	}
}

func TestSmoothingConvergence(t *testing.T) {
	a := newTestAnalyzer()
	target := steadyLevels(0.6)

	for i := 0; i < 500; i++ {
		a.ObserveLevels(target)
	}

	f := a.Frame()
	const eps = 1e-3
	if math.Abs(f.OverallLevel-0.6) > eps {
		t.Errorf("OverallLevel = %f, want 0.6 within %g", f.OverallLevel, eps)
	}
	if math.Abs(f.MidLevel-0.48) > eps {
		t.Errorf("MidLevel = %f, want 0.48 within %g", f.MidLevel, eps)
	}
	if math.Abs(f.PitchProxy-0.5) > eps {
		// Pitch was never valid, so the proxy should rest at 0.5.
		t.Errorf("PitchProxy = %f, want 0.5 within %g", f.PitchProxy, eps)
	}
	if math.Abs(f.SustainedMidLevel-0.48) > eps {
		t.Errorf("SustainedMidLevel = %f, want 0.48 within %g", f.SustainedMidLevel, eps)
	}
}

func TestIdleDecayMonotone(t *testing.T) {
	a := newTestAnalyzer()

	for i := 0; i < 100; i++ {
		a.ObserveLevels(steadyLevels(0.7))
	}

	prev := a.Frame().OverallLevel
	for i := 0; i < 300; i++ {
		f := a.SampleFrame(nil)
		if f.OverallLevel > prev+1e-12 {
			t.Fatalf("frame %d: idle OverallLevel rose %f -> %f", i, prev, f.OverallLevel)
		}
		if f.OverallLevel < 0 {
			t.Fatalf("frame %d: OverallLevel negative: %f", i, f.OverallLevel)
		}
		prev = f.OverallLevel
	}

	if prev > 1e-3 {
		t.Errorf("OverallLevel = %f after 300 idle frames, want near 0", prev)
	}
}

func TestTransientDetection(t *testing.T) {
	a := newTestAnalyzer()

	// Settle the trailing average near 0.1.
	for i := 0; i < 120; i++ {
		a.ObserveLevels(steadyLevels(0.1))
	}
	if a.Frame().IsTransientMoment {
		t.Fatal("steady input should not trigger a transient")
	}

	// One frame spiking to 0.5: above 1.4x the 0.1 average and the 0.30
	// absolute floor.
	a.ObserveLevels(steadyLevels(0.5))
	f := a.Frame()
	if !f.IsTransientMoment {
		t.Fatal("spike should set IsTransientMoment")
	}
	if f.TransientTimer <= 0 {
		t.Fatal("transient timer should be armed")
	}

	// The flag must self-clear within a bounded number of frames.
	cleared := -1
	for i := 0; i < 100; i++ {
		a.ObserveLevels(steadyLevels(0.1))
		if !a.Frame().IsTransientMoment {
			cleared = i
			break
		}
	}
	if cleared < 0 {
		t.Fatal("transient flag never cleared")
	}
	if cleared >= DefaultTuning().TransientHoldFrames {
		t.Errorf("transient cleared after %d frames, want < %d", cleared, DefaultTuning().TransientHoldFrames)
	}
}

func TestTransientBelowFloorIgnored(t *testing.T) {
	a := newTestAnalyzer()

	for i := 0; i < 120; i++ {
		a.ObserveLevels(steadyLevels(0.05))
	}

	// 0.2 is 4x the average but under the absolute floor.
	a.ObserveLevels(steadyLevels(0.2))
	if a.Frame().IsTransientMoment {
		t.Error("spike below the absolute floor should not trigger")
	}
}

func TestPitchProxyFromSpectrum(t *testing.T) {
	a := newTestAnalyzer()
	fft := NewFFTProcessor(testFFTSize, testSampleRate)

	mags := make([]float64, fft.BinCount())

	// A 440 Hz tone sits in the lower half of the 80-1000 Hz search
	// range; a 900 Hz tone sits near the top.
	fft.Process(utils.GenerateSineWave(testFFTSize, testSampleRate, 440))
	fft.Magnitudes(mags)
	low := a.measure(mags)
	if !low.PitchValid {
		t.Fatal("440 Hz tone should produce a valid pitch")
	}

	fft.Process(utils.GenerateSineWave(testFFTSize, testSampleRate, 900))
	fft.Magnitudes(mags)
	high := a.measure(mags)
	if !high.PitchValid {
		t.Fatal("900 Hz tone should produce a valid pitch")
	}

	if high.Pitch <= low.Pitch {
		t.Errorf("pitch proxy should increase with frequency: 440Hz=%f, 900Hz=%f", low.Pitch, high.Pitch)
	}

	// Silence has no clear peak.
	silent := a.measure(make([]float64, fft.BinCount()))
	if silent.PitchValid || silent.Pitch != 0.5 {
		t.Errorf("silence should report pitch 0.5 invalid, got %f valid=%v", silent.Pitch, silent.PitchValid)
	}
}

func TestRelaxDecaysFasterThanIdle(t *testing.T) {
	speak := func() *Analyzer {
		a := newTestAnalyzer()
		for i := 0; i < 100; i++ {
			a.ObserveLevels(steadyLevels(0.8))
		}
		return a
	}

	idle := speak()
	relaxed := speak()

	for i := 0; i < 10; i++ {
		idle.SampleFrame(nil)
		relaxed.Relax()
	}

	if relaxed.Frame().OverallLevel >= idle.Frame().OverallLevel {
		t.Errorf("Relax should decay faster than idle: relax=%f idle=%f",
			relaxed.Frame().OverallLevel, idle.Frame().OverallLevel)
	}
}

func TestSetSampleRateDegenerate(t *testing.T) {
	a := newTestAnalyzer()

	// Extreme rates must never produce empty band ranges or panics.
	for _, rate := range []float64{-1, 0, 1, 800, 1e6} {
		a.SetSampleRate(rate)
		if a.midHi <= a.midLo || a.trebHi <= a.trebLo || a.pitchHi <= a.pitchLo {
			t.Errorf("rate %.0f: collapsed band range", rate)
		}
		// A full frame at the new boundaries should stay finite.
		f := a.SampleFrame(make([]float64, a.binCount))
		if math.IsNaN(f.OverallLevel) || math.IsNaN(f.PitchProxy) {
			t.Errorf("rate %.0f: NaN in frame", rate)
		}
	}
}

func TestMovingWindowEviction(t *testing.T) {
	w := NewMovingWindow(4)

	for i := 1; i <= 4; i++ {
		w.Push(float64(i))
	}
	if mean := w.Mean(); mean != 2.5 {
		t.Errorf("mean = %f, want 2.5", mean)
	}

	// Pushing a fifth value evicts the oldest (1).
	w.Push(5)
	if mean := w.Mean(); mean != 3.5 {
		t.Errorf("mean after eviction = %f, want 3.5", mean)
	}
	if w.Len() != 4 || w.Cap() != 4 {
		t.Errorf("Len=%d Cap=%d, want 4 and 4", w.Len(), w.Cap())
	}

	w.Reset()
	if w.Mean() != 0 || w.Len() != 0 {
		t.Error("Reset should clear the window")
	}

	// Degenerate capacity clamps to 1.
	tiny := NewMovingWindow(0)
	tiny.Push(7)
	if tiny.Mean() != 7 {
		t.Errorf("tiny window mean = %f, want 7", tiny.Mean())
	}
}
