// SPDX-License-Identifier: MIT
/*
Package analysis converts magnitude spectra from the capture engine into
the smoothed per-frame signal set the geometry pipeline consumes.

Every level is normalized into [0,1] and moves by exponential
interpolation toward its instantaneous target, never by assignment, so
no signal changes discontinuously between frames. When no fresh spectrum
is available the signals decay toward their resting values instead of
resetting, keeping the idle state visually continuous.
*/
package analysis

import "math"

// SignalFrame is the smoothed signal set, recomputed once per render
// tick. All levels are in [0,1].
type SignalFrame struct {
	OverallLevel float64 // mean magnitude across the analyzed spectrum
	MidLevel     float64 // mean over the mid band
	TrebleLevel  float64 // mean over the treble band

	FrequencySpread float64 // fraction of bins above the activation threshold
	PitchProxy      float64 // normalized peak-bin index, 0.5 with no clear peak
	PitchChangeRate float64 // smoothed |frame-to-frame pitch proxy delta|

	SustainedMidLevel float64 // moving average of MidLevel
	AverageVolume     float64 // longer moving average of OverallLevel

	IsTransientMoment bool // volume spike above the trailing baseline
	TransientTimer    int  // frames until the transient flag self-clears
}

// InstantLevels is one frame of unsmoothed measurements, the input to
// the smoothing update. Tests feed these directly.
type InstantLevels struct {
	Overall    float64
	Mid        float64
	Treble     float64
	Spread     float64
	Pitch      float64
	PitchValid bool
}

// Tuning holds the hand-tuned analysis constants. They were arrived at
// by ear against real microphones; treat them as configuration, not as
// derived quantities.
type Tuning struct {
	MidLowHz     float64 // lower edge of the mid band
	CrossoverHz  float64 // mid/treble split
	TrebleHighHz float64 // upper edge of the treble band
	PitchLowHz   float64 // pitch search range
	PitchHighHz  float64

	ActivationThreshold float64 // normalized magnitude a bin must exceed to count as active
	PeakFloor           float64 // minimum normalized peak magnitude for a valid pitch
	LevelGain           float64 // scales mean normalized magnitude into a useful [0,1] level

	AttackLerp    float64 // level convergence when rising
	ReleaseLerp   float64 // level convergence when falling
	IdleLerp      float64 // convergence toward rest with no capture
	RelaxLerp     float64 // faster decay applied on teardown
	PitchRateLerp float64

	SustainWindowFrames int // ring length for SustainedMidLevel
	VolumeWindowFrames  int // ring length for AverageVolume

	TransientRatio      float64 // spike multiplier over AverageVolume
	TransientFloor      float64 // absolute spike floor
	TransientHoldFrames int     // frames the transient flag stays set
}

// DefaultTuning returns the stock analysis constants.
func DefaultTuning() Tuning {
	return Tuning{
		MidLowHz:     250,
		CrossoverHz:  1800,
		TrebleHighHz: 6000,
		PitchLowHz:   80,
		PitchHighHz:  1000,

		ActivationThreshold: 0.02,
		PeakFloor:           0.03,
		LevelGain:           6.0,

		AttackLerp:    0.3,
		ReleaseLerp:   0.12,
		IdleLerp:      0.06,
		RelaxLerp:     0.25,
		PitchRateLerp: 0.2,

		SustainWindowFrames: 30,
		VolumeWindowFrames:  60,

		TransientRatio:      1.4,
		TransientFloor:      0.30,
		TransientHoldFrames: 18,
	}
}

// AnalyzerConfig configures an Analyzer.
type AnalyzerConfig struct {
	SampleRate float64
	FFTSize    int
	Tuning     Tuning
}

// Analyzer owns the SignalFrame and updates it once per render tick from
// a magnitude spectrum, or decays it when capture is inactive. It is not
// safe for concurrent use; the frame loop is its only caller.
type Analyzer struct {
	tuning     Tuning
	fftSize    int
	sampleRate float64
	binCount   int

	// Band boundaries in bin indices, recomputed on sample-rate changes.
	midLo, midHi     int
	trebLo, trebHi   int
	pitchLo, pitchHi int

	frame        SignalFrame
	lastRawPitch float64

	midWindow *MovingWindow
	volWindow *MovingWindow
}

// NewAnalyzer creates an Analyzer for the given transform size and
// provisional sample rate.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	if cfg.Tuning == (Tuning{}) {
		cfg.Tuning = DefaultTuning()
	}
	a := &Analyzer{
		tuning:       cfg.Tuning,
		fftSize:      cfg.FFTSize,
		binCount:     cfg.FFTSize/2 + 1,
		lastRawPitch: 0.5,
		midWindow:    NewMovingWindow(cfg.Tuning.SustainWindowFrames),
		volWindow:    NewMovingWindow(cfg.Tuning.VolumeWindowFrames),
	}
	a.frame.PitchProxy = 0.5
	a.SetSampleRate(cfg.SampleRate)
	return a
}

// SetSampleRate recomputes the band boundaries for the device's actual
// sample rate. The provisional rate assumed before the device reports is
// not guaranteed to match.
func (a *Analyzer) SetSampleRate(rate float64) {
	if rate <= 0 {
		rate = 1
	}
	a.sampleRate = rate

	binHz := rate / float64(a.fftSize)
	toBin := func(hz float64) int {
		bin := int(hz / binHz)
		if bin < 1 {
			bin = 1 // skip DC
		}
		if bin > a.binCount-1 {
			bin = a.binCount - 1
		}
		return bin
	}

	a.midLo = toBin(a.tuning.MidLowHz)
	a.midHi = toBin(a.tuning.CrossoverHz)
	a.trebLo = a.midHi
	a.trebHi = toBin(a.tuning.TrebleHighHz)
	a.pitchLo = toBin(a.tuning.PitchLowHz)
	a.pitchHi = toBin(a.tuning.PitchHighHz)

	// Degenerate configurations (tiny FFTs, extreme rates) collapse
	// ranges; keep every range at least one bin wide.
	if a.midHi <= a.midLo {
		a.midHi = a.midLo + 1
	}
	if a.trebHi <= a.trebLo {
		a.trebHi = a.trebLo + 1
	}
	if a.pitchHi <= a.pitchLo {
		a.pitchHi = a.pitchLo + 1
	}
}

// SampleFrame updates every smoothed signal from one magnitude spectrum
// and returns the frame. A nil or empty spectrum means no fresh samples
// were available; the signals decay toward rest instead.
func (a *Analyzer) SampleFrame(magnitudes []float64) SignalFrame {
	if len(magnitudes) == 0 {
		a.decay(a.tuning.IdleLerp)
		return a.frame
	}
	a.ObserveLevels(a.measure(magnitudes))
	return a.frame
}

// Frame returns the current smoothed signal set without updating it.
func (a *Analyzer) Frame() SignalFrame {
	return a.frame
}

// measure computes one frame of instantaneous levels from a magnitude
// spectrum.
func (a *Analyzer) measure(magnitudes []float64) InstantLevels {
	n := len(magnitudes)
	binNorm := float64(a.fftSize) * 0.25 // magnitude of a full-scale windowed tone
	if binNorm <= 0 {
		binNorm = 1
	}

	meanBand := func(lo, hi int) float64 {
		if lo < 0 {
			lo = 0
		}
		if hi > n {
			hi = n
		}
		if hi <= lo {
			return 0
		}
		sum := 0.0
		for i := lo; i < hi; i++ {
			sum += magnitudes[i]
		}
		return sum / float64(hi-lo) / binNorm
	}

	inst := InstantLevels{
		Overall: clamp01(meanBand(1, n) * a.tuning.LevelGain),
		Mid:     clamp01(meanBand(a.midLo, a.midHi) * a.tuning.LevelGain),
		Treble:  clamp01(meanBand(a.trebLo, a.trebHi) * a.tuning.LevelGain),
	}

	active := 0
	for i := 1; i < n; i++ {
		if magnitudes[i]/binNorm > a.tuning.ActivationThreshold {
			active++
		}
	}
	if n > 1 {
		inst.Spread = clamp01(float64(active) / float64(n-1))
	}

	lo, hi := a.pitchLo, a.pitchHi
	if hi > n {
		hi = n
	}
	inst.Pitch = 0.5
	if hi > lo {
		peakBin, peakMag := lo, magnitudes[lo]
		for i := lo + 1; i < hi; i++ {
			if magnitudes[i] > peakMag {
				peakMag = magnitudes[i]
				peakBin = i
			}
		}
		if peakMag/binNorm > a.tuning.PeakFloor {
			span := hi - 1 - lo
			if span < 1 {
				span = 1
			}
			inst.Pitch = clamp01(float64(peakBin-lo) / float64(span))
			inst.PitchValid = true
		}
	}

	return inst
}

// ObserveLevels applies one frame of instantaneous measurements to the
// smoothed signal set. Transient detection compares the unsmoothed
// overall level against the trailing average so a single-frame spike is
// not hidden by the smoothing.
func (a *Analyzer) ObserveLevels(inst InstantLevels) {
	a.tickTransient()

	if a.frame.TransientTimer == 0 &&
		inst.Overall > a.frame.AverageVolume*a.tuning.TransientRatio &&
		inst.Overall > a.tuning.TransientFloor {
		a.frame.IsTransientMoment = true
		a.frame.TransientTimer = a.tuning.TransientHoldFrames
	}

	a.frame.OverallLevel = a.lerpLevel(a.frame.OverallLevel, inst.Overall)
	a.frame.MidLevel = a.lerpLevel(a.frame.MidLevel, inst.Mid)
	a.frame.TrebleLevel = a.lerpLevel(a.frame.TrebleLevel, inst.Treble)
	a.frame.FrequencySpread = a.lerpLevel(a.frame.FrequencySpread, inst.Spread)

	pitchTarget := inst.Pitch
	if !inst.PitchValid {
		pitchTarget = 0.5
	}
	a.frame.PitchProxy = lerp(a.frame.PitchProxy, pitchTarget, a.tuning.AttackLerp)

	rawDelta := math.Abs(pitchTarget - a.lastRawPitch)
	a.lastRawPitch = pitchTarget
	a.frame.PitchChangeRate = lerp(a.frame.PitchChangeRate, rawDelta, a.tuning.PitchRateLerp)

	a.frame.SustainedMidLevel = a.midWindow.Push(a.frame.MidLevel)
	a.frame.AverageVolume = a.volWindow.Push(a.frame.OverallLevel)
}

// Relax decays every signal toward rest using the teardown constant,
// which is faster than the normal idle decay so deactivation visibly
// relaxes rather than lingering.
func (a *Analyzer) Relax() {
	a.decay(a.tuning.RelaxLerp)
}

// Reset clears all signals and history immediately. Used when the whole
// pipeline instance is discarded, not on ordinary deactivation.
func (a *Analyzer) Reset() {
	a.frame = SignalFrame{PitchProxy: 0.5}
	a.lastRawPitch = 0.5
	a.midWindow.Reset()
	a.volWindow.Reset()
}

func (a *Analyzer) decay(k float64) {
	a.tickTransient()

	a.frame.OverallLevel = lerp(a.frame.OverallLevel, 0, k)
	a.frame.MidLevel = lerp(a.frame.MidLevel, 0, k)
	a.frame.TrebleLevel = lerp(a.frame.TrebleLevel, 0, k)
	a.frame.FrequencySpread = lerp(a.frame.FrequencySpread, 0, k)
	a.frame.PitchProxy = lerp(a.frame.PitchProxy, 0.5, k)
	a.frame.PitchChangeRate = lerp(a.frame.PitchChangeRate, 0, k)

	a.frame.SustainedMidLevel = a.midWindow.Push(a.frame.MidLevel)
	a.frame.AverageVolume = a.volWindow.Push(a.frame.OverallLevel)
}

func (a *Analyzer) tickTransient() {
	if a.frame.TransientTimer > 0 {
		a.frame.TransientTimer--
		if a.frame.TransientTimer == 0 {
			a.frame.IsTransientMoment = false
		}
	}
}

// lerpLevel uses a faster rate on attack than release so levels respond
// quickly to speech onsets but fall away gently.
func (a *Analyzer) lerpLevel(current, target float64) float64 {
	k := a.tuning.ReleaseLerp
	if target > current {
		k = a.tuning.AttackLerp
	}
	return clamp01(lerp(current, target, k))
}

func lerp(current, target, k float64) float64 {
	return current + (target-current)*k
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
