// SPDX-License-Identifier: MIT
/*
Package viz owns the visualization lifecycle: it binds microphone
capture, signal analysis, and the blob pipeline into one frame loop and
exposes the four operations a host embeds: Activate, Deactivate,
Resize, Cleanup. All four are idempotent and safe to call from any
goroutine.

Capture acquisition is asynchronous. Each Activate bumps a generation
counter and the grant is applied only if the generation still matches
when it resolves, so an Activate immediately followed by Deactivate
leaves no session open no matter how slowly the device responds.
*/
package viz

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"aura/internal/analysis"
	"aura/internal/blob"
	"aura/internal/config"
	applog "aura/internal/log"
	"aura/internal/noise"
	"aura/internal/transport"
)

const acquireTimeout = 10 * time.Second

// Visualizer drives the analysis and geometry pipeline at the
// configured frame rate and publishes each frame to the attached
// transports.
type Visualizer struct {
	mu sync.Mutex

	cfg      *config.Config
	opener   CaptureOpener
	analyzer *analysis.Analyzer
	pipeline *blob.Pipeline
	renderer *blob.Renderer

	transports []transport.Transport

	// generation invalidates in-flight capture grants. Bumped on every
	// Activate and Deactivate while holding mu.
	generation uint64
	session    CaptureSession
	active     bool

	hostVolume float64 // [0,1] override of the measured level, <0 when unset
	latest     blob.Frame
	magBuffer  []float64

	loopRunning bool
	loopDone    chan struct{}
	loopWG      sync.WaitGroup

	cleanedUp bool
}

// New builds a visualizer from the configuration. The frame loop is
// not started; call Start, or drive Advance manually.
func New(cfg *config.Config, opener CaptureOpener) *Visualizer {
	preset, ok := blob.PresetByName(cfg.Viz.Preset)
	if !ok {
		applog.Warnf("Viz: unknown preset %q, using default", cfg.Viz.Preset)
		preset = blob.DefaultPreset()
	}

	analyzer := analysis.NewAnalyzer(analysis.AnalyzerConfig{
		SampleRate: cfg.Capture.SampleRate,
		FFTSize:    cfg.Capture.FramesPerBuffer,
		Tuning:     analysis.DefaultTuning(),
	})

	pipeline := blob.NewPipeline(preset, noise.NewPerlin(time.Now().UnixNano()))
	pipeline.Resize(float64(cfg.Viz.Width), float64(cfg.Viz.Height))

	return &Visualizer{
		cfg:        cfg,
		opener:     opener,
		analyzer:   analyzer,
		pipeline:   pipeline,
		renderer:   blob.NewRenderer(cfg.Viz.Width, cfg.Viz.Height),
		hostVolume: -1,
		magBuffer:  make([]float64, cfg.Capture.FramesPerBuffer/2+1),
	}
}

// AttachTransport adds a frame sink. Attached transports are closed by
// Cleanup.
func (v *Visualizer) AttachTransport(t transport.Transport) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.transports = append(v.transports, t)
}

// Activate begins a session: the blob enters the connecting state
// immediately and capture is acquired in the background. Calling
// Activate while already active is a no-op.
func (v *Visualizer) Activate() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.active || v.cleanedUp {
		return
	}
	v.active = true
	v.generation++
	gen := v.generation

	v.pipeline.SetMode(blob.ModeConnecting)
	applog.Infof("Viz: activating (generation %d)", gen)

	go v.acquire(gen)
}

// acquire opens capture off the lock and applies the grant only if no
// Activate or Deactivate happened in the meantime.
func (v *Visualizer) acquire(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
	defer cancel()

	session, err := v.opener.Open(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.generation != gen || !v.active {
		// Stale grant: the session this capture was meant for is gone.
		if session != nil {
			session.Close()
			applog.Debugf("Viz: discarded stale capture grant (generation %d)", gen)
		}
		return
	}

	if err != nil {
		// Stay visually active without audio rather than failing the
		// whole session.
		applog.Warnf("Viz: capture unavailable, running silent: %v", err)
		v.pipeline.SetMode(blob.ModeActive)
		return
	}

	v.session = session
	if rate := session.SampleRate(); rate > 0 {
		v.analyzer.SetSampleRate(rate)
	}
	v.pipeline.SetMode(blob.ModeActive)
	applog.Infof("Viz: capture attached (%.0f Hz)", session.SampleRate())
}

// Deactivate ends the session: capture is released and the blob
// relaxes back to idle over subsequent frames. Calling Deactivate
// while idle is a no-op.
func (v *Visualizer) Deactivate() {
	v.mu.Lock()
	if !v.active {
		v.mu.Unlock()
		return
	}
	v.active = false
	v.generation++
	session := v.session
	v.session = nil
	v.pipeline.SetMode(blob.ModeIdle)
	v.mu.Unlock()

	if session != nil {
		if err := session.Close(); err != nil {
			applog.Warnf("Viz: closing capture: %v", err)
		}
	}
	applog.Infof("Viz: deactivated")
}

// Resize updates the geometry for a new container size. Degenerate
// dimensions are tolerated.
func (v *Visualizer) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pipeline.Resize(float64(width), float64(height))
	v.renderer.Resize(width, height)
}

// Cleanup deactivates, stops the frame loop, and closes every attached
// transport. The visualizer is unusable afterwards. Safe to call more
// than once.
func (v *Visualizer) Cleanup() {
	v.Deactivate()
	v.stopLoop()

	v.mu.Lock()
	if v.cleanedUp {
		v.mu.Unlock()
		return
	}
	v.cleanedUp = true
	transports := v.transports
	v.transports = nil
	v.mu.Unlock()

	for _, t := range transports {
		if err := t.Close(); err != nil {
			applog.Warnf("Viz: closing transport: %v", err)
		}
	}
	applog.Infof("Viz: cleaned up")
}

// SetActive mirrors a host-driven active flag onto the lifecycle.
func (v *Visualizer) SetActive(on bool) {
	if on {
		v.Activate()
	} else {
		v.Deactivate()
	}
}

// SetConnecting forces the connecting look while the host establishes
// an upstream session. Ignored when not active.
func (v *Visualizer) SetConnecting(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.active {
		return
	}
	if on {
		v.pipeline.SetMode(blob.ModeConnecting)
	} else {
		v.pipeline.SetMode(blob.ModeActive)
	}
}

// SetExternalVolume overrides the measured overall level with a
// host-supplied one in [0,1], for hosts that run their own audio path.
// A negative value removes the override.
func (v *Visualizer) SetExternalVolume(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if volume < 0 || math.IsNaN(volume) {
		v.hostVolume = -1
		return
	}
	v.hostVolume = math.Min(volume, 1)
}

// SetRecording toggles the recording indicator and, when a capture
// session that supports it is attached and a record file is
// configured, WAV persistence.
func (v *Visualizer) SetRecording(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pipeline.SetRecording(on)

	rec, ok := v.session.(interface {
		StartRecording(filename string) error
		StopRecording() error
	})
	if !ok {
		return
	}
	if on {
		if v.cfg.Capture.RecordFile == "" {
			return
		}
		if err := rec.StartRecording(v.cfg.Capture.RecordFile); err != nil {
			applog.Warnf("Viz: starting recording: %v", err)
		}
	} else if err := rec.StopRecording(); err != nil {
		applog.Warnf("Viz: stopping recording: %v", err)
	}
}

// Start launches the frame loop at the configured rate. Calling Start
// while running is a no-op.
func (v *Visualizer) Start() {
	v.mu.Lock()
	if v.loopRunning || v.cleanedUp {
		v.mu.Unlock()
		return
	}
	v.loopRunning = true
	v.loopDone = make(chan struct{})
	done := v.loopDone
	v.mu.Unlock()

	rate := v.cfg.Viz.FrameRate
	if rate < config.MinFrameRate {
		rate = config.DefaultFrameRate
	} else if rate > config.MaxFrameRate {
		rate = config.MaxFrameRate
	}
	interval := time.Second / time.Duration(rate)

	v.loopWG.Add(1)
	go func() {
		defer v.loopWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		applog.Infof("Viz: frame loop started (%d fps)", rate)
		for {
			select {
			case <-ticker.C:
				v.Advance()
			case <-done:
				return
			}
		}
	}()
}

func (v *Visualizer) stopLoop() {
	v.mu.Lock()
	if !v.loopRunning {
		v.mu.Unlock()
		return
	}
	v.loopRunning = false
	close(v.loopDone)
	v.mu.Unlock()

	v.loopWG.Wait()
	applog.Infof("Viz: frame loop stopped")
}

// Advance produces one frame and publishes it. The frame loop calls
// this on every tick; tests and one-shot renders may call it directly.
func (v *Visualizer) Advance() blob.Frame {
	frame, ok := v.step()
	if ok {
		v.mu.Lock()
		transports := v.transports
		v.mu.Unlock()
		for _, t := range transports {
			if err := t.Send(frame); err != nil {
				applog.Debugf("Viz: transport send: %v", err)
			}
		}
	}
	return frame
}

// step advances analysis and geometry by one frame under the lock. A
// panic anywhere in the pipeline is contained here: the frame is
// dropped and the loop keeps running.
func (v *Visualizer) step() (frame blob.Frame, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			applog.Errorf("Viz: frame step recovered: %v", r)
			frame, ok = v.latest, false
		}
	}()

	bins := 0
	if v.session != nil {
		bins = v.session.Magnitudes(v.magBuffer)
		if bins > len(v.magBuffer) {
			bins = len(v.magBuffer)
		}
	}

	var sig analysis.SignalFrame
	switch {
	case bins > 0:
		sig = v.analyzer.SampleFrame(v.magBuffer[:bins])
	case v.active:
		sig = v.analyzer.SampleFrame(nil)
	default:
		v.analyzer.Relax()
		sig = v.analyzer.Frame()
	}

	if v.hostVolume >= 0 {
		sig.OverallLevel = v.hostVolume
	}

	frame = v.pipeline.Step(sig)
	v.latest = frame
	return frame, true
}

// LatestFrame returns the most recently produced frame. Implements the
// UDP publisher's frame source.
func (v *Visualizer) LatestFrame() blob.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.latest
}

// Render rasterizes the latest frame, for snapshots and tests.
func (v *Visualizer) Render() *image.RGBA {
	v.mu.Lock()
	defer v.mu.Unlock()
	frame := v.latest
	return v.renderer.Render(&frame)
}

// Mode reports the current logical state.
func (v *Visualizer) Mode() blob.Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pipeline.Mode()
}
