// SPDX-License-Identifier: MIT
package viz

import (
	"context"

	"github.com/pkg/errors"

	"aura/internal/audio"
	"aura/internal/config"
)

// CaptureSession is a live microphone capture handle. Magnitudes fills
// dst with the latest spectrum and returns the number of bins written;
// zero means no fresh audio yet.
type CaptureSession interface {
	Magnitudes(dst []float64) int
	SampleRate() float64
	Close() error
}

// CaptureOpener acquires a capture session. Opening can block on
// device permission or enumeration, so it takes a context; the
// visualizer calls it from a goroutine and discards stale grants
// itself.
type CaptureOpener interface {
	Open(ctx context.Context) (CaptureSession, error)
}

// EngineOpener opens portaudio-backed capture sessions from the
// process configuration.
type EngineOpener struct {
	cfg *config.Config
}

func NewEngineOpener(cfg *config.Config) *EngineOpener {
	return &EngineOpener{cfg: cfg}
}

func (o *EngineOpener) Open(ctx context.Context) (CaptureSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engine, err := openEngine(o.cfg)
	if err != nil {
		return nil, err
	}
	return &engineSession{engine: engine}, nil
}

// openEngine constructs and starts a capture engine. A panic out of the
// engine constructor is converted into the capture failure taxonomy so
// it surfaces as an error, never as a crash of the acquire goroutine.
func openEngine(cfg *config.Config) (engine *audio.Engine, err error) {
	defer func() {
		if r := recover(); r != nil {
			engine = nil
			err = errors.Wrapf(audio.ErrContextCreationFailed, "%v", r)
		}
	}()

	engine, err = audio.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if err := engine.Start(); err != nil {
		engine.Close()
		return nil, err
	}
	return engine, nil
}

// engineSession adapts the audio engine to CaptureSession.
type engineSession struct {
	engine *audio.Engine
}

func (s *engineSession) Magnitudes(dst []float64) int { return s.engine.Magnitudes(dst) }
func (s *engineSession) SampleRate() float64          { return s.engine.SampleRate() }

// StartRecording and StopRecording surface the engine's WAV capture so
// the visualizer's recording toggle can persist the session.
func (s *engineSession) StartRecording(filename string) error { return s.engine.StartRecording(filename) }
func (s *engineSession) StopRecording() error                 { return s.engine.StopRecording() }

func (s *engineSession) Close() error {
	if err := s.engine.Stop(); err != nil {
		s.engine.Close()
		return err
	}
	return s.engine.Close()
}
