// SPDX-License-Identifier: MIT
/*
Package audio implements microphone capture for the visualization:
- Lock-free audio capture using PortAudio
- FFT analysis of each buffer, feeding the analysis package
- Noise gate with branchless implementation
- Optional WAV capture with atomic state management

Thread safety: the capture callback runs on a dedicated OS thread and
touches only pre-allocated buffers; the FFT magnitude snapshot is the
sole hand-off point to the frame loop.
*/
package audio

import (
	"os"
	"runtime"
	"sync/atomic"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"aura/internal/analysis"
	"aura/internal/config"
	applog "aura/internal/log"
)

type Engine struct {
	config *config.Config

	// Audio input handling.
	inputBuffer  []int32
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// FFT processing for the analysis pipeline.
	fftProcessor *analysis.FFTProcessor
	fftMonoInput []int32 // mono fold-down buffer

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold int32 // absolute amplitude threshold

	// Recording state and buffers.
	isRecording int32 // atomic flag
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *goaudio.IntBuffer
}

// NewEngine prepares a capture engine for the configured input device.
// No stream is opened until Start.
func NewEngine(cfg *config.Config) (*Engine, error) {
	// Buffer and FFT setup first; the device lookup talks to portaudio
	// and comes last.
	engine := &Engine{
		config:       cfg,
		inputBuffer:  make([]int32, cfg.Capture.FramesPerBuffer*cfg.Capture.Channels),
		fftProcessor: analysis.NewFFTProcessor(cfg.Capture.FramesPerBuffer, cfg.Capture.SampleRate),
		fftMonoInput: make([]int32, cfg.Capture.FramesPerBuffer),
	}
	engine.SetGateThreshold(cfg.Capture.GateThreshold)

	inputDevice, err := InputDevice(cfg.Capture.DeviceID)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	engine.inputDevice = inputDevice

	if cfg.Capture.LowLatency {
		engine.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return engine, nil
}

// Start opens and starts the input stream. The first callback marks the
// start of the hot path. Once the stream reports its actual sample rate
// the FFT bin frequencies are realigned to it.
func (e *Engine) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.Capture.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: e.config.Capture.FramesPerBuffer,
		SampleRate:      e.config.Capture.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return classifyOpenError(err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return classifyOpenError(err)
	}

	if info := e.inputStream.Info(); info != nil && info.SampleRate > 0 {
		e.fftProcessor.SetSampleRate(info.SampleRate)
	}

	applog.Infof("Capture: input stream started (%s, %.0f Hz)",
		e.inputDevice.Name, e.fftProcessor.SampleRate())

	return nil
}

// Stop stops and closes the input stream. Safe to call when no stream
// is open.
func (e *Engine) Stop() error {
	if e.inputStream == nil {
		return nil
	}
	if err := e.inputStream.Stop(); err != nil {
		return err
	}
	if err := e.inputStream.Close(); err != nil {
		return err
	}
	e.inputStream = nil
	return nil
}

// Close stops any active recording and releases the stream. Idempotent.
func (e *Engine) Close() error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}
	return e.Stop()
}

// Magnitudes copies the latest magnitude spectrum into dst and returns
// the number of bins copied. Called from the frame loop.
func (e *Engine) Magnitudes(dst []float64) int {
	return e.fftProcessor.Magnitudes(dst)
}

// BinCount returns the number of FFT magnitude bins.
func (e *Engine) BinCount() int {
	return e.fftProcessor.BinCount()
}

// SampleRate returns the rate the device actually reported.
func (e *Engine) SampleRate() float64 {
	return e.fftProcessor.SampleRate()
}

// processInputStream is the core capture callback.
// Performance critical: runs on a dedicated OS thread, pre-allocated
// buffers only, no dynamic allocations.
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(e.inputBuffer, in)
	e.processBuffer(e.inputBuffer)

	if atomic.LoadInt32(&e.isRecording) == 1 && e.wavEncoder != nil {
		for i, sample := range e.inputBuffer {
			e.sampleBuf.Data[i] = int(sample)
		}
		e.sampleBuf.Data = e.sampleBuf.Data[:len(e.inputBuffer)]

		if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
			applog.Errorf("Capture: error writing to WAV file: %v", err)
		}
	}
}

// processBuffer runs the gate and FFT on the buffer in-place.
// Hot path: no allocations, branchless gate.
func (e *Engine) processBuffer(buffer []int32) {
	shouldProcessFFT := true
	if e.gateEnabled {
		var maxAmplitude int32
		for i := range buffer {
			sample := buffer[i]
			mask := sample >> 31
			amplitude := (sample ^ mask) - mask
			diff := amplitude - maxAmplitude
			maxAmplitude += (diff & (diff >> 31)) ^ diff
		}
		shouldProcessFFT = maxAmplitude > e.gateThreshold
	}

	if !shouldProcessFFT {
		return
	}

	fftInput := buffer
	if e.config.Capture.Channels > 1 {
		channels := e.config.Capture.Channels
		for i := range e.config.Capture.FramesPerBuffer {
			if i*channels < len(buffer) {
				e.fftMonoInput[i] = buffer[i*channels]
			} else {
				e.fftMonoInput[i] = 0
			}
		}
		fftInput = e.fftMonoInput
	}

	e.fftProcessor.Process(fftInput)
}
