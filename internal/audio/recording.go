// SPDX-License-Identifier: MIT
package audio

import (
	"os"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// StartRecording begins writing the capture stream to a WAV file. The
// host toggles this alongside its recording indicator.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return errors.New("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, int(e.config.Capture.SampleRate),
		32, e.config.Capture.Channels, 1)

	e.sampleBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: e.config.Capture.Channels,
			SampleRate:  int(e.config.Capture.SampleRate),
		},
		Data: make([]int, e.config.Capture.FramesPerBuffer*e.config.Capture.Channels),
	}

	atomic.StoreInt32(&e.isRecording, 1)
	return nil
}

// StopRecording flushes and closes the WAV file. Safe to call when not
// recording.
func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}

// IsRecording reports whether a WAV capture is in progress.
func (e *Engine) IsRecording() bool {
	return atomic.LoadInt32(&e.isRecording) == 1
}
