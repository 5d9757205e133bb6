// SPDX-License-Identifier: MIT
package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"aura/internal/config"
	"aura/pkg/utils"
)

func TestRecordingLifecycle(t *testing.T) {
	engine := newTestEngine(1)
	path := filepath.Join(t.TempDir(), "capture.wav")

	if err := engine.StartRecording(path); err != nil {
		t.Fatalf("StartRecording failed: %v", err)
	}
	if !engine.IsRecording() {
		t.Fatal("IsRecording should be true after start")
	}

	if err := engine.StartRecording(path); err == nil {
		t.Error("second StartRecording should fail")
	}

	// Feed a few buffers through the capture callback path.
	tone := utils.GenerateSineWave(config.DefaultFramesPerBuffer, config.DefaultSampleRate, 440)
	for range 4 {
		engine.processInputStream(tone)
	}

	if err := engine.StopRecording(); err != nil {
		t.Fatalf("StopRecording failed: %v", err)
	}
	if engine.IsRecording() {
		t.Error("IsRecording should be false after stop")
	}

	// StopRecording again is a no-op.
	if err := engine.StopRecording(); err != nil {
		t.Errorf("second StopRecording: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("recorded file missing: %v", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		t.Fatal("recorded file is not a valid WAV")
	}
	if int(decoder.SampleRate) != config.DefaultSampleRate {
		t.Errorf("sample rate = %d, want %d", decoder.SampleRate, config.DefaultSampleRate)
	}

	dur, err := decoder.Duration()
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if dur <= 0 {
		t.Error("recording should contain samples")
	}
}
