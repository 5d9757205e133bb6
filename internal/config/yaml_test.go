// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if cfg.Capture.SampleRate != DefaultSampleRate {
		t.Errorf("default sample rate = %.0f, want %d", cfg.Capture.SampleRate, DefaultSampleRate)
	}
	if cfg.Viz.Preset != DefaultPreset {
		t.Errorf("default preset = %q, want %q", cfg.Viz.Preset, DefaultPreset)
	}
	if cfg.Viz.FrameRate != DefaultFrameRate {
		t.Errorf("default frame rate = %d, want %d", cfg.Viz.FrameRate, DefaultFrameRate)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
debug: true
log_level: debug
capture:
  device_id: 3
  channels: 2
  sample_rate: 48000
  frames_per_buffer: 512
viz:
  preset: calm
  frame_rate: 30
  width: 320
  height: 320
transport:
  ws_enabled: true
  ws_addr: ":9000"
`
	path := filepath.Join(t.TempDir(), "aura.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Capture.DeviceID != 3 {
		t.Errorf("device_id = %d, want 3", cfg.Capture.DeviceID)
	}
	if cfg.Capture.SampleRate != 48000 {
		t.Errorf("sample_rate = %.0f, want 48000", cfg.Capture.SampleRate)
	}
	if cfg.Viz.Preset != "calm" {
		t.Errorf("preset = %q, want calm", cfg.Viz.Preset)
	}
	if cfg.Transport.WSAddr != ":9000" {
		t.Errorf("ws_addr = %q, want :9000", cfg.Transport.WSAddr)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sample rate too low", func(c *Config) { c.Capture.SampleRate = 4000 }},
		{"sample rate too high", func(c *Config) { c.Capture.SampleRate = 400000 }},
		{"buffer too small", func(c *Config) { c.Capture.FramesPerBuffer = 16 }},
		{"buffer too large", func(c *Config) { c.Capture.FramesPerBuffer = 65536 }},
		{"buffer not power of two", func(c *Config) { c.Capture.FramesPerBuffer = 1000 }},
		{"gate threshold too high", func(c *Config) { c.Capture.GateThreshold = 1.5 }},
		{"gate threshold negative", func(c *Config) { c.Capture.GateThreshold = -0.2 }},
		{"zero channels", func(c *Config) { c.Capture.Channels = 0 }},
		{"zero frame rate", func(c *Config) { c.Viz.FrameRate = 0 }},
		{"zero canvas", func(c *Config) { c.Viz.Width = 0 }},
		{"udp without target", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTarget = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AURA_PRESET", "vivid")
	t.Setenv("AURA_SAMPLE_RATE", "48000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Viz.Preset != "vivid" {
		t.Errorf("preset = %q, want vivid", cfg.Viz.Preset)
	}
	if cfg.Capture.SampleRate != 48000 {
		t.Errorf("sample rate = %.0f, want 48000", cfg.Capture.SampleRate)
	}
}
