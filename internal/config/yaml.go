// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"aura/pkg/bitint"
)

// Load reads configuration from a YAML file at path. If path is empty it
// searches the default locations and falls back to built-in defaults when
// no file exists. Environment variable overrides are applied after the
// file, and the final configuration is validated.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range []string{"aura.yaml", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// applyEnvOverrides applies AURA_* environment variables on top of the
// loaded configuration. Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AURA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("AURA_DEVICE"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Capture.DeviceID = id
		}
	}
	if v := os.Getenv("AURA_SAMPLE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.Capture.SampleRate = rate
		}
	}
	if v := os.Getenv("AURA_PRESET"); v != "" {
		c.Viz.Preset = v
	}
	if v := os.Getenv("AURA_WS_ADDR"); v != "" {
		c.Transport.WSAddr = v
		c.Transport.WSEnabled = true
	}
	if v := os.Getenv("AURA_UDP_TARGET"); v != "" {
		c.Transport.UDPTarget = v
		c.Transport.UDPEnabled = true
	}
}

// Validate checks the configuration for values outside supported limits.
func (c *Config) Validate() error {
	if c.Capture.SampleRate < MinSampleRate || c.Capture.SampleRate > MaxSampleRate {
		return errors.Errorf("sample rate %.0f outside supported range [%d, %d]",
			c.Capture.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Capture.FramesPerBuffer < MinBufferFrames || c.Capture.FramesPerBuffer > MaxBufferFrames {
		return errors.Errorf("frames per buffer %d outside supported range [%d, %d]",
			c.Capture.FramesPerBuffer, MinBufferFrames, MaxBufferFrames)
	}
	// The buffer doubles as the FFT transform size, which must be a
	// power of two.
	if !bitint.IsPowerOfTwo(c.Capture.FramesPerBuffer) {
		return errors.Errorf("frames per buffer %d must be a power of 2", c.Capture.FramesPerBuffer)
	}
	if c.Capture.GateThreshold < 0 || c.Capture.GateThreshold > 1 {
		return errors.Errorf("gate threshold %.3f must be in [0, 1]", c.Capture.GateThreshold)
	}
	if c.Capture.Channels < 1 || c.Capture.Channels > 2 {
		return errors.Errorf("channel count %d must be 1 or 2", c.Capture.Channels)
	}
	if c.Viz.FrameRate < MinFrameRate || c.Viz.FrameRate > MaxFrameRate {
		return errors.Errorf("frame rate %d outside supported range [%d, %d]",
			c.Viz.FrameRate, MinFrameRate, MaxFrameRate)
	}
	if c.Viz.Width < 1 || c.Viz.Height < 1 {
		return errors.Errorf("canvas size %dx%d must be positive", c.Viz.Width, c.Viz.Height)
	}
	if c.Transport.UDPEnabled && c.Transport.UDPTarget == "" {
		return errors.New("udp_target must be set when UDP transport is enabled")
	}
	return nil
}
