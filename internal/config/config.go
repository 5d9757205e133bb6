// SPDX-License-Identifier: MIT
package config

// Core configuration constants that define the boundaries and defaults
// for the capture and visualization pipeline.
const (
	// Default values for the capture configuration
	DefaultChannels        = 1           // Mono microphone capture
	DefaultDeviceID        = MinDeviceID // System default input device
	DefaultFramesPerBuffer = 1024        // Also the FFT transform size
	DefaultLowLatency      = false       // Standard latency mode
	DefaultSampleRate      = 44100       // Until the device reports otherwise
	DefaultGateThreshold   = 0.001       // Noise gate, fraction of full scale (0 disables)

	// Default values for the visualization
	DefaultFrameRate  = 60        // Render ticks per second
	DefaultPreset     = "default" // Tuning preset name
	DefaultWidth      = 480       // Canvas width in pixels
	DefaultHeight     = 480       // Canvas height in pixels
	DefaultWSAddr     = ":8080"   // WebSocket frame feed address
	DefaultUDPTarget  = ""        // UDP frame feed disabled by default
	DefaultRecordFile = ""        // Auto-generated when recording starts

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 selects the system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MinBufferFrames = 256    // Minimum frames per buffer
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)
	MinFrameRate    = 1
	MaxFrameRate    = 240
)

// Config holds all runtime configuration options. It is constructed from
// defaults, then an optional YAML file, then environment variables, then
// command line flags, in that order.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	Capture   CaptureConfig   `yaml:"capture"`
	Viz       VizConfig       `yaml:"viz"`
	Transport TransportConfig `yaml:"transport"`

	// One-off command to execute instead of running the pipeline.
	Command string `yaml:"-"`

	// Output path for the snapshot command.
	OutputFile string `yaml:"-"`
}

// CaptureConfig holds microphone capture settings.
type CaptureConfig struct {
	DeviceID        int     `yaml:"device_id"`         // Input device index (-1 for default)
	Channels        int     `yaml:"channels"`          // 1=mono, 2=stereo (folded to mono for analysis)
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Buffer size in frames, power of 2
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from the device
	GateThreshold   float64 `yaml:"gate_threshold"`    // Noise gate threshold, 0-1 (0 disables)
	RecordFile      string  `yaml:"record_file"`       // WAV capture path ("" disables)
}

// VizConfig holds visualization pipeline settings.
type VizConfig struct {
	Preset    string `yaml:"preset"`     // Named tuning preset
	FrameRate int    `yaml:"frame_rate"` // Render ticks per second
	Width     int    `yaml:"width"`      // Canvas width in pixels
	Height    int    `yaml:"height"`     // Canvas height in pixels
}

// TransportConfig holds frame publishing settings.
type TransportConfig struct {
	WSEnabled  bool   `yaml:"ws_enabled"`  // Serve geometry frames over WebSocket
	WSAddr     string `yaml:"ws_addr"`     // WebSocket listen address
	UDPEnabled bool   `yaml:"udp_enabled"` // Send binary geometry frames over UDP
	UDPTarget  string `yaml:"udp_target"`  // Target address for UDP packets
}

// NewConfig returns a Config populated with defaults. This is the base
// configuration before file, environment, or flag overrides.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Capture: CaptureConfig{
			DeviceID:        DefaultDeviceID,
			Channels:        DefaultChannels,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			GateThreshold:   DefaultGateThreshold,
			RecordFile:      DefaultRecordFile,
		},
		Viz: VizConfig{
			Preset:    DefaultPreset,
			FrameRate: DefaultFrameRate,
			Width:     DefaultWidth,
			Height:    DefaultHeight,
		},
		Transport: TransportConfig{
			WSEnabled:  true,
			WSAddr:     DefaultWSAddr,
			UDPEnabled: false,
			UDPTarget:  DefaultUDPTarget,
		},
	}
}
