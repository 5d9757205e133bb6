// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"aura/internal/config"
	"aura/pkg/build"
)

// ParseArgs builds the configuration from the config file, environment,
// and command line, in that order of precedence.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	options, err := config.Load(configPathArg(os.Args[1:]))
	if err != nil {
		return nil, err
	}

	var verbose bool
	var configPath string

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Audio-reactive blob visualization engine",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = ""
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "pick",
		Short: "Pick the capture device and preset interactively, then run",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "pick"
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "demo",
		Short: "Run with a scripted voice session instead of live capture",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "demo"
		},
	})

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one idle frame to a PNG and exit",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "snapshot"
		},
	}
	snapshotCmd.Flags().StringVarP(&options.OutputFile, "out", "o", "aura.png",
		"Output PNG path")
	rootCmd.AddCommand(snapshotCmd)

	// Capture configuration.
	rootCmd.PersistentFlags().IntVarP(&options.Capture.DeviceID, "device", "d", options.Capture.DeviceID,
		"Input device ID. Use 'list' to see available devices, -1 for default.")
	rootCmd.PersistentFlags().IntVarP(&options.Capture.Channels, "channels", "c", options.Capture.Channels,
		"Number of channels to capture (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().Float64VarP(&options.Capture.SampleRate, "sample-rate", "s", options.Capture.SampleRate,
		"Sample rate in Hz")
	rootCmd.PersistentFlags().IntVarP(&options.Capture.FramesPerBuffer, "frames-per-buffer", "b", options.Capture.FramesPerBuffer,
		"Frames per buffer, power of two (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&options.Capture.LowLatency, "low-latency", "l", options.Capture.LowLatency,
		"Request low latency from the device")
	rootCmd.PersistentFlags().Float64Var(&options.Capture.GateThreshold, "gate-threshold", options.Capture.GateThreshold,
		"Noise gate threshold as a fraction of full scale, 0 disables the gate")
	rootCmd.PersistentFlags().StringVarP(&options.Capture.RecordFile, "record", "r", options.Capture.RecordFile,
		"Record the capture to this WAV file when recording is toggled on")

	// Visualization configuration.
	rootCmd.PersistentFlags().StringVarP(&options.Viz.Preset, "preset", "p", options.Viz.Preset,
		"Tuning preset: default, calm, vivid")
	rootCmd.PersistentFlags().IntVar(&options.Viz.FrameRate, "frame-rate", options.Viz.FrameRate,
		"Render ticks per second")
	rootCmd.PersistentFlags().IntVar(&options.Viz.Width, "width", options.Viz.Width,
		"Canvas width in pixels")
	rootCmd.PersistentFlags().IntVar(&options.Viz.Height, "height", options.Viz.Height,
		"Canvas height in pixels")

	// Transport configuration.
	rootCmd.PersistentFlags().StringVar(&options.Transport.WSAddr, "ws", options.Transport.WSAddr,
		"WebSocket listen address for geometry frames (empty disables)")
	rootCmd.PersistentFlags().StringVar(&options.Transport.UDPTarget, "udp", options.Transport.UDPTarget,
		"UDP target address for binary frames (empty disables)")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "",
		"Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Show debug output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	if verbose {
		options.Debug = true
		options.LogLevel = "debug"
	}
	options.Transport.WSEnabled = options.Transport.WSAddr != ""
	options.Transport.UDPEnabled = options.Transport.UDPTarget != ""

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// configPathArg pre-scans the arguments for --config/-f so the file can
// seed flag defaults before cobra parses them.
func configPathArg(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-f":
			if i+1 < len(args) {
				return args[i+1]
			}
		case len(arg) > len("--config=") && arg[:len("--config=")] == "--config=":
			return arg[len("--config="):]
		}
	}
	return ""
}
