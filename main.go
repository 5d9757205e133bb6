// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"image/png"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"aura/cmd"
	"aura/internal/analysis"
	"aura/internal/audio"
	"aura/internal/blob"
	"aura/internal/config"
	applog "aura/internal/log"
	"aura/internal/noise"
	"aura/internal/transport"
	"aura/internal/transport/udp"
	"aura/internal/tui"
	"aura/internal/viz"
	"aura/internal/voice"
	"aura/pkg/build"
)

// main runs in three phases:
//
// 1. Startup (cold path): build info, argument parsing, one-off
// commands that need no frame loop.
//
// 2. Concurrent (hot path): portaudio capture callback, the frame loop,
// and the transports all running.
//
// 3. Shutdown (cold path): signal handling, lifecycle cleanup.
func main() {
	if err := build.Initialize(); err != nil {
		applog.Fatalf("build info: %v", err)
	}

	// One thread for the audio callback, one for the frame loop and IO.
	runtime.GOMAXPROCS(2)

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	switch cfg.Command {
	case "list":
		if err := listDevices(); err != nil {
			applog.Fatalf("listing devices: %v", err)
		}
		return

	case "snapshot":
		if err := renderSnapshot(cfg); err != nil {
			applog.Fatalf("snapshot: %v", err)
		}
		return

	case "pick":
		selection, err := tui.Pick()
		if err != nil {
			applog.Fatalf("device picker: %v", err)
		}
		if !selection.Confirmed {
			return
		}
		cfg.Capture.DeviceID = selection.DeviceID
		cfg.Capture.SampleRate = selection.SampleRate
		cfg.Viz.Preset = selection.Preset
	}

	if err := run(cfg, cfg.Command == "demo"); err != nil {
		applog.Fatalf("%v", err)
	}
}

func listDevices() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()
	return audio.ListDevices()
}

// renderSnapshot settles the idle animation and writes one frame as PNG.
func renderSnapshot(cfg *config.Config) error {
	preset, ok := blob.PresetByName(cfg.Viz.Preset)
	if !ok {
		preset = blob.DefaultPreset()
	}

	pipeline := blob.NewPipeline(preset, noise.NewPerlin(time.Now().UnixNano()))
	pipeline.Resize(float64(cfg.Viz.Width), float64(cfg.Viz.Height))

	var frame blob.Frame
	for i := 0; i < 120; i++ {
		frame = pipeline.Step(analysis.SignalFrame{})
	}

	img := blob.NewRenderer(cfg.Viz.Width, cfg.Viz.Height).Render(&frame)

	out, err := os.Create(cfg.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return err
	}
	applog.Infof("Wrote %s (%dx%d, preset %s)", cfg.OutputFile, cfg.Viz.Width, cfg.Viz.Height, cfg.Viz.Preset)
	return nil
}

// run starts the capture engine, frame loop, and transports, then
// blocks until a termination signal (or, in demo mode, until the
// scripted session ends).
func run(cfg *config.Config, demo bool) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	v := viz.New(cfg, viz.NewEngineOpener(cfg))
	defer v.Cleanup()

	if cfg.Transport.WSEnabled {
		v.AttachTransport(transport.NewWebSocketTransport(cfg.Transport.WSAddr))
	}
	if cfg.Debug {
		v.AttachTransport(transport.NewLoggingTransport())
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTarget)
		if err != nil {
			return err
		}
		publisher, err := udp.NewPublisher(time.Second/time.Duration(cfg.Viz.FrameRate), sender, v)
		if err != nil {
			sender.Close()
			return err
		}
		publisher.Start()
		defer func() {
			publisher.Stop()
			sender.Close()
		}()
	}

	v.Start()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	if demo {
		demoDone := make(chan struct{})
		session := voice.NewMockSession(voice.DemoScript(), 100*time.Millisecond)
		go func() {
			voice.NewBinder(v).Run(context.Background(), session)
			close(demoDone)
		}()

		applog.Infof("aura: demo session running, Ctrl-C to quit early")
		select {
		case <-done:
			session.Close()
		case <-demoDone:
			// Let the relax animation play out before shutdown.
			time.Sleep(2 * time.Second)
		}
		return nil
	}

	v.Activate()
	applog.Infof("aura: running, Ctrl-C to quit")
	<-done
	return nil
}
