// SPDX-License-Identifier: MIT
package voice

import (
	"context"

	applog "aura/internal/log"
)

// Surface is the slice of the visualizer lifecycle the binder drives.
// *viz.Visualizer satisfies it.
type Surface interface {
	Activate()
	Deactivate()
	SetConnecting(on bool)
	SetExternalVolume(volume float64)
}

// Binder translates session events into visualizer calls: the surface
// activates in the connecting state when binding starts, turns fully
// active when the session starts, tracks host-reported volume, and
// deactivates when the session ends or errors out.
type Binder struct {
	surface Surface
}

func NewBinder(surface Surface) *Binder {
	return &Binder{surface: surface}
}

// Run consumes the session until its event stream closes or the
// context is canceled, then deactivates the surface. It blocks; run it
// in its own goroutine.
func (b *Binder) Run(ctx context.Context, session Session) {
	b.surface.Activate()
	b.surface.SetConnecting(true)
	defer b.surface.Deactivate()

	for {
		select {
		case <-ctx.Done():
			session.Close()
			return
		case ev, ok := <-session.Events():
			if !ok {
				return
			}
			if done := b.handle(ev); done {
				return
			}
		}
	}
}

func (b *Binder) handle(ev Event) bool {
	switch ev.Type {
	case EventSessionStart:
		b.surface.SetConnecting(false)
	case EventSessionEnd:
		return true
	case EventSpeechStart:
		// Volume events follow; nothing to flip here.
	case EventSpeechEnd:
		// The assistant went quiet; drop the override so the mic path
		// (or silence) takes over.
		b.surface.SetExternalVolume(-1)
	case EventVolume:
		b.surface.SetExternalVolume(ev.Volume)
	case EventTranscript:
		applog.Debugf("Voice: transcript (%s, final=%v): %s",
			ev.Transcript.Speaker, ev.Transcript.IsFinal, ev.Transcript.Text)
	case EventError:
		applog.Warnf("Voice: session error: %s", ev.Message)
		return true
	}
	return false
}
