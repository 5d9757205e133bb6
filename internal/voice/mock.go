// SPDX-License-Identifier: MIT
package voice

import (
	"sync"
	"time"
)

// MockSession replays a scripted list of events with a fixed delay
// between them. It implements Session for tests and the demo mode.
type MockSession struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewMockSession starts replaying immediately. A delay of zero emits
// the script as fast as the consumer reads it.
func NewMockSession(script []Event, delay time.Duration) *MockSession {
	s := &MockSession{
		events: make(chan Event),
		done:   make(chan struct{}),
	}
	go s.replay(script, delay)
	return s
}

func (s *MockSession) replay(script []Event, delay time.Duration) {
	defer close(s.events)
	for _, ev := range script {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-s.done:
				return
			}
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *MockSession) Events() <-chan Event { return s.events }

func (s *MockSession) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// DemoScript is a short scripted conversation used by the demo flag:
// connect, a swell of assistant speech, a pause, and a clean end.
func DemoScript() []Event {
	script := []Event{
		{Type: EventSessionStart},
		{Type: EventSpeechStart},
	}
	for i := 0; i < 40; i++ {
		v := 0.3 + 0.5*float64(i%10)/10
		script = append(script, Event{Type: EventVolume, Volume: v})
	}
	script = append(script,
		Event{Type: EventTranscript, Transcript: Transcript{Text: "hello there", IsFinal: true, Speaker: "assistant"}},
		Event{Type: EventSpeechEnd},
		Event{Type: EventSessionEnd},
	)
	return script
}
