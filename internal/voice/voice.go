// SPDX-License-Identifier: MIT
/*
Package voice is the boundary to the hosting voice-assistant SDK. The
SDK itself stays external; this package defines the event vocabulary a
session emits and a binder that maps those events onto the visualizer
lifecycle. A scripted mock session stands in for the SDK in tests and
demos.
*/
package voice

// EventType discriminates session events.
type EventType int

const (
	EventSessionStart EventType = iota
	EventSessionEnd
	EventSpeechStart
	EventSpeechEnd
	EventTranscript
	EventVolume
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventSessionStart:
		return "session_start"
	case EventSessionEnd:
		return "session_end"
	case EventSpeechStart:
		return "speech_start"
	case EventSpeechEnd:
		return "speech_end"
	case EventTranscript:
		return "transcript"
	case EventVolume:
		return "volume"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Transcript is one recognized utterance fragment.
type Transcript struct {
	Text    string
	IsFinal bool
	Speaker string
}

// Event is one occurrence in a voice session. Only the fields relevant
// to the type are set.
type Event struct {
	Type       EventType
	Transcript Transcript
	Volume     float64 // [0,1], EventVolume only
	Message    string  // EventError only
}

// Session is an opaque stream of voice events. Events is closed when
// the session ends; Close ends it early.
type Session interface {
	Events() <-chan Event
	Close() error
}
