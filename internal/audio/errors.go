// SPDX-License-Identifier: MIT
package audio

import (
	"strings"

	"github.com/pkg/errors"
)

// Capture failure taxonomy. Callers treat all of these as non-fatal:
// the visualization keeps rendering its idle state when capture cannot
// start.
var (
	// ErrPermissionDenied means the platform refused microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceUnavailable means no usable input device could be opened.
	ErrDeviceUnavailable = errors.New("audio input device unavailable")

	// ErrContextCreationFailed means the audio subsystem itself could
	// not be initialized.
	ErrContextCreationFailed = errors.New("audio context creation failed")
)

// classifyOpenError maps a device open failure onto the taxonomy above.
// PortAudio reports host failures as text only, so permission refusals
// are matched on the message.
func classifyOpenError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "access denied") {
		return errors.Wrap(ErrPermissionDenied, err.Error())
	}
	return errors.Wrap(ErrDeviceUnavailable, err.Error())
}
