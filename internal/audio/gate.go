// SPDX-License-Identifier: MIT
package audio

import "math"

// SetGateThreshold sets the noise gate threshold as a fraction of full
// scale in [0, 1]. Zero disables the gate entirely; out-of-range values
// are clamped. NewEngine applies the configured value, and it may be
// called again while the stream is running.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold <= 0.0 {
		e.gateEnabled = false
		e.gateThreshold = 0
		return
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	e.gateEnabled = true
	e.gateThreshold = int32(threshold * float64(math.MaxInt32))
}

// GateThreshold returns the active threshold as a fraction of full
// scale, or 0 when the gate is disabled.
func (e *Engine) GateThreshold() float64 {
	if !e.gateEnabled {
		return 0
	}
	return float64(e.gateThreshold) / float64(math.MaxInt32)
}
