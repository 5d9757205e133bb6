// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"testing"
)

func TestGateThresholdBoundaries(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
		enabled  bool
	}{
		{-0.1, 0.0, false}, // below min disables
		{0.0, 0.0, false},  // zero disables
		{0.001, 0.001, true},
		{0.5, 0.5, true},
		{1.0, 1.0, true},
		{1.5, 1.0, true}, // above max clamps
	}

	engine := &Engine{}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.3f", tt.input), func(t *testing.T) {
			engine.SetGateThreshold(tt.input)
			if engine.gateEnabled != tt.enabled {
				t.Errorf("SetGateThreshold(%f) enabled = %v, want %v",
					tt.input, engine.gateEnabled, tt.enabled)
			}
			got := engine.GateThreshold()
			if diff := got - tt.expected; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("SetGateThreshold(%f) -> %f, want %f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGateReenableRestoresThreshold(t *testing.T) {
	engine := &Engine{}

	engine.SetGateThreshold(0.25)
	engine.SetGateThreshold(0)
	if engine.gateEnabled {
		t.Fatal("zero threshold should disable the gate")
	}

	engine.SetGateThreshold(0.25)
	if !engine.gateEnabled || engine.gateThreshold == 0 {
		t.Fatal("non-zero threshold should re-enable the gate")
	}
}
