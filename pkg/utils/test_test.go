package utils

import (
	"math"
	"testing"
)

func TestGenerateSineWave(t *testing.T) {
	buf := GenerateSineWave(1024, 44100, 440)
	if len(buf) != 1024 {
		t.Fatalf("length = %d, want 1024", len(buf))
	}

	var peak int32
	for _, s := range buf {
		if s > peak {
			peak = s
		}
	}
	if float64(peak) < 0.8*math.MaxInt32 {
		t.Errorf("sine peak %d too low for 90%% scale", peak)
	}
}

func TestFindPeakBin(t *testing.T) {
	mags := []float64{0.1, 0.5, 3.0, 0.2, 1.0}

	tests := []struct {
		start, end, want int
	}{
		{0, 4, 2},
		{3, 4, 4},
		{-10, 100, 2}, // out-of-range bounds are clamped
	}

	for _, tt := range tests {
		if got := FindPeakBin(mags, tt.start, tt.end); got != tt.want {
			t.Errorf("FindPeakBin(%d, %d) = %d, want %d", tt.start, tt.end, got, tt.want)
		}
	}

	if got := FindPeakBin(nil, 0, 10); got != 0 {
		t.Errorf("FindPeakBin on empty slice = %d, want 0", got)
	}
}
