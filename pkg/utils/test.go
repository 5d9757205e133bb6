// Package utils provides shared test helpers: signal generators and
// in-memory doubles for the transport and noise interfaces.
package utils

import "math"

// MockTransport implements the transport interface for testing, keeping
// every sent payload for later inspection instead of transmitting.
type MockTransport struct {
	Sent []any
}

func (m *MockTransport) Send(data any) error {
	m.Sent = append(m.Sent, data)
	return nil
}

func (m *MockTransport) Close() error { return nil }

// FlatField is a noise field that returns the same value everywhere.
// Useful for geometry tests that need deterministic displacement.
type FlatField struct {
	Value float64
}

func (f FlatField) At3(x, y, z float64) float64 { return f.Value }

// GenerateSineWave returns size samples of a single tone at frequency Hz,
// scaled to 90% of the int32 range.
func GenerateSineWave(size int, sampleRate, frequency float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int32(math.Sin(2*math.Pi*frequency*t) * math.MaxInt32 * 0.9)
	}
	return buffer
}

// GenerateComplexWave returns size samples of a 440Hz fundamental with two
// harmonics, scaled to 90% of the int32 range.
func GenerateComplexWave(size int, sampleRate float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = int32(signal * math.MaxInt32 * 0.9)
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude within
// [startBin, endBin], clamped to the slice bounds.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}
