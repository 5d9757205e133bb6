// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"aura/pkg/bitint"
)

// fftWorkspace holds pre-allocated buffers for FFT calculations.
type fftWorkspace struct {
	input     []float64    // real input samples (windowed, scaled)
	fftOutput []complex128 // FFT complex output
	magnitude []float64    // raw magnitude output
	window    []float64    // Hann window coefficients
}

// FFTProcessor performs frequency-domain analysis of capture buffers.
// Process runs on the audio callback thread; the magnitude snapshot is
// read from the frame loop, so it is guarded separately from the
// workspace the hot path writes into.
type FFTProcessor struct {
	fftSize    int
	sampleRate float64
	workspace  fftWorkspace
	fftObj     *fourier.FFT

	mu       sync.RWMutex
	snapshot []float64
}

// NewFFTProcessor creates an FFT processor with all buffers and the Hann
// window pre-allocated. fftSize must be a power of 2.
func NewFFTProcessor(fftSize int, sampleRate float64) *FFTProcessor {
	if !bitint.IsPowerOfTwo(fftSize) {
		panic("FFT size must be a power of 2")
	}

	window := make([]float64, fftSize)
	for i := 0; i < fftSize; i++ {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	outputSize := fftSize/2 + 1

	return &FFTProcessor{
		fftSize:    fftSize,
		sampleRate: sampleRate,
		fftObj:     fourier.NewFFT(fftSize),
		snapshot:   make([]float64, outputSize),
		workspace: fftWorkspace{
			input:     make([]float64, fftSize),
			fftOutput: make([]complex128, outputSize),
			magnitude: make([]float64, outputSize),
			window:    window,
		},
	}
}

// Process windows and transforms one capture buffer and publishes the
// magnitude spectrum. The buffer is expected to hold fftSize samples;
// shorter buffers are zero padded.
func (p *FFTProcessor) Process(inputBuffer []int32) {
	for i := 0; i < p.fftSize; i++ {
		if i < len(inputBuffer) {
			p.workspace.input[i] = float64(inputBuffer[i]) * p.workspace.window[i] / float64(math.MaxInt32)
		} else {
			p.workspace.input[i] = 0
		}
	}

	_ = p.fftObj.Coefficients(p.workspace.fftOutput, p.workspace.input)
	for i := range p.workspace.fftOutput {
		p.workspace.magnitude[i] = cmplx.Abs(p.workspace.fftOutput[i])
	}

	p.mu.Lock()
	copy(p.snapshot, p.workspace.magnitude)
	p.mu.Unlock()
}

// Magnitudes copies the latest magnitude spectrum into dst and returns
// the number of bins copied.
func (p *FFTProcessor) Magnitudes(dst []float64) int {
	p.mu.RLock()
	n := copy(dst, p.snapshot)
	p.mu.RUnlock()
	return n
}

// BinCount returns the number of magnitude bins (fftSize/2 + 1).
func (p *FFTProcessor) BinCount() int {
	return p.fftSize/2 + 1
}

// Size returns the FFT transform size.
func (p *FFTProcessor) Size() int {
	return p.fftSize
}

// SampleRate returns the sample rate the bin frequencies are derived from.
func (p *FFTProcessor) SampleRate() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sampleRate
}

// SetSampleRate updates the sample rate once the device reports its
// actual rate. Bin frequencies shift accordingly.
func (p *FFTProcessor) SetSampleRate(rate float64) {
	if rate <= 0 {
		return
	}
	p.mu.Lock()
	p.sampleRate = rate
	p.mu.Unlock()
}

// FrequencyForBin returns the frequency in Hz for a given FFT bin index.
func (p *FFTProcessor) FrequencyForBin(i int) float64 {
	if i < 0 || i >= len(p.workspace.fftOutput) {
		return 0
	}
	return p.fftObj.Freq(i) * p.SampleRate()
}
