package analysis

// MovingWindow is a fixed-capacity ring of samples with a running sum,
// used for the trailing level baselines. Pushing beyond capacity evicts
// the oldest sample.
type MovingWindow struct {
	values []float64
	next   int
	length int
	sum    float64
}

// NewMovingWindow returns a moving window holding at most size samples.
// Sizes below 1 are clamped to 1.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}
	return &MovingWindow{values: make([]float64, size)}
}

// Push adds a sample, evicting the oldest when full, and returns the
// updated mean.
func (w *MovingWindow) Push(value float64) float64 {
	if w.length < len(w.values) {
		w.length++
	} else {
		w.sum -= w.values[w.next]
	}
	w.values[w.next] = value
	w.sum += value
	w.next = (w.next + 1) % len(w.values)
	return w.Mean()
}

// Mean returns the average of the samples currently held.
func (w *MovingWindow) Mean() float64 {
	if w.length == 0 {
		return 0
	}
	return w.sum / float64(w.length)
}

// Len returns how many samples the window currently holds.
func (w *MovingWindow) Len() int { return w.length }

// Cap returns the maximum number of samples the window holds.
func (w *MovingWindow) Cap() int { return len(w.values) }

// Reset empties the window.
func (w *MovingWindow) Reset() {
	w.next = 0
	w.length = 0
	w.sum = 0
}
