// SPDX-License-Identifier: MIT
package blob

import "math"

// computeRing recomputes every vertex of the ring from the current
// state. Each vertex sums the slow idle wobble with, when active, the
// coarse shape, fine texture, and waviness noise offsets, all sampled
// from the injected field using the vertex direction as spatial
// coordinates and the accumulated time. The final radius is hard-clamped
// into [MinRadiusFrac, MaxRadiusFrac] of the base radius; this is the
// invariant that keeps extreme or hostile signal input from producing
// negative or self-intersecting geometry.
func (p *Pipeline) computeRing() {
	pre := p.preset
	st := &p.state
	base := p.baseRadius

	minR := base * pre.MinRadiusFrac
	maxR := base * pre.MaxRadiusFrac

	breath := 0.0
	if st.Breathing {
		breath = math.Sin(st.BreathPhase) * pre.BreathDepth
	}

	n := pre.VertexCount
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		cos, sin := math.Cos(theta), math.Sin(theta)

		idle := p.signedNoise(cos*pre.IdleNoiseScale, sin*pre.IdleNoiseScale, st.Time*0.6)

		r := base * (1 + idle*st.PassiveDeform + breath + st.InhaleAmount)

		if st.Activity > 0.001 {
			shape := p.signedNoise(cos*pre.ShapeNoiseScale, sin*pre.ShapeNoiseScale, st.Time)
			texture := p.signedNoise(cos*pre.TextureNoiseScale, sin*pre.TextureNoiseScale, st.Time*1.7+37)
			wav := p.signedNoise(
				cos*st.WavinessScale+st.AngularOffset,
				sin*st.WavinessScale,
				st.Time*1.1+91,
			)

			displacement := shape*pre.ShapeWeight +
				texture*pre.TextureWeight*st.TextureIntensity +
				wav*pre.WavinessWeight*st.WavinessInfluence

			r += base * displacement * pre.PeakExtensionMax * st.PeakExtension * st.Activity
		}

		// Strictly positive, bounded radius: the renderer contract.
		if math.IsNaN(r) || r < minR {
			r = minR
		} else if r > maxR {
			r = maxR
		}

		p.radii[i] = r
		p.ring[i*2] = r * cos
		p.ring[i*2+1] = r * sin
	}
}

// signedNoise maps the [0,1] field into [-1,1].
func (p *Pipeline) signedNoise(x, y, z float64) float64 {
	if p.field == nil {
		return 0
	}
	return p.field.At3(x, y, z)*2 - 1
}

// Radii returns the current vertex radii. The slice is reused between
// frames; callers must not retain it.
func (p *Pipeline) Radii() []float64 {
	return p.radii
}

// RadiusBounds returns the clamp band for the current base radius.
func (p *Pipeline) RadiusBounds() (minR, maxR float64) {
	return p.baseRadius * p.preset.MinRadiusFrac, p.baseRadius * p.preset.MaxRadiusFrac
}
