// Package noise provides the coherent-noise capability the geometry
// pipeline samples every frame. The pipeline only depends on Field, so
// tests can substitute deterministic fields for the Perlin implementation.
package noise

import "github.com/aquilax/go-perlin"

// Field is a 3D coherent-noise source. At3 returns a value in [0, 1]
// that varies smoothly in all three coordinates.
type Field interface {
	At3(x, y, z float64) float64
}

const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinN     = 3
)

type perlinField struct {
	p *perlin.Perlin
}

// NewPerlin returns a Perlin-backed Field seeded deterministically.
func NewPerlin(seed int64) Field {
	return &perlinField{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed)}
}

// At3 samples the underlying Perlin noise and remaps its approximate
// [-1, 1] output into [0, 1], clamping the tails the generator can
// occasionally exceed.
func (f *perlinField) At3(x, y, z float64) float64 {
	v := f.p.Noise3D(x, y, z)*0.5 + 0.5
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
