// SPDX-License-Identifier: MIT
package blob

import (
	"bytes"
	"image/png"
	"testing"

	"aura/internal/noise"
)

func renderedFrame(t *testing.T, steps int) Frame {
	t.Helper()
	p := NewPipeline(DefaultPreset(), noise.NewPerlin(21))
	p.SetMode(ModeActive)
	var f Frame
	for i := 0; i < steps; i++ {
		f = p.Step(steadySignal(0.5))
	}
	return f
}

func TestRenderProducesEncodableImage(t *testing.T) {
	f := renderedFrame(t, 60)
	r := NewRenderer(320, 240)

	img := r.Render(&f)
	if img == nil {
		t.Fatal("nil image")
	}
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("image size %dx%d, want 320x240", b.Dx(), b.Dy())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty png")
	}
}

func TestRenderDegenerateSizes(t *testing.T) {
	f := renderedFrame(t, 10)

	for _, size := range []struct{ w, h int }{{0, 0}, {1, 1}, {-10, 40}} {
		r := NewRenderer(size.w, size.h)
		img := r.Render(&f)
		b := img.Bounds()
		if b.Dx() < 1 || b.Dy() < 1 {
			t.Fatalf("NewRenderer(%d, %d) produced %dx%d image", size.w, size.h, b.Dx(), b.Dy())
		}
	}
}

func TestRenderOverlayPaths(t *testing.T) {
	f := renderedFrame(t, 60)
	f.Recording = true
	f.Ripple = 0.5
	f.TextureAlpha = 0.3
	f.EdgeColor = "not-a-color" // exercises the hex fallback

	r := NewRenderer(96, 96)
	if img := r.Render(&f); img == nil {
		t.Fatal("nil image with overlays enabled")
	}
}

func TestBlobPathDegenerateRing(t *testing.T) {
	if p := blobPath([]float64{1, 0, 0, 1}, 1); !p.Empty() {
		t.Fatal("path built from fewer than three vertices")
	}
	if p := blobPath(make([]float64, 280), 1); p == nil {
		t.Fatal("nil path for a full ring")
	}
}
