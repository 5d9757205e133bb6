// SPDX-License-Identifier: MIT
package blob

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/rasterizer"
)

const (
	innerLayerScale  = 0.45 // innermost layer size relative to the ring
	textureAlphaGate = 0.06 // internal texture hidden below this
	backgroundShade  = 0x12
)

// Renderer rasterizes frames into an image.RGBA for PNG snapshots and
// tests. The image is reused between frames; every drawn dimension is
// clamped strictly positive before it reaches the rasterizer.
type Renderer struct {
	width, height float64
	img           *image.RGBA
}

// NewRenderer creates a renderer for the given pixel size. Degenerate
// sizes clamp to 1x1.
func NewRenderer(width, height int) *Renderer {
	r := &Renderer{}
	r.Resize(width, height)
	return r
}

// Resize reallocates the target image. Safe with zero or negative
// dimensions.
func (r *Renderer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	r.width = float64(width)
	r.height = float64(height)
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Render draws one frame and returns the backing image. The image is
// overwritten on the next call.
func (r *Renderer) Render(f *Frame) *image.RGBA {
	c := canvas.New(r.width, r.height)
	ctx := canvas.NewContext(c)

	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(color.RGBA{backgroundShade, backgroundShade, backgroundShade + 6, 0xff})
	ctx.DrawPath(0, 0, canvas.Rectangle(r.width, r.height))

	cx, cy := r.width/2, r.height/2

	edge, center := frameColors(f)

	r.drawLayers(ctx, f, edge, center, cx, cy)
	r.drawTexture(ctx, f, center, cx, cy)
	r.drawRipple(ctx, f, edge, cx, cy)
	r.drawGlyph(ctx, f, cx, cy)

	raster := rasterizer.New(r.img, 1)
	c.Render(raster)

	return r.img
}

// drawLayers draws the concentric translucent polygon layers outer to
// inner, blending edge toward center color and ramping alpha with the
// edge sharpness.
func (r *Renderer) drawLayers(ctx *canvas.Context, f *Frame, edge, center colorful.Color, cx, cy float64) {
	layers := f.LayerCount
	if layers < 1 {
		layers = 1
	}

	for l := 0; l < layers; l++ {
		t := 0.0
		if layers > 1 {
			t = float64(l) / float64(layers-1)
		}

		scale := 1 - (1-innerLayerScale)*t
		col := edge.BlendHsv(center, t)

		sharp := math.Max(0.2, f.EdgeSharpness)
		alphaT := math.Pow(t, 1/(0.5+sharp))
		alpha := f.EdgeAlpha + (f.CenterAlpha-f.EdgeAlpha)*alphaT

		ctx.SetStrokeColor(canvas.Transparent)
		ctx.SetFillColor(withAlpha(col, alpha))
		ctx.DrawPath(cx, cy, blobPath(f.Vertices, scale))
	}
}

// drawTexture draws faint noise-perturbed contour rings inside the blob
// when the texture alpha is above its visibility floor.
func (r *Renderer) drawTexture(ctx *canvas.Context, f *Frame, center colorful.Color, cx, cy float64) {
	if f.TextureAlpha < textureAlphaGate {
		return
	}

	strokeWidth := math.Max(0.6, f.BaseRadius*0.012)

	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(withAlpha(center, f.TextureAlpha))
	ctx.SetStrokeWidth(strokeWidth)

	for _, scale := range []float64{0.62, 0.4} {
		ctx.DrawPath(cx, cy, blobPath(f.Vertices, scale))
	}
	ctx.SetStrokeWidth(0)
}

// drawRipple draws the one-shot expanding ring that punctuates the end
// of a conversational pause.
func (r *Renderer) drawRipple(ctx *canvas.Context, f *Frame, edge colorful.Color, cx, cy float64) {
	if f.Ripple <= 0 {
		return
	}

	radius := math.Max(1, f.BaseRadius*(1.1+f.Ripple*0.9))
	alpha := (1 - f.Ripple) * 0.35

	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(withAlpha(edge, alpha))
	ctx.SetStrokeWidth(math.Max(0.8, f.BaseRadius*0.02))
	ctx.DrawPath(cx, cy, canvas.Circle(radius))
	ctx.SetStrokeWidth(0)
}

// drawGlyph draws the centered microphone glyph, scaled gently by the
// current amplitude, plus the recording dot when capture is persisted.
func (r *Renderer) drawGlyph(ctx *canvas.Context, f *Frame, cx, cy float64) {
	scale := f.GlyphScale
	if scale < 0.1 {
		scale = 0.1
	}

	capW := math.Max(1, f.BaseRadius*0.16*scale)
	capH := math.Max(1, f.BaseRadius*0.3*scale)
	stemH := math.Max(1, f.BaseRadius*0.1*scale)
	footW := math.Max(1, f.BaseRadius*0.2*scale)
	lineW := math.Max(0.8, capW*0.2)

	glyphColor := withAlpha(colorful.Color{R: 1, G: 1, B: 1}, 0.85)

	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(glyphColor)

	// Capsule body, centered slightly above the middle.
	ctx.DrawPath(cx-capW/2, cy-capH*0.3, canvas.RoundedRectangle(capW, capH, capW/2))
	// Stem and foot below the capsule.
	ctx.DrawPath(cx-lineW/2, cy-capH*0.3-stemH, canvas.Rectangle(lineW, stemH))
	ctx.DrawPath(cx-footW/2, cy-capH*0.3-stemH-lineW, canvas.Rectangle(footW, lineW))

	if f.Recording {
		ctx.SetFillColor(color.NRGBA{0xe0, 0x40, 0x40, 0xdd})
		ctx.DrawPath(cx+capW*1.6, cy+capH*0.7, canvas.Circle(math.Max(1, capW*0.3)))
	}
}

// blobPath builds a closed smooth path through the scaled vertex ring,
// using quadratic segments through the midpoints so the outline has no
// corners.
func blobPath(vertices []float64, scale float64) *canvas.Path {
	p := &canvas.Path{}
	n := len(vertices) / 2
	if n < 3 {
		return p
	}
	if scale <= 0 {
		scale = 0.01
	}

	vx := func(i int) (float64, float64) {
		i = ((i % n) + n) % n
		return vertices[i*2] * scale, vertices[i*2+1] * scale
	}

	x0, y0 := vx(0)
	x1, y1 := vx(1)
	p.MoveTo((x0+x1)/2, (y0+y1)/2)
	for i := 1; i <= n; i++ {
		cxp, cyp := vx(i)
		nxp, nyp := vx(i + 1)
		p.QuadTo(cxp, cyp, (cxp+nxp)/2, (cyp+nyp)/2)
	}
	p.Close()
	return p
}

// frameColors recovers the edge and center colors from the frame's hex
// fields, falling back to the HSV parameters on a malformed value.
func frameColors(f *Frame) (edge, center colorful.Color) {
	var err error
	if edge, err = colorful.Hex(f.EdgeColor); err != nil {
		edge = colorful.Hsv(f.Hue, f.Saturation, f.Brightness*0.7)
	}
	if center, err = colorful.Hex(f.CenterColor); err != nil {
		center = colorful.Hsv(f.Hue, f.Saturation, f.Brightness)
	}
	return edge, center
}

func withAlpha(c colorful.Color, alpha float64) color.NRGBA {
	alpha = clamp01(alpha)
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha * 255)}
}
