// SPDX-License-Identifier: MIT
package blob

import "github.com/lucasb-eyer/go-colorful"

// colors realizes the current HSV parameters as the edge and center
// colors the layered rendering interpolates between. The edge is a
// darker, slightly desaturated variant of the center so the blob reads
// as glowing from within.
func (p *Pipeline) colors() (edge, center colorful.Color) {
	st := &p.state

	hue := st.Hue
	for hue < 0 {
		hue += 360
	}
	for hue >= 360 {
		hue -= 360
	}

	center = colorful.Hsv(hue, clamp01(st.Saturation), clamp01(st.Brightness))
	edge = colorful.Hsv(hue, clamp01(st.Saturation*0.85), clamp01(st.Brightness*0.7))
	return edge, center
}
