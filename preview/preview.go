// Package preview renders a ray-traced Intensity buffer to a grayscale PNG
// for quick visual inspection — a debug/demo capability the original
// project's own command-line tools would have had, supplementing spec.md
// (which deliberately keeps the CLI surface external and narrow). Grounded
// on observerly-skysolve's imaging stack, the one repo in the retrieval
// pack that renders raster output from numeric arrays, using
// github.com/fogleman/gg.
package preview

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/relgr/raytrace/output"
)

// WritePNG renders buf's Intensity slot as a grayscale image, scaling
// linearly between the finite min and max observed values (NoHit pixels
// render black), and writes it to w as PNG.
func WritePNG(w io.Writer, buf *output.Buffer) error {
	width := buf.IMax - buf.IMin + 1
	height := buf.JMax - buf.JMin + 1

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range buf.Intensity {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.Black)
	dc.Clear()

	for i := buf.IMin; i <= buf.IMax; i++ {
		for j := buf.JMin; j <= buf.JMax; j++ {
			idx := (i-buf.IMin)*height + (j - buf.JMin)
			v := buf.Intensity[idx]
			if math.IsNaN(v) {
				continue
			}
			frac := (v - lo) / span
			if frac < 0 {
				frac = 0
			}
			if frac > 1 {
				frac = 1
			}
			dc.SetColor(color.Gray{Y: uint8(frac * 255)})
			dc.SetPixel(i-buf.IMin, j-buf.JMin)
		}
	}

	return png.Encode(w, dc.Image())
}
