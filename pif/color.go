package pif

import (
	"image/color"

	"github.com/mrjoshuak/go-pif/plane"
)

// bgrToYCrCb converts full-range 8-bit BGR planes to BT.601 (JFIF) luma and
// chroma planes.
func bgrToYCrCb(b, g, r *plane.Plane) (y, cr, cb *plane.Plane) {
	w, h := b.Width, b.Height
	y, cr, cb = plane.New(w, h), plane.New(w, h), plane.New(w, h)

	ParallelFor(h, func(row int) {
		for i := row * w; i < (row+1)*w; i++ {
			y.Pix[i], cb.Pix[i], cr.Pix[i] = color.RGBToYCbCr(r.Pix[i], g.Pix[i], b.Pix[i])
		}
	})
	return y, cr, cb
}

// yCrCbToBGR is the inverse of bgrToYCrCb. Results are clamped to [0, 255].
func yCrCbToBGR(y, cr, cb *plane.Plane) (b, g, r *plane.Plane) {
	w, h := y.Width, y.Height
	b, g, r = plane.New(w, h), plane.New(w, h), plane.New(w, h)

	ParallelFor(h, func(row int) {
		for i := row * w; i < (row+1)*w; i++ {
			r.Pix[i], g.Pix[i], b.Pix[i] = color.YCbCrToRGB(y.Pix[i], cb.Pix[i], cr.Pix[i])
		}
	})
	return b, g, r
}
