package pif

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/mrjoshuak/go-pif/plane"
)

// Image is a decoded PIF image: four 8-bit planes of equal size in
// blue, green, red, alpha order. Color values are not premultiplied.
type Image struct {
	Width  int
	Height int
	B      *plane.Plane
	G      *plane.Plane
	R      *plane.Plane
	A      *plane.Plane
}

// NewImage returns a black, fully opaque image.
func NewImage(width, height int) *Image {
	img := &Image{
		Width:  width,
		Height: height,
		B:      plane.New(width, height),
		G:      plane.New(width, height),
		R:      plane.New(width, height),
		A:      plane.New(width, height),
	}
	for i := range img.A.Pix {
		img.A.Pix[i] = 0xff
	}
	return img
}

// FromImage splits any image into BGRA planes. Images without an alpha
// channel become fully opaque.
func FromImage(m image.Image) *Image {
	src, ok := m.(*image.NRGBA)
	if !ok {
		b := m.Bounds()
		src = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(src, src.Bounds(), m, b.Min, draw.Src)
	}
	return FromNRGBA(src)
}

// FromNRGBA splits an NRGBA image into BGRA planes.
func FromNRGBA(src *image.NRGBA) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	img := &Image{
		Width:  w,
		Height: h,
		B:      plane.New(w, h),
		G:      plane.New(w, h),
		R:      plane.New(w, h),
		A:      plane.New(w, h),
	}

	ParallelFor(h, func(y int) {
		s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		d := y * w
		for x := 0; x < w; x++ {
			img.R.Pix[d+x] = s[4*x]
			img.G.Pix[d+x] = s[4*x+1]
			img.B.Pix[d+x] = s[4*x+2]
			img.A.Pix[d+x] = s[4*x+3]
		}
	})
	return img
}

// ToNRGBA interleaves the planes into an NRGBA image with origin (0, 0).
func (img *Image) ToNRGBA() *image.NRGBA {
	w, h := img.Width, img.Height
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	ParallelFor(h, func(y int) {
		d := dst.Pix[y*dst.Stride:]
		s := y * w
		for x := 0; x < w; x++ {
			d[4*x] = img.R.Pix[s+x]
			d[4*x+1] = img.G.Pix[s+x]
			d[4*x+2] = img.B.Pix[s+x]
			d[4*x+3] = img.A.Pix[s+x]
		}
	})
	return dst
}

// Opaque reports whether every alpha sample is 255.
func (img *Image) Opaque() bool {
	for _, a := range img.A.Pix {
		if a != 0xff {
			return false
		}
	}
	return true
}

// Equal reports whether two images have identical dimensions and samples.
func (img *Image) Equal(o *Image) bool {
	if img == nil || o == nil {
		return img == o
	}
	return img.Width == o.Width && img.Height == o.Height &&
		img.B.Equal(o.B) && img.G.Equal(o.G) && img.R.Equal(o.R) && img.A.Equal(o.A)
}

func (img *Image) planes() [NumChannels]*plane.Plane {
	return [NumChannels]*plane.Plane{img.B, img.G, img.R, img.A}
}

func (img *Image) validate() error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if img.Width < 0 || img.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidImage, img.Width, img.Height)
	}
	w, h := uint64(img.Width), uint64(img.Height)
	if w > MaxImageArea || h > MaxImageArea || w*h > MaxImageArea {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, w, h)
	}
	for k, p := range img.planes() {
		name := ColorModelBGRA.Channels()[k]
		if p == nil {
			return fmt.Errorf("%w: missing %s plane", ErrInvalidImage, name)
		}
		if p.Width != img.Width || p.Height != img.Height || len(p.Pix) != img.Width*img.Height {
			return fmt.Errorf("%w: %s plane is %dx%d with %d samples, image is %dx%d",
				ErrInvalidImage, name, p.Width, p.Height, len(p.Pix), img.Width, img.Height)
		}
	}
	return nil
}
