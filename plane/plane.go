// Package plane provides the 8-bit channel plane shared by the PIF codec
// stages.
//
// A Plane is one component (blue, luma, alpha, ...) of an image stored
// row-major. Codec stages treat planes as immutable: operations such as
// Transpose and Quantize return new planes.
package plane

import (
	"bytes"
	"errors"
)

// ErrSizeMismatch is returned when a pixel buffer doesn't match the
// declared dimensions.
var ErrSizeMismatch = errors.New("plane: pixel buffer does not match dimensions")

// Plane is a height × width grid of 8-bit samples in row-major order.
type Plane struct {
	Width  int
	Height int
	Pix    []uint8
}

// New returns a zeroed plane.
func New(width, height int) *Plane {
	if width < 0 || height < 0 {
		panic("plane: negative dimensions")
	}
	return &Plane{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// FromPix wraps an existing row-major buffer without copying.
func FromPix(width, height int, pix []uint8) (*Plane, error) {
	if width < 0 || height < 0 || len(pix) != width*height {
		return nil, ErrSizeMismatch
	}
	return &Plane{Width: width, Height: height, Pix: pix}, nil
}

// Row returns scanline y. The slice aliases the plane.
func (p *Plane) Row(y int) []uint8 {
	return p.Pix[y*p.Width : (y+1)*p.Width : (y+1)*p.Width]
}

// At returns the sample at column x of scanline y.
func (p *Plane) At(x, y int) uint8 {
	return p.Pix[y*p.Width+x]
}

// Set stores a sample at column x of scanline y.
func (p *Plane) Set(x, y int, v uint8) {
	p.Pix[y*p.Width+x] = v
}

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	pix := make([]uint8, len(p.Pix))
	copy(pix, p.Pix)
	return &Plane{Width: p.Width, Height: p.Height, Pix: pix}
}

// Equal reports whether two planes have the same dimensions and samples.
func (p *Plane) Equal(q *Plane) bool {
	if p == nil || q == nil {
		return p == q
	}
	return p.Width == q.Width && p.Height == q.Height && bytes.Equal(p.Pix, q.Pix)
}

// Transpose returns a new plane with rows and columns swapped, so that
// column x of p becomes scanline x of the result.
func (p *Plane) Transpose() *Plane {
	t := New(p.Height, p.Width)
	const block = 32
	// Blocked copy keeps both source and destination rows in cache.
	for y0 := 0; y0 < p.Height; y0 += block {
		y1 := min(y0+block, p.Height)
		for x0 := 0; x0 < p.Width; x0 += block {
			x1 := min(x0+block, p.Width)
			for y := y0; y < y1; y++ {
				src := p.Pix[y*p.Width:]
				for x := x0; x < x1; x++ {
					t.Pix[x*t.Width+y] = src[x]
				}
			}
		}
	}
	return t
}

// Quantize reduces samples of sourceBits precision to targetBits by
// zeroing the low sourceBits-targetBits bits. Truncation, not rounding:
// the discarded bits are lost. When targetBits >= sourceBits the plane is
// returned unchanged.
func (p *Plane) Quantize(sourceBits, targetBits int) *Plane {
	if targetBits >= sourceBits {
		return p
	}
	shift := uint(sourceBits - targetBits)
	q := &Plane{Width: p.Width, Height: p.Height, Pix: make([]uint8, len(p.Pix))}
	for i, v := range p.Pix {
		q.Pix[i] = (v >> shift) << shift
	}
	return q
}

// IsUniform reports whether every sample of row equals the first one.
// Empty rows are not uniform.
func IsUniform(row []uint8) bool {
	if len(row) == 0 {
		return false
	}
	v := row[0]
	for _, s := range row[1:] {
		if s != v {
			return false
		}
	}
	return true
}
