package pif

import (
	"math/rand"
	"testing"

	"github.com/mrjoshuak/go-pif/internal/xdr"
	"github.com/mrjoshuak/go-pif/plane"
)

// noisyImage returns a smooth color gradient with some noise and a
// varying alpha channel.
func noisyImage(width, height int, seed int64) *Image {
	r := rand.New(rand.NewSource(seed))
	img := NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			img.B.Pix[i] = uint8(x*2 + r.Intn(8))
			img.G.Pix[i] = uint8(y*3 + r.Intn(8))
			img.R.Pix[i] = uint8(x + y + r.Intn(8))
			img.A.Pix[i] = uint8(255 - (x+y)%64)
		}
	}
	return img
}

// grayImage returns an image with B == G == R and a random alpha.
func grayImage(width, height int, seed int64) *Image {
	r := rand.New(rand.NewSource(seed))
	img := NewImage(width, height)
	for i := range img.B.Pix {
		v := uint8(r.Intn(256))
		img.B.Pix[i], img.G.Pix[i], img.R.Pix[i] = v, v, v
		img.A.Pix[i] = uint8(r.Intn(256))
	}
	return img
}

// imageFromPlane uses p for all four channels.
func imageFromPlane(p *plane.Plane) *Image {
	return &Image{Width: p.Width, Height: p.Height, B: p.Clone(), G: p.Clone(), R: p.Clone(), A: p.Clone()}
}

type rawChunk struct {
	typ  string
	data []byte
}

// buildFile assembles a PIF file from raw chunks.
func buildFile(chunks ...rawChunk) []byte {
	w := xdr.NewBufferWriter(64)
	w.WriteBytes([]byte(Signature))
	for _, c := range chunks {
		var t ChunkType
		copy(t[:], c.typ)
		appendChunk(w, t, c.data)
	}
	return w.Bytes()
}

// splitFile returns the chunks of a valid file as rawChunks.
func splitFile(t *testing.T, data []byte) []rawChunk {
	t.Helper()
	chunks, err := ReadChunks(data)
	if err != nil {
		t.Fatalf("ReadChunks: %v", err)
	}
	out := make([]rawChunk, len(chunks))
	for i, c := range chunks {
		out[i] = rawChunk{typ: c.Type.String(), data: append([]byte(nil), c.Data...)}
	}
	return out
}

func ihdrBytes(h Header) []byte {
	return h.marshal()
}

func mustEncode(t testing.TB, img *Image, opts *EncodeOptions) []byte {
	t.Helper()
	data, err := Encode(img, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

// withParallelConfig runs fn under config and restores the previous one.
func withParallelConfig(config ParallelConfig, fn func()) {
	old := GetParallelConfig()
	SetParallelConfig(config)
	defer SetParallelConfig(old)
	fn()
}
