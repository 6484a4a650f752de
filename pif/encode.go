package pif

import (
	"fmt"
	"image"
	"io"

	"github.com/mrjoshuak/go-pif/compression"
	"github.com/mrjoshuak/go-pif/internal/filter"
	"github.com/mrjoshuak/go-pif/internal/xdr"
	"github.com/mrjoshuak/go-pif/plane"
)

// CompressionLevel selects the zlib effort for every component.
type CompressionLevel int

// Compression levels. The zero value is DefaultCompression.
const (
	DefaultCompression CompressionLevel = 0
	NoCompression      CompressionLevel = -1
	BestSpeed          CompressionLevel = -2
	BestCompression    CompressionLevel = -3
	HuffmanOnly        CompressionLevel = -4
)

func (l CompressionLevel) zlibLevel() (compression.Level, error) {
	switch l {
	case DefaultCompression:
		return compression.LevelDefault, nil
	case NoCompression:
		return compression.LevelNone, nil
	case BestSpeed:
		return compression.LevelBestSpeed, nil
	case BestCompression:
		return compression.LevelBestSize, nil
	case HuffmanOnly:
		return compression.LevelHuffmanOnly, nil
	default:
		return 0, fmt.Errorf("%w %d", ErrInvalidLevel, int(l))
	}
}

// EncodeOptions controls Encode. The zero value encodes losslessly at the
// default compression level without metadata.
type EncodeOptions struct {
	Profile          Profile
	Metadata         Metadata // written as a META chunk when non-empty
	CompressionLevel CompressionLevel
}

// DefaultEncodeOptions returns lossless options with no metadata.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Profile:          ProfileLossless,
		CompressionLevel: DefaultCompression,
	}
}

// Encode encodes img as a PIF file. A nil opts uses DefaultEncodeOptions.
//
// Lossy profiles convert B, G, R to Y, Cr, Cb, quantize every channel to
// the profile's bit depth and filter the chroma channels with the Paeth
// predictor only. img itself is never modified.
func Encode(img *Image, opts *EncodeOptions) ([]byte, error) {
	if opts == nil {
		o := DefaultEncodeOptions()
		opts = &o
	}
	if err := img.validate(); err != nil {
		return nil, err
	}
	if err := opts.Profile.Validate(); err != nil {
		return nil, err
	}
	level, err := opts.CompressionLevel.zlibLevel()
	if err != nil {
		return nil, err
	}

	planes, sets, model := prepareChannels(img, opts.Profile)
	names := model.Channels()

	comps, err := parallelMap(NumChannels, func(k int) (component, error) {
		return encodeChannel(names[k], planes[k], sets[k], level)
	})
	if err != nil {
		return nil, fmt.Errorf("pif: encode: %w", err)
	}

	hdr := Header{
		Version:    Version,
		ColorModel: model,
		Width:      uint32(img.Width),
		Height:     uint32(img.Height),
	}
	payloadSize := 4 * NumChannels
	for k, c := range comps {
		if c.transposed {
			hdr.ScanFlags |= 1 << uint(k)
		}
		payloadSize += len(c.data)
	}

	var meta []byte
	if len(opts.Metadata) > 0 {
		if meta, err = opts.Metadata.marshal(); err != nil {
			return nil, fmt.Errorf("pif: encode META: %w", err)
		}
	}

	w := xdr.NewBufferWriter(len(Signature) + 3*chunkHeaderSize + headerSize + payloadSize + len(meta))
	w.WriteBytes([]byte(Signature))
	appendChunk(w, ChunkIHDR, hdr.marshal())

	payload := xdr.NewBufferWriter(payloadSize)
	for _, c := range comps {
		payload.WriteUint32(uint32(len(c.data)))
	}
	for _, c := range comps {
		payload.WriteBytes(c.data)
	}
	appendChunk(w, ChunkIDAT, payload.Bytes())

	if meta != nil {
		appendChunk(w, ChunkMETA, meta)
	}

	Logger().Debug("pif: image encoded",
		"width", img.Width,
		"height", img.Height,
		"profile", opts.Profile.String(),
		"colorModel", model.String(),
		"scanFlags", hdr.ScanFlags,
		"size", w.Len())
	return w.Bytes(), nil
}

// EncodeTo encodes img and writes the file to w.
func EncodeTo(w io.Writer, img *Image, opts *EncodeOptions) error {
	data, err := Encode(img, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// EncodeImage encodes any image.Image, converting it with FromImage.
func EncodeImage(w io.Writer, m image.Image, opts *EncodeOptions) error {
	return EncodeTo(w, FromImage(m), opts)
}

// prepareChannels returns the four planes to store, the filter set for
// each and the resulting color model.
func prepareChannels(img *Image, p Profile) ([NumChannels]*plane.Plane, [NumChannels]filter.Set, ColorModel) {
	if p.isLossless() {
		return img.planes(),
			[NumChannels]filter.Set{filter.Full, filter.Full, filter.Full, filter.Full},
			ColorModelBGRA
	}

	y, cr, cb := bgrToYCrCb(img.B, img.G, img.R)
	planes := [NumChannels]*plane.Plane{
		y.Quantize(8, p.YBits),
		cr.Quantize(8, p.CrBits),
		cb.Quantize(8, p.CbBits),
		img.A.Quantize(8, p.ABits),
	}
	sets := [NumChannels]filter.Set{filter.Full, filter.Restricted, filter.Restricted, filter.Full}
	return planes, sets, ColorModelYCrCbA
}
