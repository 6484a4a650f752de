package pif

import (
	"fmt"

	"github.com/mrjoshuak/go-pif/internal/xdr"
)

// Version is the format version written to IHDR. Decode accepts any
// version.
const Version = 21

// NumChannels is the number of channel components in every PIF image.
const NumChannels = 4

// MaxImageArea is the largest width*height Decode accepts. Either
// dimension alone is also limited to this value.
const MaxImageArea = 1 << 30

const headerSize = 12

// ColorModel identifies how the four IDAT components are interpreted.
type ColorModel uint8

const (
	// ColorModelBGRA stores blue, green, red and alpha losslessly.
	ColorModelBGRA ColorModel = 0
	// ColorModelYCrCbA stores quantized luma, red and blue chroma, and alpha.
	ColorModelYCrCbA ColorModel = 1
)

// String returns the color model name.
func (m ColorModel) String() string {
	switch m {
	case ColorModelBGRA:
		return "BGRA"
	case ColorModelYCrCbA:
		return "YCrCbA"
	default:
		return fmt.Sprintf("ColorModel(%d)", uint8(m))
	}
}

// Channels returns the channel names in component order.
func (m ColorModel) Channels() [NumChannels]string {
	if m == ColorModelYCrCbA {
		return [NumChannels]string{"Y", "Cr", "Cb", "A"}
	}
	return [NumChannels]string{"B", "G", "R", "A"}
}

// Header is the content of the IHDR chunk.
type Header struct {
	Version    uint16
	ScanFlags  uint8 // bit k set: component k is stored transposed
	ColorModel ColorModel
	Width      uint32
	Height     uint32
}

// Transposed reports whether component k was scanned column by column.
func (h *Header) Transposed(k int) bool {
	return h.ScanFlags>>uint(k)&1 == 1
}

func (h *Header) marshal() []byte {
	w := xdr.NewBufferWriter(headerSize)
	w.WriteUint16(h.Version)
	w.WriteByte(h.ScanFlags)
	w.WriteByte(byte(h.ColorModel))
	w.WriteUint32(h.Width)
	w.WriteUint32(h.Height)
	return w.Bytes()
}

func parseHeader(data []byte) (*Header, error) {
	if len(data) != headerSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidHeader, len(data), headerSize)
	}

	// Length is checked above, so none of the reads can fail.
	r := xdr.NewReader(data)
	h := &Header{}
	h.Version, _ = r.ReadUint16()
	h.ScanFlags, _ = r.ReadByte()
	model, _ := r.ReadByte()
	h.ColorModel = ColorModel(model)
	h.Width, _ = r.ReadUint32()
	h.Height, _ = r.ReadUint32()

	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) validate() error {
	if h.ColorModel != ColorModelBGRA && h.ColorModel != ColorModelYCrCbA {
		return fmt.Errorf("%w %d", ErrUnknownColorModel, uint8(h.ColorModel))
	}
	w, ht := uint64(h.Width), uint64(h.Height)
	if w > MaxImageArea || ht > MaxImageArea || w*ht > MaxImageArea {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, w, ht)
	}
	return nil
}
