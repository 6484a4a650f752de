package pif

import (
	"fmt"

	"github.com/mrjoshuak/go-pif/internal/xdr"
	"github.com/mrjoshuak/go-pif/plane"
)

// container is a parsed PIF file whose components have not been decoded.
type container struct {
	chunks     []Chunk
	header     *Header
	components [NumChannels][]byte
	meta       [][]byte
}

// parseContainer walks the chunks of data. Unknown chunk types are
// skipped. When IHDR or IDAT appears more than once the last one is used;
// every META chunk is kept for metadata.
func parseContainer(data []byte) (*container, error) {
	chunks, err := ReadChunks(data)
	if err != nil {
		return nil, err
	}

	c := &container{chunks: chunks}
	var ihdr, idat []byte
	var haveIHDR, haveIDAT bool
	for _, ch := range chunks {
		switch ch.Type {
		case ChunkIHDR:
			ihdr, haveIHDR = ch.Data, true
		case ChunkIDAT:
			idat, haveIDAT = ch.Data, true
		case ChunkMETA:
			c.meta = append(c.meta, ch.Data)
		default:
			Logger().Debug("pif: skipping unknown chunk",
				"type", fmt.Sprintf("%q", ch.Type.String()),
				"offset", ch.Offset,
				"size", len(ch.Data))
		}
	}

	if !haveIHDR {
		return nil, &FormatError{Op: "read IHDR", Err: fmt.Errorf("%w IHDR", ErrMissingChunk)}
	}
	if !haveIDAT {
		return nil, &FormatError{Op: "read IDAT", Err: fmt.Errorf("%w IDAT", ErrMissingChunk)}
	}

	if c.header, err = parseHeader(ihdr); err != nil {
		return nil, &FormatError{Op: "read IHDR", Err: err}
	}
	if c.components, err = splitPayload(idat); err != nil {
		return nil, &FormatError{Op: "read IDAT", Err: err}
	}
	return c, nil
}

// splitPayload separates the IDAT payload into its four components.
// Bytes after the last component are ignored.
func splitPayload(idat []byte) ([NumChannels][]byte, error) {
	var comps [NumChannels][]byte
	if len(idat) < 4*NumChannels {
		return comps, fmt.Errorf("%w: %d bytes, need at least %d for the length table",
			ErrInvalidPayload, len(idat), 4*NumChannels)
	}

	r := xdr.NewReader(idat)
	var lengths [NumChannels]uint32
	var total uint64
	for k := range lengths {
		lengths[k], _ = r.ReadUint32()
		total += uint64(lengths[k])
	}
	if total > uint64(r.Len()) {
		return comps, fmt.Errorf("%w: components need %d bytes, %d present",
			ErrInvalidPayload, total, r.Len())
	}
	for k, n := range lengths {
		comps[k], _ = r.Next(int(n))
	}
	return comps, nil
}

// metadata returns the last META chunk that parses.
func (c *container) metadata() (Metadata, error) {
	return lenientMetadata(c.meta)
}

// decodePlanes decodes the four components in parallel.
func (c *container) decodePlanes() ([NumChannels]*plane.Plane, error) {
	var planes [NumChannels]*plane.Plane
	w, h := int(c.header.Width), int(c.header.Height)
	names := c.header.ColorModel.Channels()

	decoded, err := parallelMap(NumChannels, func(k int) (*plane.Plane, error) {
		p, err := decodeChannel(c.components[k], w, h, c.header.Transposed(k))
		if err != nil {
			return nil, &FormatError{Op: "decode channel " + names[k], Err: err}
		}
		return p, nil
	})
	if err != nil {
		return planes, err
	}
	copy(planes[:], decoded)
	return planes, nil
}

// Decode decodes a PIF file. The returned Metadata is never nil: it is
// empty when the file has no META chunk or when the chunk is not a valid
// JSON object.
func Decode(data []byte) (*Image, Metadata, error) {
	c, err := parseContainer(data)
	if err != nil {
		return nil, nil, err
	}

	planes, err := c.decodePlanes()
	if err != nil {
		return nil, nil, err
	}

	img := &Image{Width: int(c.header.Width), Height: int(c.header.Height), A: planes[3]}
	switch c.header.ColorModel {
	case ColorModelBGRA:
		img.B, img.G, img.R = planes[0], planes[1], planes[2]
	case ColorModelYCrCbA:
		img.B, img.G, img.R = yCrCbToBGR(planes[0], planes[1], planes[2])
	}

	meta, _ := c.metadata()
	return img, meta, nil
}
