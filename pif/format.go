package pif

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/mrjoshuak/go-pif/internal/xdr"
)

func init() {
	image.RegisterFormat("pif", Signature, DecodeImage, DecodeConfig)
}

// DecodeImage reads a PIF file from r and returns it as an *image.NRGBA.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return img.ToNRGBA(), nil
}

// DecodeConfig returns the dimensions of a PIF image without reading its
// pixel data. It stops reading at the IHDR chunk.
func DecodeConfig(r io.Reader) (image.Config, error) {
	hdr, err := ReadHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(hdr.Width),
		Height:     int(hdr.Height),
	}, nil
}

// ReadHeader reads chunks from r up to and including the first IHDR and
// returns its content. Chunks before IHDR are skipped.
func ReadHeader(r io.Reader) (*Header, error) {
	br := bufio.NewReader(r)

	var sig [len(Signature)]byte
	if _, err := io.ReadFull(br, sig[:]); err != nil || string(sig[:]) != Signature {
		return nil, &FormatError{Op: "read signature", Err: ErrInvalidSignature}
	}

	var buf [chunkHeaderSize]byte
	for {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &FormatError{Op: "read IHDR", Err: fmt.Errorf("%w IHDR", ErrMissingChunk)}
			}
			return nil, &FormatError{Op: "read chunk", Err: fmt.Errorf("%w: %v", ErrTruncatedChunk, err)}
		}
		hr := xdr.NewReader(buf[:])
		length, _ := hr.ReadUint32()
		typ, _ := hr.ReadFourCC()

		if ChunkType(typ) != ChunkIHDR {
			if _, err := br.Discard(int(length)); err != nil {
				return nil, &FormatError{Op: "read " + ChunkType(typ).String(), Err: ErrTruncatedChunk}
			}
			continue
		}

		if length != headerSize {
			return nil, &FormatError{Op: "read IHDR",
				Err: fmt.Errorf("%w: %d bytes, want %d", ErrInvalidHeader, length, headerSize)}
		}
		data := make([]byte, headerSize)
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, &FormatError{Op: "read IHDR", Err: ErrTruncatedChunk}
		}
		hdr, err := parseHeader(data)
		if err != nil {
			return nil, &FormatError{Op: "read IHDR", Err: err}
		}
		return hdr, nil
	}
}
