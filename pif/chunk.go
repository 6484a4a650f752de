package pif

import (
	"fmt"

	"github.com/mrjoshuak/go-pif/internal/xdr"
)

// Signature is the magic that starts every PIF file.
const Signature = "PIF\x00"

// ChunkType is a four-byte chunk tag.
type ChunkType [4]byte

// Chunk types written by Encode.
var (
	ChunkIHDR = ChunkType{'I', 'H', 'D', 'R'}
	ChunkIDAT = ChunkType{'I', 'D', 'A', 'T'}
	ChunkMETA = ChunkType{'M', 'E', 'T', 'A'}
)

func (t ChunkType) String() string {
	return string(t[:])
}

// chunkHeaderSize is the length field plus the type tag.
const chunkHeaderSize = 8

// Chunk is one chunk of a PIF file.
type Chunk struct {
	Type   ChunkType
	Offset int    // file offset of the chunk's length field
	Data   []byte // aliases the file data
}

// ReadChunks checks the signature and splits data into chunks in file
// order. Chunk data is not interpreted.
func ReadChunks(data []byte) ([]Chunk, error) {
	if len(data) < len(Signature) || string(data[:len(Signature)]) != Signature {
		return nil, &FormatError{Op: "read signature", Err: ErrInvalidSignature}
	}

	r := xdr.NewReader(data)
	r.Skip(len(Signature))

	var chunks []Chunk
	for r.Len() > 0 {
		off := r.Pos()
		if r.Len() < chunkHeaderSize {
			return chunks, &FormatError{
				Op:  "read chunk",
				Err: fmt.Errorf("%w: %d stray bytes at offset %d", ErrTruncatedChunk, r.Len(), off),
			}
		}
		length, _ := r.ReadUint32()
		typ, _ := r.ReadFourCC()

		if uint64(length) > uint64(r.Len()) {
			return chunks, &FormatError{
				Op: "read " + ChunkType(typ).String(),
				Err: fmt.Errorf("%w: declares %d bytes, %d remain", ErrTruncatedChunk,
					length, r.Len()),
			}
		}
		body, _ := r.Next(int(length))
		chunks = append(chunks, Chunk{Type: ChunkType(typ), Offset: off, Data: body})
	}
	return chunks, nil
}

func appendChunk(w *xdr.BufferWriter, t ChunkType, data []byte) {
	w.WriteUint32(uint32(len(data)))
	w.WriteFourCC(t)
	w.WriteBytes(data)
}
