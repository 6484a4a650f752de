package pif

import (
	"github.com/mrjoshuak/go-pif/compression"
	"github.com/mrjoshuak/go-pif/internal/filter"
)

// NumFilters is the number of scanline filter ids.
const NumFilters = filter.NumIDs

// FilterName returns the name of scanline filter id.
func FilterName(id int) string {
	return filter.ID(id).String()
}

// ChunkInfo describes one chunk of a file.
type ChunkInfo struct {
	Type   ChunkType
	Offset int
	Length int
}

// ComponentInfo describes one compressed channel.
type ComponentInfo struct {
	Name       string
	Transposed bool
	Size       int // compressed bytes in IDAT
	StreamSize int // bytes of filtered scanline stream after inflating
	FLevel     compression.FLevel
	Filters    [NumFilters]int // scanlines per filter id
	Err        error           // set when the component cannot be inflated or parsed
}

// Info is the structure of a PIF file as reported by Inspect.
type Info struct {
	Header      Header
	FileSize    int
	Chunks      []ChunkInfo
	Components  [NumChannels]ComponentInfo
	Metadata    Metadata // never nil
	MetadataErr error    // why a present META chunk was ignored
}

// Lossless reports whether the file stores BGRA without quantization.
func (info *Info) Lossless() bool {
	return info.Header.ColorModel == ColorModelBGRA
}

// RawSize is the size of the image as uncompressed 8-bit BGRA.
func (info *Info) RawSize() int {
	return int(info.Header.Width) * int(info.Header.Height) * NumChannels
}

// Inspect parses the container and inflates each component to gather
// statistics, without reconstructing pixels. Container-level problems are
// returned as errors; a damaged component is reported in its
// ComponentInfo.Err.
func Inspect(data []byte) (*Info, error) {
	c, err := parseContainer(data)
	if err != nil {
		return nil, err
	}

	info := &Info{Header: *c.header, FileSize: len(data)}
	for _, ch := range c.chunks {
		info.Chunks = append(info.Chunks, ChunkInfo{Type: ch.Type, Offset: ch.Offset, Length: len(ch.Data)})
	}
	info.Metadata, info.MetadataErr = c.metadata()

	names := c.header.ColorModel.Channels()
	ParallelFor(NumChannels, func(k int) {
		ci := &info.Components[k]
		ci.Name = names[k]
		ci.Transposed = c.header.Transposed(k)
		ci.Size = len(c.components[k])
		ci.FLevel, _ = compression.DetectFLevel(c.components[k])

		w, h := int(c.header.Width), int(c.header.Height)
		if ci.Transposed {
			w, h = h, w
		}
		stream, err := compression.Decompress(c.components[k], filter.MaxStreamSize(w, h))
		if err != nil {
			ci.Err = err
			return
		}
		ci.StreamSize = len(stream)
		hist, err := filter.Stats(stream, w, h)
		ci.Filters = [NumFilters]int(hist)
		ci.Err = err
	})
	return info, nil
}
