// Package compression provides the DEFLATE back end used for PIF channel
// components.
//
// Each component of a PIF IDAT chunk is a zlib stream (RFC 1950) wrapping
// the filtered scanline stream of one channel plane. Writers and readers
// are pooled so that the many small compressions performed while choosing
// a scan direction do not allocate a fresh deflate state each time.
package compression

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// ZIP compression errors
var (
	ErrZIPCorrupted = errors.New("compression: corrupted zlib data")
	ErrZIPOverflow  = errors.New("compression: zlib decompressed size overflow")
)

// Level represents a zlib compression level.
// Valid values are -2 to 9, where:
//   - -2: Huffman-only compression (klauspost extension)
//   - -1: Default compression (level 6)
//   - 0: No compression (store)
//   - 1: Best speed
//   - 9: Best compression
type Level int

// Standard compression levels
const (
	LevelHuffmanOnly Level = -2 // Huffman-only (fastest, klauspost)
	LevelDefault     Level = -1 // Default (level 6)
	LevelNone        Level = 0  // No compression
	LevelBestSpeed   Level = 1  // Best speed
	LevelBestSize    Level = 9  // Best compression
)

// Valid reports whether l is a level accepted by Compress.
func (l Level) Valid() bool {
	return l >= LevelHuffmanOnly && l <= LevelBestSize
}

// FLevel represents the compression level category from the zlib header.
// This is a 2-bit field indicating the general compression level
// category, not the exact level.
type FLevel int

const (
	FLevelFastest FLevel = 0 // Fastest algorithm (levels -2, 0, 1)
	FLevelFast    FLevel = 1 // Fast algorithm (levels 2, 3, 4, 5)
	FLevelDefault FLevel = 2 // Default algorithm (levels 6, -1)
	FLevelBest    FLevel = 3 // Maximum compression (levels 7, 8, 9)
)

// String returns the category name.
func (fl FLevel) String() string {
	switch fl {
	case FLevelFastest:
		return "fastest"
	case FLevelFast:
		return "fast"
	case FLevelDefault:
		return "default"
	case FLevelBest:
		return "best"
	default:
		return "unknown"
	}
}

// DetectFLevel extracts the FLEVEL from zlib compressed data.
// Returns the FLevel and true if successful, or 0 and false if the
// data is too short or has an invalid header.
func DetectFLevel(data []byte) (FLevel, bool) {
	if len(data) < 2 {
		return 0, false
	}

	cmf := data[0]
	flg := data[1]

	// Compression method must be 8 (deflate)
	if cmf&0x0f != 8 {
		return 0, false
	}

	// Header checksum
	h := uint16(cmf)<<8 | uint16(flg)
	if h%31 != 0 {
		return 0, false
	}

	return FLevel((flg >> 6) & 0x03), true
}

// Each pooled item contains both the writer and its destination buffer.
type zlibWriterPoolItem struct {
	writer *zlib.Writer
	buf    *bytes.Buffer
}

var zlibWriterPool = sync.Pool{
	New: func() any {
		buf := new(bytes.Buffer)
		w, _ := zlib.NewWriterLevel(buf, zlib.DefaultCompression)
		return &zlibWriterPoolItem{writer: w, buf: buf}
	},
}

// Compress wraps src in a zlib stream at the given level.
//
// Empty input still produces a complete (empty) zlib stream, so every
// component of a PIF file is a well-formed stream.
func Compress(src []byte, level Level) ([]byte, error) {
	if !level.Valid() {
		return nil, errors.New("compression: invalid level")
	}

	// Use pool for default level (most common case)
	if level == LevelDefault {
		item := zlibWriterPool.Get().(*zlibWriterPoolItem)
		item.buf.Reset()
		item.writer.Reset(item.buf)

		if _, err := item.writer.Write(src); err != nil {
			item.writer.Close()
			zlibWriterPool.Put(item)
			return nil, err
		}

		if err := item.writer.Close(); err != nil {
			zlibWriterPool.Put(item)
			return nil, err
		}

		result := make([]byte, item.buf.Len())
		copy(result, item.buf.Bytes())
		zlibWriterPool.Put(item)

		return result, nil
	}

	// Non-default level: create temporary writer
	buf := new(bytes.Buffer)
	w, err := zlib.NewWriterLevel(buf, int(level))
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// zlibReaderPoolItem wraps a zlib reader for pooling
type zlibReaderPoolItem struct {
	reader io.ReadCloser
	srcBuf *bytes.Reader
}

var zlibReaderPool = sync.Pool{
	New: func() any {
		return &zlibReaderPoolItem{
			srcBuf: bytes.NewReader(nil),
		}
	},
}

// resetReader points the pooled reader at a new source, creating the
// underlying zlib reader on first use.
func (item *zlibReaderPoolItem) resetReader(src []byte) error {
	item.srcBuf.Reset(src)

	if item.reader != nil {
		if resetter, ok := item.reader.(zlib.Resetter); ok {
			if err := resetter.Reset(item.srcBuf, nil); err == nil {
				return nil
			}
		}
		item.reader.Close()
		item.reader = nil
	}

	r, err := zlib.NewReader(item.srcBuf)
	if err != nil {
		return ErrZIPCorrupted
	}
	item.reader = r
	return nil
}

// Decompress inflates a zlib stream of unknown decompressed size.
//
// The output may not exceed limit bytes; a stream that inflates past the
// limit fails with ErrZIPOverflow. A negative limit disables the check.
// Empty input decompresses to nil.
func Decompress(src []byte, limit int) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}
	if _, ok := DetectFLevel(src); !ok {
		return nil, ErrZIPCorrupted
	}

	item := zlibReaderPool.Get().(*zlibReaderPoolItem)
	defer zlibReaderPool.Put(item)

	if err := item.resetReader(src); err != nil {
		return nil, err
	}

	var r io.Reader = item.reader
	if limit >= 0 {
		r = io.LimitReader(item.reader, int64(limit)+1)
	}

	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return nil, ErrZIPCorrupted
	}
	if limit >= 0 && out.Len() > limit {
		return nil, ErrZIPOverflow
	}
	return out.Bytes(), nil
}
