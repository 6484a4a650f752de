// Package filter implements the PIF scanline filter codec.
//
// Each scanline of a channel plane is written as a filter record: a filter
// id followed by residual bytes. Ids 0-6 are the predictors of package
// predictor. Id 7 is a line copy (signed delta against the previous
// scanline) and id 8 marks a constant scanline stored as a single value.
// The encoder evaluates every candidate in the active Set and keeps the
// one whose residuals have the smallest sum of absolute signed values.
//
// Encode returns the raw filtered stream; compressing it is the caller's
// job. DecodeCompressed undoes the compression itself before parsing.
package filter

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-pif/compression"
	"github.com/mrjoshuak/go-pif/internal/predictor"
	"github.com/mrjoshuak/go-pif/plane"
)

// Filter stream errors
var (
	ErrTruncated     = errors.New("filter: truncated scanline stream")
	ErrUnknownFilter = errors.New("filter: unknown filter id")
)

// ID is a filter id as stored at the start of each filter record.
type ID uint8

const (
	// LineCopy stores int8(sample - up) for every sample. Reconstruction
	// clips to [0, 255].
	LineCopy ID = 7
	// Uniform stores a constant scanline as one value byte.
	Uniform ID = 8

	// NumIDs is the number of filter ids.
	NumIDs = 9
)

// String returns the filter name.
func (id ID) String() string {
	switch {
	case id < predictor.NumKinds:
		return predictor.Kind(id).String()
	case id == LineCopy:
		return "LineCopy"
	case id == Uniform:
		return "Uniform"
	default:
		return fmt.Sprintf("ID(%d)", uint8(id))
	}
}

// Set selects which filters the encoder may choose from.
type Set int

const (
	// Full competes predictors 0-6 and line copy, and short-circuits
	// constant scanlines to Uniform.
	Full Set = iota
	// Restricted always uses the Paeth predictor.
	Restricted
)

// String returns the set name.
func (s Set) String() string {
	if s == Restricted {
		return "restricted"
	}
	return "full"
}

// MaxStreamSize is the largest filtered stream a width × height plane can
// produce: one id byte plus width residuals per scanline.
func MaxStreamSize(width, height int) int {
	return height * (width + 1)
}

// Cost sums |int8(r)| over a residual scanline. Residual 0x80 costs 128.
func Cost(residual []byte) int {
	cost := 0
	for _, r := range residual {
		v := int(int8(r))
		if v < 0 {
			v = -v
		}
		cost += v
	}
	return cost
}

// Encode filters every scanline of p, top to bottom, and returns the
// filtered scanline stream. History rows advance after every scanline,
// Uniform ones included.
func Encode(p *plane.Plane, set Set) []byte {
	width, height := p.Width, p.Height
	out := make([]byte, 0, MaxStreamSize(width, height))

	var candidates []predictor.Kind
	if set == Full {
		candidates = []predictor.Kind{
			predictor.None, predictor.Left, predictor.Up, predictor.Average,
			predictor.Paeth, predictor.Linear, predictor.Knight,
		}
	} else {
		candidates = []predictor.Kind{predictor.Paeth}
	}

	scratch := make([]byte, width)
	best := make([]byte, width)
	zero := make([]byte, width)
	prev, prevPrev := zero, zero

	for y := 0; y < height; y++ {
		row := p.Row(y)

		if set == Full && plane.IsUniform(row) {
			out = append(out, byte(Uniform), row[0])
			prevPrev, prev = prev, row
			continue
		}

		bestID := ID(candidates[0])
		bestCost := -1
		for _, k := range candidates {
			predictor.EncodeRow(k, scratch, row, prev, prevPrev, y)
			if cost := Cost(scratch); bestCost < 0 || cost < bestCost {
				bestID, bestCost = ID(k), cost
				scratch, best = best, scratch
			}
		}

		if set == Full {
			for i, s := range row {
				scratch[i] = s - prev[i]
			}
			if cost := Cost(scratch); cost < bestCost {
				bestID, bestCost = LineCopy, cost
				scratch, best = best, scratch
			}
		}

		out = append(out, byte(bestID))
		out = append(out, best...)
		prevPrev, prev = prev, row
	}
	return out
}

// Decode reconstructs a width × height plane from a filtered scanline
// stream. Bytes after the last scanline are ignored.
func Decode(stream []byte, width, height int) (*plane.Plane, error) {
	// Every record is at least two bytes, or one when rows are empty.
	if minSize := height * min(width+1, 2); len(stream) < minSize {
		return nil, fmt.Errorf("%w: %d bytes for %d scanlines", ErrTruncated, len(stream), height)
	}
	p := plane.New(width, height)
	zero := make([]byte, width)
	prev, prevPrev := zero, zero

	pos := 0
	for y := 0; y < height; y++ {
		if pos >= len(stream) {
			return nil, fmt.Errorf("%w: scanline %d of %d", ErrTruncated, y, height)
		}
		id := ID(stream[pos])
		pos++
		row := p.Row(y)

		switch {
		case id == Uniform:
			if pos >= len(stream) {
				return nil, fmt.Errorf("%w: scanline %d of %d", ErrTruncated, y, height)
			}
			v := stream[pos]
			pos++
			for i := range row {
				row[i] = v
			}

		case id == LineCopy:
			if len(stream)-pos < width {
				return nil, fmt.Errorf("%w: scanline %d of %d", ErrTruncated, y, height)
			}
			for i, r := range stream[pos : pos+width] {
				row[i] = clip(int(prev[i]) + int(int8(r)))
			}
			pos += width

		case id < predictor.NumKinds:
			if len(stream)-pos < width {
				return nil, fmt.Errorf("%w: scanline %d of %d", ErrTruncated, y, height)
			}
			predictor.DecodeRow(predictor.Kind(id), row, stream[pos:pos+width], prev, prevPrev, y)
			pos += width

		default:
			return nil, fmt.Errorf("%w %d at scanline %d", ErrUnknownFilter, uint8(id), y)
		}

		prevPrev, prev = prev, row
	}
	return p, nil
}

// DecodeCompressed decompresses a zlib-wrapped filtered scanline stream
// and decodes it into a width × height plane.
func DecodeCompressed(compressed []byte, width, height int) (*plane.Plane, error) {
	stream, err := compression.Decompress(compressed, MaxStreamSize(width, height))
	if err != nil {
		return nil, err
	}
	return Decode(stream, width, height)
}

// Histogram counts how many scanlines used each filter id.
type Histogram [NumIDs]int

// Stats walks a filtered scanline stream without reconstructing samples
// and reports which filters it uses.
func Stats(stream []byte, width, height int) (Histogram, error) {
	var h Histogram
	pos := 0
	for y := 0; y < height; y++ {
		if pos >= len(stream) {
			return h, fmt.Errorf("%w: scanline %d of %d", ErrTruncated, y, height)
		}
		id := ID(stream[pos])
		pos++
		if id >= NumIDs {
			return h, fmt.Errorf("%w %d at scanline %d", ErrUnknownFilter, uint8(id), y)
		}
		n := width
		if id == Uniform {
			n = 1
		}
		if len(stream)-pos < n {
			return h, fmt.Errorf("%w: scanline %d of %d", ErrTruncated, y, height)
		}
		pos += n
		h[id]++
	}
	return h, nil
}

func clip(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
