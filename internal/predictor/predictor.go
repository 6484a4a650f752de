// Package predictor implements the per-pixel predictors used by the PIF
// scanline filter.
//
// A predictor estimates a sample from neighbors that have already been
// reconstructed: the sample to the left on the same scanline, the two
// samples above it, and for the knight predictor samples two rows back.
// Residuals are stored modulo 256, so every predictor is exactly
// reversible regardless of how far the estimate lands outside [0, 255].
package predictor

// Kind identifies a predictor. The numeric value is the filter id written
// to the filtered scanline stream.
type Kind uint8

const (
	None    Kind = iota // 0
	Left                // left
	Up                  // up
	Average             // floor((left+up)/2)
	Paeth               // PNG Paeth
	Linear              // left+up-upperLeft, unclamped
	Knight              // floor((row[y-2][i-1] + row[y-1][i-2]) / 2)
)

// NumKinds is the number of predictor kinds.
const NumKinds = 7

// String returns the predictor name.
func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Left:
		return "Left"
	case Up:
		return "Up"
	case Average:
		return "Average"
	case Paeth:
		return "Paeth"
	case Linear:
		return "Linear"
	case Knight:
		return "Knight"
	default:
		return "Unknown"
	}
}

// Valid reports whether k names one of the seven predictors.
func (k Kind) Valid() bool {
	return k < NumKinds
}

// PaethPredict returns whichever of a (left), b (up) and c (upper-left) is
// closest to a+b-c. Ties prefer a, then b.
func PaethPredict(a, b, c int) int {
	p := a + b - c
	pa := abs(p - a)
	pb := abs(p - b)
	pc := abs(p - c)
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

// Predict returns the estimate for sample i of scanline y.
//
// cur holds scanline y; only cur[:i] is read. prev and prevPrev hold
// scanlines y-1 and y-2 and are ignored (treated as zero) when those rows
// don't exist, so they may be nil for the first rows. Neighbors left of
// column 0 are zero.
func Predict(k Kind, cur, prev, prevPrev []byte, y, i int) int {
	var left, up, upperLeft int
	if i > 0 {
		left = int(cur[i-1])
	}
	if y > 0 {
		up = int(prev[i])
		if i > 0 {
			upperLeft = int(prev[i-1])
		}
	}

	switch k {
	case Left:
		return left
	case Up:
		return up
	case Average:
		return (left + up) / 2
	case Paeth:
		return PaethPredict(left, up, upperLeft)
	case Linear:
		return left + up - upperLeft
	case Knight:
		var upUpLeft, upLeftLeft int
		if y >= 2 && i >= 1 {
			upUpLeft = int(prevPrev[i-1])
		}
		if y >= 1 && i >= 2 {
			upLeftLeft = int(prev[i-2])
		}
		return (upUpLeft + upLeftLeft) / 2
	default:
		return 0
	}
}

// EncodeRow writes the residuals of scanline y under predictor k to dst.
// dst must be at least len(cur) long and must not alias cur.
func EncodeRow(k Kind, dst, cur, prev, prevPrev []byte, y int) {
	switch {
	case k == None:
		copy(dst, cur)
	case k == Left:
		copy(dst, cur)
		Encode(dst[:len(cur)])
	case k == Up && y > 0:
		for i, s := range cur {
			dst[i] = s - prev[i]
		}
	default:
		for i, s := range cur {
			dst[i] = byte(int(s) - Predict(k, cur, prev, prevPrev, y, i))
		}
	}
}

// DecodeRow reconstructs scanline y from residuals under predictor k.
// Predictions are computed from dst as it is filled in, so dst must not
// alias residual.
func DecodeRow(k Kind, dst, residual, prev, prevPrev []byte, y int) {
	switch {
	case k == None:
		copy(dst, residual)
	case k == Left:
		copy(dst, residual)
		Decode(dst[:len(residual)])
	default:
		for i, r := range residual {
			dst[i] = byte(Predict(k, dst, prev, prevPrev, y, i) + int(int8(r)))
		}
	}
}

// Encode applies horizontal differencing to the data in place.
// The first byte remains unchanged, subsequent bytes become
// differences from their predecessor. This is the Left predictor over a
// whole scanline.
func Encode(data []byte) {
	n := len(data)
	if n < 2 {
		return
	}

	// Work backwards to preserve values we need
	i := n - 1
	for ; i >= 8; i -= 8 {
		data[i] = data[i] - data[i-1]
		data[i-1] = data[i-1] - data[i-2]
		data[i-2] = data[i-2] - data[i-3]
		data[i-3] = data[i-3] - data[i-4]
		data[i-4] = data[i-4] - data[i-5]
		data[i-5] = data[i-5] - data[i-6]
		data[i-6] = data[i-6] - data[i-7]
		data[i-7] = data[i-7] - data[i-8]
	}

	for ; i >= 1; i-- {
		data[i] = data[i] - data[i-1]
	}
}

// Decode reverses horizontal differencing in place.
// Each byte becomes the sum of itself and all previous bytes.
func Decode(data []byte) {
	n := len(data)
	if n < 2 {
		return
	}

	i := 1
	for ; i+7 < n; i += 8 {
		data[i] = data[i] + data[i-1]
		data[i+1] = data[i+1] + data[i]
		data[i+2] = data[i+2] + data[i+1]
		data[i+3] = data[i+3] + data[i+2]
		data[i+4] = data[i+4] + data[i+3]
		data[i+5] = data[i+5] + data[i+4]
		data[i+6] = data[i+6] + data[i+5]
		data[i+7] = data[i+7] + data[i+6]
	}

	for ; i < n; i++ {
		data[i] = data[i] + data[i-1]
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
