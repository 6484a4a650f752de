package pif

import (
	"github.com/mrjoshuak/go-pif/compression"
	"github.com/mrjoshuak/go-pif/internal/filter"
	"github.com/mrjoshuak/go-pif/plane"
)

// component is one compressed channel of the IDAT chunk.
type component struct {
	data       []byte
	transposed bool
}

// encodeChannel filters and compresses p both row-major and transposed
// and keeps the smaller result. Equal sizes keep row-major.
func encodeChannel(name string, p *plane.Plane, set filter.Set, level compression.Level) (component, error) {
	trials, err := parallelMap(2, func(i int) ([]byte, error) {
		src := p
		if i == 1 {
			src = p.Transpose()
		}
		return compression.Compress(filter.Encode(src, set), level)
	})
	if err != nil {
		return component{}, err
	}

	c := component{data: trials[0]}
	if len(trials[1]) < len(trials[0]) {
		c = component{data: trials[1], transposed: true}
	}

	Logger().Debug("pif: channel encoded",
		"channel", name,
		"filters", set.String(),
		"rowMajor", len(trials[0]),
		"transposed", len(trials[1]),
		"chosen", len(c.data))
	return c, nil
}

// decodeChannel inverts encodeChannel for a width × height channel.
func decodeChannel(data []byte, width, height int, transposed bool) (*plane.Plane, error) {
	if !transposed {
		return filter.DecodeCompressed(data, width, height)
	}
	t, err := filter.DecodeCompressed(data, height, width)
	if err != nil {
		return nil, err
	}
	return t.Transpose(), nil
}
