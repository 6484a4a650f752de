package pif

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mrjoshuak/go-pif/compression"
)

func TestInspect(t *testing.T) {
	img := noisyImage(24, 10, 1)
	meta := Metadata{"source_file": "x.png"}
	data := mustEncode(t, img, &EncodeOptions{Profile: ProfileVisual, Metadata: meta})

	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	if info.FileSize != len(data) {
		t.Errorf("FileSize = %d, want %d", info.FileSize, len(data))
	}
	if info.Lossless() {
		t.Error("visual file reported as lossless")
	}
	if info.Header.Width != 24 || info.Header.Height != 10 || info.Header.Version != Version {
		t.Errorf("Header = %+v", info.Header)
	}
	if info.RawSize() != 24*10*4 {
		t.Errorf("RawSize = %d", info.RawSize())
	}

	types := make([]string, len(info.Chunks))
	for i, c := range info.Chunks {
		types[i] = c.Type.String()
	}
	if diff := cmp.Diff([]string{"IHDR", "IDAT", "META"}, types); diff != "" {
		t.Errorf("chunk types (-want +got):\n%s", diff)
	}
	if info.Chunks[0].Offset != 4 || info.Chunks[0].Length != 12 {
		t.Errorf("IHDR chunk = %+v", info.Chunks[0])
	}

	if diff := cmp.Diff(meta, info.Metadata); diff != "" {
		t.Errorf("metadata (-want +got):\n%s", diff)
	}
	if info.MetadataErr != nil {
		t.Errorf("MetadataErr = %v", info.MetadataErr)
	}

	total := 4 * NumChannels
	for k, c := range info.Components {
		total += c.Size
		if c.Err != nil {
			t.Errorf("component %d: %v", k, c.Err)
		}
		if want := info.Header.ColorModel.Channels()[k]; c.Name != want {
			t.Errorf("component %d name = %q, want %q", k, c.Name, want)
		}
		if c.Transposed != info.Header.Transposed(k) {
			t.Errorf("component %d Transposed disagrees with ScanFlags", k)
		}
		if c.FLevel != compression.FLevelDefault {
			t.Errorf("component %d FLevel = %v, want default", k, c.FLevel)
		}

		rows, cols := 10, 24
		if c.Transposed {
			rows, cols = cols, rows
		}
		sum := 0
		for _, n := range c.Filters {
			sum += n
		}
		if sum != rows {
			t.Errorf("component %d: filter histogram covers %d scanlines, want %d", k, sum, rows)
		}
		if c.StreamSize < 2*rows || c.StreamSize > rows*(cols+1) {
			t.Errorf("component %d: StreamSize %d out of range", k, c.StreamSize)
		}
	}
	if total != info.Chunks[1].Length {
		t.Errorf("components + table = %d bytes, IDAT is %d", total, info.Chunks[1].Length)
	}

	// Chroma channels only use Paeth.
	for _, k := range []int{1, 2} {
		c := info.Components[k]
		rows := 10
		if c.Transposed {
			rows = 24
		}
		if c.Filters[4] != rows {
			t.Errorf("%s: Paeth rows = %d, want %d (%v)", c.Name, c.Filters[4], rows, c.Filters)
		}
	}
}

func TestInspectReportsDamage(t *testing.T) {
	chunks := splitFile(t, mustEncode(t, noisyImage(6, 6, 2), nil))
	chunks = append(chunks, rawChunk{"META", []byte("[1]")})

	// Break the zlib header of the alpha component.
	idat := chunks[1].data
	off := 16
	for k := 0; k < 3; k++ {
		off += int(idat[4*k]) | int(idat[4*k+1])<<8
	}
	idat[off] = 0x00

	info, err := Inspect(buildFile(chunks...))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Components[3].Err == nil {
		t.Error("damaged alpha component not reported")
	}
	for k := 0; k < 3; k++ {
		if info.Components[k].Err != nil {
			t.Errorf("component %d: unexpected error %v", k, info.Components[k].Err)
		}
	}
	if info.MetadataErr == nil || len(info.Metadata) != 0 {
		t.Errorf("bad META: Metadata = %v, MetadataErr = %v", info.Metadata, info.MetadataErr)
	}
}

func TestFilterName(t *testing.T) {
	names := []string{"None", "Left", "Up", "Average", "Paeth", "Linear", "Knight", "LineCopy", "Uniform"}
	if NumFilters != len(names) {
		t.Fatalf("NumFilters = %d", NumFilters)
	}
	for id, want := range names {
		if got := FilterName(id); got != want {
			t.Errorf("FilterName(%d) = %q, want %q", id, got, want)
		}
	}
}
