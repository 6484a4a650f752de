package pif

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mrjoshuak/go-pif/internal/xdr"
)

func TestDecodeFormatErrors(t *testing.T) {
	valid := mustEncode(t, noisyImage(6, 4, 1), nil)
	chunks := splitFile(t, valid)
	ihdr, idat := chunks[0], chunks[1]

	hdr := func(mod func(h *Header)) rawChunk {
		h := Header{Version: Version, Width: 6, Height: 4}
		mod(&h)
		return rawChunk{"IHDR", ihdrBytes(h)}
	}
	lengths := func(n ...uint32) []byte {
		w := xdr.NewBufferWriter(16)
		for _, v := range n {
			w.WriteUint32(v)
		}
		return w.Bytes()
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrInvalidSignature},
		{"short signature", []byte("PIF"), ErrInvalidSignature},
		{"wrong signature", append([]byte("PNG\x00"), valid[4:]...), ErrInvalidSignature},
		{"no chunks", []byte(Signature), ErrMissingChunk},
		{"missing IHDR", buildFile(idat), ErrMissingChunk},
		{"missing IDAT", buildFile(ihdr), ErrMissingChunk},
		{"truncated body", valid[:len(valid)-1], ErrTruncatedChunk},
		{"stray bytes", append(append([]byte(nil), valid...), 1, 2, 3), ErrTruncatedChunk},
		{"short IHDR", buildFile(rawChunk{"IHDR", ihdr.data[:11]}, idat), ErrInvalidHeader},
		{"long IHDR", buildFile(rawChunk{"IHDR", append(append([]byte(nil), ihdr.data...), 0)}, idat), ErrInvalidHeader},
		{"color model", buildFile(hdr(func(h *Header) { h.ColorModel = 2 }), idat), ErrUnknownColorModel},
		{"huge area", buildFile(hdr(func(h *Header) { h.Width, h.Height = 1<<20, 1<<20 }), idat), ErrImageTooLarge},
		{"huge width", buildFile(hdr(func(h *Header) { h.Width, h.Height = 1<<31, 0 }), idat), ErrImageTooLarge},
		{"short IDAT", buildFile(ihdr, rawChunk{"IDAT", make([]byte, 15)}), ErrInvalidPayload},
		{"IDAT lengths", buildFile(ihdr, rawChunk{"IDAT", lengths(1, 1, 1, 1)}), ErrInvalidPayload},
		{"IDAT overflow", buildFile(ihdr, rawChunk{"IDAT", lengths(0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff)}), ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode error = %v, want %v", err, tt.want)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("Decode error %T is not a *FormatError", err)
			}

			if _, err := Inspect(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("Inspect error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeCorruptComponent(t *testing.T) {
	chunks := splitFile(t, mustEncode(t, noisyImage(8, 8, 2), nil))

	// Zero out the middle of the first component.
	idat := chunks[1].data
	n := int(xdr.ByteOrder.Uint32(idat))
	for i := 16 + 2; i < 16+n-4; i++ {
		idat[i] = 0
	}

	_, _, err := Decode(buildFile(chunks...))
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Decode error = %v, want *FormatError", err)
	}
	if fe.Op != "decode channel B" {
		t.Errorf("Op = %q, want %q", fe.Op, "decode channel B")
	}
}

func TestDecodeEmptyComponent(t *testing.T) {
	// A zero-length component decodes only for an image with no rows.
	chunks := splitFile(t, mustEncode(t, noisyImage(3, 3, 3), nil))
	empty := buildFile(chunks[0], rawChunk{"IDAT", make([]byte, 16)})
	if _, _, err := Decode(empty); err == nil {
		t.Error("Decode accepted empty components for a 3x3 image")
	}

	h := Header{Version: Version, Width: 5, Height: 0}
	img, _, err := Decode(buildFile(rawChunk{"IHDR", ihdrBytes(h)}, rawChunk{"IDAT", make([]byte, 16)}))
	if err != nil {
		t.Fatalf("Decode 5x0: %v", err)
	}
	if img.Width != 5 || img.Height != 0 {
		t.Errorf("size = %dx%d, want 5x0", img.Width, img.Height)
	}
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	src := noisyImage(5, 5, 4)
	chunks := splitFile(t, mustEncode(t, src, nil))
	data := buildFile(
		rawChunk{"tEXt", []byte("hello")},
		chunks[0],
		rawChunk{"zzzz", nil},
		chunks[1],
		rawChunk{"tIME", []byte{1, 2, 3, 4}},
	)

	got, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Equal(src) {
		t.Error("image changed by unknown chunks")
	}
}

func TestDecodeLastChunkWins(t *testing.T) {
	a := splitFile(t, mustEncode(t, noisyImage(4, 3, 5), &EncodeOptions{Metadata: Metadata{"n": "first"}}))
	bImg := noisyImage(2, 7, 6)
	b := splitFile(t, mustEncode(t, bImg, &EncodeOptions{Metadata: Metadata{"n": "second"}}))

	data := buildFile(a[0], a[1], a[2], b[0], b[1], b[2])
	got, meta, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Equal(bImg) {
		t.Error("Decode did not use the last IHDR/IDAT pair")
	}
	if meta["n"] != "second" {
		t.Errorf("meta[n] = %v, want second", meta["n"])
	}
}

func TestDecodeIgnoresVersion(t *testing.T) {
	src := noisyImage(3, 4, 7)
	chunks := splitFile(t, mustEncode(t, src, nil))
	chunks[0].data[0], chunks[0].data[1] = 99, 0

	got, _, err := Decode(buildFile(chunks...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Equal(src) {
		t.Error("round trip mismatch with version 99")
	}
}

func TestDecodeLenientMetadata(t *testing.T) {
	var logBuf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	defer SetLogger(nil)

	src := noisyImage(3, 3, 8)
	chunks := splitFile(t, mustEncode(t, src, nil))

	tests := []struct {
		name string
		meta []byte
	}{
		{"not json", []byte("{not json")},
		{"array", []byte(`["a", "b"]`)},
		{"number", []byte(`42`)},
		{"null", []byte(`null`)},
		{"invalid utf8", []byte("{\"a\": \"\xff\"}")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logBuf.Reset()
			data := buildFile(chunks[0], chunks[1], rawChunk{"META", tt.meta})

			got, meta, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !got.Equal(src) {
				t.Error("pixels changed by a bad META chunk")
			}
			if meta == nil || len(meta) != 0 {
				t.Errorf("metadata = %#v, want empty non-nil map", meta)
			}
			if !strings.Contains(logBuf.String(), "META") {
				t.Errorf("no warning logged, log = %q", logBuf.String())
			}
		})
	}
}

func TestDecodeRepeatedMetadata(t *testing.T) {
	chunks := splitFile(t, mustEncode(t, noisyImage(2, 3, 11), nil))
	good := rawChunk{"META", []byte(`{"owner": "first"}`)}

	tests := []struct {
		name  string
		metas []rawChunk
		want  Metadata
	}{
		{"valid then corrupt", []rawChunk{good, {"META", []byte("{corrupt")}}, Metadata{"owner": "first"}},
		{"corrupt then valid", []rawChunk{{"META", []byte("[]")}, good}, Metadata{"owner": "first"}},
		{"both valid", []rawChunk{good, {"META", []byte(`{"owner": "second"}`)}}, Metadata{"owner": "second"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildFile(append([]rawChunk{chunks[0], chunks[1]}, tt.metas...)...)

			_, meta, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(tt.want, meta); diff != "" {
				t.Errorf("Decode metadata mismatch (-want +got):\n%s", diff)
			}

			info, err := Inspect(data)
			if err != nil {
				t.Fatalf("Inspect: %v", err)
			}
			if info.MetadataErr != nil {
				t.Errorf("MetadataErr = %v, want nil", info.MetadataErr)
			}
			if diff := cmp.Diff(tt.want, info.Metadata); diff != "" {
				t.Errorf("Inspect metadata mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeMetadataTypes(t *testing.T) {
	chunks := splitFile(t, mustEncode(t, noisyImage(2, 2, 9), nil))
	data := buildFile(chunks[0], chunks[1], rawChunk{"META", []byte(`{"s": "x", "n": 1.5, "b": true, "z": null, "l": [1, "two"], "o": {"k": "v"}}`)})

	_, meta, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := Metadata{
		"s": "x",
		"n": 1.5,
		"b": true,
		"z": nil,
		"l": []any{1.0, "two"},
		"o": map[string]any{"k": "v"},
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDeterministicAcrossWorkers(t *testing.T) {
	data := mustEncode(t, noisyImage(33, 21, 10), &EncodeOptions{Profile: ProfileHigh})

	var a, b *Image
	var err error
	withParallelConfig(ParallelConfig{NumWorkers: 1}, func() {
		a, _, err = Decode(data)
	})
	if err != nil {
		t.Fatalf("sequential Decode: %v", err)
	}
	withParallelConfig(ParallelConfig{NumWorkers: 8}, func() {
		b, _, err = Decode(data)
	})
	if err != nil {
		t.Fatalf("parallel Decode: %v", err)
	}
	if !a.Equal(b) {
		t.Error("decoded pixels depend on worker count")
	}
}

func FuzzDecode(f *testing.F) {
	f.Add(mustEncode(f, noisyImage(3, 2, 1), nil))
	f.Add(mustEncode(f, noisyImage(4, 4, 2), &EncodeOptions{Profile: ProfileCompact, Metadata: Metadata{"k": "v"}}))
	f.Add([]byte(Signature))
	f.Add([]byte("PIF\x00\x0c\x00\x00\x00IHDR"))

	f.Fuzz(func(t *testing.T, data []byte) {
		img, meta, err := Decode(data)
		if err != nil {
			return
		}
		if meta == nil {
			t.Fatal("nil metadata on success")
		}
		if err := img.validate(); err != nil {
			t.Fatalf("decoded image is inconsistent: %v", err)
		}
	})
}
