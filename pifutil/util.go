// Package pifutil provides file-level helpers around the pif package.
//
// This package reads and writes PIF files and the common raster formats
// they are converted from and to, summarizes PIF files and compares images.
//
// Example usage:
//
//	img, format, _ := pifutil.ReadImage("photo.png")
//	_ = pifutil.WriteFile("photo.pif", img, &pif.EncodeOptions{Profile: pif.ProfileVisual})
//
//	info, _ := pifutil.GetFileInfo("photo.pif")
//	fmt.Printf("Size: %dx%d, %.1f%% of raw\n", info.Width, info.Height, 100/info.Ratio)
package pifutil

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/mrjoshuak/go-jpeg2000"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/mrjoshuak/go-pif/pif"
)

// ErrUnsupportedFormat is returned for files that are not in a format
// this package can read or write.
var ErrUnsupportedFormat = errors.New("pifutil: unsupported image format")

// JPEGQuality is the quality used when writing .jpg files.
const JPEGQuality = 95

// ===========================================
// PIF Files
// ===========================================

// ReadFile reads and decodes a PIF file.
func ReadFile(path string) (*pif.Image, pif.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	img, meta, err := pif.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, meta, nil
}

// WriteFile encodes img and writes it to path. A nil opts encodes
// losslessly.
func WriteFile(path string, img *pif.Image, opts *pif.EncodeOptions) error {
	data, err := pif.Encode(img, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ===========================================
// Raster Image Conversion
// ===========================================

// ReadImage decodes an image file of any registered format and returns
// it as BGRA planes along with the format name. PNG, JPEG, GIF, BMP,
// TIFF, WebP, JPEG 2000 and PIF are recognized by content, not by
// extension. Metadata of PIF input is discarded; use ReadFile to keep it.
func ReadImage(path string) (*pif.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	m, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return pif.FromImage(m), format, nil
}

// WriteImage writes img in the format named by the extension of path:
// .png, .jpg, .jpeg, .gif, .bmp, .tif, .tiff, .jp2, .j2k or .pif.
// JPEG output drops alpha; JPEG 2000 and PIF output is lossless.
func WriteImage(path string, img *pif.Image) error {
	enc, err := encoderFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := enc(w, img); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type encodeFunc func(w io.Writer, img *pif.Image) error

func encoderFor(path string) (encodeFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return func(w io.Writer, img *pif.Image) error {
			return png.Encode(w, img.ToNRGBA())
		}, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, img *pif.Image) error {
			return jpeg.Encode(w, img.ToNRGBA(), &jpeg.Options{Quality: JPEGQuality})
		}, nil
	case ".gif":
		return func(w io.Writer, img *pif.Image) error {
			return gif.Encode(w, img.ToNRGBA(), nil)
		}, nil
	case ".bmp":
		return func(w io.Writer, img *pif.Image) error {
			return bmp.Encode(w, img.ToNRGBA())
		}, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img *pif.Image) error {
			return tiff.Encode(w, img.ToNRGBA(), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		}, nil
	case ".jp2", ".j2k":
		format := jpeg2000.FormatJP2
		if ext == ".j2k" {
			format = jpeg2000.FormatJ2K
		}
		return func(w io.Writer, img *pif.Image) error {
			opts := jpeg2000.DefaultOptions()
			opts.Format = format
			opts.Lossless = true
			return jpeg2000.Encode(w, img.ToNRGBA(), opts)
		}, nil
	case ".pif":
		return func(w io.Writer, img *pif.Image) error {
			return pif.EncodeTo(w, img, nil)
		}, nil
	default:
		return nil, fmt.Errorf("%w: cannot write %q files", ErrUnsupportedFormat, ext)
	}
}

// ===========================================
// File Information
// ===========================================

// FileInfo provides a summary of a PIF file.
type FileInfo struct {
	Path       string
	Width      int
	Height     int
	Version    uint16
	ColorModel pif.ColorModel
	Lossless   bool
	Channels   []string
	Transposed []string // channels stored column-major
	Chunks     []string
	Metadata   pif.Metadata
	FileSize   int64
	RawSize    int
	Ratio      float64 // RawSize / FileSize
}

// GetFileInfo returns summary information about a PIF file.
func GetFileInfo(path string) (*FileInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := pif.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	fi := &FileInfo{
		Path:       path,
		Width:      int(info.Header.Width),
		Height:     int(info.Header.Height),
		Version:    info.Header.Version,
		ColorModel: info.Header.ColorModel,
		Lossless:   info.Lossless(),
		Metadata:   info.Metadata,
		FileSize:   int64(len(data)),
		RawSize:    info.RawSize(),
	}
	for _, c := range info.Components {
		fi.Channels = append(fi.Channels, c.Name)
		if c.Transposed {
			fi.Transposed = append(fi.Transposed, c.Name)
		}
	}
	for _, c := range info.Chunks {
		fi.Chunks = append(fi.Chunks, c.Type.String())
	}
	if fi.FileSize > 0 {
		fi.Ratio = float64(fi.RawSize) / float64(fi.FileSize)
	}
	return fi, nil
}

// ===========================================
// Comparison
// ===========================================

// CompareOptions configures image comparison.
type CompareOptions struct {
	Tolerance      int  // maximum allowed difference per channel value
	IgnoreMetadata bool // if true, only compare pixel data
}

// CompareImages returns the differences between a and b, one line per
// channel that differs by more than tolerance.
func CompareImages(a, b *pif.Image, tolerance int) []string {
	if a.Width != b.Width || a.Height != b.Height {
		return []string{fmt.Sprintf("dimensions differ: %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height)}
	}

	var diffs []string
	for _, ch := range []struct {
		name string
		x, y []uint8
	}{
		{"B", a.B.Pix, b.B.Pix},
		{"G", a.G.Pix, b.G.Pix},
		{"R", a.R.Pix, b.R.Pix},
		{"A", a.A.Pix, b.A.Pix},
	} {
		count, maxDiff := 0, 0
		for i := range ch.x {
			d := int(ch.x[i]) - int(ch.y[i])
			if d < 0 {
				d = -d
			}
			if d > tolerance {
				count++
				maxDiff = max(maxDiff, d)
			}
		}
		if count > 0 {
			diffs = append(diffs, fmt.Sprintf("channel %s: %d pixels differ (max diff: %d)",
				ch.name, count, maxDiff))
		}
	}
	return diffs
}

// CompareFiles checks if two image files have equivalent content. Either
// file may be a PIF file or any format ReadImage accepts; metadata is
// compared only when both are PIF files.
// Returns true if files match within tolerance, along with any differences found.
func CompareFiles(path1, path2 string, opts CompareOptions) (bool, []string, error) {
	img1, meta1, err := load(path1)
	if err != nil {
		return false, nil, fmt.Errorf("cannot read %s: %w", path1, err)
	}
	img2, meta2, err := load(path2)
	if err != nil {
		return false, nil, fmt.Errorf("cannot read %s: %w", path2, err)
	}

	diffs := CompareImages(img1, img2, opts.Tolerance)
	if !opts.IgnoreMetadata && meta1 != nil && meta2 != nil {
		if d := cmp.Diff(meta1, meta2); d != "" {
			diffs = append(diffs, "metadata differs (-file1 +file2):\n"+d)
		}
	}
	return len(diffs) == 0, diffs, nil
}

// load reads a PIF file with its metadata, or any other image with nil
// metadata.
func load(path string) (*pif.Image, pif.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if bytes.HasPrefix(data, []byte(pif.Signature)) {
		return pif.Decode(data)
	}
	m, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, nil, ErrUnsupportedFormat
		}
		return nil, nil, err
	}
	return pif.FromImage(m), nil, nil
}
