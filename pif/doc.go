// Package pif reads and writes PIF images.
//
// A PIF file is the signature "PIF\x00" followed by chunks, each a
// little-endian u32 length, a four-byte type and the chunk data:
//
//	IHDR  version, scan flags, color model, width, height (12 bytes)
//	IDAT  four u32 component lengths, then the four components
//	META  optional JSON object
//
// Every image has four 8-bit channels. Lossless files store B, G, R and A;
// lossy files store Y, Cr, Cb and A after quantizing each channel to the
// bit depth of the chosen Profile. Each channel is filtered scanline by
// scanline with a set of spatial predictors, scanned either row-major or
// transposed (whichever compresses smaller), and wrapped in a zlib stream.
//
// Basic usage:
//
//	img := pif.FromImage(src)
//	data, err := pif.Encode(img, &pif.EncodeOptions{Profile: pif.ProfileVisual})
//	...
//	img, meta, err := pif.Decode(data)
//
// Importing this package also registers the format with image.Decode.
package pif
