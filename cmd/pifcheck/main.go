// pifcheck validates PIF files for structural correctness and decodability.
//
// Usage:
//
//	pifcheck [-q|--quiet] [-s|--strict] <filename> [<filename> ...]
//
// Options:
//
//	-q, --quiet   Only output errors. Exit code indicates pass/fail.
//	-s, --strict  Also enforce the exact layout the pif encoder writes.
//	-h, --help    Show this help message.
//	--version     Show version information.
//
// Exit codes:
//
//	0: All files valid
//	1: One or more files invalid
//	2: Error (file not found, etc.)
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrjoshuak/go-pif/pif"
)

const version = "1.0.0"

// maxFileSize bounds the memory used to validate one file.
const maxFileSize = 1 << 30

// ValidationIssue represents a single validation problem found in a file.
type ValidationIssue struct {
	Severity string // "error" or "warning"
	Message  string
}

// ValidationResult contains all validation results for a file.
type ValidationResult struct {
	Filename string
	Issues   []ValidationIssue
	Checks   []string // List of checks performed
}

// IsValid returns true if there are no errors (warnings are ok).
func (r *ValidationResult) IsValid() bool {
	return !r.HasErrors()
}

// HasErrors returns true if there are any error-level issues.
func (r *ValidationResult) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}

func (r *ValidationResult) addErrorf(format string, args ...any) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: "error", Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarningf(format string, args ...any) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: "warning", Message: fmt.Sprintf(format, args...)})
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	quiet := false
	strict := false
	files := []string{}

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			quiet = true
		case "-s", "--strict":
			strict = true
		case "-h", "--help":
			printUsage(stdout)
			return 0
		case "--version":
			fmt.Fprintf(stdout, "pifcheck version %s\n", version)
			fmt.Fprintf(stdout, "Part of go-pif, file format version %d\n", pif.Version)
			return 0
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(stderr, "Unknown option: %s\n", arg)
				printUsage(stderr)
				return 2
			}
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(stderr, "Error: No input files specified")
		printUsage(stderr)
		return 2
	}

	validCount := 0
	errorOccurred := false

	for _, filename := range files {
		result, err := validateFile(filename, strict)
		if err != nil {
			if !quiet {
				fmt.Fprintf(stderr, "%s: error: %v\n", filename, err)
			}
			errorOccurred = true
			continue
		}

		if result.IsValid() {
			validCount++
		}

		if !quiet {
			printResult(stdout, result)
		} else if result.HasErrors() {
			for _, issue := range result.Issues {
				if issue.Severity == "error" {
					fmt.Fprintf(stderr, "%s: %s\n", filename, issue.Message)
				}
			}
		}
	}

	if len(files) > 1 && !quiet {
		fmt.Fprintf(stdout, "\nSummary: %d of %d files valid\n", validCount, len(files))
	}

	if errorOccurred {
		return 2
	}
	if validCount < len(files) {
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: pifcheck [options] <filename> [<filename> ...]

Validate PIF files for correctness.

Options:
  -q, --quiet    Only output errors. Exit code indicates pass/fail.
  -s, --strict   Also require version 21, IHDR/IDAT/META chunk order
                 and no unused IDAT bytes; warn about unknown chunks.
  -h, --help     Show this help message.
  --version      Show version information.

Exit codes:
  0: All files valid
  1: One or more files invalid
  2: Error (file not found, permission denied, etc.)

Examples:
  pifcheck image.pif                  Validate a single file
  pifcheck -q *.pif                   Validate all PIF files silently
  pifcheck -s image.pif               Validate with strict mode`)
}

func printResult(w io.Writer, result *ValidationResult) {
	if result.IsValid() {
		fmt.Fprintf(w, "%s: OK\n", result.Filename)
	} else {
		fmt.Fprintf(w, "%s: INVALID\n", result.Filename)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(issue.Severity), issue.Message)
	}

	if len(result.Issues) > 0 {
		fmt.Fprintf(w, "  Checks performed: %s\n", strings.Join(result.Checks, ", "))
	}
}

// validateFile reads filename and validates its content. An error is
// returned only when the file cannot be read.
func validateFile(filename string, strict bool) (*ValidationResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() > maxFileSize {
		result := &ValidationResult{Filename: filename, Checks: []string{"file size"}}
		result.addErrorf("file too large for validation (%d bytes, max %d)", stat.Size(), maxFileSize)
		return result, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return validateData(filename, data, strict), nil
}

// validateData runs every check on the content of one file.
func validateData(filename string, data []byte, strict bool) *ValidationResult {
	result := &ValidationResult{
		Filename: filename,
		Issues:   []ValidationIssue{},
		Checks:   []string{},
	}

	// 1. Signature
	result.Checks = append(result.Checks, "signature")
	if !bytes.HasPrefix(data, []byte(pif.Signature)) {
		n := min(len(data), len(pif.Signature))
		result.addErrorf("invalid signature: got %q, expected %q", data[:n], pif.Signature)
		return result
	}

	// 2. Chunk framing
	result.Checks = append(result.Checks, "chunk framing")
	chunks, err := pif.ReadChunks(data)
	if err != nil {
		result.addErrorf("chunk framing: %v", err)
		return result
	}
	validateChunkLayout(chunks, result, strict)

	// 3. Header and payload structure
	result.Checks = append(result.Checks, "IHDR", "IDAT")
	info, err := pif.Inspect(data)
	if err != nil {
		result.addErrorf("failed to parse file: %v", err)
		return result
	}
	validateHeader(&info.Header, result, strict)
	if strict {
		validatePayloadSize(chunks, info, result)
	}

	// 4. Channel streams
	result.Checks = append(result.Checks, "channels")
	damaged := false
	for _, c := range info.Components {
		if c.Err != nil {
			result.addErrorf("channel %s: %v", c.Name, c.Err)
			damaged = true
		}
	}

	// 5. Full decode
	if !damaged {
		result.Checks = append(result.Checks, "pixel decode")
		if _, _, err := pif.Decode(data); err != nil {
			result.addErrorf("decode failed: %v", err)
		}
	}

	// 6. Metadata
	result.Checks = append(result.Checks, "META")
	if info.MetadataErr != nil {
		result.addWarningf("META chunk is ignored by decoders: %v", info.MetadataErr)
	}

	return result
}

// validateChunkLayout checks chunk counts and, in strict mode, chunk order.
func validateChunkLayout(chunks []pif.Chunk, result *ValidationResult, strict bool) {
	counts := map[pif.ChunkType]int{}
	var order []pif.ChunkType
	for _, c := range chunks {
		counts[c.Type]++
		switch c.Type {
		case pif.ChunkIHDR, pif.ChunkIDAT, pif.ChunkMETA:
			order = append(order, c.Type)
		default:
			if strict {
				result.addWarningf("unknown chunk %q at offset %d", c.Type.String(), c.Offset)
			}
		}
	}

	for _, t := range []pif.ChunkType{pif.ChunkIHDR, pif.ChunkIDAT} {
		if counts[t] > 1 {
			result.addWarningf("%d %s chunks, only the last is used", counts[t], t)
		}
	}
	if n := counts[pif.ChunkMETA]; n > 1 {
		result.addWarningf("%d META chunks, only the last readable one is used", n)
	}

	if !strict {
		return
	}
	want := []pif.ChunkType{pif.ChunkIHDR, pif.ChunkIDAT, pif.ChunkMETA}
	for i, t := range order {
		if i >= len(want) || t != want[i] {
			var names []string
			for _, o := range order {
				names = append(names, o.String())
			}
			result.addErrorf("chunk order %s, expected IHDR, IDAT[, META]", strings.Join(names, ", "))
			return
		}
	}
}

// validateHeader checks IHDR fields that decoders accept but the encoder
// never writes.
func validateHeader(h *pif.Header, result *ValidationResult, strict bool) {
	if h.Version != pif.Version {
		if strict {
			result.addErrorf("unsupported version: %d (expected %d)", h.Version, pif.Version)
		} else {
			result.addWarningf("unexpected version: %d (expected %d)", h.Version, pif.Version)
		}
	}
	if h.Width == 0 || h.Height == 0 {
		result.addWarningf("image has zero dimensions: %dx%d", h.Width, h.Height)
	}
	if strict && h.ScanFlags>>pif.NumChannels != 0 {
		result.addErrorf("reserved scan flag bits set: 0x%02x", h.ScanFlags)
	}
}

// validatePayloadSize reports IDAT bytes not covered by any component.
func validatePayloadSize(chunks []pif.Chunk, info *pif.Info, result *ValidationResult) {
	var idat []byte
	for _, c := range chunks {
		if c.Type == pif.ChunkIDAT {
			idat = c.Data
		}
	}
	used := 4 * pif.NumChannels
	for _, c := range info.Components {
		used += c.Size
	}
	if extra := len(idat) - used; extra > 0 {
		result.addErrorf("IDAT has %d unused trailing bytes", extra)
	}
}
