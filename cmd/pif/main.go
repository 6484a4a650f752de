// Command pif encodes, decodes and inspects PIF images.
//
// Usage:
//
//	pif encode [options] <input> <output.pif>   PNG/JPEG/GIF/BMP/TIFF/WebP/JP2 → PIF
//	pif decode [options] <input.pif> <output>   PIF → format chosen by output extension
//	pif info [options] <input.pif>              Display header, metadata and statistics
//
// Options may appear before or after the file arguments.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mrjoshuak/go-pif/pif"
	"github.com/mrjoshuak/go-pif/pifmeta"
	"github.com/mrjoshuak/go-pif/pifutil"
)

// now is replaced in tests.
var now = time.Now

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "encode":
		err = runEncode(args[1:], stdout, stderr)
	case "decode":
		err = runDecode(args[1:], stdout, stderr)
	case "info":
		err = runInfo(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "pif: unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, new(usageError)):
		fmt.Fprintf(stderr, "pif: %v\n", err)
		return 2
	default:
		fmt.Fprintf(stderr, "pif: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  pif encode [options] <input> <output.pif>   Encode an image into PIF format
  pif decode [options] <input.pif> <output>   Decode a PIF file into a standard image format
  pif info [options] <input.pif>              Display metadata from a PIF file

Profiles: %s

Run "pif <command> -h" for command-specific options.
`, profileNames())
}

type usageError string

func (e usageError) Error() string { return string(e) }

func profileNames() string {
	var names []string
	for _, p := range pif.Profiles() {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// --- common flags ---

type commonFlags struct {
	verbose bool
	workers int
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "log encoder decisions to stderr")
	fs.IntVar(&c.workers, "j", 0, "worker goroutines (0 = GOMAXPROCS)")
}

// apply installs the logger and parallel configuration and returns a
// function restoring the previous state.
func (c *commonFlags) apply(stderr io.Writer) func() {
	oldConfig := pif.GetParallelConfig()
	config := oldConfig
	if c.workers > 0 {
		config.NumWorkers = c.workers
	}
	pif.SetParallelConfig(config)

	if c.verbose {
		pif.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	return func() {
		pif.SetParallelConfig(oldConfig)
		if c.verbose {
			pif.SetLogger(nil)
		}
	}
}

// parseArgs parses flags interspersed with positional arguments and
// checks the number of positional arguments.
func parseArgs(fs *flag.FlagSet, args []string, usage string, want int) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, usageError(fs.Name() + ": " + err.Error())
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
	if len(positional) != want {
		return nil, usageError(fmt.Sprintf("%s: expected %d file arguments, got %d\nUsage: pif %s",
			fs.Name(), want, len(positional), usage))
	}
	return positional, nil
}

// metaFlag collects repeated -meta key=value flags.
type metaFlag []string

func (m *metaFlag) String() string { return strings.Join(*m, ",") }

func (m *metaFlag) Set(s string) error {
	key, _, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("want key=value, got %q", s)
	}
	*m = append(*m, s)
	return nil
}

func (m metaFlag) apply(meta pif.Metadata) {
	for _, kv := range m {
		key, value, _ := strings.Cut(kv, "=")
		meta[key] = value
	}
}

func parseLevel(s string) (pif.CompressionLevel, error) {
	switch strings.ToLower(s) {
	case "default":
		return pif.DefaultCompression, nil
	case "none":
		return pif.NoCompression, nil
	case "speed":
		return pif.BestSpeed, nil
	case "best":
		return pif.BestCompression, nil
	case "huffman":
		return pif.HuffmanOnly, nil
	default:
		return 0, usageError(fmt.Sprintf("encode: unknown level %q (use default/none/speed/best/huffman)", s))
	}
}

// --- encode ---

func runEncode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	profileName := fs.String("p", pif.ProfileLossless.Name, "encoding profile: "+profileNames())
	level := fs.String("level", "default", "zlib effort: default/none/speed/best/huffman")
	var extra metaFlag
	fs.Var(&extra, "meta", "extra metadata `key=value` (repeatable)")

	files, err := parseArgs(fs, args, "encode [options] <input> <output.pif>", 2)
	if err != nil {
		return err
	}
	input, output := files[0], files[1]

	profile, ok := pif.ProfileByName(*profileName)
	if !ok {
		return usageError(fmt.Sprintf("encode: unknown profile %q (use %s)", *profileName, profileNames()))
	}
	lvl, err := parseLevel(*level)
	if err != nil {
		return err
	}

	defer common.apply(stderr)()

	fmt.Fprintf(stdout, "Encoding '%s' to '%s' with profile '%s'...\n", input, output, profile.Name)
	img, _, err := pifutil.ReadImage(input)
	if err != nil {
		return fmt.Errorf("could not read input file: %w", err)
	}

	meta := pif.Metadata{}
	pifmeta.Stamp(meta, input, now())
	extra.apply(meta)

	opts := &pif.EncodeOptions{Profile: profile, Metadata: meta, CompressionLevel: lvl}
	if err := pifutil.WriteFile(output, img, opts); err != nil {
		return err
	}

	stat, err := os.Stat(output)
	if err != nil {
		return err
	}
	raw := img.Width * img.Height * pif.NumChannels
	fmt.Fprintf(stdout, "Encoding complete: %dx%d, %d bytes", img.Width, img.Height, stat.Size())
	if stat.Size() > 0 && raw > 0 {
		fmt.Fprintf(stdout, " (%.2fx smaller than raw)", float64(raw)/float64(stat.Size()))
	}
	fmt.Fprintln(stdout)
	return nil
}

// --- decode ---

func runDecode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)

	files, err := parseArgs(fs, args, "decode [options] <input.pif> <output>", 2)
	if err != nil {
		return err
	}
	input, output := files[0], files[1]

	defer common.apply(stderr)()

	fmt.Fprintf(stdout, "Decoding '%s' to '%s'...\n", input, output)
	img, _, err := pifutil.ReadFile(input)
	if err != nil {
		return err
	}
	if err := pifutil.WriteImage(output, img); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Decoding complete.")
	return nil
}

// --- info ---

func runInfo(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	stats := fs.Bool("stats", false, "show per-channel compression and filter statistics")

	files, err := parseArgs(fs, args, "info [options] <input.pif>", 1)
	if err != nil {
		return err
	}
	input := files[0]

	defer common.apply(stderr)()

	fmt.Fprintf(stdout, "Reading info from '%s'...\n", input)
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	info, err := pif.Inspect(data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	printHeader(stdout, info)
	if *stats {
		printStats(stdout, info)
	}

	if len(info.Metadata) == 0 {
		fmt.Fprintln(stdout, "No metadata found in this PIF file.")
		return nil
	}
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(info.Metadata)
}

func printHeader(w io.Writer, info *pif.Info) {
	h := info.Header
	mode := "lossy"
	if info.Lossless() {
		mode = "lossless"
	}
	fmt.Fprintf(w, "Version:     %d\n", h.Version)
	fmt.Fprintf(w, "Size:        %dx%d\n", h.Width, h.Height)
	fmt.Fprintf(w, "Color model: %s (%s)\n", h.ColorModel, mode)
	fmt.Fprintf(w, "File size:   %d bytes", info.FileSize)
	if info.FileSize > 0 && info.RawSize() > 0 {
		fmt.Fprintf(w, " (%.2fx smaller than raw)", float64(info.RawSize())/float64(info.FileSize))
	}
	fmt.Fprintln(w)
}

func printStats(w io.Writer, info *pif.Info) {
	fmt.Fprintln(w, "Channels:")
	for _, c := range info.Components {
		scan := "rows"
		if c.Transposed {
			scan = "columns"
		}
		fmt.Fprintf(w, "  %-2s %8d bytes  %-7s", c.Name, c.Size, scan)
		if c.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", c.Err)
			continue
		}
		var used []string
		for id, n := range c.Filters {
			if n > 0 {
				used = append(used, fmt.Sprintf("%s=%d", pif.FilterName(id), n))
			}
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(used, " "))
	}
	for _, c := range info.Chunks {
		fmt.Fprintf(w, "  chunk %s at %d, %d bytes\n", c.Type, c.Offset, c.Length)
	}
}
