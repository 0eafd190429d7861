// hmcheck round-trips a raw heightmap file through the codec and reports
// whether the result is bit-identical, along with compression statistics.
//
// Usage:
//
//	hmcheck -width <W> -height <H> [-level <N>] [-q] <filename> [<filename> ...]
//
// The input file is a raw little-endian array of width*height uint16
// elevation samples, with no header.
//
// Options:
//
//	-width <N>    heightmap width in pixels (required)
//	-height <N>   heightmap height in pixels (required)
//	-level <N>    zstd compression level, -7 to 22 (default 3)
//	-q            only print failures; exit code indicates pass/fail
//	-version      show version information
//
// Exit codes:
//
//	0: all files round-tripped exactly
//	1: one or more files failed to round-trip or could not be read
//	2: usage error
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/mrjoshuak/go-heightmap"
)

const version = "1.0.0"

func main() {
	width := flag.Int("width", 0, "heightmap width in pixels")
	height := flag.Int("height", 0, "heightmap height in pixels")
	level := flag.Int("level", 3, "zstd compression level, -7 to 22")
	quiet := flag.Bool("q", false, "only print failures")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hmcheck -width <W> -height <H> [options] <filename> [<filename> ...]\n\n")
		fmt.Fprintf(os.Stderr, "Round-trip a raw little-endian u16 heightmap file through Encode/Decode\n")
		fmt.Fprintf(os.Stderr, "and report whether the result is bit-identical.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("hmcheck version %s\n", version)
		fmt.Println("Part of go-heightmap")
		os.Exit(0)
	}

	files := flag.Args()
	if len(files) == 0 || *width < 3 || *height < 3 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, filename := range files {
		ok, err := checkFile(filename, *width, *height, *level, *quiet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", filename, err)
			failed = true
			continue
		}
		if !ok {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func checkFile(filename string, width, height, level int, quiet bool) (bool, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return false, err
	}
	if len(raw) != width*height*2 {
		return false, fmt.Errorf("file is %d bytes, want %d for a %dx%d u16 heightmap", len(raw), width*height*2, width, height)
	}

	data := make([]uint16, width*height)
	for i := range data {
		data[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	h := heightmap.Heightmap{Width: width, Height: height, Data: data}

	var buf bytes.Buffer
	n, err := heightmap.Encode(h, level, &buf)
	if err != nil {
		return false, fmt.Errorf("encode: %w", err)
	}

	got, consumed, err := heightmap.Decode(buf.Bytes(), width, height)
	if err != nil {
		return false, fmt.Errorf("decode: %w", err)
	}

	ok := consumed == n && equalData(h.Data, got.Data)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: FAIL round trip mismatch\n", filename)
		return false, nil
	}

	if !quiet {
		ratio := float64(len(raw)) / float64(n)
		fmt.Printf("%s: OK %d -> %d bytes (%.2fx)\n", filename, len(raw), n, ratio)
	}
	return true, nil
}

func equalData(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
