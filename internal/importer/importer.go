// Package importer reads packing instances. The canonical format is a
// whitespace-separated text record; CSV, Excel and DXF part lists are also
// accepted and converted into the same model.Instance.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/BinPacker/internal/model"
)

var (
	// ErrEmptyInstance is returned when the input holds no non-blank lines or rows.
	ErrEmptyInstance = errors.New("instance is empty")
	// ErrBadHeader is returned when the item count or bin size cannot be read.
	ErrBadHeader = errors.New("malformed instance header")
	// ErrMissingBin is returned by the tabular and DXF importers when neither
	// the file nor the caller supplies a bin size.
	ErrMissingBin = errors.New("bin size not specified")
)

// ImportResult holds the results of an import operation. Errors and
// Warnings describe rows that were skipped or adjusted; they never make
// the whole import fail.
type ImportResult struct {
	Instance model.Instance
	Errors   []string
	Warnings []string
}

func (r *ImportResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ImportResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// BinSize is a bin size given outside the instance file, for formats that
// do not carry one.
type BinSize struct {
	Width  int
	Height int
}

// IsZero reports whether no size was given.
func (b BinSize) IsZero() bool {
	return b.Width == 0 && b.Height == 0
}

// ParseBinSize parses "WxH", e.g. "100x60".
func ParseBinSize(s string) (BinSize, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return BinSize{}, fmt.Errorf("bin size %q: expected WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return BinSize{}, fmt.Errorf("bin width %q: %w", ws, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return BinSize{}, fmt.Errorf("bin height %q: %w", hs, err)
	}
	if w <= 0 || h <= 0 {
		return BinSize{}, fmt.Errorf("bin size %q: dimensions must be positive", s)
	}
	return BinSize{Width: w, Height: h}, nil
}

// Load reads an instance file, choosing the parser from the extension:
// .csv, .xlsx/.xlsm, .dxf, and the text format for anything else. The bin
// size is only consulted by formats that lack one.
func Load(path string, bin BinSize) (ImportResult, error) {
	if _, err := os.Stat(path); err != nil {
		return ImportResult{}, fmt.Errorf("instance file: %w", err)
	}

	var (
		result ImportResult
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		result, err = ImportCSV(path, bin)
	case ".xlsx", ".xlsm":
		result, err = ImportExcel(path, bin)
	case ".dxf":
		result, err = ImportDXF(path, bin)
	default:
		result, err = ImportText(path)
	}
	if err != nil {
		return result, fmt.Errorf("importing %s: %w", path, err)
	}
	result.Instance.Name = instanceName(path)
	return result, nil
}

func instanceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ImportText reads the text format from a file.
func ImportText(path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("opening instance: %w", err)
	}
	defer f.Close()
	return ParseInstance(f)
}

// ParseInstance reads the text format:
//
//	m
//	W H
//	id w h
//	...
//
// Blank lines are ignored. Item lines with fewer than three tokens are
// skipped silently; lines whose width or height is not a positive integer
// are skipped with a warning. A parsed count different from m is a warning.
func ParseInstance(r io.Reader) (ImportResult, error) {
	lines, err := readLines(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("reading instance: %w", err)
	}
	if len(lines) == 0 {
		return ImportResult{}, ErrEmptyInstance
	}
	if len(lines) < 2 {
		return ImportResult{}, fmt.Errorf("%w: missing bin size line", ErrBadHeader)
	}

	declared, err := strconv.Atoi(strings.Fields(lines[0])[0])
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: item count %q", ErrBadHeader, lines[0])
	}
	dims := strings.Fields(lines[1])
	if len(dims) != 2 {
		return ImportResult{}, fmt.Errorf("%w: bin size %q", ErrBadHeader, lines[1])
	}
	w, errW := strconv.Atoi(dims[0])
	h, errH := strconv.Atoi(dims[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return ImportResult{}, fmt.Errorf("%w: bin size %q", ErrBadHeader, lines[1])
	}

	result := ImportResult{Instance: model.Instance{
		Declared:  declared,
		BinWidth:  w,
		BinHeight: h,
	}}
	seen := make(map[string]bool)
	for _, ln := range lines[2:] {
		fields := strings.Fields(ln)
		if len(fields) < 3 {
			continue
		}
		id := fields[0]
		iw, errW := strconv.Atoi(fields[1])
		ih, errH := strconv.Atoi(fields[2])
		if errW != nil || errH != nil {
			result.warnf("Skipping malformed line: '%s'", ln)
			continue
		}
		if iw <= 0 || ih <= 0 {
			result.warnf("Skipping line with non-positive size: '%s'", ln)
			continue
		}
		if seen[id] {
			result.warnf("Duplicate object id %s", id)
		}
		seen[id] = true
		result.Instance.Items = append(result.Instance.Items, model.NewItem(id, iw, ih))
	}

	if n := len(result.Instance.Items); n != declared {
		result.warnf("Declared %d objects, but parsed %d", declared, n)
	}
	return result, nil
}

// readLines returns the trimmed non-blank lines of r. Lines may be of any
// length.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		ln, err := br.ReadString('\n')
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
