package export

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/piwi3910/BinPacker/internal/model"
)

// Options selects the files written by WriteAll.
type Options struct {
	OutputDir      string
	PDF            bool
	Labels         bool
	XLSX           bool
	DXF            bool
	PNG            bool
	VisualizeLimit int // Skip PDF, DXF and PNG above this many bins, <= 0 disables the limit
}

// OptionsFrom reads the output settings of an AppConfig.
func OptionsFrom(cfg model.AppConfig) Options {
	return Options{
		OutputDir:      cfg.OutputDir,
		PDF:            cfg.WritePDF,
		Labels:         cfg.WriteLabels,
		XLSX:           cfg.WriteXLSX,
		DXF:            cfg.WriteDXF,
		PNG:            cfg.WritePNG,
		VisualizeLimit: cfg.VisualizeLimit,
	}
}

// Report lists what WriteAll produced.
type Report struct {
	Written        []string
	VisualsSkipped bool // Drawings were skipped because of VisualizeLimit
}

// WriteAll writes the JSON record <base>.json and the enabled extra
// formats into the output directory. A failing writer does not stop the
// others; all failures are returned together.
func WriteAll(base string, result model.PackResult, in model.Instance, opts Options) (Report, error) {
	var report Report

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return report, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := func(suffix string) string { return filepath.Join(dir, base+suffix) }

	rec := NewRecord(result, in)
	var errs error
	write := func(p string, fn func(string) error) {
		if err := fn(p); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", filepath.Base(p), err))
			return
		}
		report.Written = append(report.Written, p)
	}

	write(path(".json"), func(p string) error { return WriteRecord(p, rec) })
	if opts.XLSX {
		write(path(".xlsx"), func(p string) error { return WriteXLSX(p, result, rec) })
	}
	if opts.Labels && result.PlacedCount() > 0 {
		write(path("_labels.pdf"), func(p string) error { return WriteLabels(p, result) })
	}

	visual := opts.PDF || opts.DXF || opts.PNG
	if visual && opts.VisualizeLimit > 0 && len(result.Bins) > opts.VisualizeLimit {
		report.VisualsSkipped = true
		return report, errs
	}
	if len(result.Bins) == 0 {
		return report, errs
	}
	if opts.PDF {
		write(path(".pdf"), func(p string) error { return WritePDF(p, result, rec) })
	}
	if opts.DXF {
		write(path(".dxf"), func(p string) error { return WriteDXF(p, result) })
	}
	if opts.PNG {
		write(path(".png"), func(p string) error { return WritePNG(p, result) })
	}
	return report, errs
}
