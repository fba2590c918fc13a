package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/piwi3910/BinPacker/internal/importer"
	"github.com/piwi3910/BinPacker/internal/model"
	"github.com/piwi3910/BinPacker/internal/project"
)

// options holds the command-line flags. Flags only override the resolved
// config when they were set explicitly.
type options struct {
	configPath string
	binSize    string

	strategy  string
	converge  bool
	maxPasses int
	workers   int

	outputDir   string
	pdf         bool
	labels      bool
	xlsx        bool
	dxf         bool
	png         bool
	vizLimit    int
	metricsFile string
	strict      bool

	interactive bool
}

func (o *options) addCommonFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "Path to configuration file (default ~/.binpacker/config.yaml)")
	fs.StringVar(&o.binSize, "bin", "", "Bin size WIDTHxHEIGHT for CSV, Excel and DXF instances")
	fs.BoolVar(&o.converge, "converge", false, "Repeat the local search until it removes no bin")
	fs.IntVar(&o.maxPasses, "max-passes", 0, "Upper bound on local search passes with --converge")
	fs.IntVar(&o.workers, "workers", 1, "Parallel evaluators for best improvement")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
}

func (o *options) addSolveFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.strategy, "local-search", "s", "", "Local search: none, fi, bi or genetic")
	fs.StringVarP(&o.outputDir, "out", "o", "", "Output directory")
	fs.BoolVar(&o.pdf, "pdf", false, "Write a PDF layout")
	fs.BoolVar(&o.labels, "labels", false, "Write a PDF with a QR label per placed item")
	fs.BoolVar(&o.xlsx, "xlsx", false, "Write an Excel report")
	fs.BoolVar(&o.dxf, "dxf", false, "Write a DXF layout")
	fs.BoolVar(&o.png, "png", false, "Write a PNG preview")
	fs.IntVar(&o.vizLimit, "visualize-limit", 0, "Skip drawings above this many bins")
	fs.BoolVar(&o.strict, "strict", false, "Exit with an error when an item could not be placed")
	fs.BoolVarP(&o.interactive, "interactive", "i", false, "Prompt for the instance file and local search")
}

// resolve loads the config file, applies BINPACKER_* environment
// variables and finally the flags that were set on the command line.
func (o *options) resolve(fs *pflag.FlagSet) (model.AppConfig, error) {
	path := o.configPath
	if path == "" {
		path = project.DefaultConfigPath()
	}
	cfg, err := project.Resolve(path)
	if err != nil {
		return model.AppConfig{}, err
	}

	if fs.Changed("local-search") {
		s, ok := model.ParseStrategy(strings.ToLower(o.strategy))
		if !ok {
			return model.AppConfig{}, fmt.Errorf("invalid --local-search %q", o.strategy)
		}
		cfg.Strategy = s
	}
	if fs.Changed("converge") {
		cfg.Converge = o.converge
	}
	if fs.Changed("max-passes") {
		cfg.MaxPasses = o.maxPasses
	}
	if fs.Changed("workers") {
		cfg.Workers = o.workers
	}
	if fs.Changed("out") {
		cfg.OutputDir = o.outputDir
	}
	if fs.Changed("pdf") {
		cfg.WritePDF = o.pdf
	}
	if fs.Changed("labels") {
		cfg.WriteLabels = o.labels
	}
	if fs.Changed("xlsx") {
		cfg.WriteXLSX = o.xlsx
	}
	if fs.Changed("dxf") {
		cfg.WriteDXF = o.dxf
	}
	if fs.Changed("png") {
		cfg.WritePNG = o.png
	}
	if fs.Changed("visualize-limit") {
		cfg.VisualizeLimit = o.vizLimit
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}
	if fs.Changed("strict") {
		cfg.Strict = o.strict
	}
	return cfg, nil
}

func (o *options) bin() (importer.BinSize, error) {
	if o.binSize == "" {
		return importer.BinSize{}, nil
	}
	return importer.ParseBinSize(o.binSize)
}
