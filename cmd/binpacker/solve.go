package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/piwi3910/BinPacker/internal/engine"
	"github.com/piwi3910/BinPacker/internal/export"
	"github.com/piwi3910/BinPacker/internal/importer"
	"github.com/piwi3910/BinPacker/internal/metrics"
	"github.com/piwi3910/BinPacker/internal/model"
)

const (
	originalBase = "output_original"
	improvedBase = "output_improved"
)

// ErrUnplacedItems is returned in strict mode when the packing left items out.
var ErrUnplacedItems = errors.New("items could not be placed")

func newSolveCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve [instance]",
		Short: "Pack an instance and optionally improve it with local search",
		Long: `Pack an instance with first-fit decreasing and write output_original.json.
If a local search is selected and it removes at least one bin the improved
packing is written to output_improved.json.

Without an instance argument, or with --interactive, the instance path
and the local search method are read from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			bin, err := opts.bin()
			if err != nil {
				return err
			}
			s := &solver{
				cfg:         cfg,
				bin:         bin,
				in:          bufio.NewReader(cmd.InOrStdin()),
				out:         cmd.OutOrStdout(),
				recorder:    metrics.NewRecorder(),
				interactive: opts.interactive || len(args) == 0,
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return s.run(path)
		},
	}
	opts.addSolveFlags(cmd.Flags())
	return cmd
}

// solver runs one solve invocation.
type solver struct {
	cfg         model.AppConfig
	bin         importer.BinSize
	in          *bufio.Reader
	out         io.Writer
	recorder    *metrics.Recorder
	interactive bool
}

func (s *solver) run(path string) error {
	if s.interactive && path == "" {
		var err error
		path, err = promptPath(s.in, s.out)
		if err != nil {
			return err
		}
	}

	res, err := importer.Load(path, s.bin)
	if err != nil {
		return err
	}
	logImport(res)
	in := res.Instance

	opt := engine.New(s.cfg)
	opt.Observer = s.recorder

	diag := &engine.Diagnostics{}
	initial := opt.Pack(in, diag)
	for _, w := range diag.Warnings {
		klog.Warning(w)
	}
	for _, it := range diag.Unplaced {
		klog.ErrorS(nil, "Item does not fit in an empty bin", "id", it.ID, "width", it.Width, "height", it.Height)
	}
	klog.InfoS("Packed instance", "instance", in.Name, "items", len(in.Items),
		"bins", initial.BinCount(), "elapsed", initial.Result.Elapsed)

	if err := s.write(originalBase, initial.Result, in); err != nil {
		return err
	}
	printSummary(s.out, "Initial packing", initial.Result, in)

	if err := s.improve(opt, initial, in); err != nil {
		return err
	}
	return s.finish(initial.Result)
}

// improve runs the configured or prompted local search. An unknown
// method aborts only the search; the initial packing stays the result.
func (s *solver) improve(opt *engine.Optimizer, initial engine.Solution, in model.Instance) error {
	strategy := s.cfg.Strategy
	if s.interactive {
		run, err := promptYesNo(s.in, s.out, "Perform Local Search? (y/n): ")
		if err != nil {
			return err
		}
		if !run {
			klog.InfoS("Local search skipped")
			return nil
		}
		answer, err := prompt(s.in, s.out, "Specify Method: FirstImprovement or BestImprovement (fi/bi)? ")
		if err != nil {
			return err
		}
		parsed, ok := model.ParseStrategy(strings.ToLower(answer))
		if !ok || parsed == model.StrategyNone {
			klog.ErrorS(nil, "Unknown method, keeping the initial packing", "method", answer)
			return nil
		}
		strategy = parsed
	}
	if strategy == "" || strategy == model.StrategyNone {
		return nil
	}

	improved, stats, err := opt.Improve(initial, strategy)
	if err != nil {
		klog.ErrorS(err, "Local search aborted")
		return nil
	}
	klog.InfoS("Local search finished", "strategy", strategy, "elapsed", improved.Result.Elapsed,
		"passes", stats.Passes, "movesTried", stats.MovesTried, "movesAccepted", stats.MovesAccepted)

	if improved.BinCount() >= initial.BinCount() {
		klog.InfoS("No improvement found, keeping the initial packing")
		return nil
	}
	klog.InfoS("Local search found an improved packing", "bins", improved.BinCount(), "removed", initial.BinCount()-improved.BinCount())
	if err := s.write(improvedBase, improved.Result, in); err != nil {
		return err
	}
	printSummary(s.out, "Improved packing", improved.Result, in)
	return nil
}

func (s *solver) write(base string, result model.PackResult, in model.Instance) error {
	report, err := export.WriteAll(base, result, in, export.OptionsFrom(s.cfg))
	for _, p := range report.Written {
		klog.V(1).InfoS("Wrote output", "path", p)
	}
	if report.VisualsSkipped {
		klog.InfoS("Graphical representation skipped", "bins", len(result.Bins), "limit", s.cfg.VisualizeLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", base, err)
	}
	return nil
}

// finish writes the metrics textfile and applies strict mode.
func (s *solver) finish(result model.PackResult) error {
	if s.cfg.MetricsFile != "" {
		if err := s.recorder.WriteTextfile(s.cfg.MetricsFile); err != nil {
			return err
		}
	}
	if n := len(result.UnplacedItems); s.cfg.Strict && n > 0 {
		return fmt.Errorf("%w: %d", ErrUnplacedItems, n)
	}
	return nil
}

func logImport(res importer.ImportResult) {
	for _, w := range res.Warnings {
		klog.Warning(w)
	}
	for _, e := range res.Errors {
		klog.ErrorS(nil, "Import error", "detail", e)
	}
}
