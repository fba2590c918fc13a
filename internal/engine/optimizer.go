package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/BinPacker/internal/model"
)

// Observer receives packing events. internal/metrics provides the
// Prometheus-backed implementation.
type Observer interface {
	ObservePhase(phase string, d time.Duration)
	ObserveAssembly(placed, unplaced, bins int)
	ObserveSearch(strategy model.Strategy, stats SearchStats)
}

type nopObserver struct{}

func (nopObserver) ObservePhase(string, time.Duration)         {}
func (nopObserver) ObserveAssembly(int, int, int)             {}
func (nopObserver) ObserveSearch(model.Strategy, SearchStats) {}

// Optimizer runs the initial assembly and the optional improvement step.
type Optimizer struct {
	Config   model.AppConfig
	Observer Observer
}

func New(config model.AppConfig) *Optimizer {
	return &Optimizer{Config: config, Observer: nopObserver{}}
}

// Solution is a packing together with the bins that produced it, so later
// improvement steps can start from the same state.
type Solution struct {
	Bins   []*Bin
	Result model.PackResult
}

// BinCount returns the number of bins used.
func (s Solution) BinCount() int {
	return len(s.Bins)
}

// Pack runs first-fit decreasing on the instance.
func (o *Optimizer) Pack(in model.Instance, diag *Diagnostics) Solution {
	start := time.Now()
	local := &Diagnostics{}
	bins := Assemble(in.Items, in.BinWidth, in.BinHeight, local)
	elapsed := time.Since(start)

	if diag != nil {
		diag.Merge(local.Warnings, local.Errors)
		diag.Unplaced = append(diag.Unplaced, local.Unplaced...)
	}
	o.observer().ObservePhase("assemble", elapsed)
	o.observer().ObserveAssembly(CountItems(bins), len(local.Unplaced), len(bins))

	return Solution{
		Bins:   bins,
		Result: BuildResult(bins, local.Unplaced, string(model.StrategyNone), elapsed),
	}
}

// Improve runs the strategy on a solution from Pack. An unknown strategy
// returns ErrUnknownStrategy and leaves the input solution untouched.
func (o *Optimizer) Improve(sol Solution, strategy model.Strategy) (Solution, SearchStats, error) {
	ls := NewLocalSearch(o.searchOptions())

	start := time.Now()
	bins, err := ls.Run(strategy, sol.Bins)
	if err != nil {
		return sol, ls.Stats, err
	}
	elapsed := time.Since(start)

	o.observer().ObservePhase("local_search", elapsed)
	o.observer().ObserveSearch(strategy, ls.Stats)

	return Solution{
		Bins:   bins,
		Result: BuildResult(bins, sol.Result.UnplacedItems, string(strategy), elapsed),
	}, ls.Stats, nil
}

func (o *Optimizer) searchOptions() LocalSearchOptions {
	opts := LocalSearchOptions{
		MaxPasses: o.Config.MaxPasses,
		Workers:   o.Config.Workers,
		Genetic:   GeneticConfigFrom(o.Config.Genetic),
	}
	if o.Config.Converge {
		opts.Stop = StopConverge
	}
	return opts
}

func (o *Optimizer) observer() Observer {
	if o.Observer == nil {
		return nopObserver{}
	}
	return o.Observer
}

// BuildResult converts bins into a PackResult with 1-based bin indices.
func BuildResult(bins []*Bin, unplaced []model.Item, strategy string, elapsed time.Duration) model.PackResult {
	result := model.PackResult{
		RunID:         uuid.NewString(),
		Strategy:      strategy,
		Bins:          make([]model.BinResult, 0, len(bins)),
		UnplacedItems: unplaced,
		Elapsed:       elapsed,
	}
	for i, b := range bins {
		result.Bins = append(result.Bins, b.Result(i+1))
	}
	return result
}
