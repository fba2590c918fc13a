package engine

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/BinPacker/internal/model"
)

// ErrUnknownStrategy is returned by LocalSearch.Run for an unrecognised strategy.
var ErrUnknownStrategy = errors.New("unknown optimization strategy")

// StopPolicy controls how many passes LocalSearch.Run performs.
type StopPolicy int

const (
	StopFirstMove StopPolicy = iota // A single pass of the strategy
	StopConverge                    // Repeat passes until one changes nothing
)

// defaultMaxPasses bounds StopConverge when no limit is configured.
// First-improvement moves need not reduce the bin count and may cycle.
const defaultMaxPasses = 1000

// LocalSearchOptions configures a LocalSearch.
type LocalSearchOptions struct {
	Stop      StopPolicy
	MaxPasses int // Pass limit for StopConverge, <= 0 uses defaultMaxPasses
	Workers   int // Parallel best-improvement evaluators, <= 1 is sequential
	Genetic   GeneticConfig
}

// SearchStats counts the work done by a LocalSearch.
type SearchStats struct {
	Passes        int
	MovesTried    int
	MovesAccepted int
	BinsRemoved   int
}

// LocalSearch relocates one item at a time between bins to reduce the
// number of non-empty bins. Input bin lists are never modified.
type LocalSearch struct {
	Options LocalSearchOptions
	Stats   SearchStats
}

func NewLocalSearch(opts LocalSearchOptions) *LocalSearch {
	if opts.Genetic.PopulationSize == 0 {
		opts.Genetic = DefaultGeneticConfig()
	}
	return &LocalSearch{Options: opts}
}

// FirstImprovement runs one first-improvement pass with default options.
func FirstImprovement(bins []*Bin) []*Bin {
	return NewLocalSearch(LocalSearchOptions{}).FirstImprovement(bins)
}

// BestImprovement runs one sequential best-improvement pass.
func BestImprovement(bins []*Bin) []*Bin {
	return NewLocalSearch(LocalSearchOptions{}).BestImprovement(bins)
}

// Run applies the strategy according to the stop policy.
func (ls *LocalSearch) Run(strategy model.Strategy, bins []*Bin) ([]*Bin, error) {
	var pass func([]*Bin) ([]*Bin, bool)
	switch strategy {
	case "", model.StrategyNone:
		return CloneBins(bins), nil
	case model.StrategyFirstImprovement:
		pass = ls.firstImprovement
	case model.StrategyBestImprovement:
		pass = ls.bestImprovement
	case model.StrategyGenetic:
		pass = ls.genetic
	default:
		return bins, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	limit := ls.Options.MaxPasses
	if limit <= 0 {
		limit = defaultMaxPasses
	}
	current := bins
	for n := 0; ; {
		next, changed := pass(current)
		current = next
		n++
		ls.Stats.Passes++
		if !changed || ls.Options.Stop != StopConverge || n >= limit {
			break
		}
	}
	return current, nil
}

// FirstImprovement scans (source bin, item, target bin) in index order and
// returns as soon as one relocation is accepted, dropping the source bin if
// it became empty. With no acceptable move the configuration is returned
// unchanged.
func (ls *LocalSearch) FirstImprovement(bins []*Bin) []*Bin {
	out, _ := ls.firstImprovement(bins)
	return out
}

func (ls *LocalSearch) firstImprovement(bins []*Bin) ([]*Bin, bool) {
	a := newArena(bins)
	for i := range a.bins {
		for k := 0; k < a.bins[i].Len(); k++ {
			for j := range a.bins {
				if i == j {
					continue
				}
				ls.Stats.MovesTried++
				if !a.move(i, k, j) {
					a.rollback()
					continue
				}
				a.commit()
				ls.Stats.MovesAccepted++
				if a.bins[i].Empty() {
					a.drop(i)
					ls.Stats.BinsRemoved++
				}
				return a.bins, true
			}
		}
	}
	return a.bins, false
}

// triple identifies one candidate relocation.
type triple struct {
	src, k, dst int
}

// BestImprovement evaluates every single-item relocation and applies the
// one giving the fewest bins, the earliest evaluated move winning ties.
// Without a strict improvement the configuration is returned unchanged.
func (ls *LocalSearch) BestImprovement(bins []*Bin) []*Bin {
	out, _ := ls.bestImprovement(bins)
	return out
}

func (ls *LocalSearch) bestImprovement(bins []*Bin) ([]*Bin, bool) {
	a := newArena(bins)

	var triples []triple
	for i, b := range a.bins {
		for k := 0; k < b.Len(); k++ {
			for j := range a.bins {
				if i != j {
					triples = append(triples, triple{i, k, j})
				}
			}
		}
	}

	best := ls.evaluate(a, triples)
	if best < 0 {
		return a.bins, false
	}

	t := triples[best]
	if !a.move(t.src, t.k, t.dst) {
		panic("engine: replay of winning move rejected")
	}
	a.commit()
	ls.Stats.MovesAccepted++
	for i := len(a.bins) - 1; i >= 0; i-- {
		if a.bins[i].Empty() {
			a.drop(i)
			ls.Stats.BinsRemoved++
		}
	}
	return a.bins, true
}

// evaluation is the best move found over a set of triples.
type evaluation struct {
	count int
	index int
	tried int
}

// evaluate returns the index of the best triple, or -1 if none lowers the
// bin count below the starting list length.
func (ls *LocalSearch) evaluate(a *arena, triples []triple) int {
	start := len(a.bins)
	workers := ls.Options.Workers
	if workers > len(triples) {
		workers = len(triples)
	}

	if workers <= 1 {
		ev := scan(a, triples, 0, 1, start)
		ls.Stats.MovesTried += ev.tried
		return ev.index
	}

	results := make([]evaluation, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		wa := a.clone()
		g.Go(func() error {
			results[w] = scan(wa, triples, w, workers, start)
			return nil
		})
	}
	_ = g.Wait()

	best := evaluation{count: start, index: -1}
	for _, ev := range results {
		ls.Stats.MovesTried += ev.tried
		if ev.index < 0 {
			continue
		}
		if ev.count < best.count || (ev.count == best.count && ev.index < best.index) {
			best.count, best.index = ev.count, ev.index
		}
	}
	return best.index
}

// scan simulates triples[offset], triples[offset+stride], ... on the arena,
// rolling every move back, and returns the strictly best one.
func scan(a *arena, triples []triple, offset, stride, start int) evaluation {
	ev := evaluation{count: start, index: -1}
	for idx := offset; idx < len(triples); idx += stride {
		t := triples[idx]
		ev.tried++
		if a.move(t.src, t.k, t.dst) {
			if c := a.count(); c < ev.count {
				ev.count, ev.index = c, idx
			}
		}
		a.rollback()
	}
	return ev
}

// genetic searches item orderings and keeps the result only if it uses
// fewer bins than the input.
func (ls *LocalSearch) genetic(bins []*Bin) ([]*Bin, bool) {
	if len(bins) == 0 {
		return nil, false
	}
	var items []model.Item
	for _, b := range bins {
		for _, p := range b.placements {
			items = append(items, p.Item)
		}
	}
	out := OptimizeGenetic(items, bins[0].Width, bins[0].Height, ls.Options.Genetic)
	if len(out) < len(bins) {
		ls.Stats.MovesAccepted++
		ls.Stats.BinsRemoved += len(bins) - len(out)
		return out, true
	}
	return CloneBins(bins), false
}
