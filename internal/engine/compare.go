package engine

import (
	"time"

	"github.com/piwi3910/BinPacker/internal/model"
)

// ComparisonResult holds the outcome and statistics of one strategy run.
type ComparisonResult struct {
	Strategy      model.Strategy
	Result        model.PackResult
	BinsUsed      int
	MinBins       int
	GapPercent    float64
	Elapsed       time.Duration
	UnplacedCount int
	Stats         SearchStats
}

// CompareStrategies packs the instance once and then runs each strategy
// from that same starting point. The first entry is always the plain
// first-fit decreasing result. obs may be nil.
func CompareStrategies(config model.AppConfig, in model.Instance, strategies []model.Strategy, obs Observer) []ComparisonResult {
	opt := New(config)
	opt.Observer = obs
	minBins := model.MinBins(in.TotalArea(), in.BinArea())

	initial := opt.Pack(in, nil)
	results := make([]ComparisonResult, 0, len(strategies)+1)
	results = append(results, newComparisonResult(model.StrategyNone, initial, minBins, SearchStats{}))

	for _, strategy := range strategies {
		sol, stats, err := opt.Improve(initial, strategy)
		if err != nil {
			continue
		}
		results = append(results, newComparisonResult(strategy, sol, minBins, stats))
	}
	return results
}

func newComparisonResult(strategy model.Strategy, sol Solution, minBins int, stats SearchStats) ComparisonResult {
	return ComparisonResult{
		Strategy:      strategy,
		Result:        sol.Result,
		BinsUsed:      sol.BinCount(),
		MinBins:       minBins,
		GapPercent:    model.GapPercent(sol.BinCount(), minBins),
		Elapsed:       sol.Result.Elapsed,
		UnplacedCount: len(sol.Result.UnplacedItems),
		Stats:         stats,
	}
}
