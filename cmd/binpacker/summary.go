package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/piwi3910/BinPacker/internal/engine"
	"github.com/piwi3910/BinPacker/internal/export"
	"github.com/piwi3910/BinPacker/internal/model"
)

var (
	headingColor = color.New(color.Bold, color.FgCyan)
	goodColor    = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	badColor     = color.New(color.FgRed)
)

// printSummary writes the headline figures of one packing.
func printSummary(w io.Writer, title string, result model.PackResult, in model.Instance) {
	rec := export.NewRecord(result, in)

	headingColor.Fprintf(w, "%s (%s)\n", title, result.Strategy)
	fmt.Fprintf(w, "  %-16s %d\n", "Bins used:", rec.BinsUsed)
	fmt.Fprintf(w, "  %-16s %d\n", "Lower bound:", rec.MinTheoreticalBins)
	fmt.Fprintf(w, "  %-16s ", "Gap:")
	gapColor(rec.GapPercentage).Fprintf(w, "%.2f%%\n", rec.GapPercentage)
	fmt.Fprintf(w, "  %-16s %.1f%%\n", "Efficiency:", result.TotalEfficiency())
	fmt.Fprintf(w, "  %-16s %.4f s\n", "Time:", rec.ExecutionTimeSeconds)
	if n := len(result.UnplacedItems); n > 0 {
		fmt.Fprintf(w, "  %-16s ", "Unplaced items:")
		badColor.Fprintf(w, "%d\n", n)
	}
}

func gapColor(gap float64) *color.Color {
	if gap <= 0 {
		return goodColor
	}
	return warnColor
}

// printComparison writes one row per strategy, highlighting the rows that
// reach the fewest bins.
func printComparison(w io.Writer, results []engine.ComparisonResult) {
	best := -1
	for _, r := range results {
		if best < 0 || r.BinsUsed < best {
			best = r.BinsUsed
		}
	}

	headingColor.Fprintf(w, "%-18s %6s %6s %8s %10s %8s %8s\n",
		"STRATEGY", "BINS", "BOUND", "GAP%", "TIME(s)", "MOVES", "UNPLACED")
	for _, r := range results {
		line := fmt.Sprintf("%-18s %6d %6d %8.2f %10.4f %8d %8d",
			r.Strategy, r.BinsUsed, r.MinBins, r.GapPercent, r.Elapsed.Seconds(),
			r.Stats.MovesAccepted, r.UnplacedCount)
		if r.BinsUsed == best {
			goodColor.Fprintln(w, line)
		} else {
			fmt.Fprintln(w, line)
		}
	}
}
