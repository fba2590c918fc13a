package engine

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BinPacker/internal/model"
)

// binWith places the items into a fresh bin in order.
func binWith(t *testing.T, w, h int, items ...model.Item) *Bin {
	t.Helper()
	b := NewBin(w, h)
	for _, it := range items {
		require.True(t, b.Place(it), "setup: %s must fit", it.ID)
	}
	return b
}

// snapshot captures the observable state of a bin list.
type binSnapshot struct {
	Placements []model.Placement
	Candidates [][2]int
}

func snapshot(bins []*Bin) []binSnapshot {
	out := make([]binSnapshot, len(bins))
	for i, b := range bins {
		out[i] = binSnapshot{
			Placements: slices.Clone(b.Placements()),
			Candidates: b.Candidates(),
		}
	}
	return out
}

func itemIDs(bins []*Bin) []string {
	var ids []string
	for _, b := range bins {
		for _, p := range b.Placements() {
			ids = append(ids, p.Item.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// splitPair is two 5x5 items in separate 5x10 bins.
func splitPair(t *testing.T) []*Bin {
	return []*Bin{
		binWith(t, 5, 10, model.NewItem("A", 5, 5)),
		binWith(t, 5, 10, model.NewItem("B", 5, 5)),
	}
}

// drainable is a 10x10 layout where first-improvement needs two moves to
// empty the first bin.
func drainable(t *testing.T) []*Bin {
	return []*Bin{
		binWith(t, 10, 10, model.NewItem("A", 5, 5), model.NewItem("B", 5, 5)),
		binWith(t, 10, 10, model.NewItem("C", 10, 5)),
	}
}

func TestArena_RollbackRestoresExactState(t *testing.T) {
	bins := drainable(t)
	a := newArena(bins)
	before := snapshot(a.bins)

	require.True(t, a.move(0, 0, 1), "A fits above C")
	assert.Equal(t, 1, a.bins[0].Len())
	assert.Equal(t, 2, a.bins[1].Len())
	a.rollback()

	if diff := cmp.Diff(before, snapshot(a.bins)); diff != "" {
		t.Errorf("rollback mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, a.verify())
}

func TestArena_RejectedMoveRestoresOrder(t *testing.T) {
	bins := []*Bin{
		binWith(t, 10, 10, model.NewItem("A", 5, 5), model.NewItem("B", 5, 5), model.NewItem("C", 5, 5)),
		binWith(t, 10, 10, model.NewItem("D", 10, 10)),
	}
	a := newArena(bins)
	before := snapshot(a.bins)

	require.False(t, a.move(0, 1, 1), "full target must reject")
	a.rollback()

	if diff := cmp.Diff(before, snapshot(a.bins)); diff != "" {
		t.Errorf("rejected move changed state (-want +got):\n%s", diff)
	}
}

func TestArena_VerifyDetectsOpenMove(t *testing.T) {
	a := newArena(drainable(t))
	a.move(0, 0, 1)
	assert.Error(t, a.verify())
	a.commit()
	assert.NoError(t, a.verify())
}

func TestBestImprovement_ConsolidatesPair(t *testing.T) {
	bins := splitPair(t)
	out := BestImprovement(bins)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"A", "B"}, itemIDs(out))
	require.NoError(t, VerifyBins(out))
	assert.Len(t, bins, 2, "input must not be modified")
	assert.Equal(t, 1, bins[0].Len())
}

func TestFirstImprovement_ConsolidatesPair(t *testing.T) {
	out := FirstImprovement(splitPair(t))

	require.Len(t, out, 1)
	assert.Equal(t, []string{"A", "B"}, itemIDs(out))
	require.NoError(t, VerifyBins(out))
}

func TestFirstImprovement_StopsAfterOneMove(t *testing.T) {
	bins := drainable(t)
	ls := NewLocalSearch(LocalSearchOptions{})
	out := ls.FirstImprovement(bins)

	require.Len(t, out, 2, "one move relocates A but cannot empty the first bin")
	assert.Equal(t, 1, out[0].Len())
	assert.Equal(t, "B", out[0].Placements()[0].Item.ID)
	assert.Equal(t, 1, ls.Stats.MovesAccepted)
	assert.Equal(t, 0, ls.Stats.BinsRemoved)
	require.NoError(t, VerifyBins(out))
}

func TestRun_ConvergeDrainsBin(t *testing.T) {
	ls := NewLocalSearch(LocalSearchOptions{Stop: StopConverge})
	out, err := ls.Run(model.StrategyFirstImprovement, drainable(t))

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"A", "B", "C"}, itemIDs(out))
	assert.Equal(t, 3, ls.Stats.Passes, "two moves and a final pass that finds nothing")
	require.NoError(t, VerifyBins(out))
}

func TestRun_ConvergeRespectsMaxPasses(t *testing.T) {
	ls := NewLocalSearch(LocalSearchOptions{Stop: StopConverge, MaxPasses: 1})
	out, err := ls.Run(model.StrategyFirstImprovement, drainable(t))

	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, ls.Stats.Passes)
}

func TestBestImprovement_FindsSingleMoveReduction(t *testing.T) {
	// Moving C into the free top half of the first bin empties the second.
	out := BestImprovement(drainable(t))

	require.Len(t, out, 1)
	assert.Equal(t, []string{"A", "B", "C"}, itemIDs(out))
	require.NoError(t, VerifyBins(out))
}

func TestBestImprovement_NoImprovementKeepsConfiguration(t *testing.T) {
	bins := []*Bin{
		binWith(t, 5, 10, model.NewItem("A", 5, 10)),
		binWith(t, 5, 10, model.NewItem("B", 10, 5)),
	}
	before := snapshot(bins)
	out := BestImprovement(bins)

	require.Len(t, out, 2)
	assert.Equal(t, itemIDs(bins), itemIDs(out))
	if diff := cmp.Diff(before, snapshot(out)); diff != "" {
		t.Errorf("configuration changed without improvement (-want +got):\n%s", diff)
	}
}

func TestFirstImprovement_NoMoveKeepsConfiguration(t *testing.T) {
	bins := []*Bin{
		binWith(t, 5, 5, model.NewItem("A", 5, 5)),
		binWith(t, 5, 5, model.NewItem("B", 5, 5)),
	}
	ls := NewLocalSearch(LocalSearchOptions{})
	out := ls.FirstImprovement(bins)

	require.Len(t, out, 2)
	assert.Equal(t, 2, ls.Stats.MovesTried)
	assert.Equal(t, 0, ls.Stats.MovesAccepted)
	if diff := cmp.Diff(snapshot(bins), snapshot(out)); diff != "" {
		t.Errorf("configuration changed (-want +got):\n%s", diff)
	}
}

func TestLocalSearch_EmptyAndSingleBin(t *testing.T) {
	assert.Empty(t, FirstImprovement(nil))
	assert.Empty(t, BestImprovement(nil))

	one := []*Bin{binWith(t, 5, 5, model.NewItem("A", 2, 2))}
	assert.Len(t, FirstImprovement(one), 1)
	assert.Len(t, BestImprovement(one), 1)
}

func TestRun_UnknownStrategy(t *testing.T) {
	bins := splitPair(t)
	ls := NewLocalSearch(LocalSearchOptions{})
	out, err := ls.Run(model.Strategy("tabu"), bins)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
	assert.Len(t, out, 2, "initial packing stays valid")
}

func TestRun_NoneReturnsCopy(t *testing.T) {
	bins := splitPair(t)
	out, err := NewLocalSearch(LocalSearchOptions{}).Run(model.StrategyNone, bins)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotSame(t, bins[0], out[0])
}

func TestBestImprovement_ParallelMatchesSequential(t *testing.T) {
	for seed := int64(1); seed <= 4; seed++ {
		bins := Assemble(randomItems(seed, 40, 9, 9), 16, 12, nil)

		seq := NewLocalSearch(LocalSearchOptions{Workers: 1}).BestImprovement(bins)
		par := NewLocalSearch(LocalSearchOptions{Workers: 4}).BestImprovement(bins)

		if diff := cmp.Diff(snapshot(seq), snapshot(par)); diff != "" {
			t.Errorf("seed %d: parallel result differs (-seq +par):\n%s", seed, diff)
		}
	}
}

func TestLocalSearch_PropertiesOnRandomInstances(t *testing.T) {
	strategies := []model.Strategy{model.StrategyFirstImprovement, model.StrategyBestImprovement}
	for seed := int64(10); seed < 16; seed++ {
		items := randomItems(seed, 50, 10, 8)
		bins := Assemble(items, 18, 14, nil)
		before := snapshot(bins)
		lower := model.MinBins(totalArea(items), 18*14)

		for _, strategy := range strategies {
			for _, stop := range []StopPolicy{StopFirstMove, StopConverge} {
				ls := NewLocalSearch(LocalSearchOptions{Stop: stop, MaxPasses: 50})
				out, err := ls.Run(strategy, bins)
				require.NoError(t, err)

				assert.LessOrEqual(t, len(out), len(bins), "non-degradation: %s seed %d", strategy, seed)
				assert.GreaterOrEqual(t, len(out), lower, "lower bound: %s seed %d", strategy, seed)
				require.NoError(t, VerifyBins(out), "%s seed %d", strategy, seed)
				assertOrientation(t, out)
				assert.Equal(t, itemIDs(bins), itemIDs(out), "item multiset: %s seed %d", strategy, seed)
				assert.Equal(t, totalArea(items), totalFootprint(out))
			}
		}

		if diff := cmp.Diff(before, snapshot(bins)); diff != "" {
			t.Fatalf("seed %d: local search mutated its input:\n%s", seed, diff)
		}
	}
}
