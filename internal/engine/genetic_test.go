package engine

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BinPacker/internal/model"
)

func smallGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 12,
		Generations:    15,
		MutationRate:   0.2,
		TournamentSize: 3,
		EliteCount:     1,
		Seed:           7,
	}
}

func TestOptimizeGenetic_NeverWorseThanFirstFitDecreasing(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		items := randomItems(seed, 30, 9, 7)
		greedy := Assemble(items, 15, 12, nil)
		out := OptimizeGenetic(items, 15, 12, smallGeneticConfig())

		assert.LessOrEqual(t, len(out), len(greedy), "seed %d", seed)
		require.NoError(t, VerifyBins(out))
		assert.Equal(t, len(items), CountItems(out))
		assert.Equal(t, totalArea(items), totalFootprint(out))
	}
}

func TestOptimizeGenetic_Deterministic(t *testing.T) {
	items := randomItems(3, 25, 8, 8)
	first := OptimizeGenetic(items, 14, 14, smallGeneticConfig())
	second := OptimizeGenetic(items, 14, 14, smallGeneticConfig())

	if diff := cmp.Diff(snapshot(first), snapshot(second)); diff != "" {
		t.Errorf("same seed gave different packings (-first +second):\n%s", diff)
	}
}

func TestOptimizeGenetic_IgnoresOversizedItems(t *testing.T) {
	items := []model.Item{
		model.NewItem("big", 20, 20),
		model.NewItem("a", 3, 3),
		model.NewItem("b", 2, 4),
	}
	out := OptimizeGenetic(items, 6, 6, smallGeneticConfig())

	require.Len(t, out, 1)
	assert.Equal(t, []string{"a", "b"}, itemIDs(out))

	assert.Nil(t, OptimizeGenetic(items[:1], 6, 6, smallGeneticConfig()))
}

func TestOptimizeGenetic_ZeroConfigUsesDefaults(t *testing.T) {
	items := randomItems(9, 8, 4, 4)
	out := OptimizeGenetic(items, 8, 8, GeneticConfig{})

	require.NoError(t, VerifyBins(out))
	assert.Equal(t, len(items), CountItems(out))
}

func TestGeneticConfigFrom(t *testing.T) {
	cfg := GeneticConfigFrom(model.GeneticSettings{Generations: 7, Seed: 99})

	want := DefaultGeneticConfig()
	want.Generations = 7
	want.Seed = 99
	assert.Equal(t, want, cfg)
}

func TestOrderCrossover_ProducesPermutation(t *testing.T) {
	g := newGeneticOptimizer(smallGeneticConfig(), randomItems(1, 10, 3, 3), 10, 10)
	rng := rand.New(rand.NewSource(5))

	for range 20 {
		p1 := chromosome{order: rng.Perm(10)}
		p2 := chromosome{order: rng.Perm(10)}
		child := g.orderCrossover(p1, p2)

		sorted := slices.Clone(child.order)
		slices.Sort(sorted)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, sorted)
	}
}

func TestMutate_KeepsPermutation(t *testing.T) {
	cfg := smallGeneticConfig()
	cfg.MutationRate = 1
	g := newGeneticOptimizer(cfg, randomItems(1, 6, 3, 3), 10, 10)

	c := chromosome{order: []int{0, 1, 2, 3, 4, 5}}
	for range 10 {
		g.mutate(&c)
	}
	sorted := slices.Clone(c.order)
	slices.Sort(sorted)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, sorted)
}

func TestGreedyChromosome_DecodesToAssembly(t *testing.T) {
	items := randomItems(4, 20, 6, 6)
	g := newGeneticOptimizer(smallGeneticConfig(), items, 12, 12)

	got := g.decode(g.createGreedyChromosome())
	want := Assemble(items, 12, 12, nil)
	if diff := cmp.Diff(snapshot(want), snapshot(got)); diff != "" {
		t.Errorf("greedy chromosome differs from first-fit decreasing:\n%s", diff)
	}
}

func TestRun_GeneticKeepsOnlyImprovements(t *testing.T) {
	bins := Assemble(randomItems(11, 30, 9, 9), 16, 16, nil)
	ls := NewLocalSearch(LocalSearchOptions{Genetic: smallGeneticConfig()})
	out, err := ls.Run(model.StrategyGenetic, bins)

	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), len(bins))
	assert.Equal(t, itemIDs(bins), itemIDs(out))
	assert.Equal(t, 1, ls.Stats.Passes)
	require.NoError(t, VerifyBins(out))
}
