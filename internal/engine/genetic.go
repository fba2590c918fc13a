package engine

import (
	"math/rand"
	"slices"
	"sort"

	"github.com/piwi3910/BinPacker/internal/model"
)

// GeneticConfig holds parameters for the genetic ordering search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	Seed           int64
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           42,
	}
}

// GeneticConfigFrom converts persisted settings, filling zero fields from
// the defaults.
func GeneticConfigFrom(s model.GeneticSettings) GeneticConfig {
	cfg := DefaultGeneticConfig()
	if s.PopulationSize > 0 {
		cfg.PopulationSize = s.PopulationSize
	}
	if s.Generations > 0 {
		cfg.Generations = s.Generations
	}
	if s.MutationRate > 0 {
		cfg.MutationRate = s.MutationRate
	}
	if s.TournamentSize > 0 {
		cfg.TournamentSize = s.TournamentSize
	}
	if s.EliteCount > 0 {
		cfg.EliteCount = s.EliteCount
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	return cfg
}

// chromosome is a candidate solution: the order in which items are offered
// to the first-fit decoder.
type chromosome struct {
	order   []int // Indices into geneticOptimizer.items
	fitness float64
}

// geneticOptimizer evolves item orderings decoded with the candidate-point placer.
type geneticOptimizer struct {
	config        GeneticConfig
	items         []model.Item
	width, height int
	rng           *rand.Rand
}

func newGeneticOptimizer(config GeneticConfig, items []model.Item, width, height int) *geneticOptimizer {
	return &geneticOptimizer{
		config: config,
		items:  items,
		width:  width,
		height: height,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// optimize runs the genetic algorithm and returns the best decoded packing.
func (g *geneticOptimizer) optimize() []*Bin {
	population := g.initPopulation()
	for i := range population {
		population[i].fitness = g.evaluate(population[i])
	}

	for gen := 0; gen < g.config.Generations; gen++ {
		// Sort by fitness descending (higher is better)
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		newPop := make([]chromosome, 0, g.config.PopulationSize)

		// Elitism: carry over the best individuals unchanged
		eliteCount := min(g.config.EliteCount, len(population))
		for i := 0; i < eliteCount; i++ {
			newPop = append(newPop, g.copyChromosome(population[i]))
		}

		for len(newPop) < g.config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)

			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)

			child.fitness = g.evaluate(child)
			newPop = append(newPop, child)
		}

		population = newPop
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	return g.decode(population[0])
}

// initPopulation creates random permutations and seeds slot 0 with the
// area-descending order, which decodes to the first-fit decreasing packing.
func (g *geneticOptimizer) initPopulation() []chromosome {
	n := len(g.items)
	population := make([]chromosome, g.config.PopulationSize)
	for i := range population {
		population[i] = chromosome{order: g.rng.Perm(n)}
	}
	if len(population) > 0 {
		population[0] = g.createGreedyChromosome()
	}
	return population
}

func (g *geneticOptimizer) createGreedyChromosome() chromosome {
	order := make([]int, len(g.items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return g.items[b].Area() - g.items[a].Area()
	})
	return chromosome{order: order}
}

// evaluate scores a chromosome. Fewer bins always wins; among equal bin
// counts a nearly empty least-filled bin scores higher, since it is the
// easiest one for later generations to eliminate.
func (g *geneticOptimizer) evaluate(c chromosome) float64 {
	bins := g.decode(c)
	if len(bins) == 0 {
		return 0
	}
	binArea := float64(g.width * g.height)
	leastFill := 1.0
	for _, b := range bins {
		used := 0
		for _, p := range b.placements {
			used += p.Item.Area()
		}
		leastFill = min(leastFill, float64(used)/binArea)
	}
	return -float64(len(bins)) + 0.5*(1-leastFill)
}

// decode packs the items first-fit in chromosome order.
func (g *geneticOptimizer) decode(c chromosome) []*Bin {
	ordered := make([]model.Item, len(c.order))
	for i, idx := range c.order {
		ordered[i] = g.items[idx]
	}
	return firstFit(ordered, g.width, g.height, nil)
}

// tournamentSelect picks the best individual from a random tournament.
func (g *geneticOptimizer) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return g.copyChromosome(best)
}

// orderCrossover implements Order Crossover (OX1) for permutation chromosomes.
func (g *geneticOptimizer) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.order)
	if n <= 2 {
		return g.copyChromosome(parent1)
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{order: make([]int, n)}
	inSegment := make(map[int]bool)
	for i := point1; i <= point2; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	childIdx := (point2 + 1) % n
	for _, idx := range parent2.order {
		if !inSegment[idx] {
			child.order[childIdx] = idx
			childIdx = (childIdx + 1) % n
		}
	}
	return child
}

// mutate applies swap and inversion mutations.
func (g *geneticOptimizer) mutate(c *chromosome) {
	n := len(c.order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	// Inversion is half as likely as a swap
	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		slices.Reverse(c.order[i : j+1])
	}
}

func (g *geneticOptimizer) copyChromosome(c chromosome) chromosome {
	return chromosome{order: slices.Clone(c.order), fitness: c.fitness}
}

// OptimizeGenetic searches orderings of items for a first-fit packing with
// fewer bins. Items that do not fit an empty bin are ignored. The result
// never uses more bins than first-fit decreasing.
func OptimizeGenetic(items []model.Item, width, height int, config GeneticConfig) []*Bin {
	probe := NewBin(width, height)
	var fitting []model.Item
	for _, it := range items {
		if probe.Fits(it) {
			fitting = append(fitting, it)
		}
	}
	if len(fitting) == 0 {
		return nil
	}
	if config.PopulationSize <= 0 {
		config = DefaultGeneticConfig()
	}
	// The greedy seed must survive every generation
	config.EliteCount = max(config.EliteCount, 1)

	// Scale generations for larger problems
	if len(fitting) > 50 && config.Generations < 200 {
		config.Generations = 200
	}

	ga := newGeneticOptimizer(config, fitting, width, height)
	return ga.optimize()
}
