package model

// Strategy names the local-search step run after the initial assembly.
type Strategy string

const (
	StrategyNone             Strategy = "none"
	StrategyFirstImprovement Strategy = "first-improvement"
	StrategyBestImprovement  Strategy = "best-improvement"
	StrategyGenetic          Strategy = "genetic"
)

// ParseStrategy maps user input, including the short prompt answers
// "fi" and "bi", to a Strategy. The boolean is false for unknown input.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "", "none", "n", "no":
		return StrategyNone, true
	case "fi", "first", "first-improvement", "firstimprovement":
		return StrategyFirstImprovement, true
	case "bi", "best", "best-improvement", "bestimprovement":
		return StrategyBestImprovement, true
	case "ga", "genetic":
		return StrategyGenetic, true
	default:
		return "", false
	}
}

// Strategies returns the improvement strategies in display order.
func Strategies() []Strategy {
	return []Strategy{StrategyFirstImprovement, StrategyBestImprovement, StrategyGenetic}
}

// AppConfig holds application-wide preferences and default settings.
// Environment keys are derived from the field names, e.g. MaxPasses reads
// BINPACKER_MAX_PASSES and Genetic.Seed reads BINPACKER_GA_SEED.
type AppConfig struct {
	// Local search defaults
	Strategy  Strategy `json:"strategy" split_words:"true"`
	Converge  bool     `json:"converge" split_words:"true"`   // Repeat the strategy until no bin is removed
	MaxPasses int      `json:"max_passes" split_words:"true"` // Upper bound on passes when converging, 0 = engine default
	Workers   int      `json:"workers" split_words:"true"`    // Best-improvement evaluators, <= 1 runs sequentially

	// Genetic search parameters
	Genetic GeneticSettings `json:"genetic" envconfig:"GA"`

	// Output
	OutputDir      string `json:"output_dir" split_words:"true"`
	WritePDF       bool   `json:"write_pdf" split_words:"true"`
	WriteLabels    bool   `json:"write_labels" split_words:"true"`
	WriteXLSX      bool   `json:"write_xlsx" split_words:"true"`
	WriteDXF       bool   `json:"write_dxf" split_words:"true"`
	WritePNG       bool   `json:"write_png" split_words:"true"`
	VisualizeLimit int    `json:"visualize_limit" split_words:"true"` // Skip drawings above this many bins
	MetricsFile    string `json:"metrics_file" split_words:"true"`    // Prometheus textfile, empty = disabled

	// Strict fails the run when any item could not be placed.
	Strict bool `json:"strict" split_words:"true"`
}

// GeneticSettings mirrors engine.GeneticConfig for persistence.
type GeneticSettings struct {
	PopulationSize int     `json:"population_size" split_words:"true"`
	Generations    int     `json:"generations" split_words:"true"`
	MutationRate   float64 `json:"mutation_rate" split_words:"true"`
	TournamentSize int     `json:"tournament_size" split_words:"true"`
	EliteCount     int     `json:"elite_count" split_words:"true"`
	Seed           int64   `json:"seed" split_words:"true"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Strategy:  StrategyNone,
		Converge:  false,
		MaxPasses: 0,
		Workers:   1,
		Genetic: GeneticSettings{
			PopulationSize: 50,
			Generations:    100,
			MutationRate:   0.15,
			TournamentSize: 3,
			EliteCount:     2,
			Seed:           42,
		},
		OutputDir:      ".",
		VisualizeLimit: 10,
	}
}
