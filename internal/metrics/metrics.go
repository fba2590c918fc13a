// Package metrics records packing statistics in a Prometheus registry.
// The CLI runs once per invocation, so the registry is written to a
// node-exporter textfile rather than served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/piwi3910/BinPacker/internal/engine"
	"github.com/piwi3910/BinPacker/internal/model"
)

const (
	// Namespace prefixes every metric name.
	Namespace = "binpacker"

	PhaseLabel    = "phase"
	StrategyLabel = "strategy"
)

// Recorder implements engine.Observer on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	itemsPlaced   prometheus.Counter
	itemsUnplaced prometheus.Counter
	binsOpened    prometheus.Counter
	movesTried    *prometheus.CounterVec
	movesAccepted *prometheus.CounterVec
	binsRemoved   *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		itemsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "items_placed_total",
			Help:      "Items placed by the initial assembly",
		}),
		itemsUnplaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "items_unplaceable_total",
			Help:      "Items that do not fit an empty bin",
		}),
		binsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bins_opened_total",
			Help:      "Bins opened by the initial assembly",
		}),
		movesTried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "local_search_moves_tried_total",
			Help:      "Relocations attempted by local search",
		}, []string{StrategyLabel}),
		movesAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "local_search_moves_accepted_total",
			Help:      "Relocations committed by local search",
		}, []string{StrategyLabel}),
		binsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "local_search_bins_removed_total",
			Help:      "Bins emptied by local search",
		}, []string{StrategyLabel}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of packing phases in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{PhaseLabel}),
	}
	r.registry.MustRegister(
		r.itemsPlaced,
		r.itemsUnplaced,
		r.binsOpened,
		r.movesTried,
		r.movesAccepted,
		r.binsRemoved,
		r.phaseDuration,
	)
	return r
}

// Registry exposes the underlying registry, e.g. for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	r.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (r *Recorder) ObserveAssembly(placed, unplaced, bins int) {
	r.itemsPlaced.Add(float64(placed))
	r.itemsUnplaced.Add(float64(unplaced))
	r.binsOpened.Add(float64(bins))
}

func (r *Recorder) ObserveSearch(strategy model.Strategy, stats engine.SearchStats) {
	s := string(strategy)
	r.movesTried.WithLabelValues(s).Add(float64(stats.MovesTried))
	r.movesAccepted.WithLabelValues(s).Add(float64(stats.MovesAccepted))
	r.binsRemoved.WithLabelValues(s).Add(float64(stats.BinsRemoved))
}

// WriteTextfile writes the registry in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
