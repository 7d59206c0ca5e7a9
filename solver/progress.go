package solver

import (
	"sync/atomic"
	"time"

	"github.com/op/go-logging"
	"github.com/prometheus/client_golang/prometheus"
)

var log = logging.MustGetLogger("heisenbase/solver")

// Registry is the package-local Prometheus registry the solver's metrics
// live on. A caller wanting to scrape them registers this (or wraps it
// behind its own HTTP handler); the core solver never depends on anyone
// doing so.
var Registry = prometheus.NewRegistry()

var (
	iterationGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "heisenbase_solver_iteration",
		Help: "Current sweep number of the table builder, labeled by material key.",
	}, []string{"material"})

	positionsChangedGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "heisenbase_solver_positions_changed",
		Help: "Number of positions whose score changed in the most recent sweep.",
	}, []string{"material"})
)

func init() {
	Registry.MustRegister(iterationGauge, positionsChangedGauge)
}

// Progress is the solver's counters for one in-flight build: an atomic
// iteration count and an atomic count of positions changed in the
// current sweep. Publication is relaxed -- no synchronization beyond the
// atomics themselves, matching the "suspension points: none" concurrency
// model.
type Progress struct {
	iteration        atomic.Int64
	positionsChanged atomic.Int64
}

// Update records the latest completed sweep's numbers. Safe to call
// without external synchronization -- both fields are plain atomics.
func (p *Progress) Update(iteration, positionsChanged int) {
	p.iteration.Store(int64(iteration))
	p.positionsChanged.Store(int64(positionsChanged))
}

// Iteration returns the most recently recorded sweep number.
func (p *Progress) Iteration() int {
	return int(p.iteration.Load())
}

// PositionsChanged returns the most recently recorded sweep's changed
// position count.
func (p *Progress) PositionsChanged() int {
	return int(p.positionsChanged.Load())
}

// Reporter decouples the solver from any specific observability sink.
// The solver calls SweepDone once per completed sweep; the default
// implementation logs and updates Prometheus gauges, but the solver's
// fixed point does not depend on a Reporter being present at all.
type Reporter interface {
	SweepDone(material string, iteration int, positionsChanged int, elapsed time.Duration)
}

// LoggingReporter is the default Reporter: logs one line per sweep via
// op/go-logging and mirrors the same numbers into the package's
// Prometheus gauges, labeled by material key so sequential builds (as
// generate_many drives them) stay distinguishable in a shared registry.
type LoggingReporter struct{}

// SweepDone implements Reporter.
func (LoggingReporter) SweepDone(material string, iteration int, positionsChanged int, elapsed time.Duration) {
	log.Infof("%s: sweep %d changed %d positions in %s", material, iteration, positionsChanged, elapsed)
	iterationGauge.WithLabelValues(material).Set(float64(iteration))
	positionsChangedGauge.WithLabelValues(material).Set(float64(positionsChanged))
}

// NoopReporter discards every report; useful in tests that don't want to
// touch the shared Prometheus registry or log output.
type NoopReporter struct{}

// SweepDone implements Reporter.
func (NoopReporter) SweepDone(string, int, int, time.Duration) {}
