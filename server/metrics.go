package server

import (
	"strconv"
	"time"

	"gridnav/atomic_float"
	"gridnav/reinforcement"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks solve metrics for the /metrics endpoint.
//
// Metrics:
//   - gridnav_solves_total: completed solves by endpoint and convergence
//   - gridnav_solve_sweeps: sweeps per solve (histogram)
//   - gridnav_solve_duration_seconds: wall time per solve (histogram)
//   - gridnav_rejected_requests_total: requests failing validation, by endpoint
type Metrics struct {
	registry *prometheus.Registry

	solvesTotal      *prometheus.CounterVec
	solveSweeps      prometheus.Histogram
	solveDuration    prometheus.Histogram
	rejectedRequests *prometheus.CounterVec
}

// NewMetrics creates and registers the solve metrics with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		solvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gridnav",
				Name:      "solves_total",
				Help:      "Completed solves by endpoint and convergence",
			},
			[]string{"endpoint", "converged"},
		),
		solveSweeps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "gridnav",
				Name:      "solve_sweeps",
				Help:      "Value iteration sweeps per solve",
				Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
		solveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "gridnav",
				Name:      "solve_duration_seconds",
				Help:      "Wall time per solve in seconds",
				Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		rejectedRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gridnav",
				Name:      "rejected_requests_total",
				Help:      "Requests failing validation, by endpoint",
			},
			[]string{"endpoint"},
		),
	}

	m.registry.MustRegister(
		m.solvesTotal,
		m.solveSweeps,
		m.solveDuration,
		m.rejectedRequests,
	)
	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordSolve(endpoint string, result *reinforcement.Result, elapsed time.Duration) {
	m.solvesTotal.WithLabelValues(endpoint, strconv.FormatBool(result.Converged)).Inc()
	m.solveSweeps.Observe(float64(result.Sweeps))
	m.solveDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) recordRejected(endpoint string) {
	m.rejectedRequests.WithLabelValues(endpoint).Inc()
}

// Stats are running totals across all solves served, readable at /stats.
type Stats struct {
	solves       *atomic_float.AtomicFloat64
	sweeps       *atomic_float.AtomicFloat64
	solveSeconds *atomic_float.AtomicFloat64
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Solves           int     `json:"solves"`
	Sweeps           int     `json:"sweeps"`
	MeanSolveSeconds float64 `json:"mean_solve_seconds"`
}

func NewStats() *Stats {
	return &Stats{
		solves:       atomic_float.NewAtomicFloat64(0),
		sweeps:       atomic_float.NewAtomicFloat64(0),
		solveSeconds: atomic_float.NewAtomicFloat64(0),
	}
}

func (st *Stats) record(sweeps int, elapsed time.Duration) {
	st.solves.Add(1)
	st.sweeps.Add(float64(sweeps))
	st.solveSeconds.Add(elapsed.Seconds())
}

// Read returns the current totals. The fields are read independently, so a read
// concurrent with a solve may see that solve in some totals but not others.
func (st *Stats) Read() StatsResponse {
	resp := StatsResponse{
		Solves: int(st.solves.AtomicRead()),
		Sweeps: int(st.sweeps.AtomicRead()),
	}
	if resp.Solves > 0 {
		resp.MeanSolveSeconds = st.solveSeconds.AtomicRead() / float64(resp.Solves)
	}
	return resp
}
