// Package metrics exposes sweep metrics in the Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Candidate outcomes.
const (
	OutcomeDuplicate  = "duplicate"
	OutcomeOverBudget = "over_budget"
	OutcomeRejected   = "policy_rejected"
	OutcomeUnclear    = "unclear"
	OutcomeExpired    = "expired"
	OutcomeFailed     = "failed"
	OutcomeInserted   = "inserted"
	OutcomeMerged     = "merged"
	OutcomeUnchanged  = "unchanged"
)

// Metrics holds the harvester collectors on a private registry, so several
// instances can coexist in one process (tests).
type Metrics struct {
	reg *prometheus.Registry

	Sweeps        *prometheus.CounterVec
	Candidates    *prometheus.CounterVec
	JobsAdded     prometheus.Counter
	JobsMerged    prometheus.Counter
	Fallbacks     prometheus.Counter
	SweepDuration prometheus.Histogram
}

// New registers the collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		Sweeps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_sweeps_total",
			Help: "Sweeps run, by result (success, failure)",
		}, []string{"result"}),
		Candidates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_candidates_total",
			Help: "Search results by pipeline outcome",
		}, []string{"outcome"}),
		JobsAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "harvester_jobs_added_total",
			Help: "Job records inserted",
		}),
		JobsMerged: f.NewCounter(prometheus.CounterOpts{
			Name: "harvester_jobs_merged_total",
			Help: "Job records updated by a merge",
		}),
		Fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "harvester_extraction_fallbacks_total",
			Help: "Candidates parsed by the pattern fallback instead of the extraction service",
		}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvester_sweep_duration_seconds",
			Help:    "Wall time of one sweep",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		}),
	}
}

// ObserveSweep records a finished sweep.
func (m *Metrics) ObserveSweep(success bool, added, merged int, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.Sweeps.WithLabelValues(result).Inc()
	m.JobsAdded.Add(float64(added))
	m.JobsMerged.Add(float64(merged))
	m.SweepDuration.Observe(d.Seconds())
}

// Candidate counts one candidate leaving the pipeline with outcome.
func (m *Metrics) Candidate(outcome string) {
	if m == nil {
		return
	}
	m.Candidates.WithLabelValues(outcome).Inc()
}

// Fallback counts one fallback extraction.
func (m *Metrics) Fallback() {
	if m == nil {
		return
	}
	m.Fallbacks.Inc()
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry for /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
