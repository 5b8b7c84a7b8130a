// Copyright 2024 The Lattice Authors
// This file is part of Lattice.
//
// Lattice is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lattice is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Lattice. If not, see <http://www.gnu.org/licenses/>.

// Package telemetry implements engine.Metrics against
// prometheus/client_golang, and serves them over HTTP for `latticectl
// serve-metrics`.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements engine.Metrics. It is constructed with its own
// registry so multiple engines in the same process (schema isolation,
// spec.md I7) can each expose independent metric sets if desired.
type Recorder struct {
	registry *prometheus.Registry

	pullsTotal        *prometheus.CounterVec
	pullDuration      *prometheus.HistogramVec
	computorDuration  *prometheus.HistogramVec
	setsTotal         *prometheus.CounterVec
	invalidatesTotal  *prometheus.CounterVec
	cascadeNodesTotal prometheus.Counter
}

// New registers and returns a Recorder bound to a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		pullsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "pulls_total",
			Help:      "Completed pull operations by schema head and outcome.",
		}, []string{"head", "outcome"}),
		pullDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lattice",
			Name:      "pull_duration_seconds",
			Help:      "Wall time of top-level pull calls by schema head.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"head"}),
		computorDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lattice",
			Name:      "computor_duration_seconds",
			Help:      "Wall time spent inside user computors by schema head.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"head"}),
		setsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "sets_total",
			Help:      "Completed set operations by schema head and whether the value was unchanged.",
		}, []string{"head", "unchanged"}),
		invalidatesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "invalidates_total",
			Help:      "Completed invalidate operations by schema head.",
		}, []string{"head"}),
		cascadeNodesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "cascade_nodes_total",
			Help:      "Dependent nodes marked potentially-outdated across every cascade.",
		}),
	}
	return r
}

func (r *Recorder) ObservePull(head string, ok bool, d time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	r.pullsTotal.WithLabelValues(head, outcome).Inc()
	r.pullDuration.WithLabelValues(head).Observe(d.Seconds())
}

func (r *Recorder) ObserveComputor(head string, d time.Duration) {
	r.computorDuration.WithLabelValues(head).Observe(d.Seconds())
}

func (r *Recorder) ObserveSet(head string, unchanged bool, d time.Duration) {
	r.setsTotal.WithLabelValues(head, boolLabel(unchanged)).Inc()
}

func (r *Recorder) ObserveInvalidate(head string, d time.Duration) {
	r.invalidatesTotal.WithLabelValues(head).Inc()
}

func (r *Recorder) ObserveCascade(nodes int) {
	r.cascadeNodesTotal.Add(float64(nodes))
}

// PullsTotalFor returns the pulls_total counter for head/outcome, for tests
// asserting on recorded metrics without scraping /metrics.
func (r *Recorder) PullsTotalFor(head, outcome string) prometheus.Counter {
	return r.pullsTotal.WithLabelValues(head, outcome)
}

// SetsTotalFor returns the sets_total counter for head/unchanged.
func (r *Recorder) SetsTotalFor(head string, unchanged bool) prometheus.Counter {
	return r.setsTotal.WithLabelValues(head, boolLabel(unchanged))
}

// InvalidatesTotalFor returns the invalidates_total counter for head.
func (r *Recorder) InvalidatesTotalFor(head string) prometheus.Counter {
	return r.invalidatesTotal.WithLabelValues(head)
}

// CascadeNodesTotal returns the process-wide cascade_nodes_total counter.
func (r *Recorder) CascadeNodesTotal() prometheus.Counter {
	return r.cascadeNodesTotal
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Serve runs an HTTP server exposing the Recorder's registry at /metrics
// until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		return err
	}
}
