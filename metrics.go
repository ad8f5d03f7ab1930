// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import "github.com/prometheus/client_golang/prometheus"

// MetricsRecorder exports solve statistics as Prometheus metrics labeled by
// method and outcome.
type MetricsRecorder struct {
	solves     *prometheus.CounterVec
	iterations *prometheus.CounterVec
	matVec     *prometheus.CounterVec
	pSolve     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	residual   *prometheus.GaugeVec
}

// NewMetricsRecorder creates the metrics under the given namespace and
// registers them with reg. If any of them cannot be registered, none are.
func NewMetricsRecorder(namespace string, reg prometheus.Registerer) (*MetricsRecorder, error) {
	m := &MetricsRecorder{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "linear_solves_total",
			Help:      "Number of finished linear solves.",
		}, []string{"method", "outcome"}),
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Number of iterations done by linear solvers.",
		}, []string{"method"}),
		matVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matvec_total",
			Help:      "Number of matrix-vector products.",
		}, []string{"method"}),
		pSolve: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "psolve_total",
			Help:      "Number of preconditioner solves.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "linear_solve_duration_seconds",
			Help:      "Duration of linear solves.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
		}, []string{"method"}),
		residual: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_residual_norm",
			Help:      "Residual norm at the end of the last solve.",
		}, []string{"method"}),
	}
	collectors := []prometheus.Collector{m.solves, m.iterations, m.matVec, m.pSolve, m.duration, m.residual}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			// Leave reg as it was.
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return nil, err
		}
	}
	return m, nil
}

// Start implements the Recorder interface.
func (m *MetricsRecorder) Start(method string, dim int) {}

// Record implements the Recorder interface.
func (m *MetricsRecorder) Record(method string, stats Stats) {
	m.iterations.WithLabelValues(method).Inc()
}

// Finish implements the Recorder interface.
func (m *MetricsRecorder) Finish(method string, stats Stats, err error) {
	outcome := "converged"
	if err != nil {
		outcome = "failed"
	}
	m.solves.WithLabelValues(method, outcome).Inc()
	m.matVec.WithLabelValues(method).Add(float64(stats.MatVec))
	m.pSolve.WithLabelValues(method).Add(float64(stats.PSolve))
	m.duration.WithLabelValues(method).Observe(stats.Runtime.Seconds())
	m.residual.WithLabelValues(method).Set(stats.ResidualNorm)
}
