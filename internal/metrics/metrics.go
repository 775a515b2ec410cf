// Package metrics records Prometheus metrics for aggregation runs.
package metrics

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeOK labels a successful aggregation.
const OutcomeOK = "ok"

// Recorder owns a registry and the aggregation metrics registered on it.
type Recorder struct {
	registry *prometheus.Registry

	// aggregationsTotal counts finished aggregations by mode and outcome
	aggregationsTotal *prometheus.CounterVec
	// aggregationDuration tracks aggregation wall time in seconds
	aggregationDuration *prometheus.HistogramVec
	// columnsEmitted counts table columns produced by successful aggregations
	columnsEmitted prometheus.Counter
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		aggregationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resagg_aggregations_total",
				Help: "Total number of aggregations by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		aggregationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resagg_aggregation_duration_seconds",
				Help:    "Aggregation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 10},
			},
			[]string{"mode"},
		),
		columnsEmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "resagg_columns_emitted_total",
				Help: "Total number of table columns produced",
			},
		),
	}
}

// RecordAggregation records one finished aggregation.
func (r *Recorder) RecordAggregation(mode string, duration time.Duration, columns int, err error) {
	outcome := Outcome(err)
	r.aggregationsTotal.WithLabelValues(mode, outcome).Inc()
	r.aggregationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if err == nil {
		r.columnsEmitted.Add(float64(columns))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Outcome maps an error to a low-cardinality label: "ok", the lower-cased
// error code when err carries one, or "error".
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return strings.ToLower(coded.Code())
	}
	return "error"
}
