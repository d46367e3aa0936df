package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the Prometheus collectors for the template workflow.
//
// All metrics are prefixed with "regexflow_":
//   - regexflow_template_transitions_total{from,to}
//   - regexflow_duplicate_checks_total{result}
//   - regexflow_pattern_tests_total{outcome}
//   - regexflow_pattern_test_duration_seconds{outcome}
//   - regexflow_sms_parsed_total{status}
type Metrics struct {
	TemplateTransitions *prometheus.CounterVec
	DuplicateChecks     *prometheus.CounterVec
	PatternTests        *prometheus.CounterVec
	PatternTestDuration *prometheus.HistogramVec
	SmsParsed           *prometheus.CounterVec
}

// New registers the collectors once per process and returns the shared set.
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			TemplateTransitions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "regexflow_template_transitions_total",
					Help: "Total number of template lifecycle transitions",
				},
				[]string{"from", "to"},
			),
			DuplicateChecks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "regexflow_duplicate_checks_total",
					Help: "Total number of live-duplicate pattern lookups",
				},
				[]string{"result"}, // "duplicate" or "unique"
			),
			PatternTests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "regexflow_pattern_tests_total",
					Help: "Total number of pattern tests run against sample text",
				},
				[]string{"outcome"}, // "matched", "not_matched", "error"
			),
			PatternTestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "regexflow_pattern_test_duration_seconds",
					Help:    "Duration of pattern tests in seconds",
					Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
				},
				[]string{"outcome"},
			),
			SmsParsed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "regexflow_sms_parsed_total",
					Help: "Total number of SMS messages run through the parser",
				},
				[]string{"status"},
			),
		}
	})
	return globalMetrics
}
