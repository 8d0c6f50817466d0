package main

import (
	"net/http"

	"github.com/myrjola/chartnote/internal/ai"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/narrative"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	generationNote        = "note"
	generationStyleTest   = "style_test"
	generationShiftReport = "shift_report"
)

// metrics uses its own registry so that several servers can run in one process.
type metrics struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	exports     *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartnote_generations_total",
				Help: "Model-backed generations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartnote_exports_total",
				Help: "Produced documents by format",
			},
			[]string{"format"},
		),
	}
	m.registry.MustRegister(m.generations, m.exports)
	return m
}

func generationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, narrative.ErrEmptyForm),
		errors.Is(err, narrative.ErrMissingStyleInput),
		errors.Is(err, narrative.ErrUnknownShift):
		return "rejected"
	case errors.Is(err, ai.ErrMissingCredential):
		return "missing_credential"
	default:
		return "failure"
	}
}

func (m *metrics) observeGeneration(kind string, err error) {
	m.generations.WithLabelValues(kind, generationOutcome(err)).Inc()
}

func (m *metrics) observeExport(format string) {
	m.exports.WithLabelValues(format).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
