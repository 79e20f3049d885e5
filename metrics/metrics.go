// Package metrics records reconcile session outcomes in Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements reconcile.Metrics.
type Recorder struct {
	events          *prometheus.CounterVec
	persists        *prometheus.HistogramVec
	validations     prometheus.Histogram
	validationErrs  prometheus.Histogram
	invalidHandlers *prometheus.CounterVec
}

// New registers the reconcile collectors on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reconcile_events_total",
			Help: "Change events dispatched to handler callbacks",
		}, []string{"handler", "kind"}),
		persists: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reconcile_persist_duration_seconds",
			Help:    "Time spent in Persist, dispatch included",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}, []string{"outcome"}),
		validations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reconcile_validation_duration_seconds",
			Help:    "Time spent in the schema validator",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		}),
		validationErrs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reconcile_validation_errors",
			Help:    "Validation errors per validation run",
			Buckets: []float64{0, 1, 5, 10, 50, 100},
		}),
		invalidHandlers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reconcile_invalid_handlers_total",
			Help: "Handlers disabled because their matches had the wrong shape",
		}, []string{"handler"}),
	}
}

func (r *Recorder) ObserveEvent(handler, kind string) {
	r.events.WithLabelValues(handler, kind).Inc()
}

func (r *Recorder) ObservePersist(outcome string, duration time.Duration) {
	r.persists.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (r *Recorder) ObserveValidation(errors int, duration time.Duration) {
	r.validations.Observe(duration.Seconds())
	r.validationErrs.Observe(float64(errors))
}

func (r *Recorder) ObserveInvalidHandler(handler string) {
	r.invalidHandlers.WithLabelValues(handler).Inc()
}
