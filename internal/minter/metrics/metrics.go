package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OutcomeAdmitted labels successful admissions; rejections are labelled by error code.
const OutcomeAdmitted = "admitted"

// Metrics provides observability for the admission engine.
type Metrics struct {
	Admissions        *prometheus.CounterVec
	AdmissionDuration *prometheus.HistogramVec
	PurchaseTo        prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Admissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_admissions_total",
			Help: "Purchase admission decisions by outcome (admitted or rejection code)",
		}, []string{"outcome"}),
		AdmissionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mintgate_admission_duration_seconds",
			Help:    "Time from lock acquisition request to decision",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"outcome"}),
		PurchaseTo: f.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_admissions_redirected_total",
			Help: "Admitted purchases minted to a recipient other than the caller",
		}),
	}
}

func (m *Metrics) ObserveAdmission(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.Admissions.WithLabelValues(outcome).Inc()
	m.AdmissionDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

func (m *Metrics) IncrementRedirected() {
	if m == nil {
		return
	}
	m.PurchaseTo.Inc()
}
