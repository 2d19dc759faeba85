package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers registry mutations and the size of the approved set.
type Metrics struct {
	Mutations     *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	ApprovedCount prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_registry_mutations_total",
			Help: "Successful registry mutations by operation",
		}, []string{"operation"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_registry_rejections_total",
			Help: "Rejected registry mutations by operation and error code",
		}, []string{"operation", "code"}),
		ApprovedCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "mintgate_registry_approved_minters",
			Help: "Number of minters in the approved set as seen by this process",
		}),
	}
}

func (m *Metrics) IncrementMutation(operation string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementRejected(operation, code string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) SetApprovedCount(n int) {
	if m == nil {
		return
	}
	m.ApprovedCount.Set(float64(n))
}
