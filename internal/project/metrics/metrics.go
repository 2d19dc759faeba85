package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for project policy mutations.
type Metrics struct {
	PriceUpdates   prometheus.Counter
	PolicyUpdates  *prometheus.CounterVec
	PolicyRejected *prometheus.CounterVec
}

// New registers the project metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PriceUpdates: f.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_project_price_updates_total",
			Help: "Total number of successful price-per-unit updates",
		}),
		PolicyUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_project_policy_updates_total",
			Help: "Successful project policy mutations by field",
		}, []string{"field"}),
		PolicyRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_project_policy_rejections_total",
			Help: "Rejected project policy mutations by error code",
		}, []string{"code"}),
	}
}

func (m *Metrics) IncrementPriceUpdates() {
	if m == nil {
		return
	}
	m.PriceUpdates.Inc()
	m.PolicyUpdates.WithLabelValues("price_per_unit").Inc()
}

func (m *Metrics) IncrementPolicyUpdate(field string) {
	if m == nil {
		return
	}
	m.PolicyUpdates.WithLabelValues(field).Inc()
}

func (m *Metrics) IncrementRejected(code string) {
	if m == nil {
		return
	}
	m.PolicyRejected.WithLabelValues(code).Inc()
}
