package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ledger effects.
type Metrics struct {
	ProjectsCreated prometheus.Counter
	TokensMinted    prometheus.Counter
	CapacityHits    prometheus.Counter
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProjectsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_ledger_projects_created_total",
			Help: "Total number of projects added to the ledger",
		}),
		TokensMinted: f.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_ledger_tokens_minted_total",
			Help: "Total number of tokens minted",
		}),
		CapacityHits: f.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_ledger_capacity_exceeded_total",
			Help: "Invocation increments refused because the project was at its cap",
		}),
	}
}

func (m *Metrics) incProjectsCreated() {
	if m != nil {
		m.ProjectsCreated.Inc()
	}
}

func (m *Metrics) incTokensMinted() {
	if m != nil {
		m.TokensMinted.Inc()
	}
}

func (m *Metrics) incCapacityHits() {
	if m != nil {
		m.CapacityHits.Inc()
	}
}
