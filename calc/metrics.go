package calc

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	cacheLookups *prometheus.CounterVec
	cellsEval    prometheus.Counter
	cellsFailed  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := metrics{
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xlcalc_formula_cache_lookups_total",
				Help: "Total number of lookups in the parsed formula cache.",
			},
			[]string{"result"},
		),
		cellsEval: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "xlcalc_cells_evaluated_total",
				Help: "Total number of formula cells computed.",
			},
		),
		cellsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xlcalc_cells_failed_total",
				Help: "Total number of formula cells that could not be computed.",
			},
			[]string{"reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.cacheLookups, m.cellsEval, m.cellsFailed)
	}
	return &m
}

func (m *metrics) hit() {
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *metrics) miss() {
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *metrics) failed(marker string) {
	m.cellsFailed.WithLabelValues(marker).Inc()
}
