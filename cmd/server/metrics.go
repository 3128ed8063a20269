package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skufu/healthapi/internal/catalog"
)

const (
	outcomeOK             = "ok"
	outcomeEmptyQuery     = "empty_query"
	outcomeNoMatch        = "no_match"
	outcomeInvalidPayload = "invalid_payload"
)

type metrics struct {
	resolutions *prometheus.CounterVec
	catalogRows *prometheus.GaugeVec
}

// newMetrics registers on reg rather than the default registry so that each
// router owns its collectors.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthapi",
			Name:      "resolutions_total",
			Help:      "Symptom resolution requests by outcome.",
		}, []string{"outcome"}),
		catalogRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "healthapi",
			Name:      "catalog_rows",
			Help:      "Rows loaded per reference table.",
		}, []string{"table"}),
	}
	reg.MustRegister(
		m.resolutions,
		m.catalogRows,
		collectors.NewGoCollector(),
	)
	for _, o := range []string{outcomeOK, outcomeEmptyQuery, outcomeNoMatch, outcomeInvalidPayload} {
		m.resolutions.WithLabelValues(o)
	}
	return m
}

func (m *metrics) observeCatalog(cat *catalog.Catalog) {
	m.catalogRows.WithLabelValues("diseases").Set(float64(len(cat.Diseases)))
	m.catalogRows.WithLabelValues("symptoms").Set(float64(len(cat.Symptoms)))
	m.catalogRows.WithLabelValues("symptom_disease").Set(float64(len(cat.Links)))
	m.catalogRows.WithLabelValues("treatments").Set(float64(len(cat.Treatments)))
}

func (m *metrics) resolved(outcome string) {
	m.resolutions.WithLabelValues(outcome).Inc()
}
