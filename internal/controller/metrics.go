package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	fetchKindStatistics = "statistics"
	fetchKindDatabases  = "databases"

	outcomeOK       = "ok"
	outcomeEmpty    = "empty"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
	outcomeStale    = "stale"
)

type Metrics struct {
	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		fetchesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "stats_viewer_fetches_total",
				Help: "Total number of document fetches by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		fetchDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stats_viewer_fetch_duration_seconds",
				Help:    "Duration of document fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}

	for _, kind := range []string{fetchKindStatistics, fetchKindDatabases} {
		for _, outcome := range []string{outcomeOK, outcomeEmpty, outcomeNotFound, outcomeError} {
			m.fetchesTotal.WithLabelValues(kind, outcome).Add(0)
		}
	}
	m.fetchesTotal.WithLabelValues(fetchKindStatistics, outcomeStale).Add(0)
	return m
}
