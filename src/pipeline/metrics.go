package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

var queryCounters = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dashboard",
	Name:      "queries_total",
	Help:      "Inquiry submissions by screen and outcome",
}, []string{"screen", "outcome"})

var queryDurations = prometheus.NewSummaryVec(prometheus.SummaryOpts{
	Namespace:  "dashboard",
	Name:       "query_duration_seconds",
	Help:       "Backend round trip of inquiry queries",
	Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
}, []string{"screen"})

func init() {
	prometheus.MustRegister(queryCounters, queryDurations)
}
