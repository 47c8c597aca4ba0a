package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts API requests by route and status code
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anova_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})

	// analysisDuration tracks the time to analyse one uploaded dataset
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anova_analysis_duration_seconds",
		Help:    "Analysis duration in seconds by input type",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	}, []string{"input"})

	// datasetObservations tracks the size of analysed datasets
	datasetObservations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "anova_dataset_observations",
		Help:    "Number of observations per analysed dataset",
		Buckets: []float64{4, 8, 20, 50, 100, 500, 1000, 10000},
	})

	// measureOutcomes counts per-measure results
	measureOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anova_measure_outcomes_total",
		Help: "Analysed measures by measure and result",
	}, []string{"measure", "result"})
)
