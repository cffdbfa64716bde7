// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_queries_total",
			Help: "Total number of queries answered, by answer tier",
		},
		[]string{"tier"},
	)

	AnswerConfidence = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_answers_total",
			Help: "Total number of answers returned, by confidence grade",
		},
		[]string{"confidence"},
	)

	ValidationIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_validation_issues_total",
			Help: "Total number of validator issues raised, by check",
		},
		[]string{"check"},
	)

	RetrievalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "advisor_retrieval_duration_seconds",
			Help: "Duration of semantic retrieval calls in seconds",
		},
		[]string{"stage"},
	)

	RetrievalFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_retrieval_failures_total",
			Help: "Total number of retrieval failures, by error code",
		},
		[]string{"error_code"},
	)
)
