// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_documents_extracted_total",
			Help: "Total number of documents successfully extracted",
		},
		[]string{"document_type"},
	)

	ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_extraction_failures_total",
			Help: "Total number of failed document extractions",
		},
		[]string{"document_type", "error_code"},
	)

	ReasoningRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_reasoning_requests_total",
			Help: "Total number of risk reasoning calls by outcome",
		},
		[]string{"status"},
	)

	ApplicationsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_applications_processed_total",
			Help: "Total number of applications processed by final recommendation",
		},
		[]string{"recommendation"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "loan_pipeline_stage_duration_seconds",
			Help: "Duration of pipeline stages in seconds",
		},
		[]string{"stage"},
	)
)
