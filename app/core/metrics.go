package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quka-ai/quka-iot/pkg/metrics"
)

type Metrics struct {
	apiResponseTime *prometheus.HistogramVec
	apiErrorCounter *prometheus.CounterVec
	entryIngested   *prometheus.CounterVec
	fieldMutation   *prometheus.CounterVec
	csvExport       *prometheus.CounterVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	return &Metrics{
		apiResponseTime: metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter: metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		entryIngested:   metrics.NewCounterVec("entry_ingested", []string{"result"}),
		fieldMutation:   metrics.NewCounterVec("field_mutation", []string{"op"}),
		csvExport:       metrics.NewCounterVec("csv_export", []string{"target"}),
	}
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

// EntryIngestedInc result: accepted | rejected
func (m *Metrics) EntryIngestedInc(result string) {
	m.entryIngested.WithLabelValues(result).Inc()
}

// FieldMutationInc op: add | rename | remove
func (m *Metrics) FieldMutationInc(op string) {
	m.fieldMutation.WithLabelValues(op).Inc()
}

// CSVExportInc target: download | archive
func (m *Metrics) CSVExportInc(target string) {
	m.csvExport.WithLabelValues(target).Inc()
}
