// Package metrics exposes Prometheus instruments for the invoice
// pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DeliveryOutcomeSent    = "sent"
	DeliveryOutcomeSkipped = "skipped"
	DeliveryOutcomeFailed  = "failed"
)

const (
	DropReasonDecode      = "decode"
	DropReasonPollTimeout = "poll_timeout"
)

// PipelineMetrics captures delivery pipeline health signals.
type PipelineMetrics struct {
	eventsReceived prometheus.Counter
	eventsDropped  *prometheus.CounterVec
	documentPolls  prometheus.Counter
	deliveries     *prometheus.CounterVec
	reconnects     prometheus.Counter
}

var (
	pipelineMetricsOnce sync.Once
	pipelineMetrics     *PipelineMetrics
)

// Pipeline returns the singleton pipeline metrics registry.
func Pipeline() *PipelineMetrics {
	pipelineMetricsOnce.Do(func() {
		pipelineMetrics = newPipelineMetrics(prometheus.DefaultRegisterer)
	})
	return pipelineMetrics
}

// ResetPipelineMetricsForTest resets the pipeline metrics singleton for tests.
func ResetPipelineMetricsForTest() {
	pipelineMetricsOnce = sync.Once{}
	pipelineMetrics = nil
}

func newPipelineMetrics(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	eventsReceived := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoice_pipeline_events_received_total",
		Help: "Invoice change notifications received from the database.",
	})
	eventsDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_pipeline_events_dropped_total",
		Help: "Invoice change notifications dropped by reason.",
	}, []string{"reason"})
	documentPolls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoice_pipeline_document_polls_total",
		Help: "Record store polls while waiting for a document reference.",
	})
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_pipeline_deliveries_total",
		Help: "Invoice delivery attempts by outcome.",
	}, []string{"outcome"})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoice_pipeline_listener_reconnects_total",
		Help: "Notification listener connection resets.",
	})

	registerer.MustRegister(
		eventsReceived,
		eventsDropped,
		documentPolls,
		deliveries,
		reconnects,
	)

	return &PipelineMetrics{
		eventsReceived: eventsReceived,
		eventsDropped:  eventsDropped,
		documentPolls:  documentPolls,
		deliveries:     deliveries,
		reconnects:     reconnects,
	}
}

// IncEventReceived increments the received notification counter.
func (m *PipelineMetrics) IncEventReceived() {
	if m == nil || m.eventsReceived == nil {
		return
	}
	m.eventsReceived.Inc()
}

// IncEventDropped increments the dropped notification counter by reason.
func (m *PipelineMetrics) IncEventDropped(reason string) {
	if m == nil || m.eventsDropped == nil {
		return
	}
	m.eventsDropped.WithLabelValues(reason).Inc()
}

// IncDocumentPoll increments the record store poll counter.
func (m *PipelineMetrics) IncDocumentPoll() {
	if m == nil || m.documentPolls == nil {
		return
	}
	m.documentPolls.Inc()
}

// IncDelivery increments the delivery counter for an outcome.
func (m *PipelineMetrics) IncDelivery(outcome string) {
	if m == nil || m.deliveries == nil {
		return
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

// IncListenerReconnect increments the listener reconnect counter.
func (m *PipelineMetrics) IncListenerReconnect() {
	if m == nil || m.reconnects == nil {
		return
	}
	m.reconnects.Inc()
}
