package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPipelineMetrics_Counters(t *testing.T) {
	m := newPipelineMetrics(prometheus.NewRegistry())

	m.IncEventReceived()
	m.IncEventReceived()
	m.IncEventDropped(DropReasonPollTimeout)
	m.IncDocumentPoll()
	m.IncDelivery(DeliveryOutcomeSent)
	m.IncDelivery(DeliveryOutcomeSkipped)
	m.IncDelivery(DeliveryOutcomeSent)
	m.IncListenerReconnect()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventsReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsDropped.WithLabelValues(DropReasonPollTimeout)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.eventsDropped.WithLabelValues(DropReasonDecode)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documentPolls))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.deliveries.WithLabelValues(DeliveryOutcomeSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues(DeliveryOutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconnects))
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() {
		m.IncEventReceived()
		m.IncEventDropped(DropReasonDecode)
		m.IncDocumentPoll()
		m.IncDelivery(DeliveryOutcomeFailed)
		m.IncListenerReconnect()
	})
}
