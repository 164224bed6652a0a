package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/mealmatch/core/metrics"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordAllocationResult([]coremetrics.AllocationResult{
		{RecipientID: "R2", VolunteerID: "V101", Quantity: 8, Acknowledged: true},
		{RecipientID: "R2", VolunteerID: "V103", Quantity: 2, Acknowledged: true},
		{RecipientID: "R1", VolunteerID: "V102", Quantity: 10},
	}))
	require.NoError(t, sink.RecordDeliveryLatency([]coremetrics.DeliveryLatency{{VolunteerID: "V101", Acknowledged: true, Latency: 20 * time.Millisecond}}))
	require.NoError(t, sink.RecordDeliveryAck(coremetrics.DeliveryAck{Acknowledged: false}))
	require.NoError(t, sink.RecordPending(coremetrics.PendingBatch{Remaining: 2, Reason: "volunteers_exhausted"}))
	require.NoError(t, sink.RecordBatchOutcome(coremetrics.BatchOutcome{FillRatio: 0.9}))

	assert.Equal(t, 10.0, testutil.ToFloat64(sink.delivered.WithLabelValues("R2", "true")))
	assert.Equal(t, 10.0, testutil.ToFloat64(sink.delivered.WithLabelValues("R1", "false")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.latency))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.acks.WithLabelValues("false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.pending.WithLabelValues("volunteers_exhausted")))
	assert.Equal(t, 0.9, testutil.ToFloat64(sink.fill))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordPending(coremetrics.PendingBatch{Remaining: 3, Reason: "recipients_exhausted"}))
	assert.Equal(t, 3.0, testutil.ToFloat64(second.pending.WithLabelValues("recipients_exhausted")))
}

func TestMetricsFactory(t *testing.T) {
	sink, err := coremetrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, sink)
}
