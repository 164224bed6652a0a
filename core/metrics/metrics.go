package metrics

import (
	"time"

	"github.com/kilianp07/mealmatch/core/model"
)

// AllocationResult represents one assignment to be recorded.
type AllocationResult struct {
	RunID        string
	BatchID      string
	DonorID      string
	VolunteerID  string
	RecipientID  string
	Quantity     int
	Acknowledged bool
	Time         time.Time
}

// MetricsSink records allocation results for observability purposes.
type MetricsSink interface {
	RecordAllocationResult(results []AllocationResult) error
}

// BatchOutcome summarises a finished allocation run.
type BatchOutcome struct {
	RunID     string
	BatchID   string
	DonorID   string
	Original  int
	Allocated int
	Remaining int
	Status    model.BatchStatus
	Reason    string
	FillRatio float64
	Duration  time.Duration
	Time      time.Time
}

// BatchOutcomeRecorder records batch outcomes.
type BatchOutcomeRecorder interface {
	RecordBatchOutcome(ev BatchOutcome) error
}

// DeliveryLatency represents the time to receive an acknowledgment for a
// delivery order.
type DeliveryLatency struct {
	BatchID      string
	VolunteerID  string
	Acknowledged bool
	Latency      time.Duration
}

// LatencyRecorder is implemented by sinks able to record delivery latency.
type LatencyRecorder interface {
	RecordDeliveryLatency(latencies []DeliveryLatency) error
}

// DeliveryAck is the acknowledgment result of one delivery order.
type DeliveryAck struct {
	RunID        string
	BatchID      string
	VolunteerID  string
	Acknowledged bool
	Latency      time.Duration
	Error        string
	Time         time.Time
}

// AckRecorder records delivery acknowledgments.
type AckRecorder interface {
	RecordDeliveryAck(ev DeliveryAck) error
}

// PendingBatch records units a run could not place.
type PendingBatch struct {
	RunID     string
	BatchID   string
	Remaining int
	Reason    string
	Time      time.Time
}

// PendingRecorder records pending remainders.
type PendingRecorder interface {
	RecordPending(ev PendingBatch) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAllocationResult([]AllocationResult) error { return nil }
func (NopSink) RecordBatchOutcome(BatchOutcome) error           { return nil }
func (NopSink) RecordDeliveryLatency([]DeliveryLatency) error   { return nil }
func (NopSink) RecordPending(PendingBatch) error                { return nil }
func (NopSink) RecordDeliveryAck(DeliveryAck) error             { return nil }
