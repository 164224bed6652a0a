package metrics

// MultiSink fanouts allocation results to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAllocationResult forwards the records to all sinks, returning the first error encountered.
func (m *MultiSink) RecordAllocationResult(res []AllocationResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordAllocationResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordBatchOutcome forwards batch outcomes when supported by the sink.
func (m *MultiSink) RecordBatchOutcome(ev BatchOutcome) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(BatchOutcomeRecorder); ok {
			if err := rec.RecordBatchOutcome(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDeliveryLatency forwards latency metrics when supported by the sink.
func (m *MultiSink) RecordDeliveryLatency(lat []DeliveryLatency) error {
	for _, s := range m.Sinks {
		if lr, ok := s.(LatencyRecorder); ok {
			if err := lr.RecordDeliveryLatency(lat); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPending forwards pending remainders when supported by the sink.
func (m *MultiSink) RecordPending(ev PendingBatch) error {
	for _, s := range m.Sinks {
		if pr, ok := s.(PendingRecorder); ok {
			if err := pr.RecordPending(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDeliveryAck forwards acknowledgments when supported by the sink.
func (m *MultiSink) RecordDeliveryAck(ev DeliveryAck) error {
	for _, s := range m.Sinks {
		if ar, ok := s.(AckRecorder); ok {
			if err := ar.RecordDeliveryAck(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
