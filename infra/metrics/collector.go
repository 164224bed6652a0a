package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/mealmatch/core/events"
	"github.com/kilianp07/mealmatch/core/logger"
	coremetrics "github.com/kilianp07/mealmatch/core/metrics"
	"github.com/kilianp07/mealmatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed. Sink errors are
// reported on log, which may be nil.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) {
	if bus == nil || sink == nil {
		return
	}
	if log == nil {
		log = logger.Nop{}
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Errorf("event metrics error: %v", err)
				}
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.PendingEvent:
		if r, ok := sink.(coremetrics.PendingRecorder); ok {
			return r.RecordPending(coremetrics.PendingBatch{
				RunID:     e.RunID,
				BatchID:   e.BatchID,
				Remaining: e.Remaining,
				Reason:    e.Reason,
				Time:      time.Now(),
			})
		}
	case events.AckEvent:
		if r, ok := sink.(coremetrics.AckRecorder); ok {
			errStr := ""
			if e.Err != nil {
				errStr = e.Err.Error()
			}
			return r.RecordDeliveryAck(coremetrics.DeliveryAck{
				RunID:        e.RunID,
				BatchID:      e.BatchID,
				VolunteerID:  e.VolunteerID,
				Acknowledged: e.Acknowledged,
				Latency:      e.Latency,
				Error:        errStr,
				Time:         time.Now(),
			})
		}
	}
	return nil
}
