package allocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/mealmatch/core/allocation/logging"
	"github.com/kilianp07/mealmatch/core/events"
	"github.com/kilianp07/mealmatch/core/logger"
	"github.com/kilianp07/mealmatch/core/metrics"
	"github.com/kilianp07/mealmatch/core/model"
	"github.com/kilianp07/mealmatch/core/mqtt"
	"github.com/kilianp07/mealmatch/core/store"
	"github.com/kilianp07/mealmatch/internal/eventbus"
)

// Result describes one processed batch.
type Result struct {
	RunID         string             `json:"run_id"`
	BatchID       string             `json:"batch_id"`
	DonorID       string             `json:"donor_id"`
	DonorLocation string             `json:"donor_location,omitempty"`
	Original      int                `json:"original_quantity"`
	Remaining     int                `json:"remaining_quantity"`
	Status        model.BatchStatus  `json:"status"`
	Reason        StopReason         `json:"reason"`
	Assignments   []model.Assignment `json:"assignments"`
	// Acknowledged and Errors are keyed by volunteer id and only filled when
	// delivery orders are forwarded.
	Acknowledged map[string]bool   `json:"acknowledged,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	Summary      Summary           `json:"summary"`
	Timestamp    time.Time         `json:"timestamp"`
	Duration     time.Duration     `json:"duration"`
}

// Manager runs batches through an Allocator against shared stores. Runs are
// serialised: the stores see exactly one allocation at a time.
type Manager struct {
	allocator  Allocator
	recipients *store.RecipientStore
	volunteers *store.VolunteerStore
	publisher  mqtt.Client
	ackTimeout time.Duration
	logger     logger.Logger
	metrics    metrics.MetricsSink
	bus        eventbus.EventBus
	store      logging.LogStore

	runMu   sync.Mutex
	mu      sync.Mutex
	history []Result
}

// NewManager creates a new manager.
// publisher, sink, bus and log may be nil. Without a publisher the
// assignments are not forwarded to volunteers. If ackTimeout is zero, a
// default of five seconds is used.
func NewManager(alloc Allocator, recipients *store.RecipientStore, volunteers *store.VolunteerStore, publisher mqtt.Client, ackTimeout time.Duration, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Manager, error) {
	if alloc == nil || recipients == nil || volunteers == nil {
		return nil, fmt.Errorf("allocation: nil parameter provided to NewManager")
	}
	if ackTimeout <= 0 {
		ackTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Manager{
		allocator:  alloc,
		recipients: recipients,
		volunteers: volunteers,
		publisher:  publisher,
		ackTimeout: ackTimeout,
		logger:     log,
		metrics:    sink,
		bus:        bus,
	}, nil
}

// SetLogStore configures the store used to persist allocation runs.
func (m *Manager) SetLogStore(s logging.LogStore) {
	m.mu.Lock()
	m.store = s
	m.mu.Unlock()
}

// Recipients returns the recipient store the manager allocates from.
func (m *Manager) Recipients() *store.RecipientStore { return m.recipients }

// Volunteers returns the volunteer store the manager allocates from.
func (m *Manager) Volunteers() *store.VolunteerStore { return m.volunteers }

// Close releases resources held by the manager.
func (m *Manager) Close() error {
	if m.bus != nil {
		m.bus.Close()
	}
	m.mu.Lock()
	s := m.store
	m.store = nil
	m.mu.Unlock()
	if s != nil {
		return s.Close()
	}
	return nil
}

// Run processes incoming batches until the context is canceled or the channel
// is closed. It is the single allocation goroutine draining a batch queue.
func (m *Manager) Run(ctx context.Context, batches <-chan *model.Batch) {
	for {
		select {
		case b, ok := <-batches:
			if !ok {
				return
			}
			if _, err := m.Process(ctx, b); err != nil {
				m.logger.Errorf("process batch: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Process allocates the batch, mutating it and the stores in place, then
// forwards the assignments and records the run.
func (m *Manager) Process(ctx context.Context, batch *model.Batch) (Result, error) {
	if batch == nil {
		return Result{}, fmt.Errorf("%w: nil batch", ErrInvalidArgument)
	}
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:         uuid.NewString(),
		BatchID:       batch.ID,
		DonorID:       batch.DonorID,
		DonorLocation: batch.DonorLocation,
		Original:      batch.Quantity,
		Timestamp:     time.Now(),
	}
	received := *batch

	start := time.Now()
	out, err := m.allocator.Run(batch, m.recipients, m.volunteers)
	res.Duration = time.Since(start)
	if err != nil {
		m.logger.Errorf("batch %s rejected: %v", batch.ID, err)
		return res, fmt.Errorf("allocate batch %s: %w", batch.ID, err)
	}
	m.publish(events.BatchEvent{RunID: res.RunID, Batch: received})
	m.logger.Infof("allocated batch %s with quantity %d", received.ID, received.Quantity)
	res.Remaining = out.Remaining
	res.Status = out.Status()
	res.Reason = out.Reason
	res.Assignments = out.Assignments
	res.Summary = Summarize(out, m.recipients)

	m.report(res)

	var lat []metrics.DeliveryLatency
	if m.publisher != nil && len(res.Assignments) > 0 {
		lat = m.deliver(&res)
	}
	m.observe(res)
	m.recordMetrics(res, lat)
	// the stores are already updated, the run must reach the log
	m.appendLog(context.WithoutCancel(ctx), res)

	m.mu.Lock()
	m.history = append(m.history, res)
	m.mu.Unlock()
	return res, nil
}

// History returns the results of all processed batches in order.
func (m *Manager) History() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Result(nil), m.history...)
}

func (m *Manager) publish(ev eventbus.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}

// report logs and publishes the decisions of a run.
func (m *Manager) report(res Result) {
	for _, a := range res.Assignments {
		m.logger.Infof("assigned %d units of batch %s to recipient %s via volunteer %s",
			a.Quantity, a.BatchID, a.RecipientID, a.VolunteerID)
		m.publish(events.AssignmentEvent{RunID: res.RunID, Assignment: a})
	}
	if res.Remaining == 0 {
		m.logger.Infof("batch %s fully assigned", res.BatchID)
		return
	}
	if res.Reason == StopVolunteersExhausted {
		m.logger.Warnf("no volunteers available, batch %s pending for remaining %d units", res.BatchID, res.Remaining)
	} else {
		m.logger.Warnf("batch %s partially assigned, no recipient capacity for remaining %d units", res.BatchID, res.Remaining)
	}
	m.publish(events.PendingEvent{
		RunID:     res.RunID,
		BatchID:   res.BatchID,
		Remaining: res.Remaining,
		Reason:    res.Reason.String(),
	})
}

// deliver sends the delivery orders concurrently and records acknowledgments.
// Failed deliveries are reported, never re-matched.
func (m *Manager) deliver(res *Result) []metrics.DeliveryLatency {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		lat      []metrics.DeliveryLatency
		ackCount int
	)
	res.Acknowledged = make(map[string]bool, len(res.Assignments))
	res.Errors = make(map[string]string)
	update := func(a model.Assignment, ack bool, err error, dur time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		ok := err == nil && ack
		if err != nil {
			res.Errors[a.VolunteerID] = err.Error()
			m.logger.Warnf("delivery order to volunteer %s failed: %v", a.VolunteerID, err)
		}
		res.Acknowledged[a.VolunteerID] = ok
		deliveryLatency.WithLabelValues(fmt.Sprintf("%t", ok)).Observe(dur.Seconds())
		m.publish(events.AckEvent{
			RunID:        res.RunID,
			BatchID:      a.BatchID,
			VolunteerID:  a.VolunteerID,
			Acknowledged: ok,
			Err:          err,
			Latency:      dur,
		})
		lat = append(lat, metrics.DeliveryLatency{
			BatchID:      a.BatchID,
			VolunteerID:  a.VolunteerID,
			Acknowledged: ok,
			Latency:      dur,
		})
		if ok {
			ackCount++
		}
	}
	for _, a := range res.Assignments {
		wg.Add(1)
		go func(a model.Assignment) {
			defer wg.Done()
			ack, d, err := m.sendAndWait(a)
			update(a, ack, err, d)
		}(a)
	}
	wg.Wait()
	ackRate.Set(float64(ackCount) / float64(len(res.Assignments)))
	return lat
}

// sendAndWait sends the order and waits for an acknowledgment while measuring
// the latency.
func (m *Manager) sendAndWait(a model.Assignment) (bool, time.Duration, error) {
	start := time.Now()
	orderID, err := m.publisher.SendDelivery(a)
	if err != nil {
		return false, time.Since(start), err
	}
	ack, err := m.publisher.WaitForAck(orderID, m.ackTimeout)
	return ack, time.Since(start), err
}

// observe updates the package Prometheus collectors.
func (m *Manager) observe(res Result) {
	batchesProcessed.WithLabelValues(res.Status.String()).Inc()
	unitsAllocated.Add(float64(res.Original - res.Remaining))
	unitsPending.Add(float64(res.Remaining))
	assignmentsEmitted.Add(float64(len(res.Assignments)))
	runDuration.Observe(res.Duration.Seconds())
}

// recordMetrics persists allocation metrics if a sink is configured.
func (m *Manager) recordMetrics(res Result, lat []metrics.DeliveryLatency) {
	if m.metrics == nil {
		return
	}
	recs := make([]metrics.AllocationResult, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		recs = append(recs, metrics.AllocationResult{
			RunID:        res.RunID,
			BatchID:      a.BatchID,
			DonorID:      res.DonorID,
			VolunteerID:  a.VolunteerID,
			RecipientID:  a.RecipientID,
			Quantity:     a.Quantity,
			Acknowledged: res.Acknowledged[a.VolunteerID],
			Time:         res.Timestamp,
		})
	}
	if err := m.metrics.RecordAllocationResult(recs); err != nil {
		m.logger.Errorf("metrics error: %v", err)
	}
	if br, ok := m.metrics.(metrics.BatchOutcomeRecorder); ok {
		if err := br.RecordBatchOutcome(metrics.BatchOutcome{
			RunID:     res.RunID,
			BatchID:   res.BatchID,
			DonorID:   res.DonorID,
			Original:  res.Original,
			Allocated: res.Original - res.Remaining,
			Remaining: res.Remaining,
			Status:    res.Status,
			Reason:    res.Reason.String(),
			FillRatio: res.Summary.FillRatio,
			Duration:  res.Duration,
			Time:      res.Timestamp,
		}); err != nil {
			m.logger.Errorf("batch outcome metrics error: %v", err)
		}
	}
	if lr, ok := m.metrics.(metrics.LatencyRecorder); ok && len(lat) > 0 {
		if err := lr.RecordDeliveryLatency(lat); err != nil {
			m.logger.Errorf("latency metrics error: %v", err)
		}
	}
}

func (m *Manager) appendLog(ctx context.Context, res Result) {
	m.mu.Lock()
	s := m.store
	m.mu.Unlock()
	if s == nil {
		return
	}
	rec := logging.LogRecord{
		RunID:         res.RunID,
		Timestamp:     res.Timestamp,
		BatchID:       res.BatchID,
		DonorID:       res.DonorID,
		DonorLocation: res.DonorLocation,
		Original:      res.Original,
		Remaining:     res.Remaining,
		Status:        res.Status,
		Reason:        res.Reason.String(),
		Assignments:   res.Assignments,
		Acknowledged:  res.Acknowledged,
		Errors:        res.Errors,
	}
	if err := s.Append(ctx, rec); err != nil {
		m.logger.Errorf("append allocation log: %v", err)
	}
}
