package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/mealmatch/core/metrics"
)

// PromSink records allocation events in Prometheus metrics labelled by
// recipient and volunteer.
type PromSink struct {
	delivered *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	acks      *prometheus.CounterVec
	pending   *prometheus.CounterVec
	fill      prometheus.Gauge
}

// NewPromSink registers allocation metrics on the default Prometheus registerer.
// The Prometheus endpoint is served separately, see StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	delivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mealmatch_units_delivered_total",
		Help: "Food units assigned per recipient",
	}, []string{"recipient_id", "acknowledged"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mealmatch_delivery_latency_seconds",
		Help:    "Time between delivery order and volunteer acknowledgment",
		Buckets: prometheus.DefBuckets,
	}, []string{"volunteer_id", "acknowledged"})
	acks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mealmatch_delivery_acks_total",
		Help: "Delivery acknowledgments by result",
	}, []string{"acknowledged"})
	pending := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mealmatch_pending_units_total",
		Help: "Food units left over at the end of a run",
	}, []string{"reason"})
	fill := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mealmatch_batch_fill_ratio",
		Help: "Share of the last batch that was assigned",
	})

	var err error
	if delivered, err = register(reg, delivered); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if acks, err = register(reg, acks); err != nil {
		return nil, err
	}
	if pending, err = register(reg, pending); err != nil {
		return nil, err
	}
	if fill, err = register(reg, fill); err != nil {
		return nil, err
	}
	return &PromSink{delivered: delivered, latency: latency, acks: acks, pending: pending, fill: fill}, nil
}

// register returns the existing collector when c is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordAllocationResult adds the assigned units per recipient.
func (s *PromSink) RecordAllocationResult(res []coremetrics.AllocationResult) error {
	for _, r := range res {
		s.delivered.WithLabelValues(r.RecipientID, strconv.FormatBool(r.Acknowledged)).Add(float64(r.Quantity))
	}
	return nil
}

// RecordDeliveryLatency records the acknowledgment latency histogram.
func (s *PromSink) RecordDeliveryLatency(recs []coremetrics.DeliveryLatency) error {
	for _, r := range recs {
		s.latency.WithLabelValues(r.VolunteerID, strconv.FormatBool(r.Acknowledged)).Observe(r.Latency.Seconds())
	}
	return nil
}

// RecordDeliveryAck counts acknowledgments.
func (s *PromSink) RecordDeliveryAck(ev coremetrics.DeliveryAck) error {
	s.acks.WithLabelValues(strconv.FormatBool(ev.Acknowledged)).Inc()
	return nil
}

// RecordPending adds the units a run could not place.
func (s *PromSink) RecordPending(ev coremetrics.PendingBatch) error {
	s.pending.WithLabelValues(ev.Reason).Add(float64(ev.Remaining))
	return nil
}

// RecordBatchOutcome sets the fill ratio gauge.
func (s *PromSink) RecordBatchOutcome(ev coremetrics.BatchOutcome) error {
	s.fill.Set(ev.FillRatio)
	return nil
}
