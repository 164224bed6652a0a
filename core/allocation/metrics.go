package allocation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchesProcessed   *prometheus.CounterVec
	unitsAllocated     prometheus.Counter
	unitsPending       prometheus.Counter
	assignmentsEmitted prometheus.Counter
	runDuration        prometheus.Histogram
	deliveryLatency    *prometheus.HistogramVec
	ackRate            prometheus.Gauge
)

type collectors struct {
	batches     *prometheus.CounterVec
	allocated   prometheus.Counter
	pending     prometheus.Counter
	assignments prometheus.Counter
	duration    prometheus.Histogram
	latency     *prometheus.HistogramVec
	ackRate     prometheus.Gauge
}

// newCollectors creates new metric collectors.
func newCollectors() collectors {
	return collectors{
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "allocation_batches_total",
			Help: "Number of batches processed by final status",
		}, []string{"status"}),
		allocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allocation_units_allocated_total",
			Help: "Number of food units assigned to recipients",
		}),
		pending: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allocation_units_pending_total",
			Help: "Number of food units left unassigned at the end of a run",
		}),
		assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allocation_assignments_total",
			Help: "Number of recipient/volunteer assignments emitted",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "allocation_run_duration_seconds",
			Help:    "Time spent computing the assignments of a batch",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "allocation_delivery_ack_latency_seconds",
			Help:    "Latency of delivery orders from publish to volunteer acknowledgment",
			Buckets: prometheus.DefBuckets,
		}, []string{"acknowledged"}),
		ackRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "allocation_delivery_ack_rate",
			Help: "Acknowledgment rate of the delivery orders of the last batch",
		}),
	}
}

func (c collectors) install() {
	batchesProcessed = c.batches
	unitsAllocated = c.allocated
	unitsPending = c.pending
	assignmentsEmitted = c.assignments
	runDuration = c.duration
	deliveryLatency = c.latency
	ackRate = c.ackRate
}

func init() {
	newCollectors().install()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers allocation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(batchesProcessed, unitsAllocated, unitsPending, assignmentsEmitted, runDuration, deliveryLatency, ackRate)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors().install()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
