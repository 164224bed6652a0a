package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/mealmatch/core/metrics"
	"github.com/kilianp07/mealmatch/infra/logger"
)

// InfluxSink writes allocation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordAllocationResult writes one allocation_event point per assignment.
func (s *InfluxSink) RecordAllocationResult(res []coremetrics.AllocationResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range res {
		p := write.NewPointWithMeasurement("allocation_event").
			AddTag("batch_id", r.BatchID).
			AddTag("recipient_id", r.RecipientID).
			AddTag("volunteer_id", r.VolunteerID).
			AddTag("acknowledged", strconv.FormatBool(r.Acknowledged)).
			AddTag("run_id", r.RunID).
			AddField("quantity", r.Quantity).
			SetTime(r.Time)
		if r.DonorID != "" {
			p = p.AddTag("donor_id", r.DonorID)
		}
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordBatchOutcome writes the outcome of a run.
func (s *InfluxSink) RecordBatchOutcome(ev coremetrics.BatchOutcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("batch_outcome").
		AddTag("batch_id", ev.BatchID).
		AddTag("status", ev.Status.String()).
		AddTag("reason", ev.Reason).
		AddField("original", ev.Original).
		AddField("allocated", ev.Allocated).
		AddField("remaining", ev.Remaining).
		AddField("fill_ratio", round3(ev.FillRatio)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDeliveryLatency writes acknowledgment latencies.
func (s *InfluxSink) RecordDeliveryLatency(recs []coremetrics.DeliveryLatency) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	now := time.Now()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("delivery_latency").
			AddTag("batch_id", r.BatchID).
			AddTag("volunteer_id", r.VolunteerID).
			AddTag("acknowledged", strconv.FormatBool(r.Acknowledged)).
			AddField("latency_ms", round3(r.Latency.Seconds()*1000)).
			SetTime(now)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordDeliveryAck records an acknowledgment result.
func (s *InfluxSink) RecordDeliveryAck(ev coremetrics.DeliveryAck) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("delivery_ack").
		AddTag("batch_id", ev.BatchID).
		AddTag("volunteer_id", ev.VolunteerID).
		AddField("ack", ev.Acknowledged).
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000))
	if ev.Error != "" {
		p = p.AddField("error", ev.Error)
	}
	return s.writeAPI.WritePoint(ctx, p.SetTime(ev.Time))
}

// RecordPending records a batch left with a remainder.
func (s *InfluxSink) RecordPending(ev coremetrics.PendingBatch) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("batch_pending").
		AddTag("batch_id", ev.BatchID).
		AddTag("reason", ev.Reason).
		AddField("remaining", ev.Remaining).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
