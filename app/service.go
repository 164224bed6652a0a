package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/mealmatch/api/allocations"
	"github.com/kilianp07/mealmatch/config"
	"github.com/kilianp07/mealmatch/core/allocation"
	"github.com/kilianp07/mealmatch/core/allocation/logging"
	coremetrics "github.com/kilianp07/mealmatch/core/metrics"
	coremqtt "github.com/kilianp07/mealmatch/core/mqtt"
	"github.com/kilianp07/mealmatch/core/model"
	"github.com/kilianp07/mealmatch/core/store"
	"github.com/kilianp07/mealmatch/infra/logger"
	"github.com/kilianp07/mealmatch/infra/metrics"
	"github.com/kilianp07/mealmatch/infra/mqtt"
	"github.com/kilianp07/mealmatch/internal/eventbus"
)

// Service wires the allocation manager to its stores, sinks and HTTP API.
type Service struct {
	Manager *allocation.Manager
	cfg     *config.Config
	batches chan *model.Batch
	bus     eventbus.EventBus
	sink    coremetrics.MetricsSink
	logs    logging.LogStore
	client  *mqtt.PahoClient
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	recipients, volunteers := store.NewRecipientStore(), store.NewVolunteerStore()
	if cfg.FleetPath != "" {
		fleet, err := config.LoadFleet(cfg.FleetPath)
		if err != nil {
			return nil, err
		}
		recipients, volunteers = fleet.Populate()
		logg.Infof("loaded %d recipients and %d volunteers from %s", recipients.Len(), volunteers.Len(), cfg.FleetPath)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	logs, err := logging.Open(cfg.Logging.Options())
	if err != nil {
		return nil, fmt.Errorf("allocation log: %w", err)
	}

	svc := &Service{
		cfg:     cfg,
		batches: make(chan *model.Batch, cfg.Allocation.QueueSize),
		bus:     eventbus.New(),
		sink:    sink,
		logs:    logs,
		log:     logg,
	}

	var publisher coremqtt.Client
	if cfg.Allocation.PublishDeliveries {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = logs.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.client = client
		publisher = client
	}

	ackTimeout := time.Duration(cfg.Allocation.AckTimeoutSeconds) * time.Second
	manager, err := allocation.NewManager(
		allocation.Greedy{},
		recipients,
		volunteers,
		publisher,
		ackTimeout,
		sink,
		svc.bus,
		logger.New("allocation"),
	)
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("allocation manager: %w", err)
	}
	manager.SetLogStore(logs)
	svc.Manager = manager
	return svc, nil
}

// Enqueue hands the batch to the allocation goroutine started by Run.
func (s *Service) Enqueue(b *model.Batch) error {
	select {
	case s.batches <- b:
		return nil
	default:
		return allocations.ErrQueueFull
	}
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	allocations.Register(mux, allocations.Deps{
		Processor:  s.Manager,
		Queue:      s,
		Recipients: s.Manager.Recipients(),
		Volunteers: s.Manager.Volunteers(),
		Logs:       s.logs,
		Token:      s.cfg.API.Token,
	})
	mux.Handle(s.cfg.API.MetricsPath, metrics.Handler())
	return mux
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.Manager.Run(ctx, s.batches)
	metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))

	srv := &http.Server{Addr: s.cfg.API.Address, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.API.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.client != nil {
		s.client.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return s.Manager.Close()
}
