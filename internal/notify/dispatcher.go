package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trace-fund-go/internal/models"

	"go.uber.org/zap"
)

// Outbox is the part of the ledger store the dispatcher reads and updates.
type Outbox interface {
	PendingEvents(ctx context.Context, olderThan time.Time, limit int) ([]models.Event, error)
	MarkEventsDelivered(ctx context.Context, ids []string, at time.Time) error
	PruneDeliveredEvents(ctx context.Context, before time.Time) (int64, error)
}

// DeliveryRecorder observes every publish attempt.
type DeliveryRecorder interface {
	RecordDelivery(sink string, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordDelivery(string, error) {}

// DispatcherConfig contains configuration for Dispatcher
type DispatcherConfig struct {
	Outbox          Outbox
	Sinks           []Sink
	Recorder        DeliveryRecorder
	PollingInterval time.Duration
	CleanupInterval time.Duration
	Retention       time.Duration
	RedeliverAfter  time.Duration
	BatchSize       int
}

// Dispatcher publishes committed events to every sink. Events that any sink
// rejects stay pending in the outbox and are retried by the poll loop, so
// delivery is at-least-once.
type Dispatcher struct {
	outbox   Outbox
	sinks    []Sink
	recorder DeliveryRecorder

	pollingInterval time.Duration
	cleanupInterval time.Duration
	retention       time.Duration
	redeliverAfter  time.Duration
	batchSize       int

	// Control channels
	startOnce sync.Once
	stopOnce  sync.Once
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Dispatcher{
		outbox:          cfg.Outbox,
		sinks:           cfg.Sinks,
		recorder:        recorder,
		pollingInterval: cfg.PollingInterval,
		cleanupInterval: cfg.CleanupInterval,
		retention:       cfg.Retention,
		redeliverAfter:  cfg.RedeliverAfter,
		batchSize:       batchSize,
		stopChan:        make(chan struct{}),
	}
}

// Deliver publishes events to every sink and marks the ones all sinks
// accepted as delivered. Failures are logged and never returned.
func (d *Dispatcher) Deliver(ctx context.Context, events []models.Event) {
	delivered := make([]string, 0, len(events))
	for _, event := range events {
		if d.publish(ctx, event) {
			delivered = append(delivered, event.Id)
		}
	}

	if len(delivered) == 0 {
		return
	}
	if err := d.outbox.MarkEventsDelivered(ctx, delivered, time.Now().UTC()); err != nil {
		zap.L().Warn("Failed to mark events delivered, they will be redelivered",
			zap.Int("count", len(delivered)),
			zap.Error(err))
	}
}

func (d *Dispatcher) publish(ctx context.Context, event models.Event) bool {
	ok := true
	for _, sink := range d.sinks {
		err := sink.Publish(ctx, event)
		d.recorder.RecordDelivery(sink.Name(), err)
		if err != nil {
			zap.L().Warn("Sink rejected event",
				zap.String("sink", sink.Name()),
				zap.String("event_id", event.Id),
				zap.String("type", string(event.Type)),
				zap.Error(err))
			ok = false
		}
	}
	return ok
}

// Start launches the redelivery and cleanup loops.
func (d *Dispatcher) Start(ctx context.Context) error {
	if d.pollingInterval <= 0 {
		return fmt.Errorf("polling interval must be positive, got %v", d.pollingInterval)
	}
	if d.cleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %v", d.cleanupInterval)
	}

	d.startOnce.Do(func() {
		zap.L().Info("Starting event dispatcher",
			zap.Int("sinks", len(d.sinks)),
			zap.Duration("polling_interval", d.pollingInterval),
			zap.Duration("redeliver_after", d.redeliverAfter))

		d.wg.Add(2)
		go d.pollLoop(ctx)
		go d.cleanupLoop(ctx)
	})
	return nil
}

// Stop signals both loops and waits for them to exit.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		zap.L().Info("Stopping event dispatcher")
		close(d.stopChan)
	})
	d.wg.Wait()
	zap.L().Info("Event dispatcher stopped")
}

func (d *Dispatcher) pollLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.pollingInterval)
	defer ticker.Stop()

	d.redeliver(ctx)

	for {
		select {
		case <-ticker.C:
			d.redeliver(ctx)
		case <-d.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// redeliver retries events that are still pending after the grace period
func (d *Dispatcher) redeliver(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-d.redeliverAfter)
	events, err := d.outbox.PendingEvents(ctx, cutoff, d.batchSize)
	if err != nil {
		zap.L().Error("Failed to load pending events", zap.Error(err))
		return
	}
	if len(events) == 0 {
		return
	}

	zap.L().Info("Redelivering pending events", zap.Int("count", len(events)))
	d.Deliver(ctx, events)
}

// cleanupLoop periodically prunes delivered events past the retention window
func (d *Dispatcher) cleanupLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.cleanupDelivered(ctx)
		case <-d.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) cleanupDelivered(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-d.retention)
	pruned, err := d.outbox.PruneDeliveredEvents(ctx, cutoff)
	if err != nil {
		zap.L().Warn("Failed to prune delivered events", zap.Error(err))
		return
	}
	if pruned > 0 {
		zap.L().Debug("Pruned delivered events",
			zap.Int64("pruned", pruned),
			zap.Time("cutoff", cutoff))
	}
}
