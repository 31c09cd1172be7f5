package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bloom/internal/domain"
)

const publishTimeout = 5 * time.Second

type OutboxRepository interface {
	Claim(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, nextRetry time.Time) error
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
}

// Dispatcher relays committed outbox rows to the message broker.
type Dispatcher struct {
	outbox    OutboxRepository
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

func NewDispatcher(outbox OutboxRepository, publisher Publisher, interval time.Duration, batchSize int, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Run polls until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("outbox dispatcher started", zap.Duration("interval", d.interval), zap.Int("batchSize", d.batchSize))
	for {
		if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("outbox dispatch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// DispatchOnce publishes one claimed batch and returns how many rows were sent.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	events, err := d.outbox.Claim(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ev := range events {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err := d.publisher.Publish(pubCtx, ev.EventType, ev.Payload)
		cancel()

		if err != nil {
			delay := domain.OutboxBackoff(ev.Attempts + 1)
			d.logger.Warn("publishing outbox event failed",
				zap.Int64("outboxId", ev.ID),
				zap.String("eventType", ev.EventType),
				zap.Int("attempts", ev.Attempts+1),
				zap.Duration("retryIn", delay),
				zap.Error(err),
			)
			if err := d.outbox.MarkFailed(ctx, ev.ID, d.now().Add(delay)); err != nil {
				return sent, err
			}
			continue
		}

		if err := d.outbox.MarkSent(ctx, ev.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
