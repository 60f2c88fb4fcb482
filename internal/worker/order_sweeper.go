package worker

import (
	"context"
	"fmt"
	"time"

	"slotbook/internal/metrics"
	"slotbook/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// OrderStore is the slice of the repository the sweeper needs.
type OrderStore interface {
	AbandonStaleOrders(ctx context.Context, before time.Time) (int64, error)
}

// OrderSweeper marks gateway orders that were never verified as abandoned. The
// status is bookkeeping only: a late, correctly signed verify still books.
type OrderSweeper struct {
	store       OrderStore
	schedule    string
	ttl         time.Duration
	retryPolicy RetryPolicy
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewOrderSweeper builds a sweeper with sane defaults.
func NewOrderSweeper(store OrderStore, schedule string, ttl time.Duration, retry RetryPolicy, logger *zerolog.Logger) *OrderSweeper {
	if schedule == "" {
		schedule = "*/5 * * * *"
	}
	if ttl <= 0 {
		ttl = models.OrderTTL * time.Second
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OrderSweeper{
		store:       store,
		schedule:    schedule,
		ttl:         ttl,
		retryPolicy: retry,
		logger:      logger,
		now:         time.Now,
	}
}

// Start sweeps on schedule until ctx is done.
func (s *OrderSweeper) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", s.schedule, err)
	}

	s.logger.Info().Str("schedule", s.schedule).Dur("order_ttl", s.ttl).Msg("Order sweeper started")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info().Msg("Order sweeper stopped")
	return nil
}

func (s *OrderSweeper) run(ctx context.Context) {
	policy := s.retryPolicy
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		s.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("Order sweep failed, retrying")
	}

	attempts := 0
	err := policy.Do(ctx, func() error {
		attempts++
		_, err := s.Sweep(ctx)
		return err
	}, nil)
	if err != nil {
		s.logger.Error().Err(err).Int("attempts", attempts).Msg("Order sweep failed")
	}
}

// Sweep abandons every open order older than the TTL and returns how many it touched.
func (s *OrderSweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.store.AbandonStaleOrders(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to abandon stale orders: %w", err)
	}
	if n > 0 {
		metrics.AddOrdersAbandoned(n)
		s.logger.Info().Int64("count", n).Msg("Abandoned stale orders")
	}
	return n, nil
}
