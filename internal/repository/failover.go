package repository

import (
	"context"
	"sync/atomic"
	"time"

	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverStateRepository serves from primary until it errors, then from fallback,
// probing primary again once per recoveryInterval.
type FailoverStateRepository struct {
	primary   domain.StateRepository
	fallback  domain.StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// usePrimary reports whether the next call should go to primary.
func (r *FailoverStateRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return r.now().Sub(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

// observe records the primary call result and reports whether it succeeded.
func (r *FailoverStateRepository) observe(op string, err error) bool {
	if err == nil {
		if r.isDown.Swap(false) {
			r.logger.Info().Str("op", op).Msg("Primary state repository recovered")
		}
		return true
	}
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Str("op", op).Msg("Primary state repository failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
	return false
}

func (r *FailoverStateRepository) GetResponse(ctx context.Context, key string) (*models.StoredResponse, error) {
	if r.usePrimary() {
		resp, err := r.primary.GetResponse(ctx, key)
		if r.observe("get_response", err) {
			return resp, nil
		}
	}
	return r.fallback.GetResponse(ctx, key)
}

func (r *FailoverStateRepository) SaveResponse(ctx context.Context, resp *models.StoredResponse, ttl time.Duration) error {
	if r.usePrimary() {
		if r.observe("save_response", r.primary.SaveResponse(ctx, resp, ttl)) {
			return nil
		}
	}
	return r.fallback.SaveResponse(ctx, resp, ttl)
}

func (r *FailoverStateRepository) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if r.usePrimary() {
		ok, err := r.primary.AcquireLock(ctx, key, ttl)
		if r.observe("acquire_lock", err) {
			return ok, nil
		}
	}
	return r.fallback.AcquireLock(ctx, key, ttl)
}

// ReleaseLock releases on both sides; a lock may have been taken before a failover.
func (r *FailoverStateRepository) ReleaseLock(ctx context.Context, key string) error {
	if r.usePrimary() {
		r.observe("release_lock", r.primary.ReleaseLock(ctx, key))
	}
	return r.fallback.ReleaseLock(ctx, key)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, subject string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, subject, limit, window)
		if r.observe("rate_limit", err) {
			return allowed, nil
		}
	}
	return r.fallback.CheckRateLimit(ctx, subject, limit, window)
}
