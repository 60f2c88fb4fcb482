package repository

import (
	"context"
	"sync"
	"time"

	"slotbook/internal/models"
)

type expiring struct {
	value     any
	expiresAt time.Time
}

func (e expiring) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStateRepository is the single-process fallback. Expired entries are dropped on read.
type MemoryStateRepository struct {
	mu         sync.Mutex
	responses  map[string]expiring
	locks      map[string]expiring
	rateLimits map[string]*rateLimitEntry
	now        func() time.Time
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{
		responses:  make(map[string]expiring),
		locks:      make(map[string]expiring),
		rateLimits: make(map[string]*rateLimitEntry),
		now:        time.Now,
	}
}

func (r *MemoryStateRepository) GetResponse(ctx context.Context, key string) (*models.StoredResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.responses[key]
	if !ok {
		return nil, nil
	}
	if e.expired(r.now()) {
		delete(r.responses, key)
		return nil, nil
	}
	resp := e.value.(models.StoredResponse)
	return &resp, nil
}

func (r *MemoryStateRepository) SaveResponse(ctx context.Context, resp *models.StoredResponse, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.responses[resp.Key] = expiring{value: *resp, expiresAt: r.deadline(ttl)}
	return nil
}

func (r *MemoryStateRepository) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.locks[key]; ok && !e.expired(r.now()) {
		return false, nil
	}
	r.locks[key] = expiring{expiresAt: r.deadline(ttl)}
	return true, nil
}

func (r *MemoryStateRepository) ReleaseLock(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.locks, key)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, subject string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.rateLimits[subject]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[subject] = entry
	}
	entry.count++
	return entry.count <= limit, nil
}

func (r *MemoryStateRepository) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return r.now().Add(ttl)
}
