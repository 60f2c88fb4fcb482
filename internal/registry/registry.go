// Package registry keeps the admin's view of all bookings and dispatches admin mutations.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"slotbook/internal/auth"
	"slotbook/internal/client"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrNotConfirmed = errors.New("operation not confirmed")
	ErrNotFound     = errors.New("booking not found")
)

// Backend is the admin half of the booking API.
type Backend interface {
	ListBookings(ctx context.Context, token string) ([]models.Booking, error)
	TogglePaid(ctx context.Context, token, id string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, token, id string) error
	DeleteAllBookings(ctx context.Context, token string) (int64, error)
	DeleteBookingsByPackage(ctx context.Context, token, price string) (int64, error)
}

// Prompt is shown to the admin before an irreversible bulk delete.
// Step 1 states the scope and count; step 2 is the final warning.
type Prompt struct {
	Step  int
	Scope string
	Count int
}

func (p Prompt) String() string {
	if p.Step == 1 {
		return fmt.Sprintf("Delete %d booking(s) in %s?", p.Count, p.Scope)
	}
	return fmt.Sprintf("This permanently deletes %s and cannot be undone. Continue?", p.Scope)
}

// Confirmer asks the admin to approve a prompt.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

type Registry struct {
	backend Backend
	logger  *zerolog.Logger

	mu      sync.RWMutex
	records []models.Booking
}

func New(backend Backend, logger *zerolog.Logger) *Registry {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Registry{backend: backend, logger: logger}
}

// Refresh replaces the held records with the backend's current list.
func (r *Registry) Refresh(ctx context.Context, sess *auth.Session) error {
	token, err := r.token(sess)
	if err != nil {
		return err
	}
	records, err := r.backend.ListBookings(ctx, token)
	if err != nil {
		return r.fail(sess, "list", err)
	}

	r.mu.Lock()
	r.records = records
	r.mu.Unlock()

	r.logger.Debug().Int("count", len(records)).Msg("bookings refreshed")
	return nil
}

// Records returns a copy of the last fetched list.
func (r *Registry) Records() []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Booking(nil), r.records...)
}

// View projects the held records through f. Nothing is cached between calls.
func (r *Registry) View(f Filter) []models.Booking {
	return Project(r.Records(), f)
}

// TogglePaid flips one booking's paid flag and replaces it in place.
func (r *Registry) TogglePaid(ctx context.Context, sess *auth.Session, id string) (*models.Booking, error) {
	token, err := r.token(sess)
	if err != nil {
		return nil, err
	}
	updated, err := r.backend.TogglePaid(ctx, token, id)
	if err != nil {
		return nil, r.fail(sess, "toggle", err)
	}

	r.mu.Lock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i] = *updated
			break
		}
	}
	r.mu.Unlock()

	r.logger.Info().Str("booking_id", id).Bool("is_paid", updated.IsPaid).Msg("booking paid status toggled")
	return updated, nil
}

func (r *Registry) DeleteOne(ctx context.Context, sess *auth.Session, id string) error {
	token, err := r.token(sess)
	if err != nil {
		return err
	}
	if err := r.backend.DeleteBooking(ctx, token, id); err != nil {
		return r.fail(sess, "delete", err)
	}
	r.removeWhere(func(b *models.Booking) bool { return b.ID == id })
	r.logger.Info().Str("booking_id", id).Msg("booking deleted")
	return nil
}

// DeleteAll removes every booking after two confirmations.
func (r *Registry) DeleteAll(ctx context.Context, sess *auth.Session, c Confirmer) (int64, error) {
	token, err := r.token(sess)
	if err != nil {
		return 0, err
	}
	count := len(r.Records())
	if err := confirmTwice(ctx, c, "all bookings", count); err != nil {
		return 0, err
	}

	n, err := r.backend.DeleteAllBookings(ctx, token)
	if err != nil {
		return 0, r.fail(sess, "delete all", err)
	}

	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()

	r.logger.Warn().Int64("deleted", n).Msg("all bookings deleted")
	return n, nil
}

// DeleteByPackage removes bookings whose package price equals price after two confirmations.
func (r *Registry) DeleteByPackage(ctx context.Context, sess *auth.Session, price string, c Confirmer) (int64, error) {
	token, err := r.token(sess)
	if err != nil {
		return 0, err
	}
	count := len(Project(r.Records(), Filter{Package: price}))
	if err := confirmTwice(ctx, c, "package "+price, count); err != nil {
		return 0, err
	}

	n, err := r.backend.DeleteBookingsByPackage(ctx, token, price)
	if err != nil {
		return 0, r.fail(sess, "delete package", err)
	}
	r.removeWhere(func(b *models.Booking) bool { return b.PackagePrice == price })

	r.logger.Warn().Str("package", price).Int64("deleted", n).Msg("package bookings deleted")
	return n, nil
}

// PackageOptions is the union of configured prices and prices seen on bookings,
// numeric ones ascending first, the rest lexically after.
func (r *Registry) PackageOptions(configured []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range configured {
		add(p)
	}
	for _, b := range r.Records() {
		add(b.PackagePrice)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, aErr := strconv.ParseFloat(out[i], 64)
		b, bErr := strconv.ParseFloat(out[j], 64)
		switch {
		case aErr == nil && bErr == nil:
			if a != b {
				return a < b
			}
			return out[i] < out[j]
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}

func (r *Registry) removeWhere(match func(*models.Booking) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for i := range r.records {
		if !match(&r.records[i]) {
			kept = append(kept, r.records[i])
		}
	}
	r.records = kept
}

func (r *Registry) token(sess *auth.Session) (string, error) {
	if sess == nil {
		return "", auth.ErrUnauthenticated
	}
	token, err := sess.Token()
	if err != nil {
		r.clear()
		return "", err
	}
	return token, nil
}

// fail ends the session on an auth error and drops every held record.
func (r *Registry) fail(sess *auth.Session, op string, err error) error {
	if client.IsAuth(err) {
		r.logger.Warn().Err(err).Str("op", op).Msg("admin session rejected; logging out")
		if lerr := sess.Logout(); lerr != nil {
			r.logger.Error().Err(lerr).Msg("failed to clear admin token")
		}
		r.clear()
		return err
	}
	if client.StatusOf(err) == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	r.logger.Error().Err(err).Str("op", op).Msg("admin operation failed")
	return fmt.Errorf("failed to %s bookings: %w", op, err)
}

func (r *Registry) clear() {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}

func confirmTwice(ctx context.Context, c Confirmer, scope string, count int) error {
	if c == nil {
		return ErrNotConfirmed
	}
	for step := 1; step <= 2; step++ {
		ok, err := c.Confirm(ctx, Prompt{Step: step, Scope: scope, Count: count})
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotConfirmed
		}
	}
	return nil
}
