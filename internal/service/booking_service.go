package service

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/models"
	"slotbook/internal/validation"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo      domain.Repository
	catalog   *CatalogService
	uploader  domain.Uploader
	eventBus  domain.EventPublisher
	validator *validation.Validator
	folder    string
	newToken  func() string
	logger    *zerolog.Logger
}

func NewBookingService(
	repo domain.Repository,
	catalog *CatalogService,
	uploader domain.Uploader,
	eventBus domain.EventPublisher,
	policy validation.Policy,
	folder string,
	newToken func() string,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		catalog:   catalog,
		uploader:  uploader,
		eventBus:  eventBus,
		validator: validation.New(policy),
		folder:    folder,
		newToken:  newToken,
		logger:    logger,
	}
}

// CreateCashBooking validates the form, stores the optional payment screenshot and
// records an unpaid cash booking with a fresh token.
func (s *BookingService) CreateCashBooking(ctx context.Context, form validation.Form) (*models.Booking, error) {
	form.PaymentMode = models.PaymentModeCash
	req, err := s.validator.Validate(form)
	if err != nil {
		return nil, err
	}
	if _, ok := s.catalog.Lookup(req.PackagePrice()); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, req.PackagePrice())
	}

	booking := &models.Booking{
		Name:         req.Name(),
		Phone:        req.Phone(),
		Address:      req.Address(),
		PackagePrice: req.PackagePrice(),
		PaymentMode:  models.PaymentModeCash,
	}

	if shot := req.CashBooking().Screenshot; shot != nil && len(shot.Data) > 0 {
		url, err := s.uploader.Upload(ctx, path.Join(s.folder, "screenshots"), shot.FileName, bytes.NewReader(shot.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to store screenshot: %w", err)
		}
		booking.ScreenshotURL = url
	}

	if err := s.repo.CreateBooking(ctx, booking, s.newToken); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("token", booking.Token).
		Str("package", booking.PackagePrice).
		Msg("Cash booking created")
	s.publish(events.EventBookingCreated, events.BookingEventPayload{
		BookingID:    booking.ID,
		Token:        booking.Token,
		PackagePrice: booking.PackagePrice,
		PaymentMode:  booking.PaymentMode,
		IsPaid:       booking.IsPaid,
	})
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

// TogglePaid flips the paid flag of a cash booking.
func (s *BookingService) TogglePaid(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.TogglePaid(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventBookingPaidToggled, events.BookingEventPayload{
		BookingID:    booking.ID,
		Token:        booking.Token,
		PackagePrice: booking.PackagePrice,
		PaymentMode:  booking.PaymentMode,
		IsPaid:       booking.IsPaid,
	})
	return booking, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}
	s.publishDeletion("one", 1)
	return nil
}

func (s *BookingService) DeleteAllBookings(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAllBookings(ctx)
	if err != nil {
		return 0, err
	}
	s.publishDeletion("all", n)
	return n, nil
}

// DeleteBookingsByPackage removes bookings whose stored price equals price exactly.
func (s *BookingService) DeleteBookingsByPackage(ctx context.Context, price string) (int64, error) {
	n, err := s.repo.DeleteBookingsByPackage(ctx, price)
	if err != nil {
		return 0, err
	}
	s.publishDeletion("package", n)
	return n, nil
}

func (s *BookingService) publishDeletion(scope string, n int64) {
	s.logger.Info().Str("scope", scope).Int64("count", n).Msg("Bookings deleted")
	s.publish(events.EventBookingsDeleted, events.DeletionEventPayload{Scope: scope, Count: n})
}

func (s *BookingService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
