package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/models"
	"slotbook/internal/pricing"
	"slotbook/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type PaymentService struct {
	repo          domain.Repository
	catalog       *CatalogService
	gateway       domain.PaymentGateway
	eventBus      domain.EventPublisher
	validator     *validation.Validator
	currency      string
	receiptPrefix string
	newToken      func() string
	logger        *zerolog.Logger
}

func NewPaymentService(
	repo domain.Repository,
	catalog *CatalogService,
	gateway domain.PaymentGateway,
	eventBus domain.EventPublisher,
	currency, receiptPrefix string,
	newToken func() string,
	logger *zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		repo:          repo,
		catalog:       catalog,
		gateway:       gateway,
		eventBus:      eventBus,
		validator:     validation.New(validation.Policy{}),
		currency:      currency,
		receiptPrefix: receiptPrefix,
		newToken:      newToken,
		logger:        logger,
	}
}

// PriceBreakdown splits a base amount string into base, GST and total.
func (s *PaymentService) PriceBreakdown(amount string) (models.PriceBreakdown, error) {
	base, err := pricing.ParseBase(amount)
	if err != nil {
		return models.PriceBreakdown{}, invalid("amount", err.Error())
	}
	return pricing.Breakdown(base), nil
}

// CreateOrder prices the selected package server-side and opens a gateway order for
// its GST-inclusive total. The caller's amount, if any, is never trusted.
func (s *PaymentService) CreateOrder(ctx context.Context, in models.OrderRequest) (*models.Order, error) {
	req, err := s.validator.Validate(validation.Form{
		Name:         in.Name,
		Phone:        in.Phone,
		Address:      in.Address,
		PackagePrice: in.PackagePrice,
		PaymentMode:  models.PaymentModeOnline,
	})
	if err != nil {
		return nil, err
	}
	pkg, ok := s.catalog.Lookup(req.PackagePrice())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, req.PackagePrice())
	}
	base, err := pricing.ParseBase(pkg.Price)
	if err != nil {
		return nil, err
	}
	breakdown := pricing.Breakdown(base)

	receipt := s.receiptPrefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	gwOrder, err := s.gateway.CreateOrder(ctx, pricing.MinorUnits(breakdown.TotalAmount), s.currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	order := &models.Order{
		OrderID:      gwOrder.ID,
		Amount:       gwOrder.Amount,
		Currency:     gwOrder.Currency,
		BaseAmount:   breakdown.BaseAmount,
		GSTAmount:    breakdown.GSTAmount,
		TotalAmount:  breakdown.TotalAmount,
		KeyID:        s.gateway.KeyID(),
		Name:         req.Name(),
		Phone:        req.Phone(),
		Address:      req.Address(),
		PackagePrice: req.PackagePrice(),
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.OrderID).
		Int64("amount", order.Amount).
		Str("package", order.PackagePrice).
		Msg("Gateway order created")
	return order, nil
}

// Verify checks the gateway signature and turns the order into a paid booking.
// The booking is created at most once per order; a repeated verify of an already
// consumed order returns the existing booking.
func (s *PaymentService) Verify(ctx context.Context, in models.VerifyRequest) (*models.VerifyResult, error) {
	if in.GatewayOrderID == "" || in.GatewayPaymentID == "" || in.GatewaySignature == "" {
		return nil, invalid("payment", "order id, payment id and signature are required")
	}

	l := s.logger.With().Str("order_id", in.GatewayOrderID).Str("payment_id", in.GatewayPaymentID).Logger()

	if !s.gateway.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.GatewaySignature) {
		l.Warn().Msg("Payment signature mismatch")
		s.publishFailure(in, "signature mismatch")
		return nil, ErrInvalidSignature
	}

	order, err := s.repo.GetOrder(ctx, in.GatewayOrderID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.publishFailure(in, "unknown order")
		}
		return nil, err
	}

	booking := &models.Booking{
		Name:             order.Name,
		Phone:            order.Phone,
		Address:          order.Address,
		PackagePrice:     order.PackagePrice,
		PaymentMode:      models.PaymentModeOnline,
		IsPaid:           true,
		GatewayPaymentID: in.GatewayPaymentID,
		GSTAmount:        order.GSTAmount,
		TotalAmountPaid:  order.TotalAmount,
	}

	err = s.repo.ConsumeOrder(ctx, order.OrderID, booking, s.newToken)
	if errors.Is(err, database.ErrOrderConsumed) {
		existing, getErr := s.repo.GetBookingByOrder(ctx, order.OrderID)
		if getErr != nil {
			return nil, err
		}
		l.Info().Str("token", existing.Token).Msg("Payment already verified")
		return &models.VerifyResult{Success: true, Message: "Payment verified", Token: existing.Token, Booking: existing}, nil
	}
	if err != nil {
		return nil, err
	}

	l.Info().Str("token", booking.Token).Msg("Payment verified, booking created")
	s.publish(events.EventPaymentVerified, events.PaymentEventPayload{OrderID: order.OrderID, PaymentID: in.GatewayPaymentID})
	s.publish(events.EventBookingCreated, events.BookingEventPayload{
		BookingID:    booking.ID,
		Token:        booking.Token,
		PackagePrice: booking.PackagePrice,
		PaymentMode:  booking.PaymentMode,
		IsPaid:       booking.IsPaid,
	})
	return &models.VerifyResult{Success: true, Message: "Payment verified", Token: booking.Token, Booking: booking}, nil
}

func (s *PaymentService) publishFailure(in models.VerifyRequest, reason string) {
	s.publish(events.EventPaymentVerificationFailed, events.PaymentEventPayload{
		OrderID:   in.GatewayOrderID,
		PaymentID: in.GatewayPaymentID,
		Reason:    reason,
	})
}

func (s *PaymentService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
