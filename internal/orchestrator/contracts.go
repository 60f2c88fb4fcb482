package orchestrator

import (
	"context"

	"slotbook/internal/models"
)

// BookingAPI is the backend the orchestrator submits to.
type BookingAPI interface {
	CreateCashBooking(ctx context.Context, req models.CashBookingRequest, idempotencyKey string) (*models.Booking, error)
	CreateOrder(ctx context.Context, req models.OrderRequest, idempotencyKey string) (*models.Order, error)
	VerifyPayment(ctx context.Context, req models.VerifyRequest) (*models.VerifyResult, error)
}

// Catalog supplies the package default and prices for the displayed total.
type Catalog interface {
	DefaultPackage() string
	PackageByPrice(price string) (models.EventPackage, bool)
}

type Prefill struct {
	Name    string
	Contact string
}

type Theme struct {
	Color string
}

// WidgetRequest opens the payment widget for one order.
type WidgetRequest struct {
	Key      string
	Amount   int64
	Currency string
	OrderID  string
	Prefill  Prefill
	Theme    Theme
}

// OutcomeKind distinguishes the three mutually exclusive widget results.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeFailure
	OutcomeDismiss
)

// GatewayPayment is what the gateway hands back on success.
type GatewayPayment struct {
	OrderID   string
	PaymentID string
	Signature string
}

type WidgetOutcome struct {
	Kind        OutcomeKind
	Payment     GatewayPayment
	Description string
}

func Succeeded(p GatewayPayment) WidgetOutcome {
	return WidgetOutcome{Kind: OutcomeSuccess, Payment: p}
}

func FailedWith(description string) WidgetOutcome {
	return WidgetOutcome{Kind: OutcomeFailure, Description: description}
}

func Dismissed() WidgetOutcome {
	return WidgetOutcome{Kind: OutcomeDismiss}
}

// Widget blocks until the customer finishes with the gateway. The wait is unbounded;
// a cancelled context counts as a dismissal.
type Widget interface {
	Open(ctx context.Context, req WidgetRequest) (WidgetOutcome, error)
}
