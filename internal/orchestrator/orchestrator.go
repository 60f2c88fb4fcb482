// Package orchestrator drives a booking submission from raw form to a terminal state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"slotbook/internal/metrics"
	"slotbook/internal/models"
	"slotbook/internal/pricing"
	"slotbook/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransitionRecord is one step taken by the state machine.
type TransitionRecord struct {
	From  State
	To    State
	Event Event
	At    time.Time
}

// Result describes a submission that reached Confirmed.
type Result struct {
	State        State
	Booking      *models.Booking
	Token        string
	DisplayTotal int64
	Order        *models.Order
}

type Options struct {
	GatewayKey   string
	ThemeColor   string
	NewKey       func() string
	OnTransition func(TransitionRecord)
}

type Orchestrator struct {
	api       BookingAPI
	widget    Widget
	catalog   Catalog
	validator *validation.Validator
	opts      Options
	logger    *zerolog.Logger

	busy atomic.Bool

	mu        sync.Mutex
	state     State
	history   []TransitionRecord
	confirmed *models.Booking
	failure   *VerificationError
}

func New(api BookingAPI, widget Widget, catalog Catalog, v *validation.Validator, opts Options, logger *zerolog.Logger) *Orchestrator {
	if opts.NewKey == nil {
		opts.NewKey = uuid.NewString
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Orchestrator{
		api:       api,
		widget:    widget,
		catalog:   catalog,
		validator: v,
		opts:      opts,
		logger:    logger,
		state:     StateDraft,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// History returns a copy of the transitions taken since construction.
func (o *Orchestrator) History() []TransitionRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]TransitionRecord(nil), o.history...)
}

// Confirmed returns the booking of the last confirmed submission, if any.
func (o *Orchestrator) Confirmed() *models.Booking {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.confirmed
}

// PendingSupport returns the unresolved verification failure, if any.
func (o *Orchestrator) PendingSupport() *VerificationError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failure
}

// Quote computes the locally displayed breakdown for a package. It never sets the charge.
func (o *Orchestrator) Quote(packagePrice string) (models.PriceBreakdown, error) {
	price := packagePrice
	if o.catalog != nil {
		if pkg, ok := o.catalog.PackageByPrice(packagePrice); ok {
			price = pkg.Price
		}
	}
	base, err := pricing.ParseBase(price)
	if err != nil {
		return models.PriceBreakdown{}, err
	}
	return pricing.Breakdown(base), nil
}

// NewBooking resets a terminal submission and returns an empty form with the
// catalog default package selected.
func (o *Orchestrator) NewBooking() (validation.Form, error) {
	if o.busy.Load() {
		return validation.Form{}, ErrBusy
	}
	if err := o.reset(); err != nil {
		return validation.Form{}, err
	}

	o.mu.Lock()
	o.confirmed = nil
	o.failure = nil
	o.mu.Unlock()

	form := validation.Form{PaymentMode: models.PaymentModeCash}
	if o.catalog != nil {
		form.PackagePrice = o.catalog.DefaultPackage()
	}
	if form.PackagePrice == "" {
		form.PackagePrice = models.DefaultPackagePrice
	}
	return form, nil
}

// Acknowledge records that the customer has seen a verification failure and
// returns to Draft. Unlike NewBooking it leaves the caller's form alone; the
// failure is handed back so its payment references can be shown or logged.
func (o *Orchestrator) Acknowledge() (*VerificationError, error) {
	if o.busy.Load() {
		return nil, ErrBusy
	}
	if state := o.State(); state != StateVerificationFailed {
		return nil, fmt.Errorf("%w: nothing to acknowledge in %s", ErrInvalidTransition, state)
	}
	if err := o.fire(EventReset); err != nil {
		return nil, err
	}

	o.mu.Lock()
	verr := o.failure
	o.failure = nil
	o.mu.Unlock()

	if verr != nil {
		o.logger.Info().
			Str("order_id", verr.OrderID).
			Str("payment_id", verr.PaymentID).
			Msg("verification failure acknowledged")
	}
	return verr, nil
}

// Submit runs one submission to completion. At most one runs at a time per instance.
// Every error except a verification failure leaves the orchestrator in Draft.
func (o *Orchestrator) Submit(ctx context.Context, form validation.Form) (*Result, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.busy.Store(false)

	switch o.State() {
	case StateVerificationFailed:
		return nil, ErrSupportRequired
	case StateConfirmed:
		return nil, ErrAlreadyConfirmed
	}

	if err := o.fire(EventSubmit); err != nil {
		return nil, err
	}

	req, err := o.validator.Validate(form)
	if err != nil {
		_ = o.fire(EventInvalid)
		return nil, err
	}

	idempotencyKey := o.opts.NewKey()
	display := o.displayTotal(req.PackagePrice())

	if req.IsCash() {
		return o.submitCash(ctx, req, idempotencyKey, display)
	}
	return o.submitOnline(ctx, req, idempotencyKey, display)
}

func (o *Orchestrator) submitCash(ctx context.Context, req *validation.Request, key string, display int64) (*Result, error) {
	if err := o.fire(EventChooseCash); err != nil {
		return nil, err
	}

	booking, err := o.api.CreateCashBooking(ctx, req.CashBooking(), key)
	if err == nil && (booking == nil || booking.Token == "") {
		err = ErrMissingToken
	}
	if err != nil {
		o.logger.Warn().Err(err).Str("idempotency_key", key).Msg("cash booking failed")
		o.failAndReset(EventRequestFailed)
		return nil, err
	}

	if err := o.confirm(booking); err != nil {
		return nil, err
	}
	return &Result{State: StateConfirmed, Booking: booking, Token: booking.Token, DisplayTotal: display}, nil
}

func (o *Orchestrator) submitOnline(ctx context.Context, req *validation.Request, key string, display int64) (*Result, error) {
	if err := o.fire(EventChooseOnline); err != nil {
		return nil, err
	}

	order, err := o.api.CreateOrder(ctx, req.OrderRequest(), key)
	if err != nil {
		o.logger.Warn().Err(err).Str("idempotency_key", key).Msg("order creation failed")
		o.failAndReset(EventRequestFailed)
		return nil, err
	}

	if err := o.fire(EventOrderCreated); err != nil {
		return nil, err
	}

	if display != 0 && order.TotalAmount != display {
		o.logger.Warn().
			Int64("display_total", display).
			Int64("server_total", order.TotalAmount).
			Str("order_id", order.OrderID).
			Msg("displayed total differs from server total; charging server amount")
	}

	gatewayKey := order.KeyID
	if gatewayKey == "" {
		gatewayKey = o.opts.GatewayKey
	}

	outcome, err := o.widget.Open(ctx, WidgetRequest{
		Key:      gatewayKey,
		Amount:   order.Amount,
		Currency: order.Currency,
		OrderID:  order.OrderID,
		Prefill:  Prefill{Name: req.Name(), Contact: req.Phone()},
		Theme:    Theme{Color: o.opts.ThemeColor},
	})
	if err != nil {
		outcome = Dismissed()
	}

	switch outcome.Kind {
	case OutcomeSuccess:
		return o.verify(ctx, req, order, outcome.Payment, display)
	case OutcomeFailure:
		o.failAndReset(EventGatewayFailure)
		return nil, &GatewayError{Description: outcome.Description, Err: err}
	default:
		o.failAndReset(EventGatewayDismiss)
		return nil, &GatewayError{Dismissed: true, Err: err}
	}
}

func (o *Orchestrator) verify(ctx context.Context, req *validation.Request, order *models.Order, p GatewayPayment, display int64) (*Result, error) {
	if err := o.fire(EventGatewaySuccess); err != nil {
		return nil, err
	}

	orderID := p.OrderID
	if orderID == "" {
		orderID = order.OrderID
	}

	result, err := o.api.VerifyPayment(ctx, models.VerifyRequest{
		GatewayOrderID:   orderID,
		GatewayPaymentID: p.PaymentID,
		GatewaySignature: p.Signature,
		Name:             req.Name(),
		Phone:            req.Phone(),
		Address:          req.Address(),
		PackagePrice:     req.PackagePrice(),
	})
	if err == nil && (result == nil || !result.Success || result.Token == "") {
		err = ErrMissingToken
	}
	if err != nil {
		verr := &VerificationError{OrderID: orderID, PaymentID: p.PaymentID, Err: err}
		o.logger.Error().Err(err).
			Str("order_id", orderID).
			Str("payment_id", p.PaymentID).
			Msg("payment verification failed")
		metrics.IncVerification("client_failed")
		_ = o.fire(EventVerificationRejected)

		o.mu.Lock()
		o.failure = verr
		o.mu.Unlock()
		return nil, verr
	}

	booking := result.Booking
	if booking == nil {
		booking = &models.Booking{
			Token:            result.Token,
			Name:             req.Name(),
			Phone:            req.Phone(),
			Address:          req.Address(),
			PackagePrice:     req.PackagePrice(),
			PaymentMode:      models.PaymentModeOnline,
			IsPaid:           true,
			GatewayOrderID:   orderID,
			GatewayPaymentID: p.PaymentID,
		}
	}
	if booking.Token == "" {
		booking.Token = result.Token
	}

	if err := o.confirm(booking); err != nil {
		return nil, err
	}
	return &Result{State: StateConfirmed, Booking: booking, Token: result.Token, DisplayTotal: display, Order: order}, nil
}

func (o *Orchestrator) confirm(booking *models.Booking) error {
	event := EventBookingCreated
	if o.State() == StateVerifying {
		event = EventVerified
	}
	if err := o.fire(event); err != nil {
		return err
	}
	o.mu.Lock()
	o.confirmed = booking
	o.mu.Unlock()
	o.logger.Info().
		Str("token", booking.Token).
		Str("payment_mode", booking.PaymentMode).
		Msg("booking confirmed")
	return nil
}

// failAndReset enters a failure state and immediately returns to Draft.
func (o *Orchestrator) failAndReset(e Event) {
	if err := o.fire(e); err != nil {
		o.logger.Error().Err(err).Msg("failure transition rejected")
		return
	}
	_ = o.fire(EventReset)
}

func (o *Orchestrator) reset() error {
	state := o.State()
	if state == StateDraft {
		return nil
	}
	if !state.Terminal() {
		return ErrBusy
	}
	return o.fire(EventReset)
}

func (o *Orchestrator) fire(e Event) error {
	o.mu.Lock()
	from := o.state
	to, err := Transition(from, e)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	rec := TransitionRecord{From: from, To: to, Event: e, At: time.Now()}
	o.state = to
	o.history = append(o.history, rec)
	o.mu.Unlock()

	o.logger.Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Str("event", e.String()).
		Msg("submission transition")
	metrics.IncTransition(from.String(), to.String())
	if o.opts.OnTransition != nil {
		o.opts.OnTransition(rec)
	}
	return nil
}

func (o *Orchestrator) displayTotal(packagePrice string) int64 {
	bd, err := o.Quote(packagePrice)
	if err != nil {
		return 0
	}
	return bd.TotalAmount
}

// IsRetryable reports whether resubmitting the same form may succeed.
func IsRetryable(err error) bool {
	var verr *VerificationError
	if errors.As(err, &verr) || errors.Is(err, ErrSupportRequired) {
		return false
	}
	var vErr *validation.ValidationError
	return !errors.As(err, &vErr)
}
