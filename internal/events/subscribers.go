package events

import (
	"slotbook/internal/metrics"

	"github.com/rs/zerolog"
)

// SubscribeMetrics feeds booking and payment events into the Prometheus counters.
func SubscribeMetrics(bus *EventBus) {
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		var p BookingEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		metrics.IncBookingCreated(p.PaymentMode)
		return nil
	})
	bus.Subscribe(EventBookingsDeleted, func(e *Event) error {
		var p DeletionEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		metrics.AddBookingsDeleted(p.Scope, p.Count)
		return nil
	})
	bus.Subscribe(EventPaymentVerified, func(*Event) error {
		metrics.IncVerification("success")
		return nil
	})
	bus.Subscribe(EventPaymentVerificationFailed, func(*Event) error {
		metrics.IncVerification("failure")
		return nil
	})
}

// SubscribeAudit logs every admin-visible change.
func SubscribeAudit(bus *EventBus, logger *zerolog.Logger) {
	l := logger.With().Str("component", "audit").Logger()
	for _, t := range []string{
		EventBookingCreated,
		EventBookingPaidToggled,
		EventBookingsDeleted,
		EventPaymentVerified,
		EventPaymentVerificationFailed,
	} {
		bus.Subscribe(t, func(e *Event) error {
			l.Info().Str("event", e.Type).RawJSON("payload", e.Payload).Msg("domain event")
			return nil
		})
	}
}
