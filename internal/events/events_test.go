package events

import (
	"bytes"
	"encoding/json"
	"testing"

	"slotbook/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe("test_event", func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	require.NoError(t, bus.PublishJSON("test_event", map[string]string{"foo": "bar"}))

	assert.Equal(t, 1, callCount)
	assert.Equal(t, "test_event", received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, "bar", decoded["foo"])
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(&Event{Type: "unknown"})
	assert.NoError(t, bus.PublishJSON("unknown", nil))

	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON("unknown", nil))
}

func TestEventDecode(t *testing.T) {
	bus := NewEventBus()
	var got BookingEventPayload
	bus.Subscribe(EventBookingCreated, func(e *Event) error { return e.Decode(&got) })

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: "b1", Token: "AB12CD34", PaymentMode: "cash"}))
	assert.Equal(t, "b1", got.BookingID)
	assert.Equal(t, "AB12CD34", got.Token)
}

func TestSubscribeMetrics(t *testing.T) {
	metrics.Register()
	bus := NewEventBus()
	SubscribeMetrics(bus)

	created := counterValue(t, "slotbook_bookings_created_total", "mode", "cash")
	deleted := counterValue(t, "slotbook_bookings_deleted_total", "scope", "package")

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{PaymentMode: "cash"}))
	require.NoError(t, bus.PublishJSON(EventBookingsDeleted, DeletionEventPayload{Scope: "package", Count: 3}))

	assert.Equal(t, created+1, counterValue(t, "slotbook_bookings_created_total", "mode", "cash"))
	assert.Equal(t, deleted+3, counterValue(t, "slotbook_bookings_deleted_total", "scope", "package"))
}

func counterValue(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestSubscribeAudit(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := NewEventBus()
	SubscribeAudit(bus, &logger)

	require.NoError(t, bus.PublishJSON(EventBookingPaidToggled, BookingEventPayload{BookingID: "b1", IsPaid: true}))
	assert.Contains(t, buf.String(), `"event":"booking_paid_toggled"`)
	assert.Contains(t, buf.String(), `"booking_id":"b1"`)
}
