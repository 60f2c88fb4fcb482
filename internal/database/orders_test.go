package database

import (
	"context"
	"testing"
	"time"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(id string) *models.Order {
	return &models.Order{
		OrderID:      id,
		Amount:       58900,
		Currency:     "INR",
		BaseAmount:   499,
		GSTAmount:    90,
		TotalAmount:  589,
		Name:         "Asha",
		Phone:        "9876543210",
		Address:      "Pune",
		PackagePrice: "499",
	}
}

func onlineBooking() *models.Booking {
	return &models.Booking{
		Name: "Asha", Phone: "9876543210", Address: "Pune", PackagePrice: "499",
		PaymentMode: models.PaymentModeOnline, IsPaid: true, GatewayPaymentID: "pay_1",
		GSTAmount: 90, TotalAmountPaid: 589,
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateOrder(ctx, testOrder("order_1")))
	assert.ErrorIs(t, db.CreateOrder(ctx, testOrder("order_1")), ErrAlreadyExists)
	assert.ErrorIs(t, db.CreateOrder(ctx, testOrder("")), ErrInvalidArgument)

	o, err := db.GetOrder(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCreated, o.Status)
	assert.Equal(t, int64(58900), o.Amount)
	assert.Equal(t, "499", o.PackagePrice)

	_, err = db.GetOrder(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeOrderOnce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.CreateOrder(ctx, testOrder("order_1")))

	b := onlineBooking()
	require.NoError(t, db.ConsumeOrder(ctx, "order_1", b, counterTokens()))
	assert.NotEmpty(t, b.Token)
	assert.Equal(t, "order_1", b.GatewayOrderID)

	o, err := db.GetOrder(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, o.Status)

	got, err := db.GetBookingByOrder(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.True(t, got.IsPaid)

	err = db.ConsumeOrder(ctx, "order_1", onlineBooking(), counterTokens())
	assert.ErrorIs(t, err, ErrOrderConsumed)

	all, err := db.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	err = db.ConsumeOrder(ctx, "order_missing", onlineBooking(), counterTokens())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeOrderRollsBackOnTokenFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateBooking(ctx, cashBooking("A", "499"), sequentialTokens("SAME0001")))
	require.NoError(t, db.CreateOrder(ctx, testOrder("order_1")))

	err := db.ConsumeOrder(ctx, "order_1", onlineBooking(), sequentialTokens("SAME0001"))
	assert.ErrorIs(t, err, ErrTokenExhausted)

	o, err := db.GetOrder(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCreated, o.Status)
}

func TestAbandonStaleOrders(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateOrder(ctx, testOrder("old")))
	require.NoError(t, db.CreateOrder(ctx, testOrder("paid")))
	require.NoError(t, db.ConsumeOrder(ctx, "paid", onlineBooking(), counterTokens()))

	n, err := db.AbandonStaleOrders(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = db.AbandonStaleOrders(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	o, err := db.GetOrder(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAbandoned, o.Status)

	// a late payment still settles an abandoned order, once
	require.NoError(t, db.ConsumeOrder(ctx, "old", onlineBooking(), counterTokens()))
	o, err = db.GetOrder(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, o.Status)

	err = db.ConsumeOrder(ctx, "old", onlineBooking(), counterTokens())
	assert.ErrorIs(t, err, ErrOrderConsumed)
}
