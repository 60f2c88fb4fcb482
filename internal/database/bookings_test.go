package database

import (
	"context"
	"fmt"
	"testing"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialTokens(tokens ...string) func() string {
	i := 0
	return func() string {
		t := tokens[i%len(tokens)]
		i++
		return t
	}
}

func counterTokens() func() string {
	i := 0
	return func() string {
		i++
		return fmt.Sprintf("TK%06d", i)
	}
}

func cashBooking(name, price string) *models.Booking {
	return &models.Booking{
		Name:         name,
		Phone:        "9876543210",
		Address:      "Pune",
		PackagePrice: price,
		PaymentMode:  models.PaymentModeCash,
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := cashBooking("Asha", "499")
	require.NoError(t, db.CreateBooking(ctx, b, sequentialTokens("AB12CD34")))
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "AB12CD34", b.Token)
	assert.False(t, b.CreatedAt.IsZero())

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "AB12CD34", got.Token)
	assert.False(t, got.IsPaid)
	assert.Equal(t, models.PaymentModeCash, got.PaymentMode)

	_, err = db.GetBooking(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingRetriesTokenCollision(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateBooking(ctx, cashBooking("A", "499"), sequentialTokens("DUP00001")))

	b := cashBooking("B", "499")
	require.NoError(t, db.CreateBooking(ctx, b, sequentialTokens("DUP00001", "NEW00002")))
	assert.Equal(t, "NEW00002", b.Token)

	err := db.CreateBooking(ctx, cashBooking("C", "499"), sequentialTokens("DUP00001"))
	assert.ErrorIs(t, err, ErrTokenExhausted)

	all, err := db.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListBookingsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	tokens := counterTokens()

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, db.CreateBooking(ctx, cashBooking(name, "499"), tokens))
	}

	all, err := db.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "first", all[2].Name)
}

func TestListBookingsEmpty(t *testing.T) {
	db := setupTestDB(t)
	all, err := db.ListBookings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestTogglePaid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := cashBooking("Asha", "499")
	require.NoError(t, db.CreateBooking(ctx, b, counterTokens()))

	updated, err := db.TogglePaid(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
	assert.Equal(t, b.Token, updated.Token)

	updated, err = db.TogglePaid(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsPaid)

	_, err = db.TogglePaid(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTogglePaidRejectsOnlineBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := &models.Booking{
		Name: "Ravi", Phone: "9123456780", Address: "Delhi", PackagePrice: "999",
		PaymentMode: models.PaymentModeOnline, IsPaid: true, GatewayPaymentID: "pay_1", GatewayOrderID: "order_1",
	}
	require.NoError(t, db.CreateBooking(ctx, b, counterTokens()))

	_, err := db.TogglePaid(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotToggleable)

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
}

func TestDeleteBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	tokens := counterTokens()

	var ids []string
	for _, price := range []string{"499", "999", "499", "1499", "4990"} {
		b := cashBooking("x", price)
		require.NoError(t, db.CreateBooking(ctx, b, tokens))
		ids = append(ids, b.ID)
	}

	n, err := db.DeleteBookingsByPackage(ctx, "499")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	remaining, err := db.ListBookings(ctx)
	require.NoError(t, err)
	for _, b := range remaining {
		assert.NotEqual(t, "499", b.PackagePrice)
	}
	assert.Len(t, remaining, 3)

	_, err = db.DeleteBookingsByPackage(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	require.NoError(t, db.DeleteBooking(ctx, ids[1]))
	assert.ErrorIs(t, db.DeleteBooking(ctx, ids[1]), ErrNotFound)

	n, err = db.DeleteAllBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
