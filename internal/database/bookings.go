package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const maxTokenAttempts = 5

var bookingColumns = []string{
	"id", "token", "name", "phone", "address", "package_price", "payment_mode", "is_paid",
	"screenshot_url", "gateway_order_id", "gateway_payment_id", "gst_amount", "total_amount_paid",
	"created_at", "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.Token,
		&b.Name,
		&b.Phone,
		&b.Address,
		&b.PackagePrice,
		&b.PaymentMode,
		&b.IsPaid,
		&b.ScreenshotURL,
		&b.GatewayOrderID,
		&b.GatewayPaymentID,
		&b.GSTAmount,
		&b.TotalAmountPaid,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBooking inserts booking with a fresh id and a token from newToken that no
// other booking holds. The booking is only visible once it has its token.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking, newToken func() string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return db.insertBooking(ctx, tx, booking, newToken)
	})
}

func (db *DB) insertBooking(ctx context.Context, tx *sql.Tx, booking *models.Booking, newToken func() string) error {
	token, err := db.uniqueToken(ctx, tx, newToken)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	booking.ID = uuid.NewString()
	booking.Token = token
	booking.CreatedAt = now
	booking.UpdatedAt = now

	query, args, err := db.sb.Insert("bookings").
		Columns(bookingColumns...).
		Values(
			booking.ID,
			booking.Token,
			booking.Name,
			booking.Phone,
			booking.Address,
			booking.PackagePrice,
			booking.PaymentMode,
			booking.IsPaid,
			booking.ScreenshotURL,
			booking.GatewayOrderID,
			booking.GatewayPaymentID,
			booking.GSTAmount,
			booking.TotalAmountPaid,
			booking.CreatedAt,
			booking.UpdatedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert booking query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to insert booking: %w", ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (db *DB) uniqueToken(ctx context.Context, tx *sql.Tx, newToken func() string) (string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token := newToken()
		query, args, err := db.sb.Select("COUNT(*)").From("bookings").Where(squirrel.Eq{"token": token}).ToSql()
		if err != nil {
			return "", fmt.Errorf("failed to build token query: %w", err)
		}
		var count int
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
			return "", fmt.Errorf("failed to check token: %w", err)
		}
		if count == 0 {
			return token, nil
		}
		db.logger.Warn().Int("attempt", attempt+1).Msg("booking token collision")
	}
	return "", ErrTokenExhausted
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return db.getBooking(ctx, db, id)
}

func (db *DB) getBooking(ctx context.Context, ex executor, id string) (*models.Booking, error) {
	query, args, err := db.sb.Select(bookingColumns...).From("bookings").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get booking query: %w", err)
	}
	b, err := scanBooking(ex.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// GetBookingByOrder returns the booking created from a gateway order.
func (db *DB) GetBookingByOrder(ctx context.Context, orderID string) (*models.Booking, error) {
	query, args, err := db.sb.Select(bookingColumns...).From("bookings").
		Where(squirrel.Eq{"gateway_order_id": orderID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get booking query: %w", err)
	}
	b, err := scanBooking(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking for order %s: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by order: %w", err)
	}
	return b, nil
}

// ListBookings returns all bookings, newest first.
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	query, args, err := db.sb.Select(bookingColumns...).From("bookings").OrderBy("created_at DESC", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list bookings query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// TogglePaid flips is_paid on a cash booking and returns the updated record.
func (db *DB) TogglePaid(ctx context.Context, id string) (*models.Booking, error) {
	var updated *models.Booking
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		b, err := db.getBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.PaymentMode != models.PaymentModeCash {
			return ErrNotToggleable
		}

		b.IsPaid = !b.IsPaid
		b.UpdatedAt = time.Now().UTC()

		query, args, err := db.sb.Update("bookings").
			Set("is_paid", b.IsPaid).
			Set("updated_at", b.UpdatedAt).
			Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build toggle query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to toggle paid status: %w", err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	n, err := db.deleteBookings(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) DeleteAllBookings(ctx context.Context) (int64, error) {
	return db.deleteBookings(ctx, nil)
}

// DeleteBookingsByPackage removes bookings whose package price equals price exactly.
func (db *DB) DeleteBookingsByPackage(ctx context.Context, price string) (int64, error) {
	if price == "" {
		return 0, fmt.Errorf("package price: %w", ErrInvalidArgument)
	}
	return db.deleteBookings(ctx, squirrel.Eq{"package_price": price})
}

func (db *DB) deleteBookings(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	builder := db.sb.Delete("bookings")
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}
