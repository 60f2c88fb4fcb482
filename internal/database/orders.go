package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/models"

	"github.com/Masterminds/squirrel"
)

var orderColumns = []string{
	"id", "amount", "currency", "base_amount", "gst_amount", "total_amount", "status",
	"name", "phone", "address", "package_price", "created_at", "updated_at",
}

// CreateOrder stores a gateway order in status created. order.OrderID must be set.
func (db *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.OrderID == "" {
		return fmt.Errorf("order id: %w", ErrInvalidArgument)
	}
	now := time.Now().UTC()
	order.Status = models.OrderStatusCreated
	order.CreatedAt = now
	order.UpdatedAt = now

	query, args, err := db.sb.Insert("orders").
		Columns(orderColumns...).
		Values(
			order.OrderID,
			order.Amount,
			order.Currency,
			order.BaseAmount,
			order.GSTAmount,
			order.TotalAmount,
			order.Status,
			order.Name,
			order.Phone,
			order.Address,
			order.PackagePrice,
			order.CreatedAt,
			order.UpdatedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert order query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order %s: %w", order.OrderID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (db *DB) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return db.getOrder(ctx, db, id)
}

func (db *DB) getOrder(ctx context.Context, ex executor, id string) (*models.Order, error) {
	query, args, err := db.sb.Select(orderColumns...).From("orders").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get order query: %w", err)
	}

	var o models.Order
	err = ex.QueryRowContext(ctx, query, args...).Scan(
		&o.OrderID,
		&o.Amount,
		&o.Currency,
		&o.BaseAmount,
		&o.GSTAmount,
		&o.TotalAmount,
		&o.Status,
		&o.Name,
		&o.Phone,
		&o.Address,
		&o.PackagePrice,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// ConsumeOrder marks an open order paid and inserts booking in one transaction.
// Abandoned orders are still open here: the sweeper only does bookkeeping, and a
// signed payment can arrive after it ran. An order is consumed at most once; a
// second call returns ErrOrderConsumed.
func (db *DB) ConsumeOrder(ctx context.Context, orderID string, booking *models.Booking, newToken func() string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := db.sb.Update("orders").
			Set("status", models.OrderStatusPaid).
			Set("updated_at", time.Now().UTC()).
			Where(squirrel.Eq{
				"id":     orderID,
				"status": []string{models.OrderStatusCreated, models.OrderStatusAbandoned},
			}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build consume order query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to consume order: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if n == 0 {
			if _, err := db.getOrder(ctx, tx, orderID); err != nil {
				return err
			}
			return fmt.Errorf("order %s: %w", orderID, ErrOrderConsumed)
		}

		booking.GatewayOrderID = orderID
		return db.insertBooking(ctx, tx, booking, newToken)
	})
}

// AbandonStaleOrders marks created orders older than before as abandoned.
func (db *DB) AbandonStaleOrders(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := db.sb.Update("orders").
		Set("status", models.OrderStatusAbandoned).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"status": models.OrderStatusCreated}).
		Where(squirrel.Lt{"created_at": before.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build abandon query: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to abandon stale orders: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}
