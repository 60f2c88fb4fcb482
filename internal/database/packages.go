package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slotbook/internal/models"

	"github.com/google/uuid"
)

var packageColumns = []string{
	"id", "name", "price", "duration", "online_sessions", "live_sessions", "whatsapp_link",
	"sort_order", "created_at", "updated_at",
}

// ListPackages returns the catalog ordered by sort order then price.
func (db *DB) ListPackages(ctx context.Context) ([]models.EventPackage, error) {
	query, args, err := db.sb.Select(packageColumns...).From("packages").OrderBy("sort_order", "price").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list packages query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	pkgs := []models.EventPackage{}
	for rows.Next() {
		var p models.EventPackage
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Price,
			&p.Duration,
			&p.OnlineSessions,
			&p.LiveSessions,
			&p.WhatsappLink,
			&p.SortOrder,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		pkgs = append(pkgs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate packages: %w", err)
	}
	return pkgs, nil
}

// ReplacePackages swaps the whole catalog in one transaction. Existing bookings keep
// their price string even when its package disappears.
func (db *DB) ReplacePackages(ctx context.Context, pkgs []models.EventPackage) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM packages"); err != nil {
			return fmt.Errorf("failed to clear packages: %w", err)
		}
		return db.insertPackages(ctx, tx, pkgs)
	})
}

// SeedPackages inserts pkgs only when the catalog is empty.
func (db *DB) SeedPackages(ctx context.Context, pkgs []models.EventPackage) (bool, error) {
	seeded := false
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages").Scan(&count); err != nil {
			return fmt.Errorf("failed to count packages: %w", err)
		}
		if count > 0 {
			return nil
		}
		seeded = true
		return db.insertPackages(ctx, tx, pkgs)
	})
	return seeded, err
}

func (db *DB) insertPackages(ctx context.Context, tx *sql.Tx, pkgs []models.EventPackage) error {
	if len(pkgs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	builder := db.sb.Insert("packages").Columns(packageColumns...)
	for i := range pkgs {
		p := &pkgs[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.SortOrder == 0 {
			p.SortOrder = int64(i + 1)
		}
		p.CreatedAt = now
		p.UpdatedAt = now
		builder = builder.Values(
			p.ID,
			p.Name,
			p.Price,
			p.Duration,
			p.OnlineSessions,
			p.LiveSessions,
			p.WhatsappLink,
			p.SortOrder,
			p.CreatedAt,
			p.UpdatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert packages query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("package price: %w", ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert packages: %w", err)
	}
	return nil
}
