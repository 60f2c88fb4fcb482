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

func (db *DB) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return db.getAdmin(ctx, squirrel.Eq{"email": email})
}

func (db *DB) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	return db.getAdmin(ctx, squirrel.Eq{"id": id})
}

func (db *DB) getAdmin(ctx context.Context, where squirrel.Eq) (*models.Admin, error) {
	query, args, err := db.sb.Select("id", "email", "password_hash", "created_at").From("admins").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admin query: %w", err)
	}
	var a models.Admin
	err = db.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("admin: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

// UpsertAdmin creates the admin or replaces its password hash.
func (db *DB) UpsertAdmin(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	query, args, err := db.sb.Insert("admins").
		Columns("id", "email", "password_hash", "created_at").
		Values(uuid.NewString(), email, passwordHash, time.Now().UTC()).
		Suffix("ON CONFLICT (email) DO UPDATE SET password_hash = excluded.password_hash").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upsert admin query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to upsert admin: %w", err)
	}
	return db.GetAdminByEmail(ctx, email)
}
