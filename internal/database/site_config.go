package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/models"

	"github.com/Masterminds/squirrel"
)

const (
	KeyBanner         = "banner_url"
	KeyWorkshopBanner = "workshop_banner_url"
	KeyWorkshop       = "workshop"
)

// GetSetting returns the value under key, or ErrNotFound.
func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	query, args, err := db.sb.Select("config_value").From("site_config").Where(squirrel.Eq{"config_key": key}).ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build get setting query: %w", err)
	}
	var value string
	err = db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	query, args, err := db.sb.Insert("site_config").
		Columns("config_key", "config_value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT (config_key) DO UPDATE SET config_value = excluded.config_value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set setting query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetWorkshop returns the saved workshop content, or ErrNotFound if none was saved.
func (db *DB) GetWorkshop(ctx context.Context) (*models.WorkshopContent, error) {
	raw, err := db.GetSetting(ctx, KeyWorkshop)
	if err != nil {
		return nil, err
	}
	var w models.WorkshopContent
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("failed to decode workshop content: %w", err)
	}
	return &w, nil
}

func (db *DB) SetWorkshop(ctx context.Context, w models.WorkshopContent) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to encode workshop content: %w", err)
	}
	return db.SetSetting(ctx, KeyWorkshop, string(data))
}
