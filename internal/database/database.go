package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"slotbook/internal/config"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type DB struct {
	*sql.DB
	driver string
	path   string
	sb     squirrel.StatementBuilderType
	logger *zerolog.Logger
}

// executor is satisfied by *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewDB opens the configured database and creates the schema.
func NewDB(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		db, err := Open(DriverPostgres, cfg.Postgres.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.MaxConnections > 0 {
			db.SetMaxOpenConns(cfg.Postgres.MaxConnections)
		}
		return db, nil
	case DriverSQLite, "":
		return Open(DriverSQLite, cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects with driver to dsn. For sqlite3 the dsn is a file path or ":memory:".
func Open(driver, dsn string, logger *zerolog.Logger) (*DB, error) {
	if driver == DriverSQLite && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// one writer; also keeps a :memory: database on a single connection
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:     sqlDB,
		driver: driver,
		path:   dsn,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(placeholderFor(driver)),
		logger: logger,
	}

	if err := db.createTables(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("Database initialized")
	return db, nil
}

func (db *DB) Driver() string {
	return db.driver
}

// Path is the sqlite file path; empty for other drivers.
func (db *DB) Path() string {
	if db.driver != DriverSQLite {
		return ""
	}
	return db.path
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			token TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			address TEXT NOT NULL,
			package_price TEXT NOT NULL,
			payment_mode TEXT NOT NULL,
			is_paid BOOLEAN NOT NULL DEFAULT FALSE,
			screenshot_url TEXT NOT NULL DEFAULT '',
			gateway_order_id TEXT NOT NULL DEFAULT '',
			gateway_payment_id TEXT NOT NULL DEFAULT '',
			gst_amount BIGINT NOT NULL DEFAULT 0,
			total_amount_paid BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			amount BIGINT NOT NULL,
			currency TEXT NOT NULL,
			base_amount BIGINT NOT NULL,
			gst_amount BIGINT NOT NULL,
			total_amount BIGINT NOT NULL,
			status TEXT NOT NULL,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			address TEXT NOT NULL,
			package_price TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS packages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price TEXT NOT NULL UNIQUE,
			duration TEXT NOT NULL DEFAULT '',
			online_sessions INTEGER NOT NULL DEFAULT 0,
			live_sessions INTEGER NOT NULL DEFAULT 0,
			whatsapp_link TEXT NOT NULL DEFAULT '',
			sort_order BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS site_config (
			config_key TEXT PRIMARY KEY,
			config_value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS students (
			id TEXT PRIMARY KEY,
			student_name TEXT NOT NULL,
			whatsapp_number TEXT NOT NULL UNIQUE,
			highest_qualification TEXT NOT NULL,
			working_in_it TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_gateway_order ON bookings(gateway_order_id) WHERE gateway_order_id <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_package_price ON bookings(package_price)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// placeholderFor returns the bind parameter style of driver: ? for sqlite, $n otherwise.
func placeholderFor(driver string) squirrel.PlaceholderFormat {
	if driver == DriverSQLite {
		return squirrel.Question
	}
	return squirrel.Dollar
}
