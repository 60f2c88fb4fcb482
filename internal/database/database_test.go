package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"slotbook/internal/config"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := Open(DriverSQLite, ":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "db_test_dir")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(config.DatabaseConfig{Driver: DriverSQLite, Path: dbPath}, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
	assert.Equal(t, DriverSQLite, db.Driver())
}

func TestNewDB_UnsupportedDriver(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewDB(config.DatabaseConfig{Driver: "oracle"}, &logger)
	assert.Error(t, err)
}

func TestCreateTablesIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.createTables())
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestPostgresPlaceholders(t *testing.T) {
	logger := zerolog.Nop()
	db := setupTestDB(t)
	pg := &DB{driver: DriverPostgres, sb: db.sb.PlaceholderFormat(squirrel.Dollar), logger: &logger}

	query, args, err := pg.sb.Select("id").From("bookings").Where("package_price = ?", "499").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM bookings WHERE package_price = $1", query)
	assert.Equal(t, []any{"499"}, args)
	assert.Empty(t, pg.Path())
}

func TestPlaceholderFor(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{DriverSQLite, "UPDATE orders SET status = ? WHERE id = ?"},
		{DriverPostgres, "UPDATE orders SET status = $1 WHERE id = $2"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			sb := squirrel.StatementBuilder.PlaceholderFormat(placeholderFor(tt.driver))
			query, args, err := sb.Update("orders").Set("status", "paid").Where(squirrel.Eq{"id": "o1"}).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Equal(t, []interface{}{"paid", "o1"}, args)
		})
	}
}
