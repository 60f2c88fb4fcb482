package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SLOTBOOK_TEST_SECRET", "from-env")

	yamlContent := `
database:
  path: "test.db"
gateway:
  mode: razorpay
  key_id: "rzp_test"
  key_secret: "${SLOTBOOK_TEST_SECRET}"
packages:
  - id: basic
    name: Basic
    price: "499"
  - id: pro
    name: Pro
    price: "999"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Gateway.KeySecret)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	require.Len(t, cfg.Packages, 2)
	assert.Equal(t, "999", cfg.Packages[1].Price)
	assert.Equal(t, "INR", cfg.Gateway.Currency)
}

func TestLoadTOMLConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
[database]
driver = "sqlite3"
path = "test.db"

[booking]
default_package = "999"
require_cash_proof = true

[[packages]]
id = "pro"
name = "Pro"
price = "999"
`
	require.NoError(t, os.WriteFile(configPath, []byte(tomlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "999", cfg.Booking.DefaultPackage)
	assert.True(t, cfg.Booking.RequireCashProof)
	require.Len(t, cfg.Packages, 1)
	assert.Equal(t, "Pro", cfg.Packages[0].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Driver: "sqlite3", Path: "path"},
				Gateway:  GatewayConfig{Mode: "fake"},
			},
			wantErr: false,
		},
		{
			name: "missing sqlite path",
			cfg: Config{
				Database: DatabaseConfig{Driver: "sqlite3"},
				Gateway:  GatewayConfig{Mode: "fake"},
			},
			wantErr: true,
		},
		{
			name: "postgres without host",
			cfg: Config{
				Database: DatabaseConfig{Driver: "postgres"},
				Gateway:  GatewayConfig{Mode: "fake"},
			},
			wantErr: true,
		},
		{
			name: "unknown gateway mode",
			cfg: Config{
				Database: DatabaseConfig{Driver: "sqlite3", Path: "path"},
				Gateway:  GatewayConfig{Mode: "stripe"},
			},
			wantErr: true,
		},
		{
			name: "duplicate package price",
			cfg: Config{
				Database: DatabaseConfig{Driver: "sqlite3", Path: "path"},
				Gateway:  GatewayConfig{Mode: "fake"},
				Packages: []models.EventPackage{
					{Name: "A", Price: "499"},
					{Name: "B", Price: "499"},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := Config{Gateway: GatewayConfig{Mode: "fake"}}
	assert.Error(t, cfg.ValidateServer())

	cfg.API.Auth = APIAuthConfig{JWTSecret: "s", AdminEmail: "a@b.c", AdminPassword: "pw"}
	assert.NoError(t, cfg.ValidateServer())

	cfg.Gateway.Mode = "razorpay"
	assert.Error(t, cfg.ValidateServer())
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, "499", cfg.Booking.DefaultPackage)
	assert.Equal(t, "fake", cfg.Gateway.Mode)
	assert.Equal(t, 30*time.Minute, cfg.Sweeper.OrderTTL)
	assert.Equal(t, "http://localhost:8080/api", cfg.Client.BaseURL)
	assert.True(t, cfg.Workshop.IsFree)
	require.Len(t, cfg.Packages, 2)
	assert.Equal(t, "499", cfg.Packages[0].Price)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "slots", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=slots sslmode=disable", p.DSN())
}
