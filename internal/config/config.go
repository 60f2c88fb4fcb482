package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slotbook/internal/models"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig              `yaml:"app" toml:"app"`
	Database   DatabaseConfig         `yaml:"database" toml:"database"`
	Redis      RedisConfig            `yaml:"redis" toml:"redis"`
	Backup     BackupConfig           `yaml:"backup" toml:"backup"`
	Monitoring MonitoringConfig       `yaml:"monitoring" toml:"monitoring"`
	Logging    LoggingConfig          `yaml:"logging" toml:"logging"`
	API        APIConfig              `yaml:"api" toml:"api"`
	Gateway    GatewayConfig          `yaml:"gateway" toml:"gateway"`
	Booking    BookingConfig          `yaml:"booking" toml:"booking"`
	Packages   []models.EventPackage  `yaml:"packages" toml:"packages"`
	Workshop   models.WorkshopContent `yaml:"workshop" toml:"workshop"`
	Uploads    UploadConfig           `yaml:"uploads" toml:"uploads"`
	Exports    ExportConfig           `yaml:"exports" toml:"exports"`
	Sweeper    SweeperConfig          `yaml:"sweeper" toml:"sweeper"`
	Client     ClientConfig           `yaml:"client" toml:"client"`
}

type AppConfig struct {
	Name        string `yaml:"name" toml:"name"`
	Environment string `yaml:"environment" toml:"environment"`
	Version     string `yaml:"version" toml:"version"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver" toml:"driver"` // sqlite3, postgres
	Path     string         `yaml:"path" toml:"path"`
	Postgres PostgresConfig `yaml:"postgres" toml:"postgres"`
}

type PostgresConfig struct {
	Host           string `yaml:"host" toml:"host"`
	Port           int    `yaml:"port" toml:"port"`
	User           string `yaml:"user" toml:"user"`
	Password       string `yaml:"password" toml:"password"`
	DBName         string `yaml:"dbname" toml:"dbname"`
	SSLMode        string `yaml:"sslmode" toml:"sslmode"`
	MaxConnections int    `yaml:"max_connections" toml:"max_connections"`
}

// DSN renders the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type RedisConfig struct {
	Address  string `yaml:"address" toml:"address"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
	PoolSize int    `yaml:"pool_size" toml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled" toml:"enabled"`
	Schedule      string `yaml:"schedule" toml:"schedule"` // cron expression
	RetentionDays int    `yaml:"retention_days" toml:"retention_days"`
	StoragePath   string `yaml:"storage_path" toml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled" toml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port" toml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" toml:"level"`
	Format   string `yaml:"format" toml:"format"`
	Output   string `yaml:"output" toml:"output"`
	FilePath string `yaml:"file_path" toml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http" toml:"http"`
	Auth      APIAuthConfig      `yaml:"auth" toml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	CORS      CORSConfig         `yaml:"cors" toml:"cors"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

type APIAuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" toml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl" toml:"token_ttl"`
	AdminEmail    string        `yaml:"admin_email" toml:"admin_email"`
	AdminPassword string        `yaml:"admin_password" toml:"admin_password"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps" toml:"rps"`
	Burst int     `yaml:"burst" toml:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

type GatewayConfig struct {
	Mode          string `yaml:"mode" toml:"mode"` // razorpay, fake
	KeyID         string `yaml:"key_id" toml:"key_id"`
	KeySecret     string `yaml:"key_secret" toml:"key_secret"`
	BaseURL       string `yaml:"base_url" toml:"base_url"`
	Currency      string `yaml:"currency" toml:"currency"`
	ThemeColor    string `yaml:"theme_color" toml:"theme_color"`
	ReceiptPrefix string `yaml:"receipt_prefix" toml:"receipt_prefix"`
}

type BookingConfig struct {
	DefaultPackage   string `yaml:"default_package" toml:"default_package"`
	RequireCashProof bool   `yaml:"require_cash_proof" toml:"require_cash_proof"`
	TokenLength      int    `yaml:"token_length" toml:"token_length"`
}

type UploadConfig struct {
	CloudinaryURL string `yaml:"cloudinary_url" toml:"cloudinary_url"`
	Folder        string `yaml:"folder" toml:"folder"`
	LocalPath     string `yaml:"local_path" toml:"local_path"`
	PublicBaseURL string `yaml:"public_base_url" toml:"public_base_url"`
	MaxSizeMB     int64  `yaml:"max_size_mb" toml:"max_size_mb"`
}

type ExportConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type SweeperConfig struct {
	Enabled  bool          `yaml:"enabled" toml:"enabled"`
	Schedule string        `yaml:"schedule" toml:"schedule"`
	OrderTTL time.Duration `yaml:"order_ttl" toml:"order_ttl"`
}

type ClientConfig struct {
	BaseURL    string        `yaml:"base_url" toml:"base_url"`
	Timeout    time.Duration `yaml:"timeout" toml:"timeout"`
	TokenPath  string        `yaml:"token_path" toml:"token_path"`
	CacheTTL   time.Duration `yaml:"cache_ttl" toml:"cache_ttl"`
	MaxRetries int           `yaml:"max_retries" toml:"max_retries"`
}

// Load reads a YAML or TOML config file, expanding ${ENV} references first.
// A .env file in the working directory is loaded when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := os.ExpandEnv(string(data))

	var config Config
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		if _, err := toml.Decode(expandedData, &config); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate checks settings shared by every binary.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case "postgres":
		if c.Database.Postgres.Host == "" || c.Database.Postgres.DBName == "" {
			return errors.New("postgres host and dbname are required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Gateway.Mode {
	case "razorpay", "fake":
	default:
		return fmt.Errorf("unsupported gateway mode %q", c.Gateway.Mode)
	}

	return ValidatePackages(c.Packages)
}

// ValidateServer checks settings only the API server needs.
func (c *Config) ValidateServer() error {
	if c.API.Auth.JWTSecret == "" {
		return errors.New("api.auth.jwt_secret is required")
	}
	if c.API.Auth.AdminEmail == "" || c.API.Auth.AdminPassword == "" {
		return errors.New("api.auth admin credentials are required")
	}
	if c.Gateway.Mode == "razorpay" && (c.Gateway.KeyID == "" || c.Gateway.KeySecret == "") {
		return errors.New("gateway key_id and key_secret are required for razorpay mode")
	}
	return nil
}

func ValidatePackages(packages []models.EventPackage) error {
	prices := make(map[string]bool)
	for _, p := range packages {
		if strings.TrimSpace(p.Price) == "" {
			return fmt.Errorf("package '%s' has empty price", p.Name)
		}
		if prices[p.Price] {
			return fmt.Errorf("duplicate package price found: %s", p.Price)
		}
		prices[p.Price] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "slotbook"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite3"
	}
	if c.Database.Postgres.Port == 0 {
		c.Database.Postgres.Port = 5432
	}
	if c.Database.Postgres.SSLMode == "" {
		c.Database.Postgres.SSLMode = "disable"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.Auth.TokenTTL == 0 {
		c.API.Auth.TokenTTL = 72 * time.Hour
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "@daily"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}

	if c.Gateway.Mode == "" {
		c.Gateway.Mode = "fake"
	}
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = "https://api.razorpay.com"
	}
	if c.Gateway.Currency == "" {
		c.Gateway.Currency = models.DefaultCurrency
	}
	if c.Gateway.ThemeColor == "" {
		c.Gateway.ThemeColor = "#F37254"
	}
	if c.Gateway.ReceiptPrefix == "" {
		c.Gateway.ReceiptPrefix = "rcpt"
	}

	if c.Booking.DefaultPackage == "" {
		c.Booking.DefaultPackage = models.DefaultPackagePrice
	}
	if c.Booking.TokenLength == 0 {
		c.Booking.TokenLength = 8
	}
	if len(c.Packages) == 0 {
		c.Packages = defaultPackages()
	}
	if c.Workshop.Title == "" {
		c.Workshop = models.DefaultWorkshop()
	}

	if c.Uploads.Folder == "" {
		c.Uploads.Folder = "slotbook"
	}
	if c.Uploads.LocalPath == "" {
		c.Uploads.LocalPath = "uploads"
	}
	if c.Uploads.MaxSizeMB == 0 {
		c.Uploads.MaxSizeMB = 5
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}

	if c.Sweeper.Schedule == "" {
		c.Sweeper.Schedule = "@every 5m"
	}
	if c.Sweeper.OrderTTL == 0 {
		c.Sweeper.OrderTTL = models.OrderTTL * time.Second
	}

	if c.Client.BaseURL == "" {
		c.Client.BaseURL = fmt.Sprintf("http://localhost:%d/api", c.API.HTTP.Port)
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = 10 * time.Second
	}
	if c.Client.TokenPath == "" {
		c.Client.TokenPath = ".slotbook_token"
	}
	if c.Client.CacheTTL == 0 {
		c.Client.CacheTTL = models.SiteConfigCacheTTL * time.Second
	}
	if c.Client.MaxRetries == 0 {
		c.Client.MaxRetries = 3
	}
}

func defaultPackages() []models.EventPackage {
	return []models.EventPackage{
		{ID: "basic", Name: "Basic", Price: "499", Duration: "1 month", OnlineSessions: 4, SortOrder: 1},
		{ID: "pro", Name: "Pro", Price: "999", Duration: "2 months", OnlineSessions: 8, LiveSessions: 2, SortOrder: 2},
	}
}
