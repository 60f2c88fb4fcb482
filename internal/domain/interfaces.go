package domain

import (
	"context"
	"io"
	"time"

	"slotbook/internal/models"
)

// Repository is the durable store behind the backend services.
type Repository interface {
	CreateBooking(ctx context.Context, booking *models.Booking, newToken func() string) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingByOrder(ctx context.Context, orderID string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	TogglePaid(ctx context.Context, id string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	DeleteAllBookings(ctx context.Context) (int64, error)
	DeleteBookingsByPackage(ctx context.Context, price string) (int64, error)

	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ConsumeOrder(ctx context.Context, orderID string, booking *models.Booking, newToken func() string) error
	AbandonStaleOrders(ctx context.Context, before time.Time) (int64, error)

	ListPackages(ctx context.Context) ([]models.EventPackage, error)
	ReplacePackages(ctx context.Context, pkgs []models.EventPackage) error
	SeedPackages(ctx context.Context, pkgs []models.EventPackage) (bool, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetWorkshop(ctx context.Context) (*models.WorkshopContent, error)
	SetWorkshop(ctx context.Context, w models.WorkshopContent) error

	CreateStudent(ctx context.Context, s *models.Student) error
	ListStudents(ctx context.Context) ([]models.Student, error)

	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	UpsertAdmin(ctx context.Context, email, passwordHash string) (*models.Admin, error)
}

// StateRepository keeps short-lived request state: replayable responses, in-flight
// locks and rate-limit counters.
type StateRepository interface {
	GetResponse(ctx context.Context, key string) (*models.StoredResponse, error)
	SaveResponse(ctx context.Context, resp *models.StoredResponse, ttl time.Duration) error
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
	CheckRateLimit(ctx context.Context, subject string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// GatewayOrder is the gateway's answer to an order request.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

// PaymentGateway opens orders and checks callback signatures.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, folder, fileName string, r io.Reader) (string, error)
}
