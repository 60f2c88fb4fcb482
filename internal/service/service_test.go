package service

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"slotbook/internal/database"
	"slotbook/internal/events"
	"slotbook/internal/gateway"
	"slotbook/internal/models"
	"slotbook/internal/repository"
	"slotbook/internal/storage"
	"slotbook/internal/validation"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       *database.DB
	bus      *events.EventBus
	catalog  *CatalogService
	bookings *BookingService
	payments *PaymentService
	site     *SiteConfigService
	students *StudentService
	auth     *AuthService
	gateway  *gateway.Fake
	uploads  string
	events   []string
}

func seqTokens() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("TK%06d", n.Add(1)) }
}

func newFixture(t *testing.T, policy validation.Policy) *fixture {
	t.Helper()
	logger := zerolog.New(io.Discard)

	db, err := database.Open(database.DriverSQLite, ":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:      db,
		bus:     events.NewEventBus(),
		gateway: gateway.NewFake("", ""),
		uploads: t.TempDir(),
	}
	for _, et := range []string{
		events.EventBookingCreated,
		events.EventBookingPaidToggled,
		events.EventBookingsDeleted,
		events.EventPaymentVerified,
		events.EventPaymentVerificationFailed,
	} {
		f.bus.Subscribe(et, func(e *events.Event) error {
			f.events = append(f.events, e.Type)
			return nil
		})
	}

	uploader := storage.NewLocal(f.uploads, "http://files.test", &logger)
	tokens := seqTokens()

	f.catalog = NewCatalogService(db, &logger)
	require.NoError(t, f.catalog.Seed(context.Background(), []models.EventPackage{
		{ID: "basic", Name: "Basic", Price: "499"},
		{ID: "pro", Name: "Pro", Price: "999"},
	}))
	f.bookings = NewBookingService(db, f.catalog, uploader, f.bus, policy, "slotbook", tokens, &logger)
	f.payments = NewPaymentService(db, f.catalog, f.gateway, f.bus, "INR", "rcpt", tokens, &logger)
	f.site = NewSiteConfigService(db, uploader, "slotbook", models.DefaultWorkshop(), &logger)
	f.students = NewStudentService(db, &logger)
	f.auth = NewAuthService(db, repository.NewMemoryStateRepository(), "test-secret", 0, &logger)
	return f
}

func validForm() validation.Form {
	return validation.Form{
		Name:         "Asha",
		Phone:        "9876543210",
		Address:      "Pune",
		PackagePrice: "499",
	}
}
