package models

const (
	PaymentModeCash   = "cash"
	PaymentModeOnline = "online"
)

const (
	OrderStatusCreated   = "created"
	OrderStatusPaid      = "paid"
	OrderStatusAbandoned = "abandoned"
)

const (
	WorkingInITYes = "yes"
	WorkingInITNo  = "no"
)

const (
	// DefaultPackagePrice is selected when the catalog names no default.
	DefaultPackagePrice = "499"

	// DefaultCurrency is the gateway currency.
	DefaultCurrency = "INR"

	// GSTRatePercent is applied to every package base amount.
	GSTRatePercent = 18

	// IdempotencyHeader carries the client-generated submission key.
	IdempotencyHeader = "Idempotency-Key"

	// IdempotencyTTL is how long a replayable response is kept, in seconds.
	IdempotencyTTL = 24 * 60 * 60

	// OrderTTL is how long an unpaid order stays open, in seconds.
	OrderTTL = 30 * 60

	// LoginRateLimit is the number of login attempts per window.
	LoginRateLimit = 10

	// LoginRateWindow is the login limiter window, in seconds.
	LoginRateWindow = 60

	// SiteConfigCacheTTL is the client-side cache lifetime, in seconds.
	SiteConfigCacheTTL = 5 * 60
)
