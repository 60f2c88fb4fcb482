package registry

import (
	"strings"

	"slotbook/internal/models"
)

const (
	FilterAll     = "all"
	StatusPaid    = "paid"
	StatusPending = "pending"
)

// Filter narrows the booking list. Empty fields behave like FilterAll.
type Filter struct {
	Query       string
	PaymentMode string
	Package     string
	PaidStatus  string
}

// Project returns the bookings matching every criterion of f, in input order.
// It never mutates records.
func Project(records []models.Booking, f Filter) []models.Booking {
	query := strings.TrimSpace(f.Query)
	lowered := strings.ToLower(query)

	out := make([]models.Booking, 0, len(records))
	for i := range records {
		b := &records[i]
		if !matchesQuery(b, query, lowered) {
			continue
		}
		if !matchesExact(f.PaymentMode, b.PaymentMode) || !matchesExact(f.Package, b.PackagePrice) {
			continue
		}
		if !matchesPaid(f.PaidStatus, b.IsPaid) {
			continue
		}
		out = append(out, *b)
	}
	return out
}

func matchesQuery(b *models.Booking, raw, lowered string) bool {
	if raw == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Name), lowered) ||
		strings.Contains(strings.ToLower(b.Token), lowered) ||
		strings.Contains(strings.ToLower(b.Address), lowered) ||
		strings.Contains(b.Phone, raw)
}

func matchesExact(want, got string) bool {
	return want == "" || want == FilterAll || want == got
}

func matchesPaid(status string, paid bool) bool {
	switch status {
	case StatusPaid:
		return paid
	case StatusPending:
		return !paid
	default:
		return true
	}
}
