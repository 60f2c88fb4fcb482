// Package pricing computes GST and payable totals for package base amounts.
package pricing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"slotbook/internal/models"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ComputeGST returns round(base * 0.18) with halves rounded up.
// Integer arithmetic keeps the result exact for every amount.
func ComputeGST(base int64) int64 {
	if base < 0 {
		return -ComputeGST(-base)
	}
	return (base*models.GSTRatePercent + 50) / 100
}

// ComputeTotal returns base plus its GST.
func ComputeTotal(base int64) int64 {
	return base + ComputeGST(base)
}

// MinorUnits converts a whole-currency amount to gateway minor units.
func MinorUnits(amount int64) int64 {
	return amount * 100
}

// Breakdown splits a base amount into its GST parts.
func Breakdown(base int64) models.PriceBreakdown {
	gst := ComputeGST(base)
	return models.PriceBreakdown{
		BaseAmount:  base,
		GSTAmount:   gst,
		TotalAmount: base + gst,
		GSTRate:     models.GSTRatePercent,
	}
}

// ParseBase reads a catalog price string as a non-negative base amount.
func ParseBase(price string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(price), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, price)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, price)
	}
	return v, nil
}
