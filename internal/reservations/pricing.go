package reservations

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
)

// Quote is the authoritative pricing output for one booking. It is derived
// server-side only; client-supplied totals are never read.
type Quote struct {
	Days  int
	Total decimal.Decimal
}

// ComputeQuote derives the rental duration and total cost from the date range
// and the vehicle's per-day rate. days = ceil(|end-start| / 24h); same-day
// bookings yield zero days and are rejected.
func ComputeQuote(start, end time.Time, pricePerDay decimal.Decimal) (Quote, error) {
	if pricePerDay.Sign() <= 0 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "price per day must be positive").WithCheck("invalid_amount")
	}

	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))
	if days <= 0 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "rental must span at least one day").WithCheck("invalid_date_range")
	}

	return Quote{
		Days:  days,
		Total: pricePerDay.Mul(decimal.NewFromInt(int64(days))),
	}, nil
}

// AmountMinorUnits converts a currency-decimal total to the provider's minor
// units: round(total * 100).
func AmountMinorUnits(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
