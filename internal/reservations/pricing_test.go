package reservations

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

func TestComputeQuoteExactDecimalTotal(t *testing.T) {
	quote, err := ComputeQuote(
		date(t, "2025-06-01"),
		date(t, "2025-06-04"),
		decimal.RequireFromString("150.00"),
	)
	if err != nil {
		t.Fatalf("compute quote: %v", err)
	}
	if quote.Days != 3 {
		t.Fatalf("expected 3 days, got %d", quote.Days)
	}
	if !quote.Total.Equal(decimal.RequireFromString("450.00")) {
		t.Fatalf("expected total 450.00, got %s", quote.Total)
	}
}

func TestComputeQuoteFractionalRate(t *testing.T) {
	quote, err := ComputeQuote(
		date(t, "2025-03-10"),
		date(t, "2025-03-17"),
		decimal.RequireFromString("38.50"),
	)
	if err != nil {
		t.Fatalf("compute quote: %v", err)
	}
	if quote.Days != 7 {
		t.Fatalf("expected 7 days, got %d", quote.Days)
	}
	if !quote.Total.Equal(decimal.RequireFromString("269.50")) {
		t.Fatalf("expected total 269.50, got %s", quote.Total)
	}
}

func TestComputeQuotePartialDayRoundsUp(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	quote, err := ComputeQuote(start, end, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("compute quote: %v", err)
	}
	if quote.Days != 2 {
		t.Fatalf("expected 30h to round up to 2 days, got %d", quote.Days)
	}
}

func TestComputeQuoteReversedRangeUsesAbsoluteDiff(t *testing.T) {
	quote, err := ComputeQuote(
		date(t, "2025-06-04"),
		date(t, "2025-06-01"),
		decimal.NewFromInt(100),
	)
	if err != nil {
		t.Fatalf("compute quote: %v", err)
	}
	if quote.Days != 3 {
		t.Fatalf("expected 3 days from reversed range, got %d", quote.Days)
	}
}

func TestComputeQuoteSameDayRejected(t *testing.T) {
	_, err := ComputeQuote(
		date(t, "2025-06-01"),
		date(t, "2025-06-01"),
		decimal.NewFromInt(100),
	)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestComputeQuoteNonPositiveRateRejected(t *testing.T) {
	for _, rate := range []string{"0", "-12.50"} {
		_, err := ComputeQuote(
			date(t, "2025-06-01"),
			date(t, "2025-06-03"),
			decimal.RequireFromString(rate),
		)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("rate %s: expected validation error, got %v", rate, err)
		}
	}
}

func TestAmountMinorUnits(t *testing.T) {
	cases := []struct {
		total string
		want  int64
	}{
		{"450.00", 45000},
		{"269.50", 26950},
		{"0.01", 1},
		{"19.995", 2000},
	}
	for _, tc := range cases {
		got := AmountMinorUnits(decimal.RequireFromString(tc.total))
		if got != tc.want {
			t.Fatalf("total %s: expected %d minor units, got %d", tc.total, tc.want, got)
		}
	}
}
