package oddsmath

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidOdd = errors.New("invalid odd")

// AmericanToDecimal converts American odds to decimal odds.
// +150 → 2.50, -150 → 1.67
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("%w: American odds cannot be 0", ErrInvalidOdd)
	}
	a := decimal.NewFromInt(int64(american))
	hundred := decimal.NewFromInt(100)
	if american > 0 {
		return a.Div(hundred).Add(decimal.NewFromInt(1)).InexactFloat64(), nil
	}
	return hundred.Div(a.Neg()).Add(decimal.NewFromInt(1)).InexactFloat64(), nil
}

// ParseDecimal parses a decimal odd as bookmakers publish it ("1.85", "2,10").
func ParseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOdd, s)
	}
	f := d.InexactFloat64()
	if !Valid(f) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOdd, s)
	}
	return f, nil
}

// Valid reports whether odd is a usable decimal odd: finite and at least 1.0.
func Valid(odd float64) bool {
	return !math.IsNaN(odd) && !math.IsInf(odd, 0) && odd >= 1.0
}

// ImpliedProbability returns 1/odd.
func ImpliedProbability(odd float64) (float64, error) {
	if !Valid(odd) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidOdd, odd)
	}
	return 1.0 / odd, nil
}
