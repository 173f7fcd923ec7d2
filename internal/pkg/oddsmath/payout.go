package oddsmath

import "fmt"

// PayoutRate returns the bookmaker payout rate of a two-way market in percent:
// 100 / (1/o1 + 1/o2). ok is false when either odd is not Valid.
func PayoutRate(o1, o2 float64) (rate float64, ok bool) {
	if !Valid(o1) || !Valid(o2) {
		return 0, false
	}
	return 100.0 / (1.0/o1 + 1.0/o2), true
}

// CrossPayout is the payout of backing one side at o1 and the other at o2,
// as a fraction (1.0 = break even). A value above 1 is a surebet.
func CrossPayout(o1, o2 float64) (float64, bool) {
	rate, ok := PayoutRate(o1, o2)
	return rate / 100.0, ok
}

func IsSurebet(o1, o2 float64) bool {
	p, ok := CrossPayout(o1, o2)
	return ok && p > 1
}

// TrueOddsMPTO removes the margin of a complete market with the margin
// proportional to odds method: true_i = n*o_i / (n - (S-1)*o_i), S being the
// sum of implied probabilities.
func TrueOddsMPTO(odds []float64) ([]float64, error) {
	n := float64(len(odds))
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 outcomes, got %d", len(odds))
	}
	var sum float64
	for _, o := range odds {
		p, err := ImpliedProbability(o)
		if err != nil {
			return nil, err
		}
		sum += p
	}
	out := make([]float64, len(odds))
	for i, o := range odds {
		den := n - (sum-1)*o
		if den <= 0 {
			return nil, fmt.Errorf("margin too large for odd %v", o)
		}
		out[i] = n * o / den
	}
	return out, nil
}

// Boost is how much odd beats the fair price: odd/trueOdd - 1.
func Boost(odd, trueOdd float64) float64 {
	return odd/trueOdd - 1
}

// Kelly returns the Kelly fraction of bankroll for odd given the fair odd,
// divided by fraction (4 = quarter Kelly).
func Kelly(odd, trueOdd, fraction float64) float64 {
	if odd <= 1 || trueOdd <= 0 || fraction == 0 {
		return 0
	}
	p := 1 / trueOdd
	return ((odd-1)*p - (1 - p)) / (odd - 1) / fraction
}

// Stake converts a Kelly fraction into the stake column of the export.
func Stake(kelly, stake float64) float64 {
	return kelly * stake * 100
}
