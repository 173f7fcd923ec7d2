package oddsmath

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) < eps }

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		in   int
		want float64
	}{
		{150, 2.5},
		{100, 2.0},
		{-200, 1.5},
		{-110, 1.0 + 100.0/110.0},
	}
	for _, tt := range tests {
		got, err := AmericanToDecimal(tt.in)
		if err != nil {
			t.Fatalf("AmericanToDecimal(%d) error = %v", tt.in, err)
		}
		if math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("AmericanToDecimal(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := AmericanToDecimal(0); !errors.Is(err, ErrInvalidOdd) {
		t.Errorf("AmericanToDecimal(0) error = %v, want ErrInvalidOdd", err)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1.85", 1.85, false},
		{" 2,10 ", 2.1, false},
		{"1", 1, false},
		{"0.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDecimal(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDecimal(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !almostEqual(got, tt.want) {
			t.Errorf("ParseDecimal(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPayoutRate(t *testing.T) {
	tests := []struct {
		name   string
		o1, o2 float64
		want   float64
		wantOK bool
	}{
		{"even", 2.0, 2.0, 100, true},
		{"uneven fair", 1.5, 3.0, 100, true},
		{"with margin", 1.9, 1.9, 95, true},
		{"below one", 0.9, 2.0, 0, false},
		{"nan", math.NaN(), 2.0, 0, false},
		{"inf", math.Inf(1), 2.0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PayoutRate(tt.o1, tt.o2)
			if ok != tt.wantOK {
				t.Fatalf("PayoutRate(%v, %v) ok = %v, want %v", tt.o1, tt.o2, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PayoutRate(%v, %v) = %v, want %v", tt.o1, tt.o2, got, tt.want)
			}
		})
	}
}

func TestIsSurebet(t *testing.T) {
	if !IsSurebet(2.2, 2.1) {
		t.Errorf("IsSurebet(2.2, 2.1) = false, want true")
	}
	if IsSurebet(1.9, 1.9) {
		t.Errorf("IsSurebet(1.9, 1.9) = true, want false")
	}
}

func TestTrueOddsMPTO(t *testing.T) {
	got, err := TrueOddsMPTO([]float64{2.0, 2.0})
	if err != nil {
		t.Fatalf("TrueOddsMPTO() error = %v", err)
	}
	for i, o := range got {
		if !almostEqual(o, 2.0) {
			t.Errorf("fair market true[%d] = %v, want 2", i, o)
		}
	}

	got, err = TrueOddsMPTO([]float64{1.9, 1.9})
	if err != nil {
		t.Fatalf("TrueOddsMPTO() error = %v", err)
	}
	var sum float64
	for _, o := range got {
		sum += 1 / o
	}
	if !almostEqual(sum, 1) {
		t.Errorf("true probabilities sum = %v, want 1", sum)
	}

	if _, err := TrueOddsMPTO([]float64{2.0}); err == nil {
		t.Errorf("TrueOddsMPTO(single) error = nil")
	}
}

func TestKellyAndStake(t *testing.T) {
	// Fair 2.0, offered 2.2: full Kelly = (1.2*0.5 - 0.5)/1.2
	k := Kelly(2.2, 2.0, 4)
	want := (1.2*0.5 - 0.5) / 1.2 / 4
	if !almostEqual(k, want) {
		t.Errorf("Kelly(2.2, 2.0, 4) = %v, want %v", k, want)
	}
	if !almostEqual(Stake(k, 20), want*20*100) {
		t.Errorf("Stake() = %v", Stake(k, 20))
	}
	if Kelly(1.0, 2.0, 4) != 0 {
		t.Errorf("Kelly at odd 1.0 should be 0")
	}
	if !almostEqual(Boost(2.2, 2.0), 0.1) {
		t.Errorf("Boost(2.2, 2.0) = %v, want 0.1", Boost(2.2, 2.0))
	}
}
