package format

import (
	"math"
	"testing"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.56, "$1,234.56"},
		{-5, "-$5.00"},
		{1000000, "$1,000,000.00"},
		{0.005, "$0.01"},
		{-0.004, "$0.00"},
		{1515, "$1,515.00"},
		{math.NaN(), "$0.00"},
		{math.Inf(1), "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Money(tt.in); got != tt.want {
				t.Errorf("Money(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{20, "+20.00%"},
		{-3.1, "-3.10%"},
		{0, "+0.00%"},
		{math.Copysign(0, -1), "+0.00%"},
		{-0.001, "+0.00%"},
		{12.345, "+12.35%"},
		{math.NaN(), "+0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Percent(tt.in); got != tt.want {
				t.Errorf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSigned(t *testing.T) {
	if got := Signed(100); got != "+$100.00" {
		t.Errorf("Signed(100) = %q", got)
	}
	if got := Signed(-20); got != "-$20.00" {
		t.Errorf("Signed(-20) = %q", got)
	}
	if got := Signed(0); got != "$0.00" {
		t.Errorf("Signed(0) = %q", got)
	}
}

func TestShares(t *testing.T) {
	if got := Shares(10); got != "10" {
		t.Errorf("Shares(10) = %q", got)
	}
	if got := Shares(2.5); got != "2.5" {
		t.Errorf("Shares(2.5) = %q", got)
	}
}
