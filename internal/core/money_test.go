package core

import (
	"math"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestCentsFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{100.01, 10001},
		{0.1 + 0.2, 30},
		{1.005, 101},
		{19.999, 2000},
		{0, 0},
	}
	for _, tc := range cases {
		if got := CentsFromFloat(tc.in); got != tc.out {
			t.Errorf("CentsFromFloat(%v) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(1499.9999); got != 1500 {
		t.Errorf("Round2(1499.9999) = %v, want 1500", got)
	}
	if got := Round2(-12.345); got != -12.35 {
		t.Errorf("Round2(-12.345) = %v, want -12.35", got)
	}
	if got := Round2(math.NaN()); !math.IsNaN(got) {
		t.Errorf("Round2(NaN) = %v, want NaN", got)
	}
	if got := Round2(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("Round2(+Inf) = %v, want +Inf", got)
	}
}

func TestFormatEuros(t *testing.T) {
	if got := FormatEuros(1234); got != "€12,34" {
		t.Errorf("FormatEuros(1234) = %q", got)
	}
	if got := FormatEuros(-5); got != "-€0,05" {
		t.Errorf("FormatEuros(-5) = %q", got)
	}
}
