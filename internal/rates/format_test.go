package rates

import (
	"math"
	"testing"
)

func TestParseRate(t *testing.T) {
	cases := []struct {
		input    string
		expected float64
	}{
		{"12.5", 0.125},
		{"12.5%", 0.125},
		{" 5 % ", 0.05},
		{"0", 0},
		{"100", 1},
		{"250", 1},
		{"-3", 0},
		{"abc", 0},
		{"", 0},
		{"NaN", 0},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseRate(tc.input); math.Abs(got-tc.expected) > 1e-12 {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestFormatRateRoundTrip(t *testing.T) {
	inputs := []string{"0", "0.5", "5", "7", "12.5", "33.33", "99.99", "100"}
	for _, in := range inputs {
		if got := FormatRate(ParseRate(in)); got != in+"%" {
			t.Fatalf("round trip of %s: expected %s%%, got %s", in, in, got)
		}
	}
}
