package rates

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseRate converts a percentage ("12.5", "12.5%") to a decimal rate
// (0.125). Malformed input yields 0; the result is clamped to [0, 1].
func ParseRate(text string) float64 {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "%"))
	if s == "" {
		return 0
	}
	pct, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return sanitizeRate(pct / 100)
}

// FormatRate renders a decimal rate as a percentage with at most two
// decimals ("12.5%").
func FormatRate(rate float64) string {
	return decimal.NewFromFloat(sanitizeRate(rate)).Mul(hundred).Round(2).String() + "%"
}
