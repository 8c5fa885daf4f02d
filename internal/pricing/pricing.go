package pricing

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrPriceNotFound  = errors.New("purchase price not found")
	ErrUnknownButcher = errors.New("butcher not configured")
)

// ParsePrice reads a price cell such as "₹ 1,250.50" or "420".
func ParsePrice(text string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, text)
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

func sameSize(a, b string) bool {
	return strings.EqualFold(strings.ReplaceAll(strings.TrimSpace(a), " ", ""), strings.ReplaceAll(strings.TrimSpace(b), " ", ""))
}
