package normalize

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

var kilogramTokens = []string{"kg", "kilo"}

var gramTokens = []string{"g", "gm", "gms", "gram", "grams"}

// Units accepted on an order item's unit field.
var (
	kilogramUnits = map[string]bool{"kg": true, "kgs": true, "kilo": true, "kilos": true, "kilogram": true, "kilograms": true}
	gramUnits     = map[string]bool{"g": true, "gm": true, "gms": true, "gram": true, "grams": true}
)

// ToKilograms converts free-form weight text ("1.5kg", "500 g", "2") into
// kilograms. Bare numbers are kilograms. Anything unparsable yields 0.
func ToKilograms(text string) float64 {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0
	}

	if containsAny(s, kilogramTokens) {
		return finite(leadingNumber(s))
	}
	if hasGramToken(s) {
		return finite(leadingNumber(s) / 1000)
	}

	if text, n := scanNumber(s); text != "" && n == len(s) {
		return finite(leadingNumber(s))
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(value)
}

// QuantityKilograms converts an item quantity to kilograms using its unit.
// Counted items weigh quantity × size when the size is itself a weight
// ("500g" packs), otherwise they carry no weight.
func QuantityKilograms(quantity float64, unit string, size string) float64 {
	quantity = finite(quantity)
	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case kilogramUnits[u]:
		return quantity
	case gramUnits[u]:
		return quantity / 1000
	}
	size = strings.TrimSpace(size)
	if _, err := strconv.ParseFloat(size, 64); err == nil {
		// a bare number is a cut size, not a pack weight
		return 0
	}
	return quantity * ToKilograms(size)
}

// leadingNumber parses the numeric prefix of s ("1.5kg" → 1.5). A comma
// followed by exactly three digits groups thousands ("1,000g"); any other
// comma is a decimal separator ("1,5 kg").
func leadingNumber(s string) float64 {
	text, _ := scanNumber(s)
	if text == "" {
		return 0
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return value
}

// scanNumber returns the numeric prefix of s rewritten with a '.' decimal
// point, and the number of bytes it consumed.
func scanNumber(s string) (string, int) {
	var b strings.Builder
	seenDot := false
	i := 0
scan:
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == ',' && !seenDot && b.Len() > 0 && thousandsGroup(s[i+1:]):
		case (c == '.' || c == ',') && !seenDot:
			seenDot = true
			b.WriteByte('.')
		default:
			break scan
		}
	}
	return b.String(), i
}

func thousandsGroup(rest string) bool {
	if len(rest) < 3 {
		return false
	}
	for k := 0; k < 3; k++ {
		if rest[k] < '0' || rest[k] > '9' {
			return false
		}
	}
	return len(rest) == 3 || rest[3] < '0' || rest[3] > '9'
}

// hasGramToken matches a gram unit written right after the number or as a
// separate word, so that words like "egg" do not count.
func hasGramToken(s string) bool {
	rest := strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsDigit(r) || r == '.' || r == ','
	})
	rest = strings.TrimSpace(rest)
	for _, token := range gramTokens {
		if rest == token {
			return true
		}
	}
	return false
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
