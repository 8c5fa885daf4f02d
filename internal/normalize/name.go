package normalize

import "strings"

// nameSeparator splits "Local - English - Script" item labels.
const nameSeparator = " - "

// CanonicalName returns the English segment of a three-language item label,
// or the trimmed label itself when it is not a composite.
func CanonicalName(raw string) string {
	parts := strings.Split(raw, nameSeparator)
	if len(parts) >= 3 {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(raw)
}

// SameItem reports whether two labels resolve to the same canonical name.
func SameItem(a, b string) bool {
	return CanonicalName(a) == CanonicalName(b)
}
