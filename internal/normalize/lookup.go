package normalize

import (
	"sort"
	"strings"
)

// Upstream maps are keyed by raw labels on some submissions and by canonical
// names on others. The probes below are tried in the order listed in Lookup.

// LookupCanonical probes m with the canonical form of name.
func LookupCanonical[V any](m map[string]V, name string) (V, bool) {
	v, ok := m[CanonicalName(name)]
	return v, ok
}

// LookupRaw probes m with name exactly as written.
func LookupRaw[V any](m map[string]V, name string) (V, bool) {
	v, ok := m[name]
	return v, ok
}

// LookupScan returns the first entry, in key order, whose key canonicalizes
// to the same name.
func LookupScan[V any](m map[string]V, name string) (V, bool) {
	var zero V
	if len(m) == 0 {
		return zero, false
	}
	target := CanonicalName(name)
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if CanonicalName(key) == target {
			return m[key], true
		}
	}
	return zero, false
}

// LookupSized probes the size-qualified keys "{canonical}_{size}" and
// "{raw}_{size}".
func LookupSized[V any](m map[string]V, name string, size string) (V, bool) {
	var zero V
	size = strings.TrimSpace(size)
	if size == "" {
		return zero, false
	}
	if v, ok := m[CanonicalName(name)+"_"+size]; ok {
		return v, true
	}
	if v, ok := m[name+"_"+size]; ok {
		return v, true
	}
	return zero, false
}

// Lookup runs every probe in precedence order.
func Lookup[V any](m map[string]V, name string, size string) (V, bool) {
	if v, ok := LookupCanonical(m, name); ok {
		return v, true
	}
	if v, ok := LookupRaw(m, name); ok {
		return v, true
	}
	if v, ok := LookupScan(m, name); ok {
		return v, true
	}
	return LookupSized(m, name, size)
}
