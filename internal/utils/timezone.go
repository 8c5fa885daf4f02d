package utils

import (
	"strings"
	"time"
)

const DefaultTimezone = "Asia/Kolkata"

// LoadLocation resolves tz, falling back to DefaultTimezone and then UTC.
func LoadLocation(tz string) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		tz = DefaultTimezone
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// CurrentDateIn formats today's date in loc.
func CurrentDateIn(loc *time.Location) string {
	return time.Now().In(loc).Format("2006-01-02")
}
