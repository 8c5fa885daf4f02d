package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type WindowKind string

const (
	WindowAll       WindowKind = "all"
	WindowToday     WindowKind = "today"
	WindowThisWeek  WindowKind = "thisWeek"
	WindowThisMonth WindowKind = "thisMonth"
	WindowCustom    WindowKind = "custom"
)

const DateLayout = "2006-01-02"

var (
	ErrUnknownWindow = errors.New("unknown window")
	ErrInvalidDate   = errors.New("invalid date")
)

// Window selects orders by calendar day. Start and End are only read for
// custom windows; a zero bound leaves that side open.
type Window struct {
	Kind  WindowKind
	Start time.Time
	End   time.Time
}

// ParseWindow reads the window query parameters. An empty kind means all.
func ParseWindow(kind, start, end string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	switch WindowKind(strings.TrimSpace(kind)) {
	case "", WindowAll:
		return Window{Kind: WindowAll}, nil
	case WindowToday:
		return Window{Kind: WindowToday}, nil
	case WindowThisWeek:
		return Window{Kind: WindowThisWeek}, nil
	case WindowThisMonth:
		return Window{Kind: WindowThisMonth}, nil
	case WindowCustom:
		w := Window{Kind: WindowCustom}
		var err error
		if w.Start, err = parseDate(start, loc); err != nil {
			return Window{}, err
		}
		if w.End, err = parseDate(end, loc); err != nil {
			return Window{}, err
		}
		return w, nil
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownWindow, kind)
	}
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// Bounds returns the first and last calendar day of the window, both
// inclusive. A zero time means the side is open.
func (w Window) Bounds(now time.Time, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.Local
	}
	today := Day(now, loc)
	switch w.Kind {
	case WindowToday:
		return today, today
	case WindowThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -offset)
		return monday, monday.AddDate(0, 0, 6)
	case WindowThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return first, first.AddDate(0, 1, -1)
	case WindowCustom:
		if !w.Start.IsZero() {
			from = Day(w.Start, loc)
		}
		if !w.End.IsZero() {
			to = Day(w.End, loc)
		}
		return from, to
	default:
		return time.Time{}, time.Time{}
	}
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time, now time.Time, loc *time.Location) bool {
	if w.Kind == "" || w.Kind == WindowAll {
		return true
	}
	if loc == nil {
		loc = time.Local
	}
	from, to := w.Bounds(now, loc)
	day := Day(t, loc)
	if !from.IsZero() && day.Before(from) {
		return false
	}
	if !to.IsZero() && day.After(to) {
		return false
	}
	return true
}

// Day truncates t to midnight of its calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
