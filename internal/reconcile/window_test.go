package reconcile

import (
	"errors"
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	cases := []struct {
		name    string
		kind    string
		start   string
		end     string
		want    WindowKind
		wantErr error
	}{
		{name: "empty means all", kind: "", want: WindowAll},
		{name: "today", kind: "today", want: WindowToday},
		{name: "this week", kind: "thisWeek", want: WindowThisWeek},
		{name: "custom", kind: "custom", start: "2024-03-01", end: "2024-03-05", want: WindowCustom},
		{name: "custom open ended", kind: "custom", start: "2024-03-01", want: WindowCustom},
		{name: "unknown", kind: "yesterday", wantErr: ErrUnknownWindow},
		{name: "bad date", kind: "custom", start: "01/03/2024", wantErr: ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := ParseWindow(tc.kind, tc.start, tc.end, time.UTC)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if w.Kind != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, w.Kind)
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	custom := Window{
		Kind:  WindowCustom,
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		name   string
		window Window
		at     time.Time
		want   bool
	}{
		{name: "all", window: Window{Kind: WindowAll}, at: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC), want: true},
		{name: "today late evening", window: Window{Kind: WindowToday}, at: time.Date(2024, 3, 13, 23, 59, 0, 0, time.UTC), want: true},
		{name: "today midnight", window: Window{Kind: WindowToday}, at: time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), want: true},
		{name: "yesterday", window: Window{Kind: WindowToday}, at: time.Date(2024, 3, 12, 23, 59, 0, 0, time.UTC), want: false},
		{name: "week starts monday", window: Window{Kind: WindowThisWeek}, at: time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC), want: true},
		{name: "previous sunday", window: Window{Kind: WindowThisWeek}, at: time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC), want: false},
		{name: "month first day", window: Window{Kind: WindowThisMonth}, at: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), want: true},
		{name: "previous month", window: Window{Kind: WindowThisMonth}, at: time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC), want: false},
		{name: "custom end day inclusive", window: custom, at: time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC), want: true},
		{name: "custom after end", window: custom, at: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), want: false},
		{name: "custom open end", window: Window{Kind: WindowCustom, Start: custom.Start}, at: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.window.Contains(tc.at, now, time.UTC); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestWindowUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, kolkata)
	// 20:00 UTC on the 12th is 01:30 on the 13th in Kolkata.
	at := time.Date(2024, 3, 12, 20, 0, 0, 0, time.UTC)
	if !(Window{Kind: WindowToday}).Contains(at, now, kolkata) {
		t.Fatal("expected order to fall on the local day")
	}
}
