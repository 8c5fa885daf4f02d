package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDPropagates(t *testing.T) {
	cases := []struct {
		name   string
		header string
		value  string
	}{
		{name: "request id", header: "X-Request-Id", value: "req-1"},
		{name: "correlation id", header: "X-Correlation-Id", value: "corr-1"},
		{name: "generated", header: "", value: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFrom(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if seen == "" || rec.Header().Get("X-Request-Id") != seen {
				t.Fatalf("expected matching request id, got %q / %q", seen, rec.Header().Get("X-Request-Id"))
			}
			if tc.value != "" && seen != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, seen)
			}
		})
	}
}

func TestTelemetryLogsRoutePattern(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := chi.NewRouter()
	r.Use(RequestID())
	r.Use(Telemetry(zap.New(core)))
	r.Get("/api/analytics/{view}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard?butcher=kak&window=week", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for a client error, got %v", entries[0].Level)
	}
	fields := entries[0].ContextMap()
	if fields["routePattern"] != "/api/analytics/{view}" {
		t.Fatalf("expected route pattern, got %v", fields["routePattern"])
	}
	if fields["status"] != int64(http.StatusTeapot) {
		t.Fatalf("expected status 418, got %v", fields["status"])
	}
	if fields["butcher"] != "kak" || fields["window"] != "week" {
		t.Fatalf("expected butcher kak and window week, got %v / %v", fields["butcher"], fields["window"])
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		status int
		want   zapcore.Level
	}{
		{status: http.StatusOK, want: zapcore.InfoLevel},
		{status: http.StatusSwitchingProtocols, want: zapcore.InfoLevel},
		{status: http.StatusNotFound, want: zapcore.WarnLevel},
		{status: http.StatusServiceUnavailable, want: zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		if got := levelFor(tc.status); got != tc.want {
			t.Fatalf("expected %v for %d, got %v", tc.want, tc.status, got)
		}
	}
}

func TestQuantile(t *testing.T) {
	values := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	cases := []struct {
		q    float64
		want time.Duration
	}{
		{q: 0, want: 1},
		{q: 0.5, want: 5},
		{q: 0.95, want: 10},
		{q: 1, want: 10},
	}

	for _, tc := range cases {
		if got := quantile(values, tc.q); got != tc.want {
			t.Fatalf("expected %d for q=%v, got %d", tc.want, tc.q, got)
		}
	}
	if got := quantile(nil, 0.5); got != 0 {
		t.Fatalf("expected 0 for no samples, got %d", got)
	}
}

func TestLatencyBookKeepsRecentRequests(t *testing.T) {
	book := newLatencyBook(3)
	for _, v := range []time.Duration{100, 1, 2, 3} {
		book.observe("GET /x", v)
	}
	p50, p95 := book.observe("GET /x", 4)
	if p50 != 3 || p95 != 4 {
		t.Fatalf("expected p50 3 and p95 4, got %d and %d", p50, p95)
	}
}
