package middleware

import (
	"bufio"
	"errors"
	"math"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// recentRequests is how many latencies each route keeps for its quantiles.
const recentRequests = 200

// statusWriter remembers what a handler sent so it can be logged afterwards.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(data []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(data)
	w.written += n
	return n, err
}

// Hijack lets the live analytics websocket upgrade through the wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// routeLatency is a ring of the most recent request durations for one route.
type routeLatency struct {
	ring []time.Duration
	next int
}

func (l *routeLatency) add(d time.Duration, size int) {
	if len(l.ring) < size {
		l.ring = append(l.ring, d)
		return
	}
	l.ring[l.next] = d
	l.next = (l.next + 1) % size
}

func (l *routeLatency) sorted() []time.Duration {
	out := slices.Clone(l.ring)
	slices.Sort(out)
	return out
}

// latencyBook tracks routeLatency per "METHOD pattern".
type latencyBook struct {
	mu     sync.Mutex
	size   int
	routes map[string]*routeLatency
}

func newLatencyBook(size int) *latencyBook {
	return &latencyBook{size: size, routes: make(map[string]*routeLatency)}
}

// observe records d for route and returns the route's current p50 and p95.
func (b *latencyBook) observe(route string, d time.Duration) (time.Duration, time.Duration) {
	b.mu.Lock()
	l, ok := b.routes[route]
	if !ok {
		l = &routeLatency{}
		b.routes[route] = l
	}
	l.add(d, b.size)
	recent := l.sorted()
	b.mu.Unlock()

	return quantile(recent, 0.5), quantile(recent, 0.95)
}

// quantile uses the nearest-rank method on an ascending slice.
func quantile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(q*float64(len(sorted)))) - 1
	rank = max(0, min(rank, len(sorted)-1))
	return sorted[rank]
}

func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Telemetry logs one line per request. Each line carries the butcher scope
// and analytics window the request asked for, plus rolling p50/p95 latency
// for the matched route. Server errors log at error level and client errors
// at warn.
func Telemetry(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	book := newLatencyBook(recentRequests)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			route := routeOf(r)
			p50, p95 := book.observe(r.Method+" "+route, elapsed)

			requestID := RequestIDFrom(r.Context())
			if requestID == "" {
				requestID = readRequestIDHeader(r)
			}
			butcher := strings.TrimSpace(r.URL.Query().Get("butcher"))
			if butcher == "" {
				butcher = "all"
			}

			status := sw.code()
			if ce := logger.Check(levelFor(status), "analytics request served"); ce != nil {
				ce.Write(
					zap.String("requestId", requestID),
					zap.String("method", r.Method),
					zap.String("routePattern", route),
					zap.String("butcher", butcher),
					zap.String("window", r.URL.Query().Get("window")),
					zap.Int("status", status),
					zap.Int("bytes", sw.written),
					zap.Int64("elapsedMs", elapsed.Milliseconds()),
					zap.Int64("p50Ms", p50.Milliseconds()),
					zap.Int64("p95Ms", p95.Milliseconds()),
				)
			}
		})
	}
}
