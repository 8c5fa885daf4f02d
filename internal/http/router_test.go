package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"butchery-analytics-service/internal/analytics"
	"butchery-analytics-service/internal/config"
	"butchery-analytics-service/internal/http/handlers"
	"butchery-analytics-service/internal/orders"
	"butchery-analytics-service/internal/rates"
	"butchery-analytics-service/internal/revenue"
	"butchery-analytics-service/internal/services"
	"butchery-analytics-service/internal/ws"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type emptySource struct{}

func (emptySource) LoadOrders(ctx context.Context, butcherID string) ([]orders.Order, error) {
	return nil, nil
}

type noPrices struct{}

func (noPrices) PurchasePrice(ctx context.Context, butcherID, itemName, size string) (revenue.PriceQuote, error) {
	return revenue.PriceQuote{}, nil
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := rates.NewStaticRegistry(nil)
	resolver := rates.NewResolver(registry, nil)
	svc := services.NewAnalyticsService(services.AnalyticsDeps{
		Source:   emptySource{},
		Engine:   analytics.NewEngine(registry, time.UTC),
		Registry: registry,
		Rates:    resolver,
		Priced:   revenue.NewPricedAllocator(revenue.NewResolver(), noPrices{}, resolver, zap.NewNop()),
	})
	hub := ws.NewHub(zap.NewNop(), func(scope string) (any, bool) {
		return map[string]string{"scope": scope}, true
	}, time.Minute)
	cfg := config.Config{Env: "production"}
	server := httptest.NewServer(NewRouter(zap.NewNop(), cfg, handlers.New(svc, zap.NewNop(), cfg), hub))
	t.Cleanup(server.Close)
	return server
}

func TestRoutes(t *testing.T) {
	server := testServer(t)
	cases := []struct {
		method string
		path   string
		status int
	}{
		{method: http.MethodGet, path: "/health", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/analytics/dashboard?window=today", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/analytics/orders-overview", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/analytics/item-stats", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/analytics/report.pdf", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/analytics/exports", status: http.StatusServiceUnavailable},
		{method: http.MethodPost, path: "/api/analytics/dashboard", status: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/api/analytics/unknown", status: http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, server.URL+tc.path, nil)
			if err != nil {
				t.Fatalf("build request: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
			if resp.Header.Get("X-Request-Id") == "" {
				t.Fatal("expected X-Request-Id header")
			}
		})
	}
}

func TestWebsocketThroughMiddleware(t *testing.T) {
	server := testServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/analytics?butcher=kak"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var msg ws.Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if msg.Type != ws.MessageState || msg.Scope != "kak" {
		t.Fatalf("unexpected message %+v", msg)
	}
}
