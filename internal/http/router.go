package httpapi

import (
	"net/http"

	"butchery-analytics-service/internal/config"
	"butchery-analytics-service/internal/http/handlers"
	"butchery-analytics-service/internal/middleware"
	"butchery-analytics-service/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(logger *zap.Logger, cfg config.Config, h *handlers.Handler, hub *ws.Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Content-Type",
				"X-Requested-With",
				"X-Request-Id",
				"Cache-Control",
			},
			ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
			MaxAge:         300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", h.Health)

	r.Route("/api/analytics", func(r chi.Router) {
		r.Use(setResponseHeader("Cache-Control", "no-store"))
		r.Get("/dashboard", h.Dashboard)
		r.Get("/orders-overview", h.OrdersOverview)
		r.Get("/orders", h.Orders)
		r.Get("/item-stats", h.ItemStats)
		r.Get("/rates", h.Rates)
		r.Get("/export.csv", h.ExportCSV)
		r.Get("/report.pdf", h.ReportPDF)
		r.Get("/exports", h.ListExports)
		r.Post("/exports", h.PublishExport)
		r.Post("/recompute", h.Recompute)
		r.Get("/live", h.Live)
	})

	if hub != nil {
		r.Get("/ws/analytics", hub.ServeAnalytics)
	}

	return r
}

func setResponseHeader(name string, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(name, value)
			next.ServeHTTP(w, r)
		})
	}
}
