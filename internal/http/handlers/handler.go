package handlers

import (
	"butchery-analytics-service/internal/config"
	"butchery-analytics-service/internal/services"

	"go.uber.org/zap"
)

type Handler struct {
	Analytics *services.AnalyticsService
	Logger    *zap.Logger
	Config    config.Config

	cache *analyticsCache
}

func New(svc *services.AnalyticsService, logger *zap.Logger, cfg config.Config) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		Analytics: svc,
		Logger:    logger,
		Config:    cfg,
		cache:     newAnalyticsCache(cfg.AnalyticsCacheTTL),
	}
	// A committed live dashboard means cached views of that scope are stale.
	svc.Subscribe(func(scope string, _ services.LiveResult) {
		h.cache.invalidateScope(scope)
	})
	return h
}
