package handlers

import (
	"errors"
	"net/http"
	"time"

	"butchery-analytics-service/internal/analytics"
	"butchery-analytics-service/internal/reconcile"
	"butchery-analytics-service/internal/services"
	"butchery-analytics-service/internal/storage"
	"butchery-analytics-service/internal/utils"
	"butchery-analytics-service/pkg/response"

	"go.uber.org/zap"
)

type LiveDashboard struct {
	RunID       string              `json:"runId"`
	Token       uint64              `json:"token"`
	Committed   bool                `json:"committed"`
	CompletedAt time.Time           `json:"completedAt"`
	Dashboard   analytics.Dashboard `json:"dashboard"`
}

func liveDashboard(result services.LiveResult, committed bool) LiveDashboard {
	return LiveDashboard{
		RunID:       result.RunID,
		Token:       result.Token,
		Committed:   committed,
		CompletedAt: result.CompletedAt,
		Dashboard:   result.Value,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	key := analyticsCacheKey("dashboard", services.InputKey(q))
	if cached, ok := h.cache.get(key); ok {
		response.Success(w, cached)
		return
	}

	d, err := h.Analytics.Dashboard(r.Context(), q)
	if err != nil {
		h.Logger.Error("analytics dashboard failed", zap.String("scope", q.Scope()), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch dashboard")
		return
	}
	h.cache.set(key, d)
	response.Success(w, d)
}

func (h *Handler) OrdersOverview(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	key := analyticsCacheKey("overview", services.InputKey(q))
	if cached, ok := h.cache.get(key); ok {
		response.Success(w, cached)
		return
	}

	o, err := h.Analytics.OrdersOverview(r.Context(), q)
	if err != nil {
		h.Logger.Error("analytics orders overview failed", zap.String("scope", q.Scope()), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch orders overview")
		return
	}
	h.cache.set(key, o)
	response.Success(w, o)
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	list, err := h.Analytics.Orders(r.Context(), q)
	if err != nil {
		h.Logger.Error("analytics orders failed", zap.String("scope", q.Scope()), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch orders")
		return
	}
	response.SuccessWithMeta(w, list, map[string]any{
		"count":  len(list),
		"scope":  q.Scope(),
		"window": q.Window.Kind,
	})
}

func (h *Handler) ItemStats(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	stats, err := h.Analytics.ItemStats(r.Context(), q)
	if err != nil {
		h.Logger.Error("analytics item stats failed", zap.String("scope", q.Scope()), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch item statistics")
		return
	}
	response.Success(w, stats)
}

func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	butcherID := readQuery(r, "butcher")
	if butcherID == "" || butcherID == reconcile.AllButchers {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "butcher is required")
		return
	}
	response.Success(w, h.Analytics.Rates(butcherID, readQuery(r, "category")))
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	body, err := h.Analytics.ExportCSV(r.Context(), q)
	if err != nil {
		h.Logger.Error("analytics csv export failed", zap.String("scope", q.Scope()), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export orders")
		return
	}
	today := utils.CurrentDateIn(h.Analytics.Engine().Location())
	response.Attachment(w, "text/csv; charset=utf-8", exportFilename("orders", q, today, services.FormatCSV), body)
}

func (h *Handler) ReportPDF(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	body, err := h.Analytics.ReportPDF(r.Context(), q)
	if err != nil {
		h.Logger.Error("analytics pdf report failed", zap.String("scope", q.Scope()), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render report")
		return
	}
	today := utils.CurrentDateIn(h.Analytics.Engine().Location())
	response.Attachment(w, "application/pdf", exportFilename("report", q, today, services.FormatPDF), body)
}

func (h *Handler) PublishExport(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	published, err := h.Analytics.PublishExport(r.Context(), q, readQuery(r, "format"))
	switch {
	case err == nil:
		response.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": published})
	case errors.Is(err, services.ErrUnknownFormat):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, storage.ErrObjectStoreDisabled):
		response.Error(w, http.StatusServiceUnavailable, "EXPORTS_DISABLED", "Object store is not configured")
	default:
		h.Logger.Error("analytics export publish failed", zap.String("scope", q.Scope()), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to publish export")
	}
}

func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	loc := h.Analytics.Engine().Location()
	day := time.Now().In(loc)
	if raw := readQuery(r, "date"); raw != "" {
		parsed, err := time.ParseInLocation(reconcile.DateLayout, raw, loc)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	keys, err := h.Analytics.ListExports(r.Context(), day)
	switch {
	case err == nil:
		response.Success(w, keys)
	case errors.Is(err, storage.ErrObjectStoreDisabled):
		response.Error(w, http.StatusServiceUnavailable, "EXPORTS_DISABLED", "Object store is not configured")
	default:
		h.Logger.Error("analytics export list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list exports")
	}
}

func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	result, committed, err := h.Analytics.Recompute(r.Context(), q)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		h.Logger.Error("analytics recompute failed", zap.String("scope", q.Scope()), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to recompute analytics")
		return
	}
	response.Success(w, liveDashboard(result, committed))
}

func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	scope := analytics.Query{ButcherID: readQuery(r, "butcher")}.Scope()
	result, ok := h.Analytics.Live(scope)
	if !ok {
		response.Error(w, http.StatusNotFound, "NOT_READY", "No live dashboard for "+scope)
		return
	}
	response.Success(w, liveDashboard(result, true))
}
