package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"butchery-analytics-service/internal/analytics"
	"butchery-analytics-service/internal/reconcile"
	"butchery-analytics-service/pkg/response"

	"go.uber.org/zap"
)

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func readQuery(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// parseAnalyticsQuery reads butcher, window, start and end.
func parseAnalyticsQuery(r *http.Request, loc *time.Location) (analytics.Query, error) {
	window, err := reconcile.ParseWindow(readQuery(r, "window"), readQuery(r, "start"), readQuery(r, "end"), loc)
	if err != nil {
		return analytics.Query{}, err
	}
	return analytics.Query{ButcherID: readQuery(r, "butcher"), Window: window}, nil
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) (analytics.Query, bool) {
	q, err := parseAnalyticsQuery(r, h.Analytics.Engine().Location())
	if err != nil {
		writeQueryError(w, err)
		return analytics.Query{}, false
	}
	return q, true
}

func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconcile.ErrUnknownWindow), errors.Is(err, reconcile.ErrInvalidDate):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	}
}

func exportFilename(prefix string, q analytics.Query, date string, ext string) string {
	scope := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, q.Scope())
	return prefix + "-" + scope + "-" + date + "." + ext
}
