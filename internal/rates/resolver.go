package rates

import (
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	DefaultMarkupRate     = 0.05
	NoMarkupRate          = 0.00
	DefaultCommissionRate = 0.0
)

const (
	NoticeMissingButcher  = "missing_butcher"
	NoticeMissingCategory = "missing_category"
)

// Notice describes a configuration gap hit while resolving a rate.
type Notice struct {
	Kind      string
	ButcherID string
	Category  string
}

// Diagnostics receives configuration notices. Reporting never blocks
// resolution.
type Diagnostics interface {
	Report(n Notice)
}

// LogDiagnostics writes notices to a zap logger and counts them.
type LogDiagnostics struct {
	logger *zap.Logger
	count  atomic.Int64
}

func NewLogDiagnostics(logger *zap.Logger) *LogDiagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDiagnostics{logger: logger}
}

func (d *LogDiagnostics) Report(n Notice) {
	d.count.Add(1)
	msg := "commission rate not configured"
	if n.Kind == NoticeMissingButcher {
		msg = "butcher config missing"
	}
	d.logger.Warn(msg,
		zap.String("kind", n.Kind),
		zap.String("butcherId", n.ButcherID),
		zap.String("category", n.Category),
	)
}

// Count returns the number of notices reported so far.
func (d *LogDiagnostics) Count() int64 {
	return d.count.Load()
}

// Resolver looks up commission and markup rates for a butcher/category pair.
type Resolver struct {
	registry Registry
	diag     Diagnostics
}

func NewResolver(registry Registry, diag Diagnostics) *Resolver {
	return &Resolver{registry: registry, diag: diag}
}

// CommissionRate resolves to 0 and reports a notice when the butcher or the
// category is not configured.
func (r *Resolver) CommissionRate(butcherID string, category string) float64 {
	cfg, ok := r.butcher(butcherID)
	if !ok {
		r.report(Notice{Kind: NoticeMissingButcher, ButcherID: butcherID, Category: category})
		return DefaultCommissionRate
	}
	if rate, ok := lookupRate(cfg.CommissionRates, category); ok {
		return rate
	}
	r.report(Notice{Kind: NoticeMissingCategory, ButcherID: butcherID, Category: category})
	return DefaultCommissionRate
}

// MarkupRate falls back to 5%, except beef and mutton categories of a
// configured butcher which carry no markup.
func (r *Resolver) MarkupRate(butcherID string, category string) float64 {
	cfg, ok := r.butcher(butcherID)
	if !ok {
		return DefaultMarkupRate
	}
	if rate, ok := lookupRate(cfg.MarkupRates, category); ok {
		return rate
	}
	lower := strings.ToLower(category)
	if strings.Contains(lower, "beef") || strings.Contains(lower, "mutton") {
		return NoMarkupRate
	}
	return DefaultMarkupRate
}

func (r *Resolver) butcher(id string) (ButcherConfig, bool) {
	if r == nil || r.registry == nil {
		return ButcherConfig{}, false
	}
	return r.registry.Butcher(id)
}

func (r *Resolver) report(n Notice) {
	if r != nil && r.diag != nil {
		r.diag.Report(n)
	}
}

// lookupRate tries the exact key, then a case-insensitive match in key order.
func lookupRate(rates map[string]float64, category string) (float64, bool) {
	if len(rates) == 0 {
		return 0, false
	}
	if rate, ok := rates[category]; ok {
		return sanitizeRate(rate), true
	}
	keys := make([]string, 0, len(rates))
	for key := range rates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	target := strings.TrimSpace(category)
	for _, key := range keys {
		if strings.EqualFold(strings.TrimSpace(key), target) {
			return sanitizeRate(rates[key]), true
		}
	}
	return 0, false
}

func sanitizeRate(rate float64) float64 {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
