package analytics

import (
	"strings"
	"time"

	"butchery-analytics-service/internal/lineitem"
	"butchery-analytics-service/internal/orders"
	"butchery-analytics-service/internal/rates"
	"butchery-analytics-service/internal/reconcile"
	"butchery-analytics-service/internal/revenue"
)

// Query is the filter state every view is keyed by.
type Query struct {
	ButcherID string
	Window    reconcile.Window
}

// Scope names the vendor selection, "all" when none is selected.
func (q Query) Scope() string {
	id := strings.TrimSpace(q.ButcherID)
	if id == "" {
		return reconcile.AllButchers
	}
	return id
}

func (q Query) singleButcher() bool {
	return q.Scope() != reconcile.AllButchers
}

type Summary struct {
	TotalOrders          int     `json:"totalOrders"`
	CompletedOrders      int     `json:"completedOrders"`
	TotalRevenue         float64 `json:"totalRevenue"`
	TotalWeight          float64 `json:"totalWeight"`
	AverageOrderValue    float64 `json:"averageOrderValue"`
	AvgCompletionMinutes float64 `json:"avgCompletionMinutes"`
}

type Dashboard struct {
	ButcherID         string               `json:"butcherId"`
	ButcherName       string               `json:"butcherName"`
	Window            reconcile.WindowKind `json:"window"`
	GeneratedAt       time.Time            `json:"generatedAt"`
	Summary           Summary              `json:"summary"`
	MostSold          []ItemSummary        `json:"mostSold"`
	PriceComparison   []ItemPrice          `json:"priceComparison"`
	RevenueByCategory []CategoryRevenue    `json:"revenueByCategory"`
	PeakHours         []HourBucket         `json:"peakHours"`
	StatusBreakdown   []StatusCount        `json:"statusBreakdown"`
	Trend             []TrendPoint         `json:"trend"`
	Rejections        RejectionStats       `json:"rejections"`
	CutTypes          []CutTypeSummary     `json:"cutTypes,omitempty"`
}

type OrdersOverview struct {
	ButcherID       string               `json:"butcherId"`
	Window          reconcile.WindowKind `json:"window"`
	GeneratedAt     time.Time            `json:"generatedAt"`
	TotalOrders     int                  `json:"totalOrders"`
	StatusBreakdown []StatusCount        `json:"statusBreakdown"`
	Trend           []TrendPoint         `json:"trend"`
	Rejections      RejectionStats       `json:"rejections"`
}

// Engine folds reconciled orders into the reporting views. The registry is
// read-only and injected by the caller.
type Engine struct {
	revenue  lineitem.RevenueSource
	registry rates.Registry
	location *time.Location
	now      func() time.Time
}

type Option func(*Engine)

// WithClock overrides the wall clock used for relative windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRevenueSource replaces the default revenue strategy chain.
func WithRevenueSource(source lineitem.RevenueSource) Option {
	return func(e *Engine) { e.revenue = source }
}

func NewEngine(registry rates.Registry, location *time.Location, opts ...Option) *Engine {
	if location == nil {
		location = time.Local
	}
	e := &Engine{
		revenue:  revenue.NewResolver(),
		registry: registry,
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Location() *time.Location {
	return e.location
}

// Reconcile applies the query's vendor and window filters.
func (e *Engine) Reconcile(list []orders.Order, q Query) []orders.Order {
	return reconcile.Reconcile(list, reconcile.Filter{
		ButcherID: q.ButcherID,
		Window:    q.Window,
		Now:       e.now,
		Location:  e.location,
	})
}

// Dashboard reconciles list and computes every view over the result.
func (e *Engine) Dashboard(list []orders.Order, q Query) Dashboard {
	reconciled := e.Reconcile(list, q)
	lines := lineitem.BuildAll(reconciled, e.revenue)

	d := Dashboard{
		ButcherID:         q.Scope(),
		ButcherName:       e.butcherName(q),
		Window:            windowKind(q.Window),
		GeneratedAt:       e.now(),
		Summary:           summarize(reconciled, lines),
		MostSold:          MostSold(lines),
		PriceComparison:   PriceComparison(lines),
		RevenueByCategory: RevenueByCategory(lines),
		PeakHours:         PeakHours(reconciled, e.location),
		StatusBreakdown:   StatusBreakdown(reconciled),
		Trend:             Trend(reconciled, e.revenue, e.location),
		Rejections:        Rejections(reconciled, RejectedOnly),
	}
	if q.singleButcher() && rates.IsMeatButcher(e.registry, q.Scope()) {
		d.CutTypes = CutTypes(lines)
	}
	return d
}

// OrdersOverview is the order-centric view. It counts declined orders as
// rejections.
func (e *Engine) OrdersOverview(list []orders.Order, q Query) OrdersOverview {
	reconciled := e.Reconcile(list, q)
	return OrdersOverview{
		ButcherID:       q.Scope(),
		Window:          windowKind(q.Window),
		GeneratedAt:     e.now(),
		TotalOrders:     len(reconciled),
		StatusBreakdown: StatusBreakdown(reconciled),
		Trend:           Trend(reconciled, e.revenue, e.location),
		Rejections:      Rejections(reconciled, RejectedOrDeclined),
	}
}

func (e *Engine) butcherName(q Query) string {
	if !q.singleButcher() {
		return "All butchers"
	}
	return rates.ButcherName(e.registry, q.Scope())
}

func windowKind(w reconcile.Window) reconcile.WindowKind {
	if w.Kind == "" {
		return reconcile.WindowAll
	}
	return w.Kind
}

func summarize(list []orders.Order, lines []lineitem.Line) Summary {
	s := Summary{TotalOrders: len(list)}
	for _, line := range lines {
		s.TotalRevenue += line.Revenue
		s.TotalWeight += line.Kilograms
	}
	samples := 0
	minutes := 0.0
	for _, o := range list {
		if o.HasStatus(orders.StatusCompleted) {
			s.CompletedOrders++
		}
		if m, ok := o.PreparationMinutes(); ok {
			minutes += m
			samples++
		}
	}
	if s.TotalOrders > 0 {
		s.AverageOrderValue = s.TotalRevenue / float64(s.TotalOrders)
	}
	if samples > 0 {
		s.AvgCompletionMinutes = minutes / float64(samples)
	}
	return s
}

// Rounded returns a copy with presentation rounding applied.
func (d Dashboard) Rounded() Dashboard {
	d.Summary.TotalRevenue = Money(d.Summary.TotalRevenue)
	d.Summary.TotalWeight = Kilograms(d.Summary.TotalWeight)
	d.Summary.AverageOrderValue = Money(d.Summary.AverageOrderValue)
	d.Summary.AvgCompletionMinutes = round(d.Summary.AvgCompletionMinutes, 1)
	d.MostSold = roundItems(d.MostSold)
	d.PriceComparison = roundPrices(d.PriceComparison)
	d.RevenueByCategory = roundCategories(d.RevenueByCategory)
	d.StatusBreakdown = roundStatuses(d.StatusBreakdown)
	d.Trend = roundTrend(d.Trend)
	d.Rejections = roundRejections(d.Rejections)
	d.CutTypes = roundCutTypes(d.CutTypes)
	return d
}

func (o OrdersOverview) Rounded() OrdersOverview {
	o.StatusBreakdown = roundStatuses(o.StatusBreakdown)
	o.Trend = roundTrend(o.Trend)
	o.Rejections = roundRejections(o.Rejections)
	return o
}
