package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"butchery-analytics-service/internal/analytics"
	"butchery-analytics-service/internal/export"
	"butchery-analytics-service/internal/ingest"
	"butchery-analytics-service/internal/orders"
	"butchery-analytics-service/internal/rates"
	"butchery-analytics-service/internal/recompute"
	"butchery-analytics-service/internal/reconcile"
	"butchery-analytics-service/internal/revenue"
	"butchery-analytics-service/internal/storage"

	"go.uber.org/zap"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// LiveResult is a committed live dashboard for one scope.
type LiveResult = recompute.Result[analytics.Dashboard]

// Listener is told about every committed live dashboard.
type Listener func(scope string, result LiveResult)

// RateView is the resolved pair of rates for one butcher and category.
type RateView struct {
	ButcherID      string  `json:"butcherId"`
	Category       string  `json:"category"`
	Commission     float64 `json:"commission"`
	CommissionText string  `json:"commissionText"`
	Markup         float64 `json:"markup"`
	MarkupText     string  `json:"markupText"`
}

type AnalyticsDeps struct {
	Source    ingest.Source
	Engine    *analytics.Engine
	Registry  rates.Registry
	Rates     *rates.Resolver
	Priced    *revenue.PricedAllocator
	Publisher *storage.ExportPublisher
	Logger    *zap.Logger
}

// AnalyticsService loads orders from the configured source and runs them
// through the aggregation engine. It also owns one live result slot per scope.
type AnalyticsService struct {
	source    ingest.Source
	engine    *analytics.Engine
	registry  rates.Registry
	rates     *rates.Resolver
	priced    *revenue.PricedAllocator
	publisher *storage.ExportPublisher
	logger    *zap.Logger

	mu        sync.Mutex
	live      map[string]*recompute.Store[analytics.Dashboard]
	listeners []Listener
}

func NewAnalyticsService(deps AnalyticsDeps) *AnalyticsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		source:    deps.Source,
		engine:    deps.Engine,
		registry:  deps.Registry,
		rates:     deps.Rates,
		priced:    deps.Priced,
		publisher: deps.Publisher,
		logger:    logger,
		live:      make(map[string]*recompute.Store[analytics.Dashboard]),
	}
}

func (s *AnalyticsService) Engine() *analytics.Engine {
	return s.engine
}

func (s *AnalyticsService) load(ctx context.Context, q analytics.Query) ([]orders.Order, error) {
	list, err := s.source.LoadOrders(ctx, q.Scope())
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return list, nil
}

func (s *AnalyticsService) Dashboard(ctx context.Context, q analytics.Query) (analytics.Dashboard, error) {
	list, err := s.load(ctx, q)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	return s.engine.Dashboard(list, q).Rounded(), nil
}

func (s *AnalyticsService) OrdersOverview(ctx context.Context, q analytics.Query) (analytics.OrdersOverview, error) {
	list, err := s.load(ctx, q)
	if err != nil {
		return analytics.OrdersOverview{}, err
	}
	return s.engine.OrdersOverview(list, q).Rounded(), nil
}

// Orders returns the filtered, deduplicated order list, newest first.
func (s *AnalyticsService) Orders(ctx context.Context, q analytics.Query) ([]orders.Order, error) {
	list, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.engine.Reconcile(list, q), nil
}

// ItemStats prices every item of the reconciled orders.
func (s *AnalyticsService) ItemStats(ctx context.Context, q analytics.Query) ([]revenue.ItemStat, error) {
	list, err := s.Orders(ctx, q)
	if err != nil {
		return nil, err
	}
	stats, err := s.priced.ItemStats(ctx, list)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].Quantity = analytics.Kilograms(stats[i].Quantity)
		stats[i].Weight = analytics.Kilograms(stats[i].Weight)
		stats[i].Revenue = analytics.Money(stats[i].Revenue)
		stats[i].PurchaseCost = analytics.Money(stats[i].PurchaseCost)
		stats[i].Commission = analytics.Money(stats[i].Commission)
	}
	return stats, nil
}

func (s *AnalyticsService) Rates(butcherID, category string) RateView {
	commission := s.rates.CommissionRate(butcherID, category)
	markup := s.rates.MarkupRate(butcherID, category)
	return RateView{
		ButcherID:      butcherID,
		Category:       category,
		Commission:     commission,
		CommissionText: rates.FormatRate(commission),
		Markup:         markup,
		MarkupText:     rates.FormatRate(markup),
	}
}

func (s *AnalyticsService) ExportCSV(ctx context.Context, q analytics.Query) ([]byte, error) {
	list, err := s.Orders(ctx, q)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WriteOrdersCSV(&buf, list, export.CSVOptions{Registry: s.registry, Location: s.engine.Location()}); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *AnalyticsService) ReportPDF(ctx context.Context, q analytics.Query) ([]byte, error) {
	d, err := s.Dashboard(ctx, q)
	if err != nil {
		return nil, err
	}
	buf, err := export.RenderSummaryPDF(d, s.engine.Location())
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PublishExport renders the requested format and uploads it to the object
// store.
func (s *AnalyticsService) PublishExport(ctx context.Context, q analytics.Query, format string) (storage.Published, error) {
	if s.publisher == nil {
		return storage.Published{}, storage.ErrObjectStoreDisabled
	}

	var (
		body        []byte
		contentType string
		err         error
	)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		format, contentType = FormatCSV, "text/csv; charset=utf-8"
		body, err = s.ExportCSV(ctx, q)
	case FormatPDF:
		format, contentType = FormatPDF, "application/pdf"
		body, err = s.ReportPDF(ctx, q)
	default:
		return storage.Published{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return storage.Published{}, err
	}

	published, err := s.publisher.Publish(ctx, format, contentType, body)
	if err != nil {
		return storage.Published{}, err
	}
	s.logger.Info("export published",
		zap.String("scope", q.Scope()),
		zap.String("format", format),
		zap.String("key", published.Key),
	)
	return published, nil
}

// Subscribe registers l for every later commit of any scope.
func (s *AnalyticsService) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *AnalyticsService) notify(scope string, result LiveResult) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(scope, result)
	}
}

func (s *AnalyticsService) store(scope string) *recompute.Store[analytics.Dashboard] {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.live[scope]
	if !ok {
		st = recompute.NewStore[analytics.Dashboard](
			recompute.OnCommit[analytics.Dashboard](func(r LiveResult) { s.notify(scope, r) }),
			recompute.WithLogger[analytics.Dashboard](s.logger.With(zap.String("scope", scope))),
		)
		s.live[scope] = st
	}
	return st
}

// Recompute refreshes the live dashboard of the query's scope. Triggers for
// an identical query that overlap are served by one computation.
func (s *AnalyticsService) Recompute(ctx context.Context, q analytics.Query) (LiveResult, bool, error) {
	return s.store(q.Scope()).Trigger(ctx, InputKey(q), func(ctx context.Context) (analytics.Dashboard, error) {
		return s.Dashboard(ctx, q)
	})
}

// Live returns the latest committed dashboard for scope.
func (s *AnalyticsService) Live(scope string) (LiveResult, bool) {
	if strings.TrimSpace(scope) == "" {
		scope = reconcile.AllButchers
	}
	s.mu.Lock()
	st, ok := s.live[scope]
	s.mu.Unlock()
	if !ok {
		return LiveResult{}, false
	}
	return st.Latest()
}

// InputKey identifies the full filter state of q.
func InputKey(q analytics.Query) string {
	w := q.Window
	kind := w.Kind
	if kind == "" {
		kind = reconcile.WindowAll
	}
	parts := []string{q.Scope(), string(kind)}
	if kind == reconcile.WindowCustom {
		parts = append(parts, dateKey(w.Start), dateKey(w.End))
	}
	return strings.Join(parts, "|")
}

func dateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(reconcile.DateLayout)
}

// ListExports returns the keys of exports published on day.
func (s *AnalyticsService) ListExports(ctx context.Context, day time.Time) ([]string, error) {
	if s.publisher == nil {
		return nil, storage.ErrObjectStoreDisabled
	}
	return s.publisher.List(ctx, day)
}
