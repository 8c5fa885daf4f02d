package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"butchery-analytics-service/internal/analytics"
	"butchery-analytics-service/internal/config"
	"butchery-analytics-service/internal/db"
	httpapi "butchery-analytics-service/internal/http"
	"butchery-analytics-service/internal/http/handlers"
	"butchery-analytics-service/internal/ingest"
	"butchery-analytics-service/internal/logger"
	"butchery-analytics-service/internal/pricing"
	"butchery-analytics-service/internal/queue"
	"butchery-analytics-service/internal/rates"
	"butchery-analytics-service/internal/revenue"
	"butchery-analytics-service/internal/services"
	"butchery-analytics-service/internal/storage"
	"butchery-analytics-service/internal/utils"
	"butchery-analytics-service/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	loc := utils.LoadLocation(cfg.ReportTimezone)
	log.Info("report timezone", zap.String("timezone", loc.String()))

	registry, err := rates.LoadRegistry(cfg.ButcherRegistry)
	if err != nil {
		log.Fatal("butcher registry load failed", zap.String("path", cfg.ButcherRegistry), zap.Error(err))
	}
	log.Info("butcher registry loaded", zap.Int("butchers", len(registry.IDs())))

	var pool *pgxpool.Pool
	if cfg.NeedsDatabase() {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()
	}

	source, err := newOrderSource(cfg, pool, loc, log)
	if err != nil {
		log.Fatal("order source setup failed", zap.Error(err))
	}
	prices, closePrices, err := newPriceLookup(cfg, pool, registry)
	if err != nil {
		log.Fatal("price source setup failed", zap.Error(err))
	}
	defer closePrices()

	rateResolver := rates.NewResolver(registry, rates.NewLogDiagnostics(log))
	revenueResolver := revenue.NewResolver()
	engine := analytics.NewEngine(registry, loc, analytics.WithRevenueSource(revenueResolver))

	var publisher *storage.ExportPublisher
	storeCfg := storage.Config{
		Endpoint:        cfg.ObjectStoreEndpoint,
		Region:          cfg.ObjectStoreRegion,
		AccessKeyID:     cfg.ObjectStoreAccessKeyID,
		SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
		Bucket:          cfg.ObjectStoreBucket,
		PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
		StorageClass:    cfg.ObjectStoreStorageClass,
	}
	if storeCfg.Enabled() {
		objectStore, err := storage.NewObjectStore(ctx, storeCfg)
		if err != nil {
			log.Fatal("object store setup failed", zap.Error(err))
		}
		publisher = storage.NewExportPublisher(objectStore, loc, cfg.ExportLinkTTL)
		log.Info("export publishing enabled", zap.String("bucket", cfg.ObjectStoreBucket))
	} else {
		log.Info("export publishing disabled (object store not configured)")
	}

	svc := services.NewAnalyticsService(services.AnalyticsDeps{
		Source:    source,
		Engine:    engine,
		Registry:  registry,
		Rates:     rateResolver,
		Priced:    revenue.NewPricedAllocator(revenueResolver, prices, rateResolver, log),
		Publisher: publisher,
		Logger:    log,
	})

	hub := ws.NewHub(log, func(scope string) (any, bool) {
		result, ok := svc.Live(scope)
		if !ok {
			return nil, false
		}
		return result.Value, true
	}, cfg.WSHeartbeatInterval)
	svc.Subscribe(func(scope string, result services.LiveResult) {
		hub.Broadcast(scope, result.Value)
	})

	if cfg.RabbitMQURL != "" {
		qc, err := startEventConsumer(ctx, cfg, svc, log)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq setup failed", zap.Error(err))
			}
			log.Warn("rabbitmq setup failed; continuing without live recompute", zap.Error(err))
		}
		if qc != nil {
			defer qc.Close()
		}
	} else {
		log.Info("order event consumer disabled (RABBITMQ_URL is empty)")
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(log, cfg, handlers.New(svc, log, cfg), hub),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("analytics api ready", zap.String("base", "/api/analytics"))
		log.Info("analytics ws ready", zap.String("base", "/ws/analytics"))
		log.Info("analytics service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

func newOrderSource(cfg config.Config, pool *pgxpool.Pool, loc *time.Location, log *zap.Logger) (ingest.Source, error) {
	switch cfg.OrderSource {
	case config.SourcePostgres:
		return ingest.NewPostgresSource(pool, log), nil
	case config.SourceSheet:
		if cfg.OrdersWorkbook == "" {
			return nil, errors.New("ORDERS_WORKBOOK is required for the sheet order source")
		}
		return ingest.NewSheetSource(cfg.OrdersWorkbook, cfg.OrdersSheet, loc, log), nil
	default:
		return nil, errors.New("unknown ORDER_SOURCE " + cfg.OrderSource)
	}
}

// newPriceLookup returns a nil lookup for PRICE_SOURCE=none; item stats then
// carry no purchase cost and no estimates.
func newPriceLookup(cfg config.Config, pool *pgxpool.Pool, registry rates.Registry) (revenue.PriceLookup, func(), error) {
	noop := func() {}
	switch cfg.PriceSource {
	case config.SourcePostgres:
		return pricing.NewCache(pricing.NewPostgresMenu(pool), cfg.PriceCacheTTL), noop, nil
	case config.SourceSheet:
		if cfg.MenuWorkbook == "" {
			return nil, noop, errors.New("MENU_WORKBOOK is required for the sheet price source")
		}
		menu, err := pricing.OpenSheetMenu(cfg.MenuWorkbook, registry)
		if err != nil {
			return nil, noop, err
		}
		return pricing.NewCache(menu, cfg.PriceCacheTTL), func() { _ = menu.Close() }, nil
	case config.SourceNone, "":
		return nil, noop, nil
	default:
		return nil, noop, errors.New("unknown PRICE_SOURCE " + cfg.PriceSource)
	}
}

func startEventConsumer(ctx context.Context, cfg config.Config, svc *services.AnalyticsService, log *zap.Logger) (*queue.Client, error) {
	qc, err := queue.New(cfg.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	topology := queue.Topology{
		Exchange:   cfg.EventsExchange,
		Queue:      cfg.EventsQueue,
		BindingKey: queue.OrderEventsBinding,
	}
	if err := qc.DeclareTopology(topology); err != nil {
		_ = qc.Close()
		return nil, err
	}

	if cfg.RabbitMQWorkerMode != "daemon" {
		log.Info("order event consumer disabled", zap.String("mode", cfg.RabbitMQWorkerMode))
		return qc, nil
	}

	processor := queue.NewEventProcessor(svc, qc, cfg.EventsExchange, log)
	log.Info("order event consumer enabled", zap.String("queue", cfg.EventsQueue))
	go func() {
		err := qc.ConsumeWithRetry(ctx, cfg.EventsQueue, processor.Handle, cfg.ConsumerMaxRetries, cfg.ConsumerRetryDelay, log)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("order event consumer stopped", zap.Error(err))
		}
	}()
	return qc, nil
}
