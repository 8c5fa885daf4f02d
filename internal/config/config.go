package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SourcePostgres = "postgres"
	SourceSheet    = "sheet"
	SourceNone     = "none"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	DatabaseURL     string
	OrderSource     string
	OrdersWorkbook  string
	OrdersSheet     string
	PriceSource     string
	MenuWorkbook    string
	PriceCacheTTL   time.Duration
	ButcherRegistry string
	ReportTimezone  string

	RabbitMQURL        string
	RabbitMQWorkerMode string
	EventsExchange     string
	EventsQueue        string
	ConsumerMaxRetries int64
	ConsumerRetryDelay time.Duration

	CorsAllowedOrigins  []string
	WSHeartbeatInterval time.Duration
	ExportLinkTTL       time.Duration
	AnalyticsCacheTTL   time.Duration

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
}

func Load() Config {
	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		HTTPAddr: getEnv("HTTP_ADDR", ":8086"),

		DatabaseURL:     getEnv("DATABASE_URL", ""),
		OrderSource:     strings.ToLower(getEnv("ORDER_SOURCE", SourcePostgres)),
		OrdersWorkbook:  getEnv("ORDERS_WORKBOOK", ""),
		OrdersSheet:     getEnv("ORDERS_SHEET", "Orders"),
		PriceSource:     strings.ToLower(getEnv("PRICE_SOURCE", SourceNone)),
		MenuWorkbook:    getEnv("MENU_WORKBOOK", ""),
		PriceCacheTTL:   getEnvDuration("PRICE_CACHE_TTL", 10*time.Minute),
		ButcherRegistry: getEnv("BUTCHER_REGISTRY", "butchers.toml"),
		ReportTimezone:  getEnv("REPORT_TIMEZONE", "Asia/Kolkata"),

		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQWorkerMode: getEnv("RABBITMQ_WORKER_MODE", "daemon"),
		EventsExchange:     getEnv("RABBITMQ_EVENTS_EXCHANGE", "butchery.events"),
		EventsQueue:        getEnv("RABBITMQ_EVENTS_QUEUE", "butchery.analytics"),
		ConsumerMaxRetries: getEnvInt64("RABBITMQ_MAX_RETRIES", 5),
		ConsumerRetryDelay: getEnvDuration("RABBITMQ_RETRY_DELAY", 5*time.Second),

		CorsAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		WSHeartbeatInterval: getEnvDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second),
		ExportLinkTTL:       getEnvDuration("EXPORT_LINK_TTL", 15*time.Minute),
		AnalyticsCacheTTL:   getEnvDuration("ANALYTICS_CACHE_TTL", 30*time.Second),

		// Object store (S3 / Cloudflare R2)
		ObjectStoreEndpoint:        getEnvFirst([]string{"OBJECT_STORE_ENDPOINT", "R2_S3_ENDPOINT"}, ""),
		ObjectStoreRegion:          getEnvFirst([]string{"OBJECT_STORE_REGION", "R2_REGION"}, "auto"),
		ObjectStoreAccessKeyID:     getEnvFirst([]string{"OBJECT_STORE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID"}, ""),
		ObjectStoreSecretAccessKey: getEnvFirst([]string{"OBJECT_STORE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY"}, ""),
		ObjectStoreBucket:          getEnvFirst([]string{"OBJECT_STORE_BUCKET", "R2_BUCKET"}, ""),
		ObjectStorePublicBaseURL:   getEnvFirst([]string{"OBJECT_STORE_PUBLIC_BASE_URL", "R2_PUBLIC_BASE_URL"}, ""),
		ObjectStoreStorageClass:    getEnvFirst([]string{"OBJECT_STORE_STORAGE_CLASS", "R2_STORAGE_CLASS"}, ""),
	}

	if cfg.ConsumerMaxRetries < 0 {
		cfg.ConsumerMaxRetries = 0
	}

	if strings.TrimSpace(cfg.ObjectStoreEndpoint) == "" {
		accountID := strings.TrimSpace(os.Getenv("R2_ACCOUNT_ID"))
		if accountID != "" {
			cfg.ObjectStoreEndpoint = "https://" + accountID + ".r2.cloudflarestorage.com"
		}
	}

	return cfg
}

// NeedsDatabase reports whether any configured source reads from Postgres.
func (c Config) NeedsDatabase() bool {
	return c.OrderSource == SourcePostgres || c.PriceSource == SourcePostgres
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvFirst(keys []string, fallback string) string {
	for _, k := range keys {
		value := strings.TrimSpace(os.Getenv(k))
		if value != "" {
			return value
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
