package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ListCacheNoop   = "noop"
	ListCacheMemory = "memory"
	ListCacheRedis  = "redis"
)

type Config struct {
	Env      string
	HTTPPort string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	AutoMigrate bool
	SeedDemo    bool

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ListCacheMode string
	ListCacheTTL  time.Duration

	JWTIssuer       string
	JWTAudience     string
	JWTAccessSecret string
	JWTAccessTTL    time.Duration

	LoginRateLimit      int
	LoginRateWindow     time.Duration
	LoginRateLimitRedis bool

	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageRegion     string
	StorageUseSSL     bool
	StoragePresignTTL time.Duration
	AssetBaseURL      string

	ReadinessProbeTimeout time.Duration
	ShutdownTimeout       time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	cfg := &Config{
		Env:                      env,
		HTTPPort:                 getEnv("HTTP_PORT", "8080"),
		CORSAllowedOrigins:       splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		MaxBodyBytes:             int64(getEnvInt("HTTP_MAX_BODY_BYTES", 1<<20)),
		AutoMigrate:              getEnvBool("DB_AUTO_MIGRATE", isLocalLikeEnv(env)),
		SeedDemo:                 getEnvBool("SEED_DEMO_DATA", false),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  getEnvInt("REDIS_DB", 0),
		ListCacheMode:            strings.ToLower(getEnv("LIST_CACHE_MODE", ListCacheMemory)),
		JWTIssuer:                getEnv("JWT_ISSUER", "storefront-admin-console"),
		JWTAudience:              getEnv("JWT_AUDIENCE", "storefront-admin-console-api"),
		JWTAccessSecret:          os.Getenv("JWT_ACCESS_SECRET"),
		LoginRateLimit:           getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateLimitRedis:      getEnvBool("LOGIN_RATE_LIMIT_REDIS", false),
		BootstrapAdminEmail:      strings.TrimSpace(strings.ToLower(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),
		BootstrapAdminPassword:   os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		StorageEndpoint:          os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:         os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:         os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:            getEnv("STORAGE_BUCKET", "product-images"),
		StorageRegion:            getEnv("STORAGE_REGION", "us-east-1"),
		StorageUseSSL:            getEnvBool("STORAGE_USE_SSL", false),
		AssetBaseURL:             strings.TrimRight(os.Getenv("ASSET_BASE_URL"), "/"),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "storefront-admin-console"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", !isLocalLikeEnv(env)),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", !isLocalLikeEnv(env)),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", !isLocalLikeEnv(env)),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{key: "LIST_CACHE_TTL", def: "30s", dst: &cfg.ListCacheTTL},
		{key: "JWT_ACCESS_TTL", def: "15m", dst: &cfg.JWTAccessTTL},
		{key: "LOGIN_RATE_WINDOW", def: "1m", dst: &cfg.LoginRateWindow},
		{key: "STORAGE_PRESIGN_TTL", def: "15m", dst: &cfg.StoragePresignTTL},
		{key: "READINESS_PROBE_TIMEOUT", def: "1s", dst: &cfg.ReadinessProbeTimeout},
		{key: "SHUTDOWN_TIMEOUT", def: "20s", dst: &cfg.ShutdownTimeout},
		{key: "OTEL_METRICS_EXPORT_INTERVAL", def: "10s", dst: &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTAccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 chars")
	}
	if c.JWTAccessTTL <= 0 || c.JWTAccessTTL > 12*time.Hour {
		errs = append(errs, "JWT_ACCESS_TTL must be between 1s and 12h")
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, "HTTP_MAX_BODY_BYTES must be > 0")
	}
	if c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0 {
		errs = append(errs, "LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be > 0")
	}
	if c.LoginRateLimitRedis && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when LOGIN_RATE_LIMIT_REDIS=true")
	}
	switch c.ListCacheMode {
	case ListCacheNoop, ListCacheMemory:
	case ListCacheRedis:
		if c.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR is required when LIST_CACHE_MODE=redis")
		}
	default:
		errs = append(errs, "LIST_CACHE_MODE must be one of noop, memory, redis")
	}
	if c.ListCacheMode != ListCacheNoop && c.ListCacheTTL <= 0 {
		errs = append(errs, "LIST_CACHE_TTL must be > 0")
	}
	if c.BootstrapAdminEmail != "" && len(c.BootstrapAdminPassword) < 12 {
		errs = append(errs, "BOOTSTRAP_ADMIN_PASSWORD must be at least 12 chars when BOOTSTRAP_ADMIN_EMAIL is set")
	}
	if c.StorageEndpoint != "" && (c.StorageAccessKey == "" || c.StorageSecretKey == "") {
		errs = append(errs, "STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENDPOINT is set")
	}
	if c.StorageEndpoint != "" && (c.StoragePresignTTL <= 0 || c.StoragePresignTTL > 7*24*time.Hour) {
		errs = append(errs, "STORAGE_PRESIGN_TTL must be between 1s and 7d")
	}
	if !isLocalLikeEnv(c.Env) && strings.HasPrefix(c.DatabaseURL, "sqlite://") {
		errs = append(errs, "sqlite DATABASE_URL is only allowed in local environments")
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}

func splitIntCSV(v string) ([]int, error) {
	parts := splitCSV(v)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}
