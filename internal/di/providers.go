package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/storefront-admin-console/internal/app"
	"github.com/sandeepkv93/storefront-admin-console/internal/config"
	"github.com/sandeepkv93/storefront-admin-console/internal/database"
	"github.com/sandeepkv93/storefront-admin-console/internal/health"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/handler"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/middleware"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/router"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
	"github.com/sandeepkv93/storefront-admin-console/internal/security"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
	"github.com/sandeepkv93/storefront-admin-console/internal/storage"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideListCacheStore,
	provideObjectStore,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewOrderRepository,
	repository.NewProductRepository,
	repository.NewNotificationRepository,
	repository.NewStaffRepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	wire.Bind(new(middleware.AccessTokenParser), new(*security.JWTManager)),
	permission.NewGate,
	wire.Bind(new(service.RBACAuthorizer), new(*permission.Gate)),
)

var ServiceSet = wire.NewSet(
	provideOrderService,
	provideProductService,
	provideNotificationService,
	provideAuthService,
	wire.Bind(new(service.OrderServiceInterface), new(*service.OrderServiceImpl)),
	wire.Bind(new(service.ProductServiceInterface), new(*service.ProductServiceImpl)),
	wire.Bind(new(service.NotificationServiceInterface), new(*service.NotificationServiceImpl)),
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewOrderHandler,
	handler.NewProductHandler,
	handler.NewNotificationHandler,
	provideLoginRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// MigrationRunner applies the schema and the seed outside the API process.
type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run(demo bool) (*database.SyncReport, error) {
	if err := database.Migrate(m.db); err != nil {
		return nil, err
	}
	return database.SeedSync(m.db, seedOptions(m.cfg, demo))
}

func (m *MigrationRunner) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func seedOptions(cfg *config.Config, demo bool) database.SeedOptions {
	return database.SeedOptions{
		AdminEmail:    cfg.BootstrapAdminEmail,
		AdminPassword: cfg.BootstrapAdminPassword,
		Demo:          demo,
	}
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.AutoMigrate {
		return db, nil
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	report, err := database.SeedSync(db, seedOptions(cfg, cfg.SeedDemo))
	if err != nil {
		return nil, err
	}
	logger.Info("database ready",
		"created_staff", report.CreatedStaff,
		"demo_orders", report.DemoOrders,
		"demo_products", report.DemoProducts,
		"demo_notifications", report.DemoNotifications,
		"noop", report.Noop,
	)
	return db, nil
}

// provideRedisClient returns nil when REDIS_ADDR is empty. Every consumer
// treats a nil client as "redis disabled".
func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideListCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.ListCacheStore {
	switch cfg.ListCacheMode {
	case config.ListCacheRedis:
		if redisClient != nil {
			return service.NewRedisListCacheStore(redisClient, "list_cache")
		}
		return service.NewInMemoryListCacheStore()
	case config.ListCacheMemory:
		return service.NewInMemoryListCacheStore()
	default:
		return service.NewNoopListCacheStore()
	}
}

// provideObjectStore returns nil when no storage endpoint is configured.
func provideObjectStore(cfg *config.Config) (*storage.MinIOStore, error) {
	if cfg.StorageEndpoint == "" {
		return nil, nil
	}
	return storage.NewMinIOStore(storage.MinIOConfig{
		Endpoint:   cfg.StorageEndpoint,
		AccessKey:  cfg.StorageAccessKey,
		SecretKey:  cfg.StorageSecretKey,
		Bucket:     cfg.StorageBucket,
		Region:     cfg.StorageRegion,
		UseSSL:     cfg.StorageUseSSL,
		PresignTTL: cfg.StoragePresignTTL,
	})
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessSecret)
}

func provideOrderService(cfg *config.Config, repo repository.OrderRepository, cache service.ListCacheStore) *service.OrderServiceImpl {
	return service.NewOrderService(repo, cache, cfg.ListCacheTTL)
}

func provideProductService(cfg *config.Config, repo repository.ProductRepository, cache service.ListCacheStore) *service.ProductServiceImpl {
	return service.NewProductService(repo, cache, cfg.ListCacheTTL)
}

func provideNotificationService(cfg *config.Config, repo repository.NotificationRepository, cache service.ListCacheStore) *service.NotificationServiceImpl {
	return service.NewNotificationService(repo, cache, cfg.ListCacheTTL)
}

func provideAuthService(cfg *config.Config, staff repository.StaffRepository, jwt *security.JWTManager) *service.AuthService {
	return service.NewAuthService(staff, jwt, cfg.JWTAccessTTL)
}

func provideLoginRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.LoginRateLimiterFunc {
	if cfg.LoginRateLimitRedis && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, "rate_limit")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.LoginRateLimit,
			cfg.LoginRateWindow,
			middleware.FailClosed,
			"login",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow, "login").Middleware()
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	orderHandler *handler.OrderHandler,
	productHandler *handler.ProductHandler,
	notificationHandler *handler.NotificationHandler,
	tokens middleware.AccessTokenParser,
	rbac service.RBACAuthorizer,
	loginRateLimiter router.LoginRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:         authHandler,
		OrderHandler:        orderHandler,
		ProductHandler:      productHandler,
		NotificationHandler: notificationHandler,
		Tokens:              tokens,
		RBAC:                rbac,
		CORSOrigins:         cfg.CORSAllowedOrigins,
		MaxBodyBytes:        cfg.MaxBodyBytes,
		LoginRateLimiter:    loginRateLimiter,
		Readiness:           readiness,
		EnableOTelHTTP:      cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, store *storage.MinIOStore) *health.ProbeRunner {
	checkers := []health.Checker{health.NewDBChecker(db), health.NewRedisChecker(redisClient)}
	if store != nil {
		checkers = append(checkers, health.NewStorageChecker(store))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient)
}
