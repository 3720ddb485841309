package di

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/storefront-admin-console/internal/config"
	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                    "test",
		DatabaseURL:            "sqlite://" + filepath.Join(t.TempDir(), "api.db"),
		AutoMigrate:            true,
		SeedDemo:               true,
		BootstrapAdminEmail:    "admin@example.com",
		BootstrapAdminPassword: "Admin#12345-long",
		ReadinessProbeTimeout:  time.Second,
	}
}

func TestProvideHTTPServer(t *testing.T) {
	cfg := &config.Config{HTTPPort: "9999"}
	srv := provideHTTPServer(cfg, nil)
	if srv.Addr != ":9999" {
		t.Fatalf("unexpected addr: %s", srv.Addr)
	}
	if srv.ReadTimeout.Seconds() != 10 {
		t.Fatalf("unexpected read timeout: %v", srv.ReadTimeout)
	}
}

func TestProvideRouterDependencies(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"http://localhost:5173"}, MaxBodyBytes: 2048, OTELTracingEnabled: true}
	dep := provideRouterDependencies(nil, nil, nil, nil, nil, nil, nil, nil, cfg)
	if !dep.EnableOTelHTTP {
		t.Fatal("expected otel http enabled")
	}
	if dep.MaxBodyBytes != 2048 {
		t.Fatalf("unexpected body limit: %d", dep.MaxBodyBytes)
	}
	if len(dep.CORSOrigins) != 1 || dep.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins: %+v", dep.CORSOrigins)
	}
}

func TestProvideListCacheStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cases := []struct {
		name   string
		mode   string
		client redis.UniversalClient
		check  func(service.ListCacheStore) bool
	}{
		{"noop", config.ListCacheNoop, nil, func(s service.ListCacheStore) bool { _, ok := s.(*service.NoopListCacheStore); return ok }},
		{"memory", config.ListCacheMemory, nil, func(s service.ListCacheStore) bool { _, ok := s.(*service.InMemoryListCacheStore); return ok }},
		{"redis", config.ListCacheRedis, client, func(s service.ListCacheStore) bool { _, ok := s.(*service.RedisListCacheStore); return ok }},
		{"redis without client", config.ListCacheRedis, nil, func(s service.ListCacheStore) bool { _, ok := s.(*service.InMemoryListCacheStore); return ok }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := provideListCacheStore(&config.Config{ListCacheMode: tc.mode}, tc.client)
			if !tc.check(store) {
				t.Fatalf("unexpected store %T", store)
			}
		})
	}
}

func TestProvideRedisClientDisabledWithoutAddr(t *testing.T) {
	if c := provideRedisClient(&config.Config{}, discardLogger()); c != nil {
		t.Fatal("expected nil redis client when REDIS_ADDR is empty")
	}
}

func TestProvideLoginRateLimiterLocal(t *testing.T) {
	cfg := &config.Config{LoginRateLimit: 1, LoginRateWindow: time.Minute}
	h := provideLoginRateLimiter(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i+1, want, rr.Code)
		}
	}
}

func TestProvideLoginRateLimiterRedisFailClosed(t *testing.T) {
	cfg := &config.Config{LoginRateLimit: 5, LoginRateWindow: time.Minute, LoginRateLimitRedis: true}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	h := provideLoginRateLimiter(cfg, client)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected fail-closed response when redis unavailable, got %d", rr.Code)
	}
}

func TestProvideRuntimeDBMigratesAndSeeds(t *testing.T) {
	cfg := sqliteConfig(t)
	db, err := provideRuntimeDB(cfg, discardLogger())
	if err != nil {
		t.Fatalf("runtime db: %v", err)
	}
	var staff int64
	if err := db.Model(&domain.Staff{}).Count(&staff).Error; err != nil {
		t.Fatalf("count staff: %v", err)
	}
	if staff != 1 {
		t.Fatalf("expected bootstrap admin, got %d staff", staff)
	}
	var orders int64
	if err := db.Model(&domain.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders == 0 {
		t.Fatal("expected demo orders")
	}

	ready, results := provideReadinessProbeRunner(cfg, db, nil, nil).Ready(t.Context())
	if !ready || len(results) != 1 || results[0].Name != "db" {
		t.Fatalf("unexpected readiness: ready=%v results=%+v", ready, results)
	}
}

func TestMigrationRunnerIsRepeatable(t *testing.T) {
	cfg := sqliteConfig(t)
	db, err := provideOpenDB(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	runner := NewMigrationRunner(cfg, db)
	t.Cleanup(func() { _ = runner.Close() })

	first, err := runner.Run(false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Noop || first.DemoOrders != 0 {
		t.Fatalf("unexpected first report: %+v", first)
	}
	second, err := runner.Run(false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Noop {
		t.Fatalf("expected second run to be a noop, got %+v", second)
	}
}
