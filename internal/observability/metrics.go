package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

const meterName = "storefront-admin-console"

type AppMetrics struct {
	authLoginCounter             metric.Int64Counter
	accessTokenValidationCounter metric.Int64Counter
	rbacAuthorizationCounter     metric.Int64Counter
	rateLimitDecisionCounter     metric.Int64Counter
	listCacheEvents              metric.Int64Counter
	listCacheEntryAge            metric.Float64Histogram
	listReqDuration              metric.Float64Histogram
	listPageSize                 metric.Float64Histogram
	resourceMutationCounter      metric.Int64Counter
	bulkDeleteOutcome            metric.Float64Histogram
	repositoryOpsCounter         metric.Int64Counter
	healthCheckResultCounter     metric.Int64Counter
	healthCheckDuration          metric.Float64Histogram
	consoleFetchCounter          metric.Int64Counter
	consoleFetchDuration         metric.Float64Histogram
	consoleMutationCounter       metric.Int64Counter
	exportCounter                metric.Int64Counter
	toolCommandRuns              metric.Int64Counter
	toolCommandDuration          metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "list.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

// InitClientMetrics installs instruments on an existing provider. The console
// uses it with a provider it owns.
func InitClientMetrics(mp metric.MeterProvider) error {
	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()
	return nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var (
		m    AppMetrics
		errs []error
	)
	counter := func(dst *metric.Int64Counter, name, desc string) {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			errs = append(errs, fmt.Errorf("create counter %s: %w", name, err))
			return
		}
		*dst = c
	}
	hist := func(dst *metric.Float64Histogram, name, unit, desc string) {
		opts := []metric.Float64HistogramOption{metric.WithDescription(desc)}
		if unit != "" {
			opts = append(opts, metric.WithUnit(unit))
		}
		h, err := meter.Float64Histogram(name, opts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("create histogram %s: %w", name, err))
			return
		}
		*dst = h
	}

	counter(&m.authLoginCounter, "auth.login.attempts", "Staff login attempts")
	counter(&m.accessTokenValidationCounter, "auth.access_token.validation.events", "Access token validation outcomes")
	counter(&m.rbacAuthorizationCounter, "auth.rbac.authorization.events", "Permission gate decisions on HTTP routes")
	counter(&m.rateLimitDecisionCounter, "http.rate_limit.decisions", "Rate limiter decisions by scope")
	counter(&m.listCacheEvents, "list.cache.events", "List cache hits, misses and invalidations")
	hist(&m.listCacheEntryAge, "list.cache.entry_age", "s", "Age of list cache entries served")
	hist(&m.listReqDuration, "list.request.duration", "s", "Duration of list endpoint requests in seconds")
	hist(&m.listPageSize, "list.page_size", "", "Requested page size for list endpoints")
	counter(&m.resourceMutationCounter, "resource.mutations", "Order, product and notification mutations")
	hist(&m.bulkDeleteOutcome, "resource.bulk_delete.ids", "", "Ids per bulk delete by outcome")
	counter(&m.repositoryOpsCounter, "repository.operations", "Repository operations by outcome")
	counter(&m.healthCheckResultCounter, "health.check.results", "Health dependency check outcomes")
	hist(&m.healthCheckDuration, "health.check.duration", "s", "Duration of health dependency checks in seconds")
	counter(&m.consoleFetchCounter, "console.list.fetches", "List controller fetch outcomes")
	hist(&m.consoleFetchDuration, "console.list.fetch.duration", "s", "List controller fetch duration in seconds")
	counter(&m.consoleMutationCounter, "console.list.mutations", "List controller mutation outcomes")
	counter(&m.exportCounter, "console.export.events", "Table exports by format")
	counter(&m.toolCommandRuns, "tool.command.runs", "CLI tool command runs")
	hist(&m.toolCommandDuration, "tool.command.duration", "s", "CLI tool command duration in seconds")

	if len(errs) > 0 {
		return nil, errs[0]
	}
	return &m, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthLogin(ctx context.Context, status string) {
	m := current()
	if m == nil {
		return
	}
	m.authLoginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAccessTokenValidation(ctx context.Context, outcome, source string) {
	m := current()
	if m == nil {
		return
	}
	m.accessTokenValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	))
}

func RecordRBACAuthorizationEvent(ctx context.Context, permission, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.rbacAuthorizationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("permission", permission),
		attribute.String("outcome", outcome),
	))
}

func RecordListCacheEvent(ctx context.Context, resource, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.listCacheEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("outcome", outcome),
	))
}

func RecordListCacheEntryAge(ctx context.Context, resource string, age time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.listCacheEntryAge.Record(ctx, age.Seconds(), metric.WithAttributes(attribute.String("resource", resource)))
}

func RecordListRequestDuration(ctx context.Context, resource, status string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.listReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("status", status),
	))
}

func RecordListPageSize(ctx context.Context, resource string, pageSize int) {
	m := current()
	if m == nil {
		return
	}
	m.listPageSize.Record(ctx, float64(pageSize), metric.WithAttributes(attribute.String("resource", resource)))
}

func RecordResourceMutation(ctx context.Context, resource, action, status string) {
	m := current()
	if m == nil {
		return
	}
	m.resourceMutationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("action", action),
		attribute.String("status", status),
	))
}

func RecordBulkDeleteOutcome(ctx context.Context, resource, outcome string, count int) {
	m := current()
	if m == nil {
		return
	}
	m.bulkDeleteOutcome.Record(ctx, float64(count), metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("outcome", outcome),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	))
}

func RecordRepositoryOperation(ctx context.Context, repository, operation, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.repositoryOpsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repository),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("check", check)))
}

// RecordListFetch records a list controller fetch. Outcome is success, error
// or superseded.
func RecordListFetch(ctx context.Context, resource, outcome string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("outcome", outcome),
	)
	m.consoleFetchCounter.Add(ctx, 1, attrs)
	m.consoleFetchDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordListMutation(ctx context.Context, resource, op, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.consoleMutationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

func RecordExport(ctx context.Context, resource, format, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.exportCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("format", format),
		attribute.String("outcome", outcome),
	))
}

func RecordToolCommandRun(ctx context.Context, tool, command, status string) {
	m := current()
	if m == nil {
		return
	}
	m.toolCommandRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("status", status),
	))
}

func RecordToolCommandDuration(ctx context.Context, tool, command, status string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.toolCommandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("status", status),
	))
}
