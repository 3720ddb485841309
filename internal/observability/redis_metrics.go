package observability

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var redisInstrumentationOnce sync.Once

// InstrumentRedisClient adds command metrics to client. Only the first call
// in a process installs the hook.
func InstrumentRedisClient(client redis.UniversalClient, logger *slog.Logger) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	redisInstrumentationOnce.Do(func() {
		hook, err := newRedisMetricsHook(otel.Meter(meterName))
		if err != nil {
			logger.Warn("redis observability instrumentation disabled", "error", err)
			return
		}
		client.AddHook(hook)
		logger.Info("redis observability instrumentation enabled")
	})
}

type redisMetricsHook struct {
	cmdTotal   metric.Int64Counter
	cmdLatency metric.Float64Histogram
	keyspace   metric.Int64Counter
}

func newRedisMetricsHook(meter metric.Meter) (*redisMetricsHook, error) {
	cmdTotal, err := meter.Int64Counter("redis.command.total", metric.WithDescription("Redis commands by status"))
	if err != nil {
		return nil, err
	}
	cmdLatency, err := meter.Float64Histogram("redis.command.duration", metric.WithUnit("s"), metric.WithDescription("Redis command latency in seconds"))
	if err != nil {
		return nil, err
	}
	keyspace, err := meter.Int64Counter("redis.keyspace.lookups", metric.WithDescription("Redis reads by hit or miss"))
	if err != nil {
		return nil, err
	}
	return &redisMetricsHook{cmdTotal: cmdTotal, cmdLatency: cmdLatency, keyspace: keyspace}, nil
}

func (h *redisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(ctx, strings.ToLower(cmd.Name()), err, time.Since(start))
		return err
	}
}

func (h *redisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)
		for _, cmd := range cmds {
			h.observe(ctx, strings.ToLower(cmd.Name()), cmd.Err(), elapsed)
		}
		return err
	}
}

func (h *redisMetricsHook) observe(ctx context.Context, command string, err error, elapsed time.Duration) {
	status := redisCommandStatus(err)
	attrs := metric.WithAttributes(attribute.String("command", command), attribute.String("status", status))
	h.cmdTotal.Add(ctx, 1, attrs)
	h.cmdLatency.Record(ctx, elapsed.Seconds(), attrs)
	if isRedisRead(command) {
		outcome := "hit"
		if errors.Is(err, redis.Nil) {
			outcome = "miss"
		}
		if err == nil || errors.Is(err, redis.Nil) {
			h.keyspace.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}
}

func redisCommandStatus(err error) string {
	switch {
	case err == nil, errors.Is(err, redis.Nil):
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

func isRedisRead(command string) bool {
	switch command {
	case "get", "mget", "hget", "hgetall", "smembers":
		return true
	default:
		return false
	}
}
