package health

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "db", Healthy: true}
	sqlDB, err := c.db.DB()
	if err != nil {
		return unhealthy(res, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unhealthy(res, err)
	}
	return res
}

type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker returns nil when redis is not configured so the probe
// skips it.
func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return unhealthy(res, err)
	}
	return res
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// StorageChecker probes the product image bucket.
type StorageChecker struct {
	store Pinger
}

func NewStorageChecker(store Pinger) Checker {
	if store == nil {
		return nil
	}
	return &StorageChecker{store: store}
}

func (c *StorageChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "object_storage", Healthy: true}
	if err := c.store.Ping(ctx); err != nil {
		return unhealthy(res, err)
	}
	return res
}

func unhealthy(res CheckResult, err error) CheckResult {
	res.Healthy = false
	res.Error = err.Error()
	return res
}
