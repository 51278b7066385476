package db

import (
	"context"
	"time"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/db/model"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) GetCacheEntry(ctx context.Context, key string) (result *model.CacheEntry, err error) {
	//nolint:errcheck
	d.run("GetCacheEntry", func() error {
		result, err = d.db.GetCacheEntry(ctx, key)
		return err
	})

	return
}

func (d *DbWithMetrics) SaveCacheEntry(ctx context.Context, key string, value []byte) error {
	return d.run("SaveCacheEntry", func() error {
		return d.db.SaveCacheEntry(ctx, key, value)
	})
}

func (d *DbWithMetrics) DeleteCacheEntry(ctx context.Context, key string) error {
	return d.run("DeleteCacheEntry", func() error {
		return d.db.DeleteCacheEntry(ctx, key)
	})
}

// run records the latency of f. A missing cache entry is not a failure.
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	failure := err != nil && !IsNotFoundError(err)
	metrics.RecordDbLatency(duration, method, failure)
	return err
}
