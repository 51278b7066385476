package db

import (
	"context"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/db/model"
)

//go:generate mockery --name=DbInterface --output=../../tests/mocks --outpkg=mocks --filename=mock_db_client.go
type DbInterface interface {
	Ping(ctx context.Context) error
	// GetCacheEntry returns a NotFoundError when the key is missing.
	GetCacheEntry(ctx context.Context, key string) (*model.CacheEntry, error)
	SaveCacheEntry(ctx context.Context, key string, value []byte) error
	DeleteCacheEntry(ctx context.Context, key string) error
}
