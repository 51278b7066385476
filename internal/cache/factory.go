package cache

import (
	"context"
	"fmt"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/db"
)

// NewStore builds the store selected by cfg.Backend. database is only used
// by the mongo backend and may be nil otherwise.
func NewStore(ctx context.Context, cfg *config.CacheConfig, database db.DbInterface) (Store, error) {
	switch cfg.Backend {
	case config.CacheBackendBolt:
		return NewBoltStore(cfg.BoltPath)
	case config.CacheBackendMemory:
		return NewMemoryStore(cfg.MemorySize)
	case config.CacheBackendMongo:
		if database == nil {
			return nil, fmt.Errorf("mongo cache backend needs a database")
		}
		if err := database.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		return NewMongoStore(database), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
