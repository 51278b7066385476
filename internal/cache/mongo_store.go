package cache

import (
	"context"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/db"
)

// MongoStore shares cache entries between instances through mongo.
type MongoStore struct {
	db db.DbInterface
}

func NewMongoStore(database db.DbInterface) *MongoStore {
	return &MongoStore{db: database}
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.db.GetCacheEntry(ctx, key)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry.Value, nil
}

func (s *MongoStore) Put(ctx context.Context, key string, value []byte) error {
	return s.db.SaveCacheEntry(ctx, key, value)
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	return s.db.DeleteCacheEntry(ctx, key)
}

// Close is a no-op, the mongo client is owned by the caller.
func (s *MongoStore) Close() error {
	return nil
}
