package db

import (
	"context"
	"errors"
	"time"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) GetCacheEntry(ctx context.Context, key string) (*model.CacheEntry, error) {
	filter := bson.M{"_id": key}
	res := db.collection(model.CacheEntryCollection).FindOne(ctx, filter)

	var entry model.CacheEntry
	err := res.Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     key,
				Message: "cache entry not found",
			}
		}
		return nil, err
	}

	return &entry, nil
}

func (db *Database) SaveCacheEntry(ctx context.Context, key string, value []byte) error {
	filter := bson.M{"_id": key}
	update := bson.M{"$set": bson.M{
		"value":      value,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.CacheEntryCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) DeleteCacheEntry(ctx context.Context, key string) error {
	filter := bson.M{"_id": key}
	_, err := db.collection(model.CacheEntryCollection).DeleteOne(ctx, filter)
	return err
}
