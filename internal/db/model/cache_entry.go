package model

import "time"

const CacheEntryCollection = "cache_entries"

type CacheEntry struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}
