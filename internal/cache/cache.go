package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
	"github.com/rs/zerolog/log"
)

type Kind string

const (
	KindStakingPlans       Kind = "staking_plans"
	KindUserStakingData    Kind = "user_staking_data"
	KindReferralCommission Kind = "referral_commission"
	KindUserReferralData   Kind = "user_referral_data"
	KindReferredStakes     Kind = "referred_stakes"
	KindClaimableReferral  Kind = "claimable_referral"
	KindTokenData          Kind = "token_data"
	KindMarketData         Kind = "market_data"
	KindVaultData          Kind = "vault_data"
	KindVaultUser          Kind = "vault_user"
)

type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Cache is a TTL read-through cache keyed by (kind, address). Stale, missing
// and unreadable entries are all misses.
type Cache struct {
	store  Store
	prefix string
	ttl    map[Kind]time.Duration
	now    func() time.Time
}

func New(store Store, prefix string, ttl map[string]time.Duration) *Cache {
	ttls := make(map[Kind]time.Duration, len(ttl))
	for kind, d := range ttl {
		ttls[Kind(kind)] = d
	}
	return &Cache{
		store:  store,
		prefix: prefix,
		ttl:    ttls,
		now:    time.Now,
	}
}

// Key builds <prefix>_<kind>[_<lowercase address>].
func (c *Cache) Key(kind Kind, address string) string {
	key := c.prefix + "_" + string(kind)
	if address != "" {
		key += "_" + strings.ToLower(address)
	}
	return key
}

func (c *Cache) TTL(kind Kind) time.Duration {
	return c.ttl[kind]
}

// Get decodes a fresh entry into out and reports whether it did.
func (c *Cache) Get(ctx context.Context, kind Kind, address string, out any) bool {
	hit := c.get(ctx, kind, address, out, true)
	metrics.RecordCacheLookup(string(kind), hit)
	return hit
}

// GetStale decodes the entry into out whatever its age.
func (c *Cache) GetStale(ctx context.Context, kind Kind, address string, out any) bool {
	return c.get(ctx, kind, address, out, false)
}

func (c *Cache) get(ctx context.Context, kind Kind, address string, out any, fresh bool) bool {
	key := c.Key(kind, address)

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to read cache entry")
		}
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("corrupt cache entry")
		return false
	}

	age := c.now().Sub(time.UnixMilli(e.Timestamp))
	if fresh && age >= c.ttl[kind] {
		return false
	}

	if err := json.Unmarshal(e.Data, out); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("corrupt cache entry")
		return false
	}

	return true
}

// Set stores value with the current time, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, kind Kind, address string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(entry{Data: data, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return err
	}
	return c.store.Put(ctx, c.Key(kind, address), raw)
}

func (c *Cache) Invalidate(ctx context.Context, kind Kind, address string) error {
	err := c.store.Delete(ctx, c.Key(kind, address))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (c *Cache) Close() error {
	return c.store.Close()
}
