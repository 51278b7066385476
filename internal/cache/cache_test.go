package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plan struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newTestCache(t *testing.T, store Store) (*Cache, *clock) {
	t.Helper()

	c := New(store, "onedream", config.DefaultCacheTTL())
	clk := &clock{now: time.UnixMilli(1_700_000_000_000)}
	c.now = clk.Now
	return c, clk
}

func stores(t *testing.T) map[string]Store {
	t.Helper()

	memory, err := NewMemoryStore(16)
	require.NoError(t, err)

	bolt, err := NewBoltStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	return map[string]Store{"memory": memory, "bolt": bolt}
}

func TestCache_Key(t *testing.T) {
	c := New(nil, "onedream", nil)

	assert.Equal(t, "onedream_staking_plans", c.Key(KindStakingPlans, ""))
	assert.Equal(t,
		"onedream_user_staking_data_0xabcdef0000000000000000000000000000000001",
		c.Key(KindUserStakingData, "0xABCDEF0000000000000000000000000000000001"),
	)
}

func TestCache_RoundTripAndExpiry(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			c, clk := newTestCache(t, store)
			addr := "0x00000000000000000000000000000000000000AA"
			want := []plan{{ID: 1, Name: "Flexible"}, {ID: 2, Name: "Locked"}}

			var got []plan
			assert.False(t, c.Get(ctx, KindReferredStakes, addr, &got))

			require.NoError(t, c.Set(ctx, KindReferredStakes, addr, want))
			require.True(t, c.Get(ctx, KindReferredStakes, addr, &got))
			assert.Equal(t, want, got)

			// still fresh just before the ttl
			clk.now = clk.now.Add(29 * time.Second)
			assert.True(t, c.Get(ctx, KindReferredStakes, addr, &got))

			clk.now = clk.now.Add(time.Second)
			assert.False(t, c.Get(ctx, KindReferredStakes, addr, &got))

			// expired entries stay readable through GetStale
			var stale []plan
			require.True(t, c.GetStale(ctx, KindReferredStakes, addr, &stale))
			assert.Equal(t, want, stale)

			// a new write refreshes the timestamp
			require.NoError(t, c.Set(ctx, KindReferredStakes, addr, want[:1]))
			require.True(t, c.Get(ctx, KindReferredStakes, addr, &got))
			assert.Equal(t, want[:1], got)
		})
	}
}

func TestCache_TTLPerKind(t *testing.T) {
	c, clk := newTestCache(t, mustMemoryStore(t))
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, KindStakingPlans, "", []plan{{ID: 1}}))
	require.NoError(t, c.Set(ctx, KindUserStakingData, "0x1", 42))

	clk.now = clk.now.Add(5 * time.Minute)

	var plans []plan
	assert.True(t, c.Get(ctx, KindStakingPlans, "", &plans))
	var n int
	assert.False(t, c.Get(ctx, KindUserStakingData, "0x1", &n))
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	store := mustMemoryStore(t)
	c, _ := newTestCache(t, store)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, c.Key(KindTokenData, ""), []byte("{not json")))
	var out map[string]any
	assert.False(t, c.Get(ctx, KindTokenData, "", &out))

	// valid envelope, payload of the wrong shape
	require.NoError(t, store.Put(ctx, c.Key(KindTokenData, ""), []byte(`{"data":"text","timestamp":1700000000000}`)))
	assert.False(t, c.Get(ctx, KindTokenData, "", &out))
}

type failingStore struct {
	Store
}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk I/O error")
}

func TestCache_StoreErrorIsMiss(t *testing.T) {
	c, _ := newTestCache(t, failingStore{})

	var out int
	assert.False(t, c.Get(t.Context(), KindTokenData, "", &out))
}

func TestCache_Invalidate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			c, _ := newTestCache(t, store)

			require.NoError(t, c.Set(ctx, KindReferralCommission, "", 1000))
			require.NoError(t, c.Invalidate(ctx, KindReferralCommission, ""))

			var commission int
			assert.False(t, c.Get(ctx, KindReferralCommission, "", &commission))

			// invalidating a missing key is fine
			require.NoError(t, c.Invalidate(ctx, KindReferralCommission, ""))
		})
	}
}

func TestBoltStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := t.Context()

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "key", []byte("value")))
	require.NoError(t, store.Close())

	store, err = NewBoltStore(path)
	require.NoError(t, err)
	defer store.Close()

	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Evicts(t *testing.T) {
	store, err := NewMemoryStore(2)
	require.NoError(t, err)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, "a", []byte("1")))
	require.NoError(t, store.Put(ctx, "b", []byte("2")))
	require.NoError(t, store.Put(ctx, "c", []byte("3")))

	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	v, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), v)
}

func mustMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(16)
	require.NoError(t, err)
	return store
}
