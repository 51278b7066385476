package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.RPC.Endpoints, 9)
	assert.Equal(t, "https://bsc-dataseed.bnbchain.org", cfg.RPC.Endpoints[0])
	assert.Equal(t, uint64(43436500), cfg.Contracts.StakingDeploymentBlock)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL["user_referral_data"])
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL["user_staking_data"])
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL["staking_plans"])
	assert.Equal(t, 3*time.Minute, cfg.Cache.TTL["token_data"])
	assert.False(t, cfg.Signer.Enabled())
}

func TestNew(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
log-level: debug
rpc:
  endpoints:
    - http://localhost:8545
  breaker-failure-threshold: 5
scanner:
  chunk-size: 5000
cache:
  backend: memory
  ttl:
    staking_plans: 1m
server:
  port: 9090
`)
		cfg, err := New(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, []string{"http://localhost:8545"}, cfg.RPC.Endpoints)
		assert.Equal(t, uint(5), cfg.RPC.BreakerFailureThreshold)
		assert.Equal(t, uint64(5000), cfg.Scanner.ChunkSize)
		assert.Equal(t, time.Minute, cfg.Cache.TTL["staking_plans"])
		// kinds missing from the file keep their defaults
		assert.Equal(t, 30*time.Second, cfg.Cache.TTL["claimable_referral"])
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, DefaultContractsConfig().Staking, cfg.Contracts.Staking)
	})

	t.Run("signer key from env", func(t *testing.T) {
		t.Setenv("ONEDREAM_SIGNER_PRIVATE_KEY", "0xabc")
		path := writeConfig(t, "log-level: info\n")

		cfg, err := New(path)
		require.NoError(t, err)
		assert.True(t, cfg.Signer.Enabled())
		assert.Equal(t, "0xabc", cfg.Signer.PrivateKey)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "missing.yml"))
		require.Error(t, err)
	})

	t.Run("invalid section", func(t *testing.T) {
		path := writeConfig(t, `
contracts:
  staking: not-an-address
`)
		_, err := New(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid contracts config")
	})
}

func TestConfig_OptionalMongo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Db = DbConfig{}

	// db settings are ignored unless mongo backs the cache
	require.NoError(t, cfg.Validate())

	cfg.Cache.Backend = CacheBackendMongo
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid db config")
}

func TestContractsConfig_Vault(t *testing.T) {
	cfg := DefaultContractsConfig()

	_, ok := cfg.VaultAddress()
	assert.False(t, ok)

	cfg.Vault = "0x1111111111111111111111111111111111111111"
	addr, ok := cfg.VaultAddress()
	require.True(t, ok)
	assert.Equal(t, cfg.Vault, addr.Hex())

	cfg.Vault = "0x123"
	require.Error(t, cfg.Validate())
}

func TestCacheConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(cfg *CacheConfig)
		wantErr string
	}{
		{
			name:    "unknown backend",
			modify:  func(cfg *CacheConfig) { cfg.Backend = "redis" },
			wantErr: "unsupported cache backend",
		},
		{
			name:    "bolt without path",
			modify:  func(cfg *CacheConfig) { cfg.BoltPath = "" },
			wantErr: "bolt-path is required",
		},
		{
			name: "memory without size",
			modify: func(cfg *CacheConfig) {
				cfg.Backend = CacheBackendMemory
				cfg.MemorySize = 0
			},
			wantErr: "memory-size must be positive",
		},
		{
			name:    "non positive ttl",
			modify:  func(cfg *CacheConfig) { cfg.TTL["token_data"] = 0 },
			wantErr: "ttl of token_data must be positive",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultCacheConfig()
			tc.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
