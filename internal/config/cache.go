package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	CacheBackendBolt   = "bolt"
	CacheBackendMongo  = "mongo"
	CacheBackendMemory = "memory"

	defaultCachePrefix     = "onedream"
	defaultCacheBoltPath   = "onedream-cache.db"
	defaultCacheMemorySize = 1024
)

type CacheConfig struct {
	Backend    string `mapstructure:"backend"`
	BoltPath   string `mapstructure:"bolt-path"`
	MemorySize int    `mapstructure:"memory-size"`
	Prefix     string `mapstructure:"prefix"`
	// TTL is keyed by cache kind, kinds missing from the map use the defaults.
	TTL map[string]time.Duration `mapstructure:"ttl"`
}

// DefaultCacheTTL holds the freshness window of every cache kind.
func DefaultCacheTTL() map[string]time.Duration {
	return map[string]time.Duration{
		"staking_plans":       30 * time.Minute,
		"user_staking_data":   2 * time.Minute,
		"referral_commission": 30 * time.Minute,
		"user_referral_data":  30 * time.Second,
		"referred_stakes":     30 * time.Second,
		"claimable_referral":  30 * time.Second,
		"token_data":          3 * time.Minute,
		"market_data":         3 * time.Minute,
		"vault_data":          30 * time.Minute,
		"vault_user":          2 * time.Minute,
	}
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend:    CacheBackendBolt,
		BoltPath:   defaultCacheBoltPath,
		MemorySize: defaultCacheMemorySize,
		Prefix:     defaultCachePrefix,
		TTL:        DefaultCacheTTL(),
	}
}

func (cfg *CacheConfig) Validate() error {
	switch cfg.Backend {
	case CacheBackendBolt:
		if cfg.BoltPath == "" {
			return errors.New("bolt-path is required for the bolt cache backend")
		}
	case CacheBackendMemory:
		if cfg.MemorySize <= 0 {
			return errors.New("memory-size must be positive")
		}
	case CacheBackendMongo:
	default:
		return fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}

	if cfg.Prefix == "" {
		return errors.New("prefix is required")
	}

	for kind, ttl := range DefaultCacheTTL() {
		if _, ok := cfg.TTL[kind]; !ok {
			if cfg.TTL == nil {
				cfg.TTL = make(map[string]time.Duration)
			}
			cfg.TTL[kind] = ttl
		}
	}
	for kind, ttl := range cfg.TTL {
		if ttl <= 0 {
			return fmt.Errorf("ttl of %s must be positive", kind)
		}
	}

	return nil
}
