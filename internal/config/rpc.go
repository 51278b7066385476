package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	defaultMaxRetryTimes           = 3
	defaultRetryInterval           = time.Second
	defaultMaxJitter               = 500 * time.Millisecond
	defaultBreakerFailureThreshold = 3
	defaultBreakerCooldown         = 30 * time.Second
)

// DefaultBSCEndpoints are tried in order; later entries take over when the
// earlier ones trip their circuit breaker.
var DefaultBSCEndpoints = []string{
	"https://bsc-dataseed.bnbchain.org",
	"https://bsc-dataseed1.binance.org",
	"https://bsc-dataseed2.binance.org",
	"https://rpc.ankr.com/bsc",
	"https://bsc.publicnode.com",
	"https://bsc-dataseed1.defibit.io",
	"https://bsc-dataseed2.defibit.io",
	"https://1rpc.io/bnb",
	"https://bsc-rpc.gateway.pokt.network",
}

type RPCConfig struct {
	Endpoints               []string      `mapstructure:"endpoints"`
	MaxRetryTimes           uint          `mapstructure:"max-retry-times"`
	RetryInterval           time.Duration `mapstructure:"retry-interval"`
	MaxJitter               time.Duration `mapstructure:"max-jitter"`
	BreakerFailureThreshold uint          `mapstructure:"breaker-failure-threshold"`
	BreakerCooldown         time.Duration `mapstructure:"breaker-cooldown"`
	// CallTimeout bounds a single JSON-RPC call, zero leaves it to the client library.
	CallTimeout time.Duration `mapstructure:"call-timeout"`
}

func DefaultRPCConfig() *RPCConfig {
	endpoints := make([]string, len(DefaultBSCEndpoints))
	copy(endpoints, DefaultBSCEndpoints)

	return &RPCConfig{
		Endpoints:               endpoints,
		MaxRetryTimes:           defaultMaxRetryTimes,
		RetryInterval:           defaultRetryInterval,
		MaxJitter:               defaultMaxJitter,
		BreakerFailureThreshold: defaultBreakerFailureThreshold,
		BreakerCooldown:         defaultBreakerCooldown,
	}
}

func (cfg *RPCConfig) Validate() error {
	if len(cfg.Endpoints) == 0 {
		return errors.New("at least one rpc endpoint is required")
	}
	for _, endpoint := range cfg.Endpoints {
		if _, err := url.Parse(endpoint); err != nil {
			return fmt.Errorf("invalid rpc endpoint %q: %w", endpoint, err)
		}
	}

	if cfg.RetryInterval <= 0 {
		return errors.New("retry-interval must be positive")
	}
	if cfg.MaxJitter < 0 {
		return errors.New("max-jitter must not be negative")
	}
	if cfg.BreakerFailureThreshold == 0 {
		return errors.New("breaker-failure-threshold must be positive")
	}
	if cfg.BreakerCooldown <= 0 {
		return errors.New("breaker-cooldown must be positive")
	}
	if cfg.CallTimeout < 0 {
		return errors.New("call-timeout must not be negative")
	}

	return nil
}
