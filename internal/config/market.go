package config

import (
	"errors"
	"time"
)

const (
	defaultDexScreenerURL   = "https://api.dexscreener.com"
	defaultBscScanURL       = "https://api.bscscan.com"
	defaultMarketTimeout    = 10 * time.Second
	defaultBNBPriceFallback = 600
)

type MarketConfig struct {
	DexScreenerURL string        `mapstructure:"dexscreener-url"`
	BscScanURL     string        `mapstructure:"bscscan-url"`
	BscScanAPIKey  string        `mapstructure:"bscscan-api-key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetryTimes  uint          `mapstructure:"max-retry-times"`
	RetryInterval  time.Duration `mapstructure:"retry-interval"`
	// BNBPriceFallback is used in USD when the router quote fails.
	BNBPriceFallback float64 `mapstructure:"bnb-price-fallback"`
}

func DefaultMarketConfig() *MarketConfig {
	return &MarketConfig{
		DexScreenerURL:   defaultDexScreenerURL,
		BscScanURL:       defaultBscScanURL,
		Timeout:          defaultMarketTimeout,
		MaxRetryTimes:    defaultMaxRetryTimes,
		RetryInterval:    defaultRetryInterval,
		BNBPriceFallback: defaultBNBPriceFallback,
	}
}

func (cfg *MarketConfig) Validate() error {
	if cfg.DexScreenerURL == "" {
		return errors.New("dexscreener-url is required")
	}

	if cfg.BscScanURL == "" {
		return errors.New("bscscan-url is required")
	}

	if cfg.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if cfg.RetryInterval <= 0 {
		return errors.New("retry-interval must be positive")
	}

	if cfg.BNBPriceFallback <= 0 {
		return errors.New("bnb-price-fallback must be positive")
	}

	return nil
}
