package config

import (
	"errors"
	"strings"
	"time"
)

const (
	defaultReceiptPollInterval = 2 * time.Second
	defaultReceiptTimeout      = 3 * time.Minute
	defaultGasLimitMultiplier  = 1.2
)

type SignerConfig struct {
	// PrivateKey is hex encoded, with or without 0x. Empty means read-only mode.
	PrivateKey          string        `mapstructure:"private-key"`
	ReceiptPollInterval time.Duration `mapstructure:"receipt-poll-interval"`
	ReceiptTimeout      time.Duration `mapstructure:"receipt-timeout"`
	GasLimitMultiplier  float64       `mapstructure:"gas-limit-multiplier"`
}

func DefaultSignerConfig() *SignerConfig {
	return &SignerConfig{
		ReceiptPollInterval: defaultReceiptPollInterval,
		ReceiptTimeout:      defaultReceiptTimeout,
		GasLimitMultiplier:  defaultGasLimitMultiplier,
	}
}

func (cfg *SignerConfig) Validate() error {
	if cfg.ReceiptPollInterval <= 0 {
		return errors.New("receipt-poll-interval must be positive")
	}

	if cfg.ReceiptTimeout <= 0 {
		return errors.New("receipt-timeout must be positive")
	}

	if cfg.GasLimitMultiplier < 1 {
		return errors.New("gas-limit-multiplier must be at least 1")
	}

	return nil
}

func (cfg *SignerConfig) Enabled() bool {
	return strings.TrimSpace(cfg.PrivateKey) != ""
}
