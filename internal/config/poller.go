package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	defaultPlansRefreshInterval    = 30 * time.Minute
	defaultTokenRefreshInterval    = 3 * time.Minute
	defaultReferralRefreshInterval = 10 * time.Minute
	defaultMaxTrackedReferrers     = 256
)

type PollerConfig struct {
	PlansRefreshInterval time.Duration `mapstructure:"plans-refresh-interval"`
	TokenRefreshInterval time.Duration `mapstructure:"token-refresh-interval"`
	// VaultRefreshInterval is optional, zero disables the vault poller.
	VaultRefreshInterval time.Duration `mapstructure:"vault-refresh-interval"`
	// ReferralRefreshInterval re-scans the referral history of Referrers and
	// of recently requested referrers. Zero disables the referral poller.
	ReferralRefreshInterval time.Duration `mapstructure:"referral-refresh-interval"`
	Referrers               []string      `mapstructure:"referrers"`
	MaxTrackedReferrers     int           `mapstructure:"max-tracked-referrers"`
}

func DefaultPollerConfig() *PollerConfig {
	return &PollerConfig{
		PlansRefreshInterval:    defaultPlansRefreshInterval,
		TokenRefreshInterval:    defaultTokenRefreshInterval,
		ReferralRefreshInterval: defaultReferralRefreshInterval,
		MaxTrackedReferrers:     defaultMaxTrackedReferrers,
	}
}

func (cfg *PollerConfig) Validate() error {
	if cfg.PlansRefreshInterval <= 0 {
		return errors.New("plans-refresh-interval must be positive")
	}

	if cfg.TokenRefreshInterval <= 0 {
		return errors.New("token-refresh-interval must be positive")
	}

	if cfg.VaultRefreshInterval < 0 {
		cfg.VaultRefreshInterval = 0
	}

	if cfg.ReferralRefreshInterval < 0 {
		cfg.ReferralRefreshInterval = 0
	}

	for _, addr := range cfg.Referrers {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid referrer address %q", addr)
		}
	}

	if cfg.MaxTrackedReferrers <= 0 {
		cfg.MaxTrackedReferrers = defaultMaxTrackedReferrers
	}

	return nil
}

// ReferrerAddresses returns the configured referrers. Validate must have passed.
func (cfg *PollerConfig) ReferrerAddresses() []common.Address {
	out := make([]common.Address, 0, len(cfg.Referrers))
	for _, addr := range cfg.Referrers {
		out = append(out, common.HexToAddress(addr))
	}
	return out
}
