package services

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/poller"
)

// StartPollers keeps the global view-models warm. The vault poller only runs
// when a vault is configured and an interval is set, the referral poller only
// when its interval is set.
func (s *Service) StartPollers(ctx context.Context) []*poller.Poller {
	pollers := []*poller.Poller{
		poller.NewPoller("staking", s.cfg.Poller.PlansRefreshInterval,
			metrics.RecordPollerDuration("staking", s.pollStaking)),
		poller.NewPoller("token", s.cfg.Poller.TokenRefreshInterval,
			metrics.RecordPollerDuration("token", s.pollToken)),
	}
	if _, ok := s.cfg.Contracts.VaultAddress(); ok && s.cfg.Poller.VaultRefreshInterval > 0 {
		pollers = append(pollers, poller.NewPoller("vault", s.cfg.Poller.VaultRefreshInterval,
			metrics.RecordPollerDuration("vault", s.pollVault)))
	}

	if s.cfg.Poller.ReferralRefreshInterval > 0 {
		pollers = append(pollers, poller.NewPoller("referral", s.cfg.Poller.ReferralRefreshInterval,
			metrics.RecordPollerDuration("referral", s.pollReferrals)))
	}

	for _, p := range pollers {
		go p.Start(ctx)
	}
	return pollers
}

func (s *Service) pollStaking(ctx context.Context) error {
	_, err := s.RefreshStaking(ctx, true)
	return err
}

func (s *Service) pollToken(ctx context.Context) error {
	_, err := s.RefreshToken(ctx, true)
	return err
}

func (s *Service) pollVault(ctx context.Context) error {
	_, err := s.RefreshVault(ctx, true)
	return err
}

// pollReferrals rescans the configured referrers and the ones requested
// recently, one at a time. It runs without a request deadline so that long
// histories complete and land in the cache.
func (s *Service) pollReferrals(ctx context.Context) error {
	var errs []error
	for _, referrer := range s.warmReferrers() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.refreshReferral(ctx, referrer, true); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("referrer", referrer.Hex()).Msg("failed to warm referral data")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) warmReferrers() []common.Address {
	seen := make(map[common.Address]struct{})
	var out []common.Address
	for _, r := range append(s.cfg.Poller.ReferrerAddresses(), s.referrers.Keys()...) {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
