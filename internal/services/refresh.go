package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/rs/zerolog/log"
)

// User facing messages stored in a failed domain's state.
const (
	errMsgStaking     = "Failed to fetch staking data from contract"
	errMsgUserStaking = "Failed to fetch user staking data"
	errMsgReferral    = "Failed to fetch referral data"
	errMsgToken       = "Failed to fetch live token data"
	errMsgVault       = "Failed to load vault data"
	errMsgNotDeployed = "Contract not deployed yet"
	errMsgScanPending = "Referral history is still being scanned, try again shortly"
)

// ErrAddressRequired is returned when a wallet scoped domain is refreshed without an address.
var ErrAddressRequired = errors.New("address is required")

type refreshJob struct {
	domain  types.Domain
	kind    cache.Kind
	address string
	force   bool
	errMsg  string
}

// refresh serves the cached view-model of job unless forced or stale,
// otherwise fetches it. The result is written back to the cache and the
// domain state only if no newer refresh of the same key started meanwhile.
func refresh[T any](ctx context.Context, s *Service, job refreshJob, fetch func(ctx context.Context) (T, error)) (T, error) {
	address := job.address
	if !job.force {
		var cached T
		if s.cache.Get(ctx, job.kind, address, &cached) {
			return cached, nil
		}
	}

	logger := log.Ctx(ctx).With().Str("domain", job.domain.String()).Str("address", address).Logger()

	token := s.inflight.Begin(s.cache.Key(job.kind, address))
	s.states.set(job.domain, address, types.StatusLoading, "", s.now())

	start := time.Now()
	value, err := fetch(ctx)
	metrics.RecordRefreshDuration(time.Since(start), job.domain.String(), err != nil)

	if errors.Is(err, ErrReferralScanPending) {
		// the scan goes on in the background and publishes its own result
		logger.Info().Msg("refresh returned before the history scan finished")
		s.inflight.Commit(token, func() {
			s.states.set(job.domain, address, types.StatusLoading, errMsgScanPending, s.now())
		})
		var zero T
		return zero, fmt.Errorf("%s: %w", errMsgScanPending, err)
	}
	if err != nil {
		logger.Error().Err(err).Msg("refresh failed")
		s.inflight.Commit(token, func() {
			s.states.set(job.domain, address, types.StatusError, job.errMsg, s.now())
		})
		var zero T
		return zero, fmt.Errorf("%s: %w", job.errMsg, err)
	}

	committed := s.inflight.Commit(token, func() {
		if err := s.cache.Set(ctx, job.kind, address, value); err != nil {
			logger.Warn().Err(err).Msg("failed to write cache entry")
		}
		s.states.set(job.domain, address, types.StatusSuccess, "", s.now())
	})
	if !committed {
		logger.Debug().Msg("refresh superseded by a newer one, result not published")
	}

	return value, nil
}

// cached is refresh without state tracking, for values shared by several
// view-models.
func cached[T any](ctx context.Context, s *Service, kind cache.Kind, address string, force bool, fetch func(ctx context.Context) (T, error)) (T, error) {
	if !force {
		var v T
		if s.cache.Get(ctx, kind, address, &v) {
			return v, nil
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, kind, address, v); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("failed to write cache entry")
	}
	return v, nil
}

// RefreshDomain forces a refresh of domain. address is required by the
// wallet scoped domains and ignored by the others.
func (s *Service) RefreshDomain(ctx context.Context, domain types.Domain, address string) (any, error) {
	if domainNeedsAddress(domain) && address == "" {
		return nil, fmt.Errorf("%s: %w", domain, ErrAddressRequired)
	}

	user := common.HexToAddress(address)
	switch domain {
	case types.DomainStaking:
		return s.RefreshStaking(ctx, true)
	case types.DomainUserStaking:
		return s.RefreshUserStaking(ctx, user, true)
	case types.DomainReferral:
		return s.RefreshReferral(ctx, user, true)
	case types.DomainToken:
		return s.RefreshToken(ctx, true)
	case types.DomainVault:
		if address != "" {
			return s.RefreshVaultUser(ctx, user, true)
		}
		return s.RefreshVault(ctx, true)
	default:
		return nil, fmt.Errorf("unknown domain %q", domain)
	}
}

func domainNeedsAddress(domain types.Domain) bool {
	return domain == types.DomainUserStaking || domain == types.DomainReferral
}

type refreshTarget struct {
	domain  types.Domain
	address common.Address
}

func global(domain types.Domain) refreshTarget {
	return refreshTarget{domain: domain}
}

func forUser(domain types.Domain, address common.Address) refreshTarget {
	return refreshTarget{domain: domain, address: address}
}

// refreshAfterWrite re-reads what a committed write changed. Failures are
// logged, the write itself already succeeded.
func (s *Service) refreshAfterWrite(ctx context.Context, targets ...refreshTarget) {
	for _, t := range targets {
		address := ""
		if t.address != (common.Address{}) {
			address = t.address.Hex()
		}
		if _, err := s.RefreshDomain(ctx, t.domain, address); err != nil {
			log.Ctx(ctx).Warn().
				Err(err).
				Str("domain", t.domain.String()).
				Str("address", address).
				Msg("failed to refresh after write")
		}
	}
}
