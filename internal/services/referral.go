package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/scanner"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/format"
	"github.com/rs/zerolog/log"
)

// ErrReferralScanPending is returned when the caller's context ends before
// the referral history scan does. The scan keeps running and caches its result.
var ErrReferralScanPending = errors.New("referral history scan in progress")

// ReferredStakes is the reconstructed referral history of one referrer.
type ReferredStakes struct {
	Stakes        []types.ReferredStake `json:"stakes"`
	FailedRanges  []types.BlockRange    `json:"failedRanges"`
	SkippedEvents int                   `json:"skippedEvents"`
	// ScanFailed is set when the history could not be scanned at all.
	ScanFailed bool `json:"scanFailed"`
}

func (r *ReferredStakes) Incomplete() bool {
	return r.ScanFailed || len(r.FailedRanges) > 0 || r.SkippedEvents > 0
}

// RefreshReferral returns the referral dashboard of referrer.
func (s *Service) RefreshReferral(ctx context.Context, referrer common.Address, force bool) (*types.ReferralData, error) {
	s.referrers.Add(referrer, struct{}{})
	return s.refreshReferral(ctx, referrer, force)
}

func (s *Service) refreshReferral(ctx context.Context, referrer common.Address, force bool) (*types.ReferralData, error) {
	return refresh(ctx, s, refreshJob{
		domain:  types.DomainReferral,
		kind:    cache.KindUserReferralData,
		address: referrer.Hex(),
		force:   force,
		errMsg:  errMsgReferral,
	}, func(ctx context.Context) (*types.ReferralData, error) {
		return s.fetchReferral(ctx, referrer, force)
	})
}

func (s *Service) fetchReferral(ctx context.Context, referrer common.Address, force bool) (*types.ReferralData, error) {
	staking := s.cfg.Contracts.StakingAddress()

	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetDirectReferralCount, referrer),
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetReferrerTotalEarnings, referrer),
	})
	if err != nil {
		return nil, err
	}
	directCount, err := multicall.DecodeAs[*big.Int](results[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read direct referral count: %w", err)
	}
	earnings, err := multicall.DecodeAs[*big.Int](results[1])
	if err != nil {
		return nil, fmt.Errorf("failed to read referrer earnings: %w", err)
	}

	commission, err := s.ReferralCommission(ctx, force)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to read referral commission, using default")
		commission = defaultCommissionBasisPoints
	}

	claimable, err := s.ClaimableReferral(ctx, referrer, force)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to read claimable referral bonuses")
		claimable = []types.ClaimableBonus{}
	}

	referred, err := s.ReferredStakes(ctx, referrer, force)
	if err != nil {
		return nil, err
	}

	claimableTotal := types.ClaimableTotal(claimable)
	return &types.ReferralData{
		Address:                       referrer.Hex(),
		ReferralCommissionBasisPoints: commission,
		ReferralCommission:            format.PercentFromBP(commission),
		DirectReferralCount:           types.Uint64(directCount),
		TotalReferralEarnings:         format.TokenAmount(earnings),
		TotalReferralEarningsWei:      types.String(earnings),
		ClaimableAmount:               format.TokenAmount(claimableTotal),
		ClaimableAmountWei:            claimableTotal.String(),
		Claimable:                     claimable,
		ReferredStakes:                referred.Stakes,
		Incomplete:                    referred.Incomplete(),
		FailedRanges:                  referred.FailedRanges,
		SkippedEvents:                 referred.SkippedEvents,
		LastUpdated:                   s.now().UTC(),
	}, nil
}

// ClaimableReferral reads the bonuses referrer can claim right now. fresh
// skips the cache.
func (s *Service) ClaimableReferral(ctx context.Context, referrer common.Address, fresh bool) ([]types.ClaimableBonus, error) {
	return cached(ctx, s, cache.KindClaimableReferral, referrer.Hex(), fresh,
		func(ctx context.Context) ([]types.ClaimableBonus, error) {
			results, err := s.reader.Read(ctx, []multicall.Call{
				multicall.NewCall(s.cfg.Contracts.StakingAddress(), contracts.StakingABI,
					contracts.MethodGetClaimableReferralBonuses, referrer),
			})
			if err != nil {
				return nil, err
			}

			var raw contracts.ClaimableReferralBonuses
			if err := results[0].Decode(&raw); err != nil {
				return nil, fmt.Errorf("failed to read claimable referral bonuses: %w", err)
			}
			if len(raw.Stakers) != len(raw.StakeIndexes) || len(raw.Stakers) != len(raw.BonusAmounts) {
				return nil, fmt.Errorf("claimable referral bonuses have mismatched lengths %d/%d/%d",
					len(raw.Stakers), len(raw.StakeIndexes), len(raw.BonusAmounts))
			}

			out := make([]types.ClaimableBonus, len(raw.Stakers))
			for i := range raw.Stakers {
				out[i] = types.NewClaimableBonus(raw.Stakers[i].Hex(), raw.StakeIndexes[i], raw.BonusAmounts[i])
			}
			return out, nil
		})
}

// ReferredStakes rebuilds the stakes made with referrer as the referrer from
// the event history. A failed scan is reported through ScanFailed.
//
// The scan runs detached from ctx, one per referrer, and caches its result
// when done. Without force an expired result is served while a new scan runs.
// When ctx ends first ErrReferralScanPending is returned.
func (s *Service) ReferredStakes(ctx context.Context, referrer common.Address, force bool) (*ReferredStakes, error) {
	key := referrer.Hex()
	if !force {
		var out ReferredStakes
		if s.cache.Get(ctx, cache.KindReferredStakes, key, &out) {
			return &out, nil
		}
	}

	done := s.scans.DoChan(key, func() (any, error) {
		return s.scanReferredStakes(ctx, referrer)
	})

	if !force {
		var stale ReferredStakes
		if s.cache.GetStale(ctx, cache.KindReferredStakes, key, &stale) {
			log.Ctx(ctx).Debug().Str("referrer", key).Msg("serving expired referral history while it is rescanned")
			return &stale, nil
		}
	}

	select {
	case res := <-done:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ReferredStakes), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrReferralScanPending, ctx.Err())
	}
}

// scanReferredStakes runs one history scan bounded by the history timeout
// only. An interrupted scan is an error and is not cached.
func (s *Service) scanReferredStakes(parent context.Context, referrer common.Address) (*ReferredStakes, error) {
	ctx := context.WithoutCancel(parent)
	if d := s.cfg.Scanner.HistoryTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	log := log.Ctx(ctx).With().Str("referrer", referrer.Hex()).Logger()

	var out *ReferredStakes
	result, err := s.referrals.ReferredStakes(ctx, referrer)
	switch {
	case errors.Is(err, scanner.ErrInterrupted), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		log.Warn().Err(err).Msg("referral scan interrupted")
		return nil, err
	case err != nil:
		log.Warn().Err(err).Msg("referral scan failed")
		out = &ReferredStakes{Stakes: []types.ReferredStake{}, ScanFailed: true}
	default:
		out = newReferredStakes(result)
	}

	if err := s.cache.Set(ctx, cache.KindReferredStakes, referrer.Hex(), out); err != nil {
		log.Warn().Err(err).Msg("failed to write cache entry")
	}
	return out, nil
}

func newReferredStakes(r *scanner.ReferredStakes) *ReferredStakes {
	out := &ReferredStakes{
		Stakes:        make([]types.ReferredStake, 0, len(r.Stakes)),
		SkippedEvents: r.SkippedEvents,
	}
	for _, fr := range r.FailedRanges {
		out.FailedRanges = append(out.FailedRanges, types.BlockRange{From: fr.From, To: fr.To})
	}
	for _, st := range r.Stakes {
		out.Stakes = append(out.Stakes, types.ReferredStake{
			StakerAddress:     st.Staker.Hex(),
			StakeIndex:        types.Uint64(st.StakeIndex),
			PlanID:            types.Uint64(st.PlanID),
			PlanName:          st.PlanName,
			Amount:            format.TokenAmount(st.Amount),
			AmountWei:         types.String(st.Amount),
			StartTime:         st.StartTime,
			PotentialBonus:    format.TokenAmount(st.PotentialBonus),
			PotentialBonusWei: types.String(st.PotentialBonus),
			BonusClaimed:      st.BonusClaimed,
			TransactionHash:   st.TransactionHash.Hex(),
			BlockNumber:       st.BlockNumber,
			CommissionAtStake: types.Int64(st.Commission),
		})
	}
	return out
}
