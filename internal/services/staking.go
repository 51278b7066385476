package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/rs/zerolog/log"
)

const defaultCommissionBasisPoints = 1000

// RefreshStaking returns the plans, contract stats and referral commission.
func (s *Service) RefreshStaking(ctx context.Context, force bool) (*types.StakingOverview, error) {
	return refresh(ctx, s, refreshJob{
		domain: types.DomainStaking,
		kind:   cache.KindStakingPlans,
		force:  force,
		errMsg: errMsgStaking,
	}, s.fetchStaking)
}

func (s *Service) fetchStaking(ctx context.Context) (*types.StakingOverview, error) {
	staking := s.cfg.Contracts.StakingAddress()

	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetActiveStakingPlans),
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetContractTokenBalance),
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetTotalUniqueStakers),
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodReferralCommissionBasisPoints),
	})
	if err != nil {
		return nil, err
	}

	plans, err := multicall.DecodeAs[[]contracts.StakingPlan](results[0])
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to read active plans, reading plans one by one")
		plans, err = s.fetchPlansOneByOne(ctx)
		if err != nil {
			return nil, err
		}
	}

	balance := bigOr(ctx, results[1], new(big.Int))
	stakers := bigOr(ctx, results[2], new(big.Int))
	commission := bigOr(ctx, results[3], big.NewInt(defaultCommissionBasisPoints))

	return types.NewStakingOverview(plans, balance, stakers, commission), nil
}

// fetchPlansOneByOne reads plans 1..getStakingPlanCount and keeps the active
// ones.
func (s *Service) fetchPlansOneByOne(ctx context.Context) ([]contracts.StakingPlan, error) {
	staking := s.cfg.Contracts.StakingAddress()

	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetStakingPlanCount),
	})
	if err != nil {
		return nil, err
	}
	count, err := multicall.DecodeAs[*big.Int](results[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read plan count: %w", err)
	}

	n := types.Uint64(count)
	calls := make([]multicall.Call, 0, n)
	for id := uint64(1); id <= n; id++ {
		calls = append(calls, multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetStakingPlan,
			new(big.Int).SetUint64(id)))
	}
	if len(calls) == 0 {
		return nil, nil
	}

	results, err = s.reader.Read(ctx, calls)
	if err != nil {
		return nil, err
	}

	var plans []contracts.StakingPlan
	for i, r := range results {
		var plan contracts.StakingPlan
		if err := r.Decode(&plan); err != nil {
			log.Ctx(ctx).Warn().Err(err).Int("plan_id", i+1).Msg("failed to read plan")
			continue
		}
		if plan.Active {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

// ReferralCommission returns the current commission in basis points.
func (s *Service) ReferralCommission(ctx context.Context, force bool) (int64, error) {
	return cached(ctx, s, cache.KindReferralCommission, "", force, func(ctx context.Context) (int64, error) {
		results, err := s.reader.Read(ctx, []multicall.Call{
			multicall.NewCall(s.cfg.Contracts.StakingAddress(), contracts.StakingABI,
				contracts.MethodReferralCommissionBasisPoints),
		})
		if err != nil {
			return 0, err
		}
		v, err := multicall.DecodeAs[*big.Int](results[0])
		if err != nil {
			return 0, fmt.Errorf("failed to read referral commission: %w", err)
		}
		return types.Int64(v), nil
	})
}
