package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/rs/zerolog/log"
)

// RefreshUserStaking returns the stakes and totals of user.
func (s *Service) RefreshUserStaking(ctx context.Context, user common.Address, force bool) (*types.UserStakingData, error) {
	return refresh(ctx, s, refreshJob{
		domain:  types.DomainUserStaking,
		kind:    cache.KindUserStakingData,
		address: user.Hex(),
		force:   force,
		errMsg:  errMsgUserStaking,
	}, func(ctx context.Context) (*types.UserStakingData, error) {
		return s.fetchUserStaking(ctx, user)
	})
}

func (s *Service) fetchUserStaking(ctx context.Context, user common.Address) (*types.UserStakingData, error) {
	staking := s.cfg.Contracts.StakingAddress()

	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetUserTotalStakedAmount, user),
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetReferrerTotalEarnings, user),
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetAllUserStakes, user),
		multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetDirectReferralCount, user),
	})
	if err != nil {
		return nil, err
	}
	for i, r := range results {
		if r.Failed() {
			return nil, fmt.Errorf("user data read %d failed: %w", i, r.Err)
		}
	}

	totalStaked, err := multicall.DecodeAs[*big.Int](results[0])
	if err != nil {
		return nil, err
	}
	earnings, err := multicall.DecodeAs[*big.Int](results[1])
	if err != nil {
		return nil, err
	}
	rawStakes, err := multicall.DecodeAs[[]contracts.Stake](results[2])
	if err != nil {
		return nil, err
	}
	directReferrals, err := multicall.DecodeAs[*big.Int](results[3])
	if err != nil {
		return nil, err
	}

	stakes, err := s.userStakes(ctx, user, rawStakes)
	if err != nil {
		return nil, err
	}

	return types.NewUserStakingData(user.Hex(), totalStaked, earnings, directReferrals, stakes), nil
}

// userStakes reads the pending reward of every stake and the plan of every
// distinct plan id in one batch. A failed pending reward counts as zero, a
// stake whose plan cannot be read is left out.
func (s *Service) userStakes(ctx context.Context, user common.Address, raw []contracts.Stake) ([]types.UserStake, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	staking := s.cfg.Contracts.StakingAddress()

	calls := make([]multicall.Call, 0, len(raw)*2)
	for i := range raw {
		calls = append(calls, multicall.NewCall(staking, contracts.StakingABI, contracts.MethodCalculatePendingReward,
			user, big.NewInt(int64(i))))
	}

	var planIDs []string
	seen := make(map[string]*big.Int)
	for _, st := range raw {
		id := types.String(st.PlanID)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = st.PlanID
		planIDs = append(planIDs, id)
		calls = append(calls, multicall.NewCall(staking, contracts.StakingABI, contracts.MethodGetStakingPlan, st.PlanID))
	}

	results, err := s.reader.Read(ctx, calls)
	if err != nil {
		return nil, err
	}

	plans := make(map[string]contracts.StakingPlan, len(planIDs))
	for i, id := range planIDs {
		var plan contracts.StakingPlan
		if err := results[len(raw)+i].Decode(&plan); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("plan_id", id).Msg("failed to read plan of a stake")
			continue
		}
		plans[id] = plan
	}

	now := s.now()
	stakes := make([]types.UserStake, 0, len(raw))
	for i, st := range raw {
		plan, ok := plans[types.String(st.PlanID)]
		if !ok {
			log.Ctx(ctx).Warn().Int("stake_index", i).Str("plan_id", types.String(st.PlanID)).Msg("plan details not found")
			continue
		}

		pending, err := multicall.DecodeAs[*big.Int](results[i])
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Int("stake_index", i).Msg("pending reward read failed, showing zero")
			pending = nil
		}

		stakes = append(stakes, types.NewUserStake(i, st, plan, pending, now))
	}
	return stakes, nil
}
