package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/txclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/rs/zerolog/log"
)

const secondsPerDay = 24 * 60 * 60

var ErrNothingToClaim = errors.New("no referral bonuses available to claim")

// PlanParams are the admin inputs of a staking plan.
type PlanParams struct {
	Name                       string
	ApyBasisPoints             int64
	LockDurationDays           uint64
	EarlyUnstakeFeeBasisPoints int64
	MinStakeAmount             *big.Int
	Active                     bool
}

func (p PlanParams) args() []any {
	return []any{
		p.Name,
		big.NewInt(p.ApyBasisPoints),
		lockDurationSeconds(p.LockDurationDays),
		big.NewInt(p.EarlyUnstakeFeeBasisPoints),
		orZero(p.MinStakeAmount),
		p.Active,
	}
}

// lockDurationSeconds converts days to the contract's seconds. The product is
// computed on big.Int since days*86400 does not fit uint64 for large inputs.
func lockDurationSeconds(days uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(days), big.NewInt(secondsPerDay))
}

// invoke submits one transaction and waits for it to be mined.
func (s *Service) invoke(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...any) (common.Hash, error) {
	if s.tx == nil {
		return common.Hash{}, txclient.ErrSignerRequired
	}

	receipt, err := s.tx.Invoke(ctx, to, contractABI, method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s failed: %w", method, err)
	}

	log.Ctx(ctx).Info().
		Str("method", method).
		Str("tx_hash", receipt.TxHash.Hex()).
		Uint64("block", types.Uint64(receipt.BlockNumber)).
		Msg("transaction mined")
	return receipt.TxHash, nil
}

// sender is the address whose view-models a write changes.
func (s *Service) sender() common.Address {
	if s.tx == nil {
		return common.Address{}
	}
	return s.tx.From()
}

func (s *Service) stakingWrite(ctx context.Context, method string, args ...any) (common.Hash, error) {
	hash, err := s.invoke(ctx, s.cfg.Contracts.StakingAddress(), contracts.StakingABI, method, args...)
	if err != nil {
		return hash, err
	}
	s.refreshAfterWrite(ctx, global(types.DomainStaking), forUser(types.DomainUserStaking, s.sender()))
	return hash, nil
}

func (s *Service) Stake(ctx context.Context, planID uint64, amount *big.Int, referrer common.Address) (common.Hash, error) {
	return s.stakingWrite(ctx, contracts.MethodStake, new(big.Int).SetUint64(planID), amount, referrer)
}

func (s *Service) Unstake(ctx context.Context, stakeIndex uint64) (common.Hash, error) {
	return s.stakingWrite(ctx, contracts.MethodUnstake, new(big.Int).SetUint64(stakeIndex))
}

func (s *Service) ClaimRewards(ctx context.Context, stakeIndex uint64) (common.Hash, error) {
	return s.stakingWrite(ctx, contracts.MethodClaimRewards, new(big.Int).SetUint64(stakeIndex))
}

// Approve lets the staking contract spend amount of the sender's tokens.
func (s *Service) Approve(ctx context.Context, amount *big.Int) (common.Hash, error) {
	return s.invoke(ctx, s.cfg.Contracts.TokenAddress(), contracts.ERC20ABI, contracts.MethodApprove,
		s.cfg.Contracts.StakingAddress(), amount)
}

func (s *Service) ClaimReferralBonus(ctx context.Context, staker common.Address, stakeIndex uint64) (common.Hash, error) {
	hash, err := s.invoke(ctx, s.cfg.Contracts.StakingAddress(), contracts.StakingABI, contracts.MethodClaimReferralBonus,
		staker, new(big.Int).SetUint64(stakeIndex))
	if err != nil {
		return hash, err
	}
	s.refreshAfterReferralClaim(ctx)
	return hash, nil
}

// ClaimAllReferralBonuses claims every bonus currently claimable by the
// sender, one transaction each. On failure the hashes of the claims already
// mined are returned with the error.
func (s *Service) ClaimAllReferralBonuses(ctx context.Context) ([]common.Hash, error) {
	if s.tx == nil {
		return nil, txclient.ErrSignerRequired
	}
	referrer := s.sender()

	claimable, err := s.ClaimableReferral(ctx, referrer, true)
	if err != nil {
		return nil, err
	}
	if len(claimable) == 0 {
		return nil, ErrNothingToClaim
	}

	logger := log.Ctx(ctx).With().Str("referrer", referrer.Hex()).Logger()
	hashes := make([]common.Hash, 0, len(claimable))
	var claimErr error
	for i, c := range claimable {
		logger.Info().
			Int("claim", i+1).
			Int("total", len(claimable)).
			Str("staker", c.Staker).
			Uint64("stake_index", c.StakeIndex).
			Msg("claiming referral bonus")

		hash, err := s.invoke(ctx, s.cfg.Contracts.StakingAddress(), contracts.StakingABI,
			contracts.MethodClaimReferralBonus, common.HexToAddress(c.Staker), new(big.Int).SetUint64(c.StakeIndex))
		if err != nil {
			claimErr = fmt.Errorf("claim %d of %d: %w", i+1, len(claimable), err)
			break
		}
		hashes = append(hashes, hash)
	}

	if len(hashes) > 0 {
		s.refreshAfterReferralClaim(ctx)
	}
	return hashes, claimErr
}

func (s *Service) refreshAfterReferralClaim(ctx context.Context) {
	referrer := s.sender()
	if err := s.cache.Invalidate(ctx, cache.KindClaimableReferral, referrer.Hex()); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate claimable bonuses")
	}
	s.refreshAfterWrite(ctx, forUser(types.DomainReferral, referrer), forUser(types.DomainUserStaking, referrer))
}

func (s *Service) AddStakingPlan(ctx context.Context, p PlanParams) (common.Hash, error) {
	return s.adminWrite(ctx, contracts.MethodAddStakingPlan, p.args()...)
}

func (s *Service) UpdateStakingPlan(ctx context.Context, planID uint64, p PlanParams) (common.Hash, error) {
	args := append([]any{new(big.Int).SetUint64(planID)}, p.args()...)
	return s.adminWrite(ctx, contracts.MethodUpdateStakingPlan, args...)
}

func (s *Service) SetReferralCommission(ctx context.Context, basisPoints int64) (common.Hash, error) {
	return s.adminWrite(ctx, contracts.MethodSetReferralCommission, big.NewInt(basisPoints))
}

func (s *Service) adminWrite(ctx context.Context, method string, args ...any) (common.Hash, error) {
	hash, err := s.invoke(ctx, s.cfg.Contracts.StakingAddress(), contracts.StakingABI, method, args...)
	if err != nil {
		return hash, err
	}
	if err := s.cache.Invalidate(ctx, cache.KindReferralCommission, ""); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate referral commission")
	}
	s.refreshAfterWrite(ctx, global(types.DomainStaking))
	return hash, nil
}

// Allowance is how much of owner's tokens the staking contract may spend.
func (s *Service) Allowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return s.readBig(ctx, multicall.NewCall(s.cfg.Contracts.TokenAddress(), contracts.ERC20ABI, contracts.MethodAllowance,
		owner, s.cfg.Contracts.StakingAddress()))
}

func (s *Service) TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return s.readBig(ctx, multicall.NewCall(s.cfg.Contracts.TokenAddress(), contracts.ERC20ABI, contracts.MethodBalanceOf,
		owner))
}

// IsOwner reports whether address owns the staking contract.
func (s *Service) IsOwner(ctx context.Context, address common.Address) (bool, error) {
	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(s.cfg.Contracts.StakingAddress(), contracts.StakingABI, contracts.MethodOwner),
	})
	if err != nil {
		return false, err
	}
	owner, err := multicall.DecodeAs[common.Address](results[0])
	if err != nil {
		return false, err
	}
	return owner == address, nil
}

func (s *Service) readBig(ctx context.Context, call multicall.Call) (*big.Int, error) {
	results, err := s.reader.Read(ctx, []multicall.Call{call})
	if err != nil {
		return nil, err
	}
	return multicall.DecodeAs[*big.Int](results[0])
}
