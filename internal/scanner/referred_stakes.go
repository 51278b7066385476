package scanner

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/retry"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const basisPointsDenominator = 10000

// ReferredStake is one stake a referrer earns commission on, identified by
// (Staker, StakeIndex).
type ReferredStake struct {
	Staker          common.Address
	StakeIndex      *big.Int
	PlanID          *big.Int
	PlanName        string
	Amount          *big.Int
	StartTime       uint64
	Commission      *big.Int
	PotentialBonus  *big.Int
	BonusClaimed    bool
	TransactionHash common.Hash
	BlockNumber     uint64
}

func (s ReferredStake) Key() string {
	return stakeKey(s.Staker, s.StakeIndex)
}

func stakeKey(staker common.Address, index *big.Int) string {
	return strings.ToLower(staker.Hex()) + "-" + index.String()
}

type ReferredStakes struct {
	Stakes       []ReferredStake
	FailedRanges []BlockRange
	// SkippedEvents counts events whose point-in-time plan or commission read failed.
	SkippedEvents int
}

func (r *ReferredStakes) Incomplete() bool {
	return len(r.FailedRanges) > 0 || r.SkippedEvents > 0
}

type ReferralReader struct {
	scanner         *Scanner
	reader          multicall.Reader
	staking         common.Address
	deploymentBlock uint64
	workers         int
	claimPolicy     retry.Policy
}

func NewReferralReader(
	scanner *Scanner, reader multicall.Reader, staking common.Address, deploymentBlock uint64, workers int,
) *ReferralReader {
	if workers <= 0 {
		workers = 1
	}
	return &ReferralReader{
		scanner:         scanner,
		reader:          reader,
		staking:         staking,
		deploymentBlock: deploymentBlock,
		workers:         workers,
		claimPolicy:     retry.Light(),
	}
}

// ReferredStakes rebuilds every stake made with referrer as the referrer,
// most recent first.
func (r *ReferralReader) ReferredStakes(ctx context.Context, referrer common.Address) (*ReferredStakes, error) {
	log := log.Ctx(ctx).With().Str("referrer", referrer.Hex()).Logger()

	scan, err := r.scanner.Scan(ctx, Query{
		Address:   r.staking,
		Topics:    contracts.StakedByReferrerTopics(referrer),
		FromBlock: r.deploymentBlock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan staked events: %w", err)
	}

	out := &ReferredStakes{FailedRanges: scan.FailedRanges}

	events := dedupStaked(ctx, scan)
	log.Debug().Int("logs", len(scan.Logs)).Int("unique", len(events)).Msg("staked events collected")
	if len(events) == 0 {
		return out, nil
	}

	for _, event := range events {
		stake, err := r.atEventBlock(ctx, event)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
			}
			log.Warn().
				Err(err).
				Str("staker", event.User.Hex()).
				Str("stake_index", event.StakeIndex.String()).
				Uint64("block", event.Raw.BlockNumber).
				Msg("failed to read contract state at event block, skipping")
			out.SkippedEvents++
			continue
		}
		out.Stakes = append(out.Stakes, *stake)
	}

	if err := r.fillClaimStatus(ctx, out.Stakes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	sort.SliceStable(out.Stakes, func(i, j int) bool {
		return out.Stakes[i].StartTime > out.Stakes[j].StartTime
	})

	return out, nil
}

// dedupStaked decodes the sorted logs and keeps the first event per
// (staker, stake index).
func dedupStaked(ctx context.Context, scan *Result) []*contracts.StakedEvent {
	seen := make(map[string]struct{}, len(scan.Logs))
	var events []*contracts.StakedEvent

	for _, l := range scan.Logs {
		event, err := contracts.ParseStaked(l)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("tx_hash", l.TxHash.Hex()).Msg("failed to decode staked event")
			continue
		}

		key := stakeKey(event.User, event.StakeIndex)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		events = append(events, event)
	}

	return events
}

func (r *ReferralReader) atEventBlock(ctx context.Context, event *contracts.StakedEvent) (*ReferredStake, error) {
	results, err := r.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(r.staking, contracts.StakingABI, contracts.MethodGetStakingPlan, event.PlanID),
		multicall.NewCall(r.staking, contracts.StakingABI, contracts.MethodReferralCommissionBasisPoints),
	}, multicall.WithBlock(event.Raw.BlockNumber))
	if err != nil {
		return nil, err
	}

	var plan contracts.StakingPlan
	if err := results[0].Decode(&plan); err != nil {
		return nil, err
	}
	commission, err := multicall.DecodeAs[*big.Int](results[1])
	if err != nil {
		return nil, err
	}

	return &ReferredStake{
		Staker:          event.User,
		StakeIndex:      event.StakeIndex,
		PlanID:          event.PlanID,
		PlanName:        plan.Name,
		Amount:          event.Amount,
		StartTime:       event.StartTime.Uint64(),
		Commission:      commission,
		PotentialBonus:  PotentialBonus(event.Amount, commission),
		TransactionHash: event.Raw.TxHash,
		BlockNumber:     event.Raw.BlockNumber,
	}, nil
}

// PotentialBonus is amount * commission / 10000, rounded down.
func PotentialBonus(amount, commissionBasisPoints *big.Int) *big.Int {
	bonus := new(big.Int).Mul(amount, commissionBasisPoints)
	return bonus.Quo(bonus, big.NewInt(basisPointsDenominator))
}

// fillClaimStatus marks stakes whose referral bonus was already paid out.
// Stakers whose stakes cannot be read are left as not claimed.
func (r *ReferralReader) fillClaimStatus(ctx context.Context, stakes []ReferredStake) error {
	byStaker := make(map[common.Address][]int)
	for i, s := range stakes {
		byStaker[s.Staker] = append(byStaker[s.Staker], i)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for staker, idxs := range byStaker {
		g.Go(func() error {
			userStakes, err := r.userStakes(gctx, staker)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Ctx(ctx).Warn().Err(err).Str("staker", staker.Hex()).Msg("failed to check referral claim status")
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, i := range idxs {
				idx := stakes[i].StakeIndex
				if !idx.IsInt64() || idx.Int64() >= int64(len(userStakes)) {
					continue
				}
				claimed := userStakes[idx.Int64()].ReferralBonusClaimed
				stakes[i].BonusClaimed = claimed != nil && claimed.Sign() > 0
			}
			return nil
		})
	}

	return g.Wait()
}

func (r *ReferralReader) userStakes(ctx context.Context, staker common.Address) ([]contracts.Stake, error) {
	return retry.Do(ctx, r.claimPolicy, func() ([]contracts.Stake, error) {
		results, err := r.reader.Read(ctx, []multicall.Call{
			multicall.NewCall(r.staking, contracts.StakingABI, contracts.MethodGetAllUserStakes, staker),
		})
		if err != nil {
			return nil, err
		}
		return multicall.DecodeAs[[]contracts.Stake](results[0])
	})
}
