package types

import (
	"math/big"
	"time"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/format"
	"github.com/shopspring/decimal"
)

const (
	featureWithdrawAnytime = "Withdraw anytime"
	featureDailyRewards    = "Daily rewards"
	featureNoPenalties     = "No penalties"
	featureHigherAPY       = "Higher APY"
	featureBonusRewards    = "Bonus rewards"
)

type StakingPlan struct {
	ID                         uint64   `json:"id"`
	Name                       string   `json:"name"`
	APY                        string   `json:"apy"`
	APYBasisPoints             int64    `json:"apyBasisPoints"`
	LockPeriod                 string   `json:"lockPeriod"`
	LockDuration               uint64   `json:"lockDuration"`
	MinStake                   string   `json:"minStake"`
	MinStakeAmount             string   `json:"minStakeAmount"`
	EarlyUnstakeFee            string   `json:"earlyUnstakeFee"`
	EarlyUnstakeFeeBasisPoints int64    `json:"earlyUnstakeFeeBasisPoints"`
	Features                   []string `json:"features"`
	Active                     bool     `json:"active"`
}

func NewStakingPlan(p contracts.StakingPlan) StakingPlan {
	apy := Int64(p.ApyBasisPoints)
	lock := Uint64(p.LockDuration)
	fee := Int64(p.EarlyUnstakeFeeBasisPoints)

	return StakingPlan{
		ID:                         Uint64(p.ID),
		Name:                       p.Name,
		APY:                        format.PercentFromBP(apy),
		APYBasisPoints:             apy,
		LockPeriod:                 format.LockDuration(lock),
		LockDuration:               lock,
		MinStake:                   format.TokenAmount(p.MinStakeAmount),
		MinStakeAmount:             String(p.MinStakeAmount),
		EarlyUnstakeFee:            format.PercentFromBP(fee),
		EarlyUnstakeFeeBasisPoints: fee,
		Features:                   PlanFeatures(lock, fee),
		Active:                     p.Active,
	}
}

// PlanFeatures lists the selling points shown next to a plan.
func PlanFeatures(lockDuration uint64, earlyUnstakeFeeBP int64) []string {
	if lockDuration == 0 {
		return []string{featureWithdrawAnytime, featureDailyRewards, featureNoPenalties}
	}

	features := []string{featureHigherAPY, featureBonusRewards}
	if earlyUnstakeFeeBP > 0 {
		features = append(features, "Early unlock fee: "+format.PercentFromBP(earlyUnstakeFeeBP))
	}
	return features
}

// AverageAPY is the mean APY of plans, "0%" when there are none.
func AverageAPY(plans []StakingPlan) string {
	if len(plans) == 0 {
		return format.PercentFromBP(0)
	}

	sum := decimal.Zero
	for _, p := range plans {
		sum = sum.Add(decimal.NewFromInt(p.APYBasisPoints))
	}
	return format.PercentFromBPDecimal(sum.Div(decimal.NewFromInt(int64(len(plans)))))
}

type StakingStats struct {
	TotalStaked     string `json:"totalStaked"`
	TotalStakers    string `json:"totalStakers"`
	AvgAPY          string `json:"avgApy"`
	RewardsPaid     string `json:"rewardsPaid"`
	ContractBalance string `json:"contractBalance"`
}

// StakingOverview is everything about the staking contract that does not
// depend on a wallet.
type StakingOverview struct {
	Plans                         []StakingPlan `json:"plans"`
	Stats                         StakingStats  `json:"stats"`
	ReferralCommissionBasisPoints int64         `json:"referralCommissionBasisPoints"`
	ReferralCommission            string        `json:"referralCommission"`
}

func NewStakingOverview(
	plans []contracts.StakingPlan, contractBalance, totalStakers, commissionBP *big.Int,
) *StakingOverview {
	out := &StakingOverview{Plans: make([]StakingPlan, 0, len(plans))}
	for _, p := range plans {
		out.Plans = append(out.Plans, NewStakingPlan(p))
	}

	out.Stats = StakingStats{
		TotalStaked:     format.TokenAmount(contractBalance),
		TotalStakers:    String(totalStakers),
		AvgAPY:          AverageAPY(out.Plans),
		RewardsPaid:     format.TokenAmount(nil),
		ContractBalance: format.TokenAmount(contractBalance),
	}

	commission := Int64(commissionBP)
	out.ReferralCommissionBasisPoints = commission
	out.ReferralCommission = format.PercentFromBP(commission)
	return out
}

type UserStake struct {
	StakeIndex           int    `json:"stakeIndex"`
	PlanID               uint64 `json:"planId"`
	PlanName             string `json:"planName"`
	Amount               string `json:"amount"`
	AmountWei            string `json:"amountWei"`
	StartTime            uint64 `json:"startTime"`
	LastClaimTime        uint64 `json:"lastClaimTime"`
	Referrer             string `json:"referrer"`
	ReferralBonusClaimed string `json:"referralBonusClaimed"`
	PendingRewards       string `json:"pendingRewards"`
	PendingRewardsWei    string `json:"pendingRewardsWei"`
	CanUnstake           bool   `json:"canUnstake"`
	IsLocked             bool   `json:"isLocked"`
	LockEndTime          uint64 `json:"lockEndTime"`
}

// NewUserStake combines a stake with its plan and pending reward. A nil
// pending reward is shown as zero.
func NewUserStake(index int, s contracts.Stake, plan contracts.StakingPlan, pending *big.Int, now time.Time) UserStake {
	start := Uint64(s.StartTime)
	lock := Uint64(plan.LockDuration)
	if pending == nil {
		pending = new(big.Int)
	}

	return UserStake{
		StakeIndex:           index,
		PlanID:               Uint64(s.PlanID),
		PlanName:             plan.Name,
		Amount:               format.TokenAmount(s.Amount),
		AmountWei:            String(s.Amount),
		StartTime:            start,
		LastClaimTime:        Uint64(s.LastClaimTime),
		Referrer:             s.Referrer.Hex(),
		ReferralBonusClaimed: String(s.ReferralBonusClaimed),
		PendingRewards:       format.TokenAmount(pending),
		PendingRewardsWei:    pending.String(),
		CanUnstake:           true,
		IsLocked:             IsLocked(start, lock, now),
		LockEndTime:          start + lock,
	}
}

// IsLocked reports whether a stake started at startTime is still inside its
// plan's lock window. Plans without a lock are never locked.
func IsLocked(startTime, lockDuration uint64, now time.Time) bool {
	if lockDuration == 0 {
		return false
	}
	return uint64(now.Unix()) < startTime+lockDuration
}

type UserStakingData struct {
	Address                  string      `json:"address"`
	TotalStakedAmount        string      `json:"totalStakedAmount"`
	TotalStakedAmountWei     string      `json:"totalStakedAmountWei"`
	TotalReferralEarnings    string      `json:"totalReferralEarnings"`
	TotalReferralEarningsWei string      `json:"totalReferralEarningsWei"`
	UserDirectReferralCount  string      `json:"userDirectReferralCount"`
	Stakes                   []UserStake `json:"stakes"`
	PendingRewardsTotal      string      `json:"pendingRewardsTotal"`
	ActiveStakesCount        int         `json:"activeStakesCount"`
}

func NewUserStakingData(
	address string, totalStaked, referralEarnings, directReferrals *big.Int, stakes []UserStake,
) *UserStakingData {
	if stakes == nil {
		stakes = []UserStake{}
	}

	pending := new(big.Int)
	for _, s := range stakes {
		if v, ok := new(big.Int).SetString(s.PendingRewardsWei, 10); ok {
			pending.Add(pending, v)
		}
	}

	return &UserStakingData{
		Address:                  address,
		TotalStakedAmount:        format.TokenAmount(totalStaked),
		TotalStakedAmountWei:     String(totalStaked),
		TotalReferralEarnings:    format.TokenAmount(referralEarnings),
		TotalReferralEarningsWei: String(referralEarnings),
		UserDirectReferralCount:  String(directReferrals),
		Stakes:                   stakes,
		PendingRewardsTotal:      format.TokenAmount(pending),
		ActiveStakesCount:        len(stakes),
	}
}
