package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StakingPlan mirrors OneDreamStakingV3.StakingPlan.
type StakingPlan struct {
	ID                         *big.Int `abi:"id"`
	Name                       string   `abi:"name"`
	ApyBasisPoints             *big.Int `abi:"apyBasisPoints"`
	LockDuration               *big.Int `abi:"lockDuration"`
	EarlyUnstakeFeeBasisPoints *big.Int `abi:"earlyUnstakeFeeBasisPoints"`
	MinStakeAmount             *big.Int `abi:"minStakeAmount"`
	Active                     bool     `abi:"active"`
}

// Stake mirrors OneDreamStakingV3.Stake.
type Stake struct {
	PlanID               *big.Int       `abi:"planId"`
	Amount               *big.Int       `abi:"amount"`
	StartTime            *big.Int       `abi:"startTime"`
	LastClaimTime        *big.Int       `abi:"lastClaimTime"`
	Referrer             common.Address `abi:"referrer"`
	ReferralBonusClaimed *big.Int       `abi:"referralBonusClaimed"`
}

// ClaimableReferralBonuses holds the three parallel arrays returned by
// getClaimableReferralBonuses.
type ClaimableReferralBonuses struct {
	Stakers      []common.Address `abi:"stakers"`
	StakeIndexes []*big.Int       `abi:"stakeIndexes"`
	BonusAmounts []*big.Int       `abi:"bonusAmounts"`
}

// Total sums every claimable bonus amount.
func (c ClaimableReferralBonuses) Total() *big.Int {
	total := new(big.Int)
	for _, amount := range c.BonusAmounts {
		if amount != nil {
			total.Add(total, amount)
		}
	}
	return total
}

type VaultPackage struct {
	ID                      *big.Int `abi:"id"`
	Name                    string   `abi:"name"`
	MinAmount               *big.Int `abi:"minAmount"`
	MaxAmount               *big.Int `abi:"maxAmount"`
	DailyRateBasisPoints    *big.Int `abi:"dailyRateBasisPoints"`
	BaseDurationDays        *big.Int `abi:"baseDurationDays"`
	ReferralBonusDays       *big.Int `abi:"referralBonusDays"`
	ClosingBonusBasisPoints *big.Int `abi:"closingBonusBasisPoints"`
	Active                  bool     `abi:"active"`
}

type VaultStakeBasic struct {
	PackageID     *big.Int `abi:"packageId"`
	UsdtAmount    *big.Int `abi:"usdtAmount"`
	StartTime     *big.Int `abi:"startTime"`
	LastClaimTime *big.Int `abi:"lastClaimTime"`
	IsActive      bool     `abi:"isActive"`
}

type VaultStakeDuration struct {
	BaseDurationDays  *big.Int `abi:"baseDurationDays"`
	ReferralCount     *big.Int `abi:"referralCount"`
	TotalDurationDays *big.Int `abi:"totalDurationDays"`
	RestakeCount      *big.Int `abi:"restakeCount"`
}

type VaultStakeBonus struct {
	RestakeBonus        *big.Int       `abi:"restakeBonus"`
	RestakeBonusClaimed bool           `abi:"restakeBonusClaimed"`
	ClosingBonus        *big.Int       `abi:"closingBonus"`
	ClosingBonusClaimed bool           `abi:"closingBonusClaimed"`
	Referrer            common.Address `abi:"referrer"`
}

type VaultContractStats struct {
	TotalUsdtStaked      *big.Int `abi:"_totalUsdtStaked"`
	TotalStakers         *big.Int `abi:"_totalStakers"`
	TotalRewardsPaid     *big.Int `abi:"_totalRewardsPaid"`
	UsdtBalance          *big.Int `abi:"usdtBalance"`
	OneDreamBalance      *big.Int `abi:"oneDreamBalance"`
	CurrentOneDreamPrice *big.Int `abi:"currentOneDreamPrice"`
}

type VaultReferralStats struct {
	TotalReferralCount *big.Int         `abi:"totalReferralCount"`
	ReferredUsersList  []common.Address `abi:"referredUsersList"`
}

type PairReserves struct {
	Reserve0           *big.Int `abi:"reserve0"`
	Reserve1           *big.Int `abi:"reserve1"`
	BlockTimestampLast uint32   `abi:"blockTimestampLast"`
}
