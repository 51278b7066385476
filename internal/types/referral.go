package types

import (
	"math/big"
	"time"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/format"
)

type BlockRange struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type ReferredStake struct {
	StakerAddress     string `json:"stakerAddress"`
	StakeIndex        uint64 `json:"stakeIndex"`
	PlanID            uint64 `json:"planId"`
	PlanName          string `json:"planName"`
	Amount            string `json:"amount"`
	AmountWei         string `json:"amountWei"`
	StartTime         uint64 `json:"startTime"`
	PotentialBonus    string `json:"potentialBonus"`
	PotentialBonusWei string `json:"potentialBonusWei"`
	BonusClaimed      bool   `json:"bonusClaimed"`
	TransactionHash   string `json:"transactionHash"`
	BlockNumber       uint64 `json:"blockNumber"`
	CommissionAtStake int64  `json:"commissionAtStake"`
}

// ClaimableBonus is one entry of getClaimableReferralBonuses.
type ClaimableBonus struct {
	Staker     string `json:"staker"`
	StakeIndex uint64 `json:"stakeIndex"`
	Amount     string `json:"amount"`
	AmountWei  string `json:"amountWei"`
}

func NewClaimableBonus(staker string, index, amount *big.Int) ClaimableBonus {
	return ClaimableBonus{
		Staker:     staker,
		StakeIndex: Uint64(index),
		Amount:     format.TokenAmount(amount),
		AmountWei:  String(amount),
	}
}

// ReferralData is a referrer's dashboard. Incomplete is set when part of
// the event history could not be scanned, FailedRanges says which part.
type ReferralData struct {
	Address                       string           `json:"address"`
	ReferralCommissionBasisPoints int64            `json:"referralCommissionBasisPoints"`
	ReferralCommission            string           `json:"referralCommission"`
	DirectReferralCount           uint64           `json:"directReferralCount"`
	TotalReferralEarnings         string           `json:"totalReferralEarnings"`
	TotalReferralEarningsWei      string           `json:"totalReferralEarningsWei"`
	ClaimableAmount               string           `json:"claimableAmount"`
	ClaimableAmountWei            string           `json:"claimableAmountWei"`
	Claimable                     []ClaimableBonus `json:"claimable"`
	ReferredStakes                []ReferredStake  `json:"referredStakes"`
	Incomplete                    bool             `json:"incomplete"`
	FailedRanges                  []BlockRange     `json:"failedRanges,omitempty"`
	SkippedEvents                 int              `json:"skippedEvents,omitempty"`
	LastUpdated                   time.Time        `json:"lastUpdated"`
}

// ClaimableTotal sums the claimable bonus amounts.
func ClaimableTotal(entries []ClaimableBonus) *big.Int {
	total := new(big.Int)
	for _, e := range entries {
		if v, ok := new(big.Int).SetString(e.AmountWei, 10); ok {
			total.Add(total, v)
		}
	}
	return total
}
