package types

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func plan(id int64, apy int64, lock int64, fee int64) contracts.StakingPlan {
	return contracts.StakingPlan{
		ID:                         big.NewInt(id),
		Name:                       "Plan",
		ApyBasisPoints:             big.NewInt(apy),
		LockDuration:               big.NewInt(lock),
		EarlyUnstakeFeeBasisPoints: big.NewInt(fee),
		MinStakeAmount:             ether(100),
		Active:                     true,
	}
}

func TestPlanFeatures(t *testing.T) {
	tests := []struct {
		name     string
		lock     uint64
		fee      int64
		expected []string
	}{
		{"flexible", 0, 0, []string{"Withdraw anytime", "Daily rewards", "No penalties"}},
		{"locked with fee", 90 * 86400, 1200, []string{"Higher APY", "Bonus rewards", "Early unlock fee: 12%"}},
		{"locked without fee", 30 * 86400, 0, []string{"Higher APY", "Bonus rewards"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PlanFeatures(tt.lock, tt.fee))
		})
	}
}

func TestNewStakingOverview(t *testing.T) {
	overview := NewStakingOverview(
		[]contracts.StakingPlan{plan(1, 600, 0, 0), plan(2, 1200, 90*86400, 1000)},
		ether(2_500_000),
		big.NewInt(321),
		big.NewInt(250),
	)

	require.Len(t, overview.Plans, 2)
	assert.Equal(t, "6%", overview.Plans[0].APY)
	assert.Equal(t, "No Lock", overview.Plans[0].LockPeriod)
	assert.Equal(t, "90 Days", overview.Plans[1].LockPeriod)
	assert.Equal(t, "10%", overview.Plans[1].EarlyUnstakeFee)
	assert.Equal(t, "100.00", overview.Plans[1].MinStake)

	assert.Equal(t, "2.5M", overview.Stats.TotalStaked)
	assert.Equal(t, "321", overview.Stats.TotalStakers)
	assert.Equal(t, "9%", overview.Stats.AvgAPY)
	assert.Equal(t, "0.00", overview.Stats.RewardsPaid)
	assert.Equal(t, "2.5%", overview.ReferralCommission)
}

func TestAverageAPYWithoutPlans(t *testing.T) {
	assert.Equal(t, "0%", AverageAPY(nil))
}

func TestIsLocked(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.False(t, IsLocked(uint64(now.Unix()), 0, now))
	assert.True(t, IsLocked(uint64(now.Unix())-10, 60, now))
	assert.False(t, IsLocked(uint64(now.Unix())-60, 60, now))
}

func TestNewUserStakingData(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	stake := contracts.Stake{
		PlanID:               big.NewInt(2),
		Amount:               ether(1_500),
		StartTime:            big.NewInt(now.Unix() - 86400),
		LastClaimTime:        big.NewInt(now.Unix() - 3600),
		Referrer:             common.HexToAddress("0x1"),
		ReferralBonusClaimed: big.NewInt(0),
	}

	locked := NewUserStake(0, stake, plan(2, 1200, 90*86400, 1000), ether(3), now)
	assert.True(t, locked.IsLocked)
	assert.Equal(t, uint64(now.Unix()-86400+90*86400), locked.LockEndTime)
	assert.Equal(t, "1.5K", locked.Amount)

	flexible := NewUserStake(1, stake, plan(1, 600, 0, 0), nil, now)
	assert.False(t, flexible.IsLocked)
	assert.Equal(t, "0", flexible.PendingRewardsWei)

	data := NewUserStakingData("0xabc", ether(3_000), nil, big.NewInt(4), []UserStake{locked, flexible})
	assert.Equal(t, 2, data.ActiveStakesCount)
	assert.Equal(t, "3.00", data.PendingRewardsTotal)
	assert.Equal(t, "3.0K", data.TotalStakedAmount)
	assert.Equal(t, "0", data.TotalReferralEarningsWei)
	assert.Equal(t, "4", data.UserDirectReferralCount)
}
