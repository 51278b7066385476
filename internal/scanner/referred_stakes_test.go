package scanner

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deploymentBlock = 1_000

func planOutputs(id int64, name string) []any {
	return []any{
		big.NewInt(id), name, big.NewInt(1200), big.NewInt(0), big.NewInt(0), testutil.TokensToWei(10), true,
	}
}

func setupReferralChain(t *testing.T) *testutil.FakeChain {
	t.Helper()

	chain := testutil.NewFakeChain(multicallAddr)
	chain.SetHead(deploymentBlock + 999)
	chain.Handle(stakingAddr, contracts.StakingABI, contracts.MethodGetStakingPlan,
		func(args []any, _ *big.Int) ([]any, error) {
			id := args[0].(*big.Int).Int64()
			return planOutputs(id, map[int64]string{1: "Flexible", 2: "Locked 90"}[id]), nil
		})
	// commission changed from 5% to 10% at block 1500
	chain.Handle(stakingAddr, contracts.StakingABI, contracts.MethodReferralCommissionBasisPoints,
		func(_ []any, block *big.Int) ([]any, error) {
			if block != nil && block.Uint64() < deploymentBlock+500 {
				return []any{big.NewInt(500)}, nil
			}
			return []any{big.NewInt(1000)}, nil
		})

	return chain
}

func newTestReader(chain *testutil.FakeChain, chunkSize uint64) *ReferralReader {
	reader := multicall.New(chain, multicallAddr, 10, fastPolicy())
	s := New(chain, testScannerConfig(chunkSize), fastPolicy())
	r := NewReferralReader(s, reader, stakingAddr, deploymentBlock, 4)
	r.claimPolicy = fastPolicy()
	return r
}

func TestReferredStakes(t *testing.T) {
	chain := setupReferralChain(t)
	referrer := testutil.RandomAddress()
	alice := common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob := common.HexToAddress("0x0000000000000000000000000000000000000b0b")

	chain.AddLogs(
		testutil.StakedLog(stakingAddr, alice, 0, 1, testutil.TokensToWei(1_000), 1_700_000_000, referrer, deploymentBlock+10, 0, 0),
		testutil.StakedLog(stakingAddr, bob, 0, 2, testutil.TokensToWei(2_000), 1_700_100_000, referrer, deploymentBlock+600, 3, 1),
		testutil.StakedLog(stakingAddr, alice, 1, 2, testutil.TokensToWei(500), 1_700_200_000, referrer, deploymentBlock+700, 0, 0),
		// someone else's referral
		testutil.StakedLog(stakingAddr, bob, 1, 1, testutil.TokensToWei(1), 1_700_300_000, testutil.RandomAddress(), deploymentBlock+800, 0, 0),
	)

	chain.Handle(stakingAddr, contracts.StakingABI, contracts.MethodGetAllUserStakes,
		func(args []any, _ *big.Int) ([]any, error) {
			user := args[0].(common.Address)
			stake := func(claimed int64) contracts.Stake {
				return contracts.Stake{
					PlanID: big.NewInt(1), Amount: big.NewInt(1), StartTime: big.NewInt(1), LastClaimTime: big.NewInt(1),
					Referrer: referrer, ReferralBonusClaimed: big.NewInt(claimed),
				}
			}
			if user == alice {
				return []any{[]contracts.Stake{stake(50), stake(0)}}, nil
			}
			return []any{[]contracts.Stake{stake(0)}}, nil
		})

	res, err := newTestReader(chain, 250).ReferredStakes(t.Context(), referrer)
	require.NoError(t, err)
	assert.False(t, res.Incomplete())
	require.Len(t, res.Stakes, 3)

	// most recent first
	assert.Equal(t, alice, res.Stakes[0].Staker)
	assert.Equal(t, int64(1), res.Stakes[0].StakeIndex.Int64())
	assert.Equal(t, "Locked 90", res.Stakes[0].PlanName)
	assert.False(t, res.Stakes[0].BonusClaimed)
	assert.Equal(t, int64(1000), res.Stakes[0].Commission.Int64())
	assert.Equal(t, testutil.TokensToWei(50), res.Stakes[0].PotentialBonus)

	assert.Equal(t, bob, res.Stakes[1].Staker)
	assert.Equal(t, testutil.TokensToWei(200), res.Stakes[1].PotentialBonus)

	// commission read at the event block, before the change
	oldest := res.Stakes[2]
	assert.Equal(t, alice, oldest.Staker)
	assert.Equal(t, int64(500), oldest.Commission.Int64())
	assert.Equal(t, testutil.TokensToWei(50), oldest.PotentialBonus)
	assert.True(t, oldest.BonusClaimed)
	assert.Equal(t, uint64(deploymentBlock+10), oldest.BlockNumber)
}

func TestReferredStakes_DedupAcrossChunks(t *testing.T) {
	chain := setupReferralChain(t)
	referrer := testutil.RandomAddress()
	staker := testutil.RandomAddress()
	chain.Returns(stakingAddr, contracts.StakingABI, contracts.MethodGetAllUserStakes, []contracts.Stake{})

	// the same position reported in two different chunks
	chain.AddLogs(
		testutil.StakedLog(stakingAddr, staker, 3, 1, testutil.TokensToWei(100), 1_700_000_000, referrer, deploymentBlock+99, 0, 0),
		testutil.StakedLog(stakingAddr, staker, 3, 1, testutil.TokensToWei(100), 1_700_000_000, referrer, deploymentBlock+100, 0, 0),
	)

	res, err := newTestReader(chain, 100).ReferredStakes(t.Context(), referrer)
	require.NoError(t, err)
	require.Len(t, res.Stakes, 1)
	assert.Equal(t, stakeKey(staker, big.NewInt(3)), res.Stakes[0].Key())
	assert.Equal(t, uint64(deploymentBlock+99), res.Stakes[0].BlockNumber)
}

func TestReferredStakes_PartialResults(t *testing.T) {
	chain := setupReferralChain(t)
	referrer := testutil.RandomAddress()
	chain.Reverts(stakingAddr, contracts.StakingABI, contracts.MethodGetAllUserStakes)
	chain.AddLogs(
		testutil.StakedLog(stakingAddr, testutil.RandomAddress(), 0, 1, testutil.TokensToWei(100), 1, referrer, deploymentBlock+5, 0, 0),
		testutil.StakedLog(stakingAddr, testutil.RandomAddress(), 0, 1, testutil.TokensToWei(100), 2, referrer, deploymentBlock+305, 0, 0),
	)
	chain.FailLogRange(deploymentBlock+300, deploymentBlock+300)

	start := time.Now()
	res, err := newTestReader(chain, 100).ReferredStakes(t.Context(), referrer)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.True(t, res.Incomplete())
	assert.Equal(t, []BlockRange{{From: deploymentBlock + 300, To: deploymentBlock + 399}}, res.FailedRanges)
	require.Len(t, res.Stakes, 1)
	// claim status unknown, reported as not claimed
	assert.False(t, res.Stakes[0].BonusClaimed)
}
