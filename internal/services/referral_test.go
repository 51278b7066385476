package services

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/scanner"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/onedreamlabs/onedream-staking-indexer/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) referrerContract(stakers []common.Address, indexes, amounts []*big.Int) {
	e.chain.Returns(stakingAddr, contracts.StakingABI, contracts.MethodGetDirectReferralCount, big.NewInt(int64(len(stakers))))
	e.chain.Returns(stakingAddr, contracts.StakingABI, contracts.MethodGetReferrerTotalEarnings, testutil.TokensToWei(1_500))
	e.chain.Returns(stakingAddr, contracts.StakingABI, contracts.MethodReferralCommissionBasisPoints, big.NewInt(250))
	e.chain.Returns(stakingAddr, contracts.StakingABI, contracts.MethodGetClaimableReferralBonuses, stakers, indexes, amounts)
}

func TestRefreshReferral_IncompleteScan(t *testing.T) {
	env := newEnv(t, false)
	referrer := testutil.RandomAddress()
	stakers := []common.Address{testutil.RandomAddress(), testutil.RandomAddress()}
	env.referrerContract(stakers,
		[]*big.Int{big.NewInt(0), big.NewInt(3)},
		[]*big.Int{testutil.TokensToWei(5), testutil.TokensToWei(10)})
	env.chain.FailLogRange(deploymentBlock+600, deploymentBlock+700)

	data, err := env.svc.RefreshReferral(t.Context(), referrer, true)
	require.NoError(t, err)

	assert.Equal(t, "2.5%", data.ReferralCommission)
	assert.Equal(t, uint64(2), data.DirectReferralCount)
	assert.Equal(t, "1.5K", data.TotalReferralEarnings)
	assert.Equal(t, "15.00", data.ClaimableAmount)
	require.Len(t, data.Claimable, 2)
	assert.Equal(t, stakers[1].Hex(), data.Claimable[1].Staker)
	assert.Equal(t, uint64(3), data.Claimable[1].StakeIndex)

	assert.True(t, data.Incomplete)
	require.Len(t, data.FailedRanges, 1)
	assert.Equal(t, types.BlockRange{From: deploymentBlock + 500, To: deploymentBlock + 999}, data.FailedRanges[0])
	assert.Empty(t, data.ReferredStakes)

	assert.Equal(t, types.StatusSuccess, env.svc.State(types.DomainReferral, referrer.Hex()).Status)
}

func TestRefreshReferral_ClaimableFailureIsTolerated(t *testing.T) {
	env := newEnv(t, false)
	referrer := testutil.RandomAddress()
	env.referrerContract(nil, nil, nil)
	env.chain.Reverts(stakingAddr, contracts.StakingABI, contracts.MethodGetClaimableReferralBonuses)

	data, err := env.svc.RefreshReferral(t.Context(), referrer, true)
	require.NoError(t, err)
	assert.Empty(t, data.Claimable)
	assert.Equal(t, "0.00", data.ClaimableAmount)
	assert.False(t, data.Incomplete)
}

// slowScan paces the 1000 block history into chunks so that one scan takes
// about chunks*delay.
func slowScan(chunkSize uint64, delay time.Duration) envOption {
	return func(cfg *config.Config) {
		cfg.Scanner.ChunkSize = chunkSize
		cfg.Scanner.ChunkDelay = delay
	}
}

func TestRefreshReferral_DeadlineShorterThanScan(t *testing.T) {
	// 100 chunks, roughly two seconds per scan
	env := newEnv(t, false, slowScan(10, 20*time.Millisecond))
	referrer := testutil.RandomAddress()
	env.referrerContract(nil, nil, nil)

	for range 2 {
		ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
		data, err := env.svc.RefreshReferral(ctx, referrer, false)
		cancel()

		require.ErrorIs(t, err, ErrReferralScanPending)
		assert.Nil(t, data)

		state := env.svc.State(types.DomainReferral, referrer.Hex())
		assert.NotEqual(t, types.StatusSuccess, state.Status)
		assert.Equal(t, errMsgScanPending, state.Error)

		var cached types.ReferralData
		assert.False(t, env.svc.cache.Get(t.Context(), cache.KindUserReferralData, referrer.Hex(), &cached))
	}

	// the scan outlives both requests and publishes a complete history
	require.Eventually(t, func() bool {
		var stakes ReferredStakes
		return env.svc.cache.Get(t.Context(), cache.KindReferredStakes, referrer.Hex(), &stakes)
	}, 10*time.Second, 20*time.Millisecond)
	// both requests shared one scan
	assert.Len(t, env.chain.FilterQueries(), 100)

	data, err := env.svc.RefreshReferral(t.Context(), referrer, false)
	require.NoError(t, err)
	assert.False(t, data.Incomplete)
	assert.Empty(t, data.FailedRanges)
	assert.Equal(t, types.StatusSuccess, env.svc.State(types.DomainReferral, referrer.Hex()).Status)
	assert.Len(t, env.chain.FilterQueries(), 100)
}

func TestRefreshReferral_InterruptedScanIsNotCached(t *testing.T) {
	env := newEnv(t, false, slowScan(10, 20*time.Millisecond), func(cfg *config.Config) {
		cfg.Scanner.HistoryTimeout = 100 * time.Millisecond
	})
	referrer := testutil.RandomAddress()
	env.referrerContract(nil, nil, nil)

	_, err := env.svc.RefreshReferral(t.Context(), referrer, true)
	require.ErrorIs(t, err, scanner.ErrInterrupted)

	state := env.svc.State(types.DomainReferral, referrer.Hex())
	assert.Equal(t, types.StatusError, state.Status)
	assert.Equal(t, errMsgReferral, state.Error)

	var stakes ReferredStakes
	assert.False(t, env.svc.cache.GetStale(t.Context(), cache.KindReferredStakes, referrer.Hex(), &stakes))
	var data types.ReferralData
	assert.False(t, env.svc.cache.GetStale(t.Context(), cache.KindUserReferralData, referrer.Hex(), &data))
}

func TestReferredStakes_ExpiredHistoryServedWhileRescanning(t *testing.T) {
	// 10 chunks, roughly 100ms per scan
	env := newEnv(t, false, slowScan(100, 10*time.Millisecond), func(cfg *config.Config) {
		cfg.Cache.TTL[string(cache.KindReferredStakes)] = time.Millisecond
	})
	referrer := testutil.RandomAddress()
	env.referrerContract(nil, nil, nil)

	first, err := env.svc.ReferredStakes(t.Context(), referrer, false)
	require.NoError(t, err)
	assert.False(t, first.Incomplete())
	require.Len(t, env.chain.FilterQueries(), 10)
	time.Sleep(5 * time.Millisecond)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	stale, err := env.svc.ReferredStakes(ctx, referrer, false)
	require.NoError(t, err)
	assert.Equal(t, first.Stakes, stale.Stakes)

	// the rescan started by the expired read completes in the background
	require.Eventually(t, func() bool {
		return len(env.chain.FilterQueries()) == 20
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPollReferrals_WarmsConfiguredAndRequestedReferrers(t *testing.T) {
	requested := testutil.RandomAddress()
	configured := testutil.RandomAddress()
	env := newEnv(t, false, func(cfg *config.Config) {
		cfg.Poller.Referrers = []string{configured.Hex(), requested.Hex()}
	})
	env.referrerContract(nil, nil, nil)

	_, err := env.svc.RefreshReferral(t.Context(), requested, false)
	require.NoError(t, err)
	// two chunks per scan
	require.Len(t, env.chain.FilterQueries(), 2)

	assert.ElementsMatch(t, []common.Address{configured, requested}, env.svc.warmReferrers())

	require.NoError(t, env.svc.pollReferrals(t.Context()))
	assert.Len(t, env.chain.FilterQueries(), 6)

	for _, r := range []common.Address{requested, configured} {
		assert.Equal(t, types.StatusSuccess, env.svc.State(types.DomainReferral, r.Hex()).Status)
		var data types.ReferralData
		assert.True(t, env.svc.cache.Get(t.Context(), cache.KindUserReferralData, r.Hex(), &data))
	}
}

func TestRefreshDomain_AddressRequired(t *testing.T) {
	env := newEnv(t, false)

	_, err := env.svc.RefreshDomain(t.Context(), types.DomainReferral, "")
	require.ErrorIs(t, err, ErrAddressRequired)

	_, err = env.svc.RefreshDomain(t.Context(), types.DomainUserStaking, "")
	require.ErrorIs(t, err, ErrAddressRequired)
}
