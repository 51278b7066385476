package services

import (
	"errors"
	"math"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/txclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/onedreamlabs/onedream-staking-indexer/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrites_RequireSigner(t *testing.T) {
	env := newEnv(t, false, withVault)
	require.False(t, env.svc.CanWrite())
	ctx := t.Context()

	writes := map[string]func() error{
		"stake": func() error {
			_, err := env.svc.Stake(ctx, 1, testutil.TokensToWei(100), common.Address{})
			return err
		},
		"approve": func() error {
			_, err := env.svc.Approve(ctx, testutil.TokensToWei(100))
			return err
		},
		"claim all referral bonuses": func() error {
			_, err := env.svc.ClaimAllReferralBonuses(ctx)
			return err
		},
		"set referral commission": func() error {
			_, err := env.svc.SetReferralCommission(ctx, 250)
			return err
		},
		"vault stake": func() error {
			_, err := env.svc.VaultStake(ctx, 1, testutil.TokensToWei(100), common.Address{})
			return err
		},
		"withdraw usdt": func() error {
			_, err := env.svc.WithdrawUsdt(ctx, testutil.TokensToWei(1))
			return err
		},
	}
	for name, write := range writes {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, write(), txclient.ErrSignerRequired)
		})
	}
	assert.Empty(t, env.chain.Sent())
}

func TestPlanParams_LockDurationDoesNotOverflow(t *testing.T) {
	tests := []struct {
		days uint64
		want string
	}{
		{0, "0"},
		{90, "7776000"},
		{math.MaxUint64 / secondsPerDay, "18446744073709526400"},
		{math.MaxUint64/secondsPerDay + 1, "18446744073709612800"},
		{math.MaxUint64, "1593798687968505259536000"},
	}
	for _, tc := range tests {
		args := PlanParams{Name: "Locked", LockDurationDays: tc.days}.args()
		got, ok := args[2].(*big.Int)
		require.True(t, ok)
		assert.Equal(t, tc.want, got.String(), "days=%d", tc.days)
	}
}

func TestSetReferralCommission_RefreshesStaking(t *testing.T) {
	env := newEnv(t, true)
	var commission atomic.Int64
	commission.Store(1000)
	env.stakingContract([]contracts.StakingPlan{plan(1, "Flexible", 1200, 0, 0)}, testutil.TokensToWei(10),
		commission.Load)
	env.chain.OnSend(func(tx *gethtypes.Transaction) error {
		method, args, err := testutil.DecodeTx(contracts.StakingABI, tx)
		if err == nil && method == contracts.MethodSetReferralCommission {
			commission.Store(args[0].(*big.Int).Int64())
		}
		return nil
	})

	before, err := env.svc.RefreshStaking(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, "10%", before.ReferralCommission)
	bp, err := env.svc.ReferralCommission(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bp)

	hash, err := env.svc.SetReferralCommission(t.Context(), 250)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, hash)

	after, err := env.svc.RefreshStaking(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, "2.5%", after.ReferralCommission)
	assert.Equal(t, int64(250), after.ReferralCommissionBasisPoints)

	bp, err = env.svc.ReferralCommission(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(250), bp)
}

func TestStake_SubmitsOneTransaction(t *testing.T) {
	env := newEnv(t, true)
	referrer := testutil.RandomAddress()

	_, err := env.svc.Stake(t.Context(), 2, testutil.TokensToWei(1_000), referrer)
	require.NoError(t, err)

	sent := env.chain.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, stakingAddr, *sent[0].To())
	method, args, err := testutil.DecodeTx(contracts.StakingABI, sent[0])
	require.NoError(t, err)
	assert.Equal(t, contracts.MethodStake, method)
	assert.Equal(t, int64(2), args[0].(*big.Int).Int64())
	assert.Equal(t, testutil.TokensToWei(1_000), args[1].(*big.Int))
	assert.Equal(t, referrer, args[2].(common.Address))
}

func TestStake_Reverted(t *testing.T) {
	env := newEnv(t, true)
	env.chain.OnSend(func(*gethtypes.Transaction) error {
		return errors.New("insufficient allowance")
	})

	_, err := env.svc.Stake(t.Context(), 1, testutil.TokensToWei(1), common.Address{})
	require.ErrorIs(t, err, txclient.ErrTxReverted)
	assert.Len(t, env.chain.Sent(), 1)
}

func TestClaimAllReferralBonuses(t *testing.T) {
	env := newEnv(t, true)
	stakers := []common.Address{testutil.RandomAddress(), testutil.RandomAddress()}
	env.referrerContract(stakers,
		[]*big.Int{big.NewInt(0), big.NewInt(4)},
		[]*big.Int{testutil.TokensToWei(5), testutil.TokensToWei(10)})

	hashes, err := env.svc.ClaimAllReferralBonuses(t.Context())
	require.NoError(t, err)
	require.Len(t, hashes, 2)

	sent := env.chain.Sent()
	require.Len(t, sent, 2)
	for i, tx := range sent {
		method, args, err := testutil.DecodeTx(contracts.StakingABI, tx)
		require.NoError(t, err)
		assert.Equal(t, contracts.MethodClaimReferralBonus, method)
		assert.Equal(t, stakers[i], args[0].(common.Address))
	}
	assert.Equal(t, int64(4), mustDecodeIndex(t, sent[1]))

	t.Run("nothing to claim", func(t *testing.T) {
		env.referrerContract(nil, nil, nil)
		_, err := env.svc.ClaimAllReferralBonuses(t.Context())
		require.ErrorIs(t, err, ErrNothingToClaim)
		assert.Len(t, env.chain.Sent(), 2)
	})
}

func mustDecodeIndex(t *testing.T, tx *gethtypes.Transaction) int64 {
	t.Helper()
	_, args, err := testutil.DecodeTx(contracts.StakingABI, tx)
	require.NoError(t, err)
	return args[1].(*big.Int).Int64()
}

func TestVaultStake_ApprovesThenStakes(t *testing.T) {
	env := newEnv(t, true, withVault)
	env.chain.Returns(vaultAddr, contracts.VaultABI, contracts.MethodUsdtToken, usdtAddr)
	amount := testutil.TokensToWei(500)

	_, err := env.svc.VaultStake(t.Context(), 1, amount, common.Address{})
	require.NoError(t, err)

	sent := env.chain.Sent()
	require.Len(t, sent, 2)

	assert.Equal(t, usdtAddr, *sent[0].To())
	method, args, err := testutil.DecodeTx(contracts.ERC20ABI, sent[0])
	require.NoError(t, err)
	assert.Equal(t, contracts.MethodApprove, method)
	assert.Equal(t, vaultAddr, args[0].(common.Address))
	assert.Equal(t, amount, args[1].(*big.Int))

	assert.Equal(t, vaultAddr, *sent[1].To())
	method, _, err = testutil.DecodeTx(contracts.VaultABI, sent[1])
	require.NoError(t, err)
	assert.Equal(t, contracts.MethodStake, method)
}

func TestVaultWrites_NotDeployed(t *testing.T) {
	env := newEnv(t, true)

	_, err := env.svc.CompleteStake(t.Context())
	require.ErrorIs(t, err, ErrContractNotConfigured)
	_, err = env.svc.VaultStake(t.Context(), 1, big.NewInt(1), common.Address{})
	require.ErrorIs(t, err, ErrContractNotConfigured)
	assert.Empty(t, env.chain.Sent())
}

func TestSubscribe_ReceivesStateChanges(t *testing.T) {
	env := newEnv(t, false)
	env.stakingContract([]contracts.StakingPlan{plan(1, "Flexible", 1200, 0, 0)}, testutil.TokensToWei(1), fixedCommission(500))

	updates, cancel := env.svc.Subscribe()
	defer cancel()

	_, err := env.svc.RefreshStaking(t.Context(), true)
	require.NoError(t, err)

	assert.Equal(t, types.StatusLoading, (<-updates).Status)
	final := <-updates
	assert.Equal(t, types.StatusSuccess, final.Status)
	assert.Equal(t, types.DomainStaking, final.Domain)
}
