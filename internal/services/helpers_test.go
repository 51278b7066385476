package services

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/txclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/scanner"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/retry"
	"github.com/onedreamlabs/onedream-staking-indexer/testutil"
	"github.com/onedreamlabs/onedream-staking-indexer/tests/mocks"
	"github.com/stretchr/testify/require"
)

const deploymentBlock = 1_000

var (
	multicallAddr = common.HexToAddress("0xca11bde05977b363a0dcdcdcc1ce80336d51aaae")
	stakingAddr   = common.HexToAddress("0xded53d0b2dd7be3c30243e97b65b8a6647c61108")
	tokenAddr     = common.HexToAddress("0x0C98F3e79061E0dB9569cd2574d8aac0d5023965")
	vaultAddr     = common.HexToAddress("0x00000000000000000000000000000000000fa017")
	usdtAddr      = common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
)

type testEnv struct {
	chain  *testutil.FakeChain
	market *mocks.MarketInterface
	cfg    *config.Config
	svc    *Service
	from   common.Address
}

type envOption func(*config.Config)

func withVault(cfg *config.Config) {
	cfg.Contracts.Vault = vaultAddr.Hex()
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 1, BaseDelay: time.Millisecond}
}

func testConfig(opts ...envOption) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Contracts.Staking = stakingAddr.Hex()
	cfg.Contracts.Token = tokenAddr.Hex()
	cfg.Contracts.Multicall = multicallAddr.Hex()
	cfg.Contracts.USDT = usdtAddr.Hex()
	cfg.Contracts.StakingDeploymentBlock = deploymentBlock
	cfg.Scanner = config.ScannerConfig{
		ChunkSize:          500,
		ChunkMaxRetryTimes: 1,
		ChunkRetryInterval: time.Millisecond,
		ClaimCheckWorkers:  2,
	}
	cfg.Signer.ReceiptPollInterval = time.Millisecond
	cfg.Signer.ReceiptTimeout = time.Second
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func newEnv(t *testing.T, withSigner bool, opts ...envOption) *testEnv {
	t.Helper()

	cfg := testConfig(opts...)
	chain := testutil.NewFakeChain(multicallAddr)
	chain.SetHead(deploymentBlock + 999)

	reader := multicall.New(chain, multicallAddr, cfg.Multicall.SubBatchSize, fastPolicy())
	logScanner := scanner.New(chain, &cfg.Scanner, fastPolicy())
	referrals := scanner.NewReferralReader(logScanner, reader, stakingAddr, deploymentBlock, cfg.Scanner.ClaimCheckWorkers)

	store, err := cache.NewMemoryStore(64)
	require.NoError(t, err)
	c := cache.New(store, cfg.Cache.Prefix, cfg.Cache.TTL)

	market := mocks.NewMarketInterface(t)

	env := &testEnv{chain: chain, market: market, cfg: cfg}

	var tx txclient.TransactorInterface
	if withSigner {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		signer, err := txclient.NewKeySigner(common.Bytes2Hex(crypto.FromECDSA(key)))
		require.NoError(t, err)
		tx = txclient.NewTransactor(chain, signer, &cfg.Signer)
		env.from = signer.Address()
	}

	env.svc = NewService(cfg, chain, reader, referrals, c, market, tx)
	return env
}

func plan(id int64, name string, apyBP, lockSeconds, feeBP int64) contracts.StakingPlan {
	return contracts.StakingPlan{
		ID:                         big.NewInt(id),
		Name:                       name,
		ApyBasisPoints:             big.NewInt(apyBP),
		LockDuration:               big.NewInt(lockSeconds),
		EarlyUnstakeFeeBasisPoints: big.NewInt(feeBP),
		MinStakeAmount:             testutil.TokensToWei(100),
		Active:                     true,
	}
}

func planOutputs(p contracts.StakingPlan) []any {
	return []any{p.ID, p.Name, p.ApyBasisPoints, p.LockDuration, p.EarlyUnstakeFeeBasisPoints, p.MinStakeAmount, p.Active}
}

// stakingContract registers the global staking reads. commission is read on
// every call so tests can change it.
func (e *testEnv) stakingContract(plans []contracts.StakingPlan, balance *big.Int, commission func() int64) {
	e.chain.Returns(stakingAddr, contracts.StakingABI, contracts.MethodGetActiveStakingPlans, plans)
	e.chain.Returns(stakingAddr, contracts.StakingABI, contracts.MethodGetContractTokenBalance, balance)
	e.chain.Returns(stakingAddr, contracts.StakingABI, contracts.MethodGetTotalUniqueStakers, big.NewInt(2))
	e.chain.Handle(stakingAddr, contracts.StakingABI, contracts.MethodReferralCommissionBasisPoints,
		func([]any, *big.Int) ([]any, error) {
			return []any{big.NewInt(commission())}, nil
		})
	e.chain.Handle(stakingAddr, contracts.StakingABI, contracts.MethodGetStakingPlan,
		func(args []any, _ *big.Int) ([]any, error) {
			id := args[0].(*big.Int)
			for _, p := range plans {
				if p.ID.Cmp(id) == 0 {
					return planOutputs(p), nil
				}
			}
			return nil, testutil.ErrReverted
		})
}

func fixedCommission(bp int64) func() int64 {
	return func() int64 { return bp }
}
