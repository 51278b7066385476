package rpcclient

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
)

type chainWithMetrics struct {
	chain ChainInterface
}

func NewChainWithMetrics(chain ChainInterface) ChainInterface {
	return &chainWithMetrics{chain: chain}
}

func (c *chainWithMetrics) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return runChainMethodWithMetrics("CallContract", func() ([]byte, error) {
		return c.chain.CallContract(ctx, msg, blockNumber)
	})
}

func (c *chainWithMetrics) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return runChainMethodWithMetrics("FilterLogs", func() ([]types.Log, error) {
		return c.chain.FilterLogs(ctx, q)
	})
}

func (c *chainWithMetrics) BlockNumber(ctx context.Context) (uint64, error) {
	return runChainMethodWithMetrics("BlockNumber", func() (uint64, error) {
		return c.chain.BlockNumber(ctx)
	})
}

func (c *chainWithMetrics) ChainID(ctx context.Context) (*big.Int, error) {
	return runChainMethodWithMetrics("ChainID", func() (*big.Int, error) {
		return c.chain.ChainID(ctx)
	})
}

func (c *chainWithMetrics) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return runChainMethodWithMetrics("PendingNonceAt", func() (uint64, error) {
		return c.chain.PendingNonceAt(ctx, account)
	})
}

func (c *chainWithMetrics) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return runChainMethodWithMetrics("SuggestGasPrice", func() (*big.Int, error) {
		return c.chain.SuggestGasPrice(ctx)
	})
}

func (c *chainWithMetrics) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return runChainMethodWithMetrics("EstimateGas", func() (uint64, error) {
		return c.chain.EstimateGas(ctx, msg)
	})
}

func (c *chainWithMetrics) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	_, err := runChainMethodWithMetrics("SendTransaction", func() (struct{}, error) {
		return struct{}{}, c.chain.SendTransaction(ctx, tx)
	})
	return err
}

func (c *chainWithMetrics) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return runChainMethodWithMetrics("TransactionReceipt", func() (*types.Receipt, error) {
		return c.chain.TransactionReceipt(ctx, txHash)
	})
}

func runChainMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordRPCClientLatency(duration, method, err != nil)
	return v, err
}
