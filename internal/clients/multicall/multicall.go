package multicall

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/rpcclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/retry"
	"github.com/rs/zerolog/log"
)

const (
	pathBatched    = "batched"
	pathSubBatch   = "sub_batch"
	pathIndividual = "individual"

	defaultSubBatchSize = 10
)

//go:generate mockery --name=Reader --output=../../../tests/mocks --outpkg=mocks --filename=mock_multicall_reader.go
type Reader interface {
	Read(ctx context.Context, calls []Call, opts ...ReadOption) ([]Result, error)
}

type readOptions struct {
	block *big.Int
}

type ReadOption func(*readOptions)

// WithBlock reads the state as of block n instead of the latest block.
func WithBlock(n uint64) ReadOption {
	return func(o *readOptions) {
		o.block = new(big.Int).SetUint64(n)
	}
}

type aggregateCall struct {
	Target   common.Address
	CallData []byte
}

type aggregateResult struct {
	Success    bool
	ReturnData []byte
}

type Client struct {
	chain        rpcclient.ChainInterface
	address      common.Address
	subBatchSize int
	policy       retry.Policy
}

func New(chain rpcclient.ChainInterface, address common.Address, subBatchSize int, policy retry.Policy) *Client {
	if subBatchSize <= 0 {
		subBatchSize = defaultSubBatchSize
	}
	return &Client{
		chain:        chain,
		address:      address,
		subBatchSize: subBatchSize,
		policy:       policy,
	}
}

// Read executes calls in as few round trips as possible. It returns one Result
// per call position. Only encoding problems fail the whole read, a sub-call
// that fails on every path is reported through its Result.Err.
func (c *Client) Read(ctx context.Context, calls []Call, opts ...ReadOption) ([]Result, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	encoded, err := encode(calls)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(calls))
	for i := range encoded {
		results[i].method = encoded[i].method
	}
	if len(calls) == 0 {
		return results, nil
	}

	log := log.Ctx(ctx)

	all := indexRange(0, len(encoded))
	failed, err := c.aggregate(ctx, encoded, all, results, o.block)
	metrics.RecordMulticallPath(pathBatched, err != nil)
	if err == nil {
		c.retryFailed(ctx, encoded, failed, results, o.block)
		return results, nil
	}
	log.Warn().Err(err).Int("calls", len(calls)).Msg("batched read failed, falling back")

	if len(encoded) > c.subBatchSize {
		for start := 0; start < len(encoded); start += c.subBatchSize {
			end := min(start+c.subBatchSize, len(encoded))
			batch := indexRange(start, end)

			failed, err := c.aggregate(ctx, encoded, batch, results, o.block)
			metrics.RecordMulticallPath(pathSubBatch, err != nil)
			if err == nil {
				c.retryFailed(ctx, encoded, failed, results, o.block)
				continue
			}
			log.Warn().Err(err).Int("from", start).Int("to", end).Msg("sub-batch read failed, falling back to individual calls")
			c.readIndividually(ctx, encoded, batch, results, o.block)
		}
		return results, nil
	}

	c.readIndividually(ctx, encoded, all, results, o.block)
	return results, nil
}

// retryFailed re-issues the sub-calls that reported Success=false inside an
// otherwise successful aggregate. A position that still fails keeps the error
// from the individual path.
func (c *Client) retryFailed(
	ctx context.Context, encoded []encodedCall, failed []int, results []Result, block *big.Int,
) {
	if len(failed) == 0 {
		return
	}
	log.Ctx(ctx).Debug().Ints("positions", failed).Msg("retrying failed sub-calls individually")
	c.readIndividually(ctx, encoded, failed, results, block)
}

// aggregate runs indexes through a single tryAggregate call and returns the
// positions whose sub-call reported failure.
func (c *Client) aggregate(
	ctx context.Context, encoded []encodedCall, indexes []int, results []Result, block *big.Int,
) ([]int, error) {
	batch := make([]aggregateCall, len(indexes))
	for i, idx := range indexes {
		batch[i] = aggregateCall{Target: encoded[idx].target, CallData: encoded[idx].data}
	}

	data, err := contracts.Multicall3ABI.Pack(contracts.MethodTryAggregate, false, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode aggregate call: %w", err)
	}

	returned, err := retry.Do(ctx, c.policy, func() ([]aggregateResult, error) {
		raw, err := c.chain.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, block)
		if err != nil {
			return nil, err
		}
		return decodeAggregate(raw)
	})
	if err != nil {
		return nil, err
	}
	if len(returned) != len(indexes) {
		return nil, fmt.Errorf("aggregate returned %d results for %d calls", len(returned), len(indexes))
	}

	var failed []int
	for i, idx := range indexes {
		if !returned[i].Success {
			results[idx].Err = &CallError{Index: idx, Method: encoded[idx].method.Name, Err: ErrCallFailed}
			failed = append(failed, idx)
			continue
		}
		results[idx].ReturnData = returned[i].ReturnData
		results[idx].Err = nil
	}

	return failed, nil
}

func decodeAggregate(raw []byte) ([]aggregateResult, error) {
	method := contracts.Multicall3ABI.Methods[contracts.MethodTryAggregate]
	values, err := method.Outputs.Unpack(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode aggregate result: %w", err)
	}

	var out []aggregateResult
	if err := method.Outputs.Copy(&out, values); err != nil {
		return nil, fmt.Errorf("failed to decode aggregate result: %w", err)
	}
	return out, nil
}

func (c *Client) readIndividually(
	ctx context.Context, encoded []encodedCall, indexes []int, results []Result, block *big.Int,
) {
	for _, idx := range indexes {
		call := encoded[idx]
		raw, err := retry.Do(ctx, c.policy, func() ([]byte, error) {
			return c.chain.CallContract(ctx, ethereum.CallMsg{To: &call.target, Data: call.data}, block)
		})
		metrics.RecordMulticallPath(pathIndividual, err != nil)
		if err != nil {
			results[idx].Err = &CallError{Index: idx, Method: call.method.Name, Err: err}
			continue
		}
		results[idx].ReturnData = raw
		results[idx].Err = nil
	}
}

func indexRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
