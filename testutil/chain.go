package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
)

const FakeChainID = 56

var ErrReverted = errors.New("execution reverted")

// Handler answers a contract read. args are the unpacked call inputs and
// block is nil for latest reads.
type Handler func(args []any, block *big.Int) ([]any, error)

type handlerKey struct {
	address  common.Address
	selector [4]byte
}

type registeredHandler struct {
	method  abi.Method
	handler Handler
}

type blockRange struct {
	from, to uint64
}

type aggregateCall struct {
	Target   common.Address
	CallData []byte
}

type aggregateResult struct {
	Success    bool
	ReturnData []byte
}

// FakeChain is an in-memory chain backend answering contract reads from
// registered handlers, log queries from stored logs, and transactions with
// successful receipts.
type FakeChain struct {
	mu sync.Mutex

	multicall common.Address
	handlers  map[handlerKey]registeredHandler
	calls     map[string]int

	aggregateFailures int
	logs              []types.Log
	failRanges        []blockRange
	filterQueries     []ethereum.FilterQuery
	head              uint64

	nonce    uint64
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	onSend   func(tx *types.Transaction) error
}

func NewFakeChain(multicall common.Address) *FakeChain {
	return &FakeChain{
		multicall: multicall,
		handlers:  make(map[handlerKey]registeredHandler),
		calls:     make(map[string]int),
		receipts:  make(map[common.Hash]*types.Receipt),
	}
}

// Handle registers handler for method on the contract at address.
func (f *FakeChain) Handle(address common.Address, contractABI *abi.ABI, method string, handler Handler) {
	m, ok := contractABI.Methods[method]
	if !ok {
		panic(fmt.Sprintf("method %s not found in abi", method))
	}

	var selector [4]byte
	copy(selector[:], m.ID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[handlerKey{address: address, selector: selector}] = registeredHandler{method: m, handler: handler}
}

// Returns registers constant outputs for method.
func (f *FakeChain) Returns(address common.Address, contractABI *abi.ABI, method string, outputs ...any) {
	f.Handle(address, contractABI, method, func([]any, *big.Int) ([]any, error) {
		return outputs, nil
	})
}

// Reverts makes every call to method fail.
func (f *FakeChain) Reverts(address common.Address, contractABI *abi.ABI, method string) {
	f.Handle(address, contractABI, method, func([]any, *big.Int) ([]any, error) {
		return nil, ErrReverted
	})
}

// FailAggregate makes the next n batch calls fail at the transport level,
// n < 0 fails all of them.
func (f *FakeChain) FailAggregate(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aggregateFailures = n
}

// CallCount returns how many times method was invoked, directly or inside a batch.
func (f *FakeChain) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeChain) SetHead(head uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = head
}

func (f *FakeChain) AddLogs(logs ...types.Log) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, logs...)
}

// FailLogRange makes every log query overlapping [from, to] fail.
func (f *FakeChain) FailLogRange(from, to uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRanges = append(f.failRanges, blockRange{from: from, to: to})
}

func (f *FakeChain) FilterQueries() []ethereum.FilterQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ethereum.FilterQuery, len(f.filterQueries))
	copy(out, f.filterQueries)
	return out
}

// OnSend is invoked for every sent transaction. A returned error reverts it.
func (f *FakeChain) OnSend(hook func(tx *types.Transaction) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSend = hook
}

func (f *FakeChain) Sent() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.Transaction, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *FakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if msg.To == nil {
		return nil, errors.New("missing call target")
	}

	if *msg.To == f.multicall {
		return f.tryAggregate(msg.Data, blockNumber)
	}

	return f.dispatch(*msg.To, msg.Data, blockNumber)
}

func (f *FakeChain) tryAggregate(data []byte, block *big.Int) ([]byte, error) {
	method := contracts.Multicall3ABI.Methods[contracts.MethodTryAggregate]
	if len(data) < 4 {
		return nil, ErrReverted
	}

	f.mu.Lock()
	f.calls[method.Name]++
	if f.aggregateFailures != 0 {
		if f.aggregateFailures > 0 {
			f.aggregateFailures--
		}
		f.mu.Unlock()
		return nil, errors.New("connection reset by peer")
	}
	f.mu.Unlock()

	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	var in struct {
		RequireSuccess bool            `abi:"requireSuccess"`
		Calls          []aggregateCall `abi:"calls"`
	}
	if err := method.Inputs.Copy(&in, values); err != nil {
		return nil, err
	}

	results := make([]aggregateResult, len(in.Calls))
	for i, c := range in.Calls {
		ret, err := f.dispatch(c.Target, c.CallData, block)
		if err != nil {
			if in.RequireSuccess {
				return nil, ErrReverted
			}
			continue
		}
		results[i] = aggregateResult{Success: true, ReturnData: ret}
	}

	return method.Outputs.Pack(results)
}

func (f *FakeChain) dispatch(target common.Address, data []byte, block *big.Int) ([]byte, error) {
	if len(data) < 4 {
		return nil, ErrReverted
	}

	var selector [4]byte
	copy(selector[:], data[:4])

	f.mu.Lock()
	h, ok := f.handlers[handlerKey{address: target, selector: selector}]
	if ok {
		f.calls[h.method.Name]++
	}
	f.mu.Unlock()
	if !ok {
		return nil, ErrReverted
	}

	args, err := h.method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}

	outputs, err := h.handler(args, block)
	if err != nil {
		return nil, err
	}

	return h.method.Outputs.Pack(outputs...)
}

func (f *FakeChain) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.filterQueries = append(f.filterQueries, q)

	var from, to uint64
	if q.FromBlock != nil {
		from = q.FromBlock.Uint64()
	}
	to = f.head
	if q.ToBlock != nil {
		to = q.ToBlock.Uint64()
	}

	for _, r := range f.failRanges {
		if from <= r.to && r.from <= to {
			return nil, fmt.Errorf("query returned more than 10000 results")
		}
	}

	var out []types.Log
	for _, l := range f.logs {
		if l.BlockNumber < from || l.BlockNumber > to {
			continue
		}
		if len(q.Addresses) > 0 && !containsAddress(q.Addresses, l.Address) {
			continue
		}
		if !matchTopics(q.Topics, l.Topics) {
			continue
		}
		out = append(out, l)
	}

	// reversed log order, callers sort
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Index > out[j].Index
	})

	return out, nil
}

func containsAddress(addresses []common.Address, addr common.Address) bool {
	for _, a := range addresses {
		if a == addr {
			return true
		}
	}
	return false
}

func matchTopics(filter [][]common.Hash, topics []common.Hash) bool {
	if len(filter) > len(topics) {
		return false
	}
	for i, options := range filter {
		if len(options) == 0 {
			continue
		}
		found := false
		for _, o := range options {
			if o == topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *FakeChain) BlockNumber(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, nil
}

func (f *FakeChain) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(FakeChainID), nil
}

func (f *FakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonce, nil
}

func (f *FakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(3_000_000_000), nil
}

func (f *FakeChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (f *FakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	hook := f.onSend
	f.mu.Unlock()

	status := types.ReceiptStatusSuccessful
	if hook != nil {
		if err := hook(tx); err != nil {
			status = types.ReceiptStatusFailed
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nonce++
	f.head++
	f.sent = append(f.sent, tx)
	f.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: new(big.Int).SetUint64(f.head),
		GasUsed:     tx.Gas(),
	}

	return nil
}

func (f *FakeChain) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	receipt, ok := f.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// DecodeTx resolves the method and the arguments a transaction calls on contractABI.
func DecodeTx(contractABI *abi.ABI, tx *types.Transaction) (string, []any, error) {
	data := tx.Data()
	if len(data) < 4 {
		return "", nil, errors.New("transaction has no calldata")
	}
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return "", nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return "", nil, err
	}
	return method.Name, args, nil
}

// StakedLog builds a Staked log as the staking contract would emit it.
func StakedLog(
	contract, user common.Address, stakeIndex, planID int64, amount *big.Int, startTime int64,
	referrer common.Address, block uint64, txIndex, logIndex uint,
) types.Log {
	event := contracts.StakingABI.Events[contracts.EventStaked]

	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(planID), amount, big.NewInt(startTime))
	if err != nil {
		panic(err)
	}

	txHash := common.BigToHash(new(big.Int).SetUint64(block*1_000_000 + uint64(txIndex)*1_000 + uint64(logIndex)))

	return types.Log{
		Address: contract,
		Topics: []common.Hash{
			event.ID,
			common.BytesToHash(user.Bytes()),
			common.BigToHash(big.NewInt(stakeIndex)),
			common.BytesToHash(referrer.Bytes()),
		},
		Data:        data,
		BlockNumber: block,
		TxHash:      txHash,
		TxIndex:     txIndex,
		Index:       logIndex,
	}
}
