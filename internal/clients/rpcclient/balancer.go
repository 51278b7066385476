package rpcclient

import (
	"context"
	"errors"
	"io"
	"math/big"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
	"github.com/rs/zerolog/log"
)

// json-rpc codes providers use for throttling
const (
	codeLimitExceeded = -32005
	codeRateLimited   = -32029
	codeTooManyReqs   = 429
)

type endpoint struct {
	url    string
	client ChainInterface

	failures  uint
	openUntil time.Time
	halfOpen  bool
}

// Balancer routes every call to the first healthy endpoint. An endpoint that
// fails threshold times in a row is skipped for the cooldown, after which it
// gets one trial call.
type Balancer struct {
	mu          sync.Mutex
	endpoints   []*endpoint
	threshold   uint
	cooldown    time.Duration
	callTimeout time.Duration
	now         func() time.Time
}

func newBalancer(endpoints []*endpoint, threshold uint, cooldown, callTimeout time.Duration) *Balancer {
	if threshold == 0 {
		threshold = 1
	}
	return &Balancer{
		endpoints:   endpoints,
		threshold:   threshold,
		cooldown:    cooldown,
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// Current returns the url the next call will be routed to.
func (b *Balancer) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pickLocked().url
}

func (b *Balancer) pick() *endpoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pickLocked()
}

func (b *Balancer) pickLocked() *endpoint {
	now := b.now()

	var soonest *endpoint
	for _, ep := range b.endpoints {
		if !now.Before(ep.openUntil) {
			if !ep.openUntil.IsZero() {
				// cooldown elapsed
				ep.openUntil = time.Time{}
				ep.halfOpen = true
			}
			return ep
		}
		if soonest == nil || ep.openUntil.Before(soonest.openUntil) {
			soonest = ep
		}
	}

	return soonest
}

func (b *Balancer) report(ep *endpoint, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !isEndpointFailure(err) {
		if ep.halfOpen || ep.failures > 0 {
			if ep.halfOpen {
				log.Info().Str("endpoint", ep.url).Msg("rpc endpoint recovered")
			}
			ep.failures = 0
			ep.halfOpen = false
		}
		return
	}

	metrics.IncRPCEndpointFailures(ep.url)
	ep.failures++
	if ep.halfOpen || ep.failures >= b.threshold {
		ep.openUntil = b.now().Add(b.cooldown)
		ep.failures = 0
		ep.halfOpen = false
		metrics.IncRPCBreakerOpen(ep.url)
		log.Warn().
			Err(err).
			Str("endpoint", ep.url).
			Dur("cooldown", b.cooldown).
			Msg("rpc endpoint circuit opened")
	}
}

func call[T any](ctx context.Context, b *Balancer, f func(ctx context.Context, c ChainInterface) (T, error)) (T, error) {
	ep := b.pick()

	if b.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.callTimeout)
		defer cancel()
	}

	v, err := f(ctx, ep.client)
	b.report(ep, err)
	return v, err
}

// isEndpointFailure tells transport problems apart from errors the chain
// itself returned, such as reverts.
func isEndpointFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ethereum.NotFound) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeLimitExceeded, codeRateLimited, codeTooManyReqs:
			return true
		}
		return isProviderLimitMessage(rpcErr.Error())
	}

	msg := err.Error()
	if strings.Contains(strings.ToLower(msg), "execution reverted") {
		return false
	}

	return true
}

// providerLimitMessages are the phrasings hosted RPC providers use when they
// refuse a request over their own quotas, log query caps included.
var providerLimitMessages = []string{
	"rate limit",
	"limit exceeded",
	"too many requests",
	"exceeds the limit",
	"block range too large",
	"block range is too large",
	"exceed maximum block range",
	"query returned more than",
	"response size exceeded",
	"too many results",
	"query timeout exceeded",
}

func isProviderLimitMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range providerLimitMessages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (b *Balancer) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return call(ctx, b, func(ctx context.Context, c ChainInterface) ([]byte, error) {
		return c.CallContract(ctx, msg, blockNumber)
	})
}

func (b *Balancer) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return call(ctx, b, func(ctx context.Context, c ChainInterface) ([]types.Log, error) {
		return c.FilterLogs(ctx, q)
	})
}

func (b *Balancer) BlockNumber(ctx context.Context) (uint64, error) {
	return call(ctx, b, func(ctx context.Context, c ChainInterface) (uint64, error) {
		return c.BlockNumber(ctx)
	})
}

func (b *Balancer) ChainID(ctx context.Context) (*big.Int, error) {
	return call(ctx, b, func(ctx context.Context, c ChainInterface) (*big.Int, error) {
		return c.ChainID(ctx)
	})
}

func (b *Balancer) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return call(ctx, b, func(ctx context.Context, c ChainInterface) (uint64, error) {
		return c.PendingNonceAt(ctx, account)
	})
}

func (b *Balancer) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return call(ctx, b, func(ctx context.Context, c ChainInterface) (*big.Int, error) {
		return c.SuggestGasPrice(ctx)
	})
}

func (b *Balancer) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return call(ctx, b, func(ctx context.Context, c ChainInterface) (uint64, error) {
		return c.EstimateGas(ctx, msg)
	})
}

func (b *Balancer) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	_, err := call(ctx, b, func(ctx context.Context, c ChainInterface) (struct{}, error) {
		return struct{}{}, c.SendTransaction(ctx, tx)
	})
	return err
}

func (b *Balancer) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return call(ctx, b, func(ctx context.Context, c ChainInterface) (*types.Receipt, error) {
		return c.TransactionReceipt(ctx, txHash)
	})
}
