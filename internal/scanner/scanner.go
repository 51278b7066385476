package scanner

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/rpcclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/retry"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ErrInterrupted is returned when the scan context ends before the range is
// covered, including a pacing wait that would outlast its deadline. Such a
// scan has no partial result.
var ErrInterrupted = errors.New("log scan interrupted")

type Query struct {
	Address   common.Address
	Topics    [][]common.Hash
	FromBlock uint64
	// ToBlock of zero scans up to the chain head.
	ToBlock uint64
}

type BlockRange struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Result struct {
	Logs         []types.Log
	FailedRanges []BlockRange
	Queries      int
}

// Incomplete reports whether some chunk could not be fetched.
func (r *Result) Incomplete() bool {
	return len(r.FailedRanges) > 0
}

type Scanner struct {
	chain       rpcclient.ChainInterface
	chunkSize   uint64
	chunkDelay  time.Duration
	chunkPolicy retry.Policy
	headPolicy  retry.Policy
}

func New(chain rpcclient.ChainInterface, cfg *config.ScannerConfig, headPolicy retry.Policy) *Scanner {
	chunkPolicy := retry.Chunk()
	chunkPolicy.MaxRetries = cfg.ChunkMaxRetryTimes
	chunkPolicy.BaseDelay = cfg.ChunkRetryInterval

	return &Scanner{
		chain:       chain,
		chunkSize:   cfg.ChunkSize,
		chunkDelay:  cfg.ChunkDelay,
		chunkPolicy: chunkPolicy,
		headPolicy:  headPolicy,
	}
}

// Scan walks [FromBlock, ToBlock] in chunks, one query per chunk. A chunk
// that keeps failing is skipped and reported in Result.FailedRanges.
func (s *Scanner) Scan(ctx context.Context, q Query) (*Result, error) {
	log := log.Ctx(ctx)

	to := q.ToBlock
	if to == 0 {
		head, err := retry.Do(ctx, s.headPolicy, func() (uint64, error) {
			return s.chain.BlockNumber(ctx)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
			}
			return nil, fmt.Errorf("failed to get chain head: %w", err)
		}
		to = head
	}

	result := &Result{}
	if q.FromBlock > to {
		return result, nil
	}

	limiter := s.newLimiter()

	for from := q.FromBlock; from <= to; from += s.chunkSize {
		end := min(from+s.chunkSize-1, to)

		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w at block %d: %w", ErrInterrupted, from, err)
		}

		filter := ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(end),
			Addresses: []common.Address{q.Address},
			Topics:    q.Topics,
		}

		logs, err := retry.Do(ctx, s.chunkPolicy, func() ([]types.Log, error) {
			return s.chain.FilterLogs(ctx, filter)
		})
		result.Queries++
		metrics.RecordScannerChunk(err != nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w at block %d: %w", ErrInterrupted, from, ctx.Err())
			}
			log.Warn().
				Err(err).
				Uint64("from_block", from).
				Uint64("to_block", end).
				Msg("failed to fetch log chunk, skipping")
			result.FailedRanges = append(result.FailedRanges, BlockRange{From: from, To: end})
			continue
		}

		result.Logs = append(result.Logs, logs...)

		// guard against overflow when to is close to max uint64
		if end == to {
			break
		}
	}

	SortLogs(result.Logs)

	return result, nil
}

func (s *Scanner) newLimiter() *rate.Limiter {
	if s.chunkDelay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(s.chunkDelay), 1)
}

// SortLogs orders logs by block, transaction index and log index.
func SortLogs(logs []types.Log) {
	sort.SliceStable(logs, func(i, j int) bool {
		a, b := logs[i], logs[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}
		return a.Index < b.Index
	})
}
