package services

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/marketclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/rpcclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/txclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/scanner"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrContractNotConfigured is returned by vault operations when no vault
// address is configured.
var ErrContractNotConfigured = errors.New("contract not deployed yet")

// Service owns every view-model. It is built once and shared by the API, the
// pollers and the CLI.
type Service struct {
	cfg       *config.Config
	chain     rpcclient.ChainInterface
	reader    multicall.Reader
	referrals *scanner.ReferralReader
	cache     *cache.Cache
	market    marketclient.MarketInterface
	// tx is nil in read-only mode.
	tx       txclient.TransactorInterface
	inflight *cache.Inflight
	states   *stateStore
	// scans runs at most one referral history scan per referrer.
	scans singleflight.Group
	// referrers remembers recently requested referrers for the referral poller.
	referrers *lru.Cache[common.Address, struct{}]
	now       func() time.Time
}

func NewService(
	cfg *config.Config,
	chain rpcclient.ChainInterface,
	reader multicall.Reader,
	referrals *scanner.ReferralReader,
	c *cache.Cache,
	market marketclient.MarketInterface,
	tx txclient.TransactorInterface,
) *Service {
	size := cfg.Poller.MaxTrackedReferrers
	if size <= 0 {
		size = 256
	}
	// only fails on a non-positive size
	referrers, _ := lru.New[common.Address, struct{}](size)

	return &Service{
		cfg:       cfg,
		chain:     chain,
		reader:    reader,
		referrals: referrals,
		cache:     c,
		market:    market,
		tx:        tx,
		inflight:  cache.NewInflight(),
		states:    newStateStore(),
		referrers: referrers,
		now:       time.Now,
	}
}

// CanWrite reports whether a signer is configured.
func (s *Service) CanWrite() bool {
	return s.tx != nil
}

// bigOr decodes a single uint256 result, falling back to def when the call
// failed. The failure is logged.
func bigOr(ctx context.Context, r multicall.Result, def *big.Int) *big.Int {
	v, err := multicall.DecodeAs[*big.Int](r)
	if err != nil || v == nil {
		log.Ctx(ctx).Warn().Err(err).Msg("read failed, using default value")
		return def
	}
	return v
}
