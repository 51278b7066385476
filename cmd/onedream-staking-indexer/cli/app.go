package cli

import (
	"context"
	"fmt"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/marketclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/rpcclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/txclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/db"
	dbmodel "github.com/onedreamlabs/onedream-staking-indexer/internal/db/model"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/scanner"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/services"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/retry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// app holds everything a command needs. close releases the cache store and
// the database connection.
type app struct {
	cfg       *config.Config
	service   *services.Service
	referrals *scanner.ReferralReader
	closers   []func(ctx context.Context) error
}

func loadConfig() (*config.Config, error) {
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("error while loading config file %s: %w", cfgPath, err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	return cfg, nil
}

func rpcPolicy(cfg *config.RPCConfig) retry.Policy {
	policy := retry.Default()
	policy.MaxRetries = cfg.MaxRetryTimes
	policy.BaseDelay = cfg.RetryInterval
	policy.MaxJitter = cfg.MaxJitter
	return policy
}

func newApp(ctx context.Context) (*app, error) {
	log := log.Ctx(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	balancer, err := rpcclient.Dial(ctx, &cfg.RPC)
	if err != nil {
		return nil, fmt.Errorf("error while creating rpc client: %w", err)
	}
	chain := rpcclient.NewChainWithMetrics(balancer)

	policy := rpcPolicy(&cfg.RPC)
	reader := multicall.New(chain, cfg.Contracts.MulticallAddress(), cfg.Multicall.SubBatchSize, policy)
	logScanner := scanner.New(chain, &cfg.Scanner, policy)
	a.referrals = scanner.NewReferralReader(
		logScanner, reader, cfg.Contracts.StakingAddress(), cfg.Contracts.StakingDeploymentBlock, cfg.Scanner.ClaimCheckWorkers,
	)

	var database db.DbInterface
	if cfg.Cache.Backend == config.CacheBackendMongo {
		if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
			return nil, fmt.Errorf("error while setting up cache db model: %w", err)
		}
		client, err := db.New(ctx, cfg.Db)
		if err != nil {
			return nil, fmt.Errorf("error while creating db client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		database = db.NewDbWithMetrics(client)
	}

	store, err := cache.NewStore(ctx, &cfg.Cache, database)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("error while creating cache store: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })
	c := cache.New(store, cfg.Cache.Prefix, cfg.Cache.TTL)

	market := marketclient.NewClient(&cfg.Market, cfg.Contracts.PairAddress(), cfg.Contracts.TokenAddress())

	var tx txclient.TransactorInterface
	if cfg.Signer.Enabled() {
		signer, err := txclient.NewKeySigner(cfg.Signer.PrivateKey)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("error while creating signer: %w", err)
		}
		tx = txclient.NewTransactor(chain, signer, &cfg.Signer)
		log.Info().Str("from", signer.Address().Hex()).Msg("signer configured")
	} else {
		log.Info().Msg("no signer configured, running read-only")
	}

	a.service = services.NewService(cfg, chain, reader, a.referrals, c, market, tx)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to release resource")
		}
	}
	a.closers = nil
}
