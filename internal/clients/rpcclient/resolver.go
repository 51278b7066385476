package rpcclient

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/rs/zerolog/log"
)

var ErrNoEndpoints = errors.New("no rpc endpoint could be constructed")

// DialFunc constructs a client for a single endpoint url.
type DialFunc func(ctx context.Context, url string) (ChainInterface, error)

func dialEthClient(ctx context.Context, url string) (ChainInterface, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Dial builds one client per configured endpoint and puts them behind a
// Balancer. Endpoints that cannot be constructed are skipped.
func Dial(ctx context.Context, cfg *config.RPCConfig) (*Balancer, error) {
	return DialWith(ctx, cfg, dialEthClient)
}

func DialWith(ctx context.Context, cfg *config.RPCConfig, dial DialFunc) (*Balancer, error) {
	log := log.Ctx(ctx)

	var endpoints []*endpoint
	for _, url := range cfg.Endpoints {
		client, err := dial(ctx, url)
		if err != nil {
			log.Warn().Err(err).Str("endpoint", url).Msg("failed to construct rpc client, skipping endpoint")
			continue
		}
		endpoints = append(endpoints, &endpoint{url: url, client: client})
	}

	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	log.Info().Int("endpoints", len(endpoints)).Str("primary", endpoints[0].url).Msg("rpc clients constructed")

	return newBalancer(endpoints, cfg.BreakerFailureThreshold, cfg.BreakerCooldown, cfg.CallTimeout), nil
}
