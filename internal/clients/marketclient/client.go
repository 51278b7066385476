package marketclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/client"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/retry"
	"github.com/shopspring/decimal"
)

const (
	pairEndpoint  = "/latest/dex/pairs/bsc/"
	bscScanPath   = "/api"
	bscScanStatus = "1"
)

// ErrNoPair is returned when DexScreener knows nothing about the pair.
var ErrNoPair = errors.New("pair not found")

// PairData is the subset of DexScreener pair figures the token page shows.
type PairData struct {
	PriceUsd       decimal.Decimal
	Volume24h      decimal.Decimal
	LiquidityUsd   decimal.Decimal
	PriceChange24h decimal.Decimal
	MarketCap      decimal.Decimal
}

type Client struct {
	httpClient *http.Client
	cfg        *config.MarketConfig
	pair       common.Address
	token      common.Address
	policy     retry.Policy
}

func NewClient(cfg *config.MarketConfig, pair, token common.Address) *Client {
	policy := retry.Default()
	policy.MaxRetries = cfg.MaxRetryTimes
	policy.BaseDelay = cfg.RetryInterval

	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
		pair:       pair,
		token:      token,
		policy:     policy,
	}
}

type service struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func (s *service) GetBaseURL() string {
	return strings.TrimRight(s.baseURL, "/")
}

func (s *service) GetDefaultRequestTimeout() time.Duration {
	return s.timeout
}

func (s *service) GetHttpClient() *http.Client {
	return s.httpClient
}

func (c *Client) dexScreener() *service {
	return &service{baseURL: c.cfg.DexScreenerURL, timeout: c.cfg.Timeout, httpClient: c.httpClient}
}

func (c *Client) bscScan() *service {
	return &service{baseURL: c.cfg.BscScanURL, timeout: c.cfg.Timeout, httpClient: c.httpClient}
}

type dexPair struct {
	PriceUsd decimal.Decimal `json:"priceUsd"`
	Volume   struct {
		H24 decimal.Decimal `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		Usd decimal.Decimal `json:"usd"`
	} `json:"liquidity"`
	PriceChange struct {
		H24 decimal.Decimal `json:"h24"`
	} `json:"priceChange"`
	MarketCap decimal.Decimal `json:"marketCap"`
}

type dexPairsResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// GetPair fetches the pair's market figures from DexScreener.
func (c *Client) GetPair(ctx context.Context) (*PairData, error) {
	opts := &client.HttpClientOptions{
		Path:         pairEndpoint + strings.ToLower(c.pair.Hex()),
		TemplatePath: pairEndpoint + "{pair}",
	}

	resp, err := retry.Do(ctx, c.policy, func() (*dexPairsResponse, error) {
		return client.SendRequest[any, dexPairsResponse](ctx, c.dexScreener(), http.MethodGet, opts, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pair %s: %w", c.pair.Hex(), err)
	}
	if len(resp.Pairs) == 0 {
		return nil, ErrNoPair
	}

	p := resp.Pairs[0]
	return &PairData{
		PriceUsd:       p.PriceUsd,
		Volume24h:      p.Volume.H24,
		LiquidityUsd:   p.Liquidity.Usd,
		PriceChange24h: p.PriceChange.H24,
		MarketCap:      p.MarketCap,
	}, nil
}

type bscScanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// GetHolderCount asks BscScan for the token's holder count. An API level
// error is not retried.
func (c *Client) GetHolderCount(ctx context.Context) (int64, error) {
	query := url.Values{}
	query.Set("module", "token")
	query.Set("action", "tokenholdercount")
	query.Set("contractaddress", c.token.Hex())
	if c.cfg.BscScanAPIKey != "" {
		query.Set("apikey", c.cfg.BscScanAPIKey)
	}

	opts := &client.HttpClientOptions{
		Path:         bscScanPath + "?" + query.Encode(),
		TemplatePath: bscScanPath + "?action=tokenholdercount",
	}

	resp, err := retry.Do(ctx, c.policy, func() (*bscScanResponse, error) {
		return client.SendRequest[any, bscScanResponse](ctx, c.bscScan(), http.MethodGet, opts, nil)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get holder count: %w", err)
	}

	if resp.Status != bscScanStatus || resp.Result == "" {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("BscScan API Error: Status %s", resp.Status)
		}
		return 0, fmt.Errorf("bscscan returned an error: %s", msg)
	}

	count, err := strconv.ParseInt(resp.Result, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid holder count %q: %w", resp.Result, err)
	}
	return count, nil
}
