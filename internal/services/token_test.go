package services

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/marketclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func weiFraction(tokens string) *big.Int {
	return decimal.RequireFromString(tokens).Shift(18).BigInt()
}

// tokenContracts registers a token with 1B supply and 100M burned, a pair
// holding 100 BNB and a router quoting BNB at 600 USD and the token at
// 0.5 USD.
func (e *testEnv) tokenContracts() {
	c := e.cfg.Contracts
	wbnb, usdt := c.WBNBAddress(), c.USDTAddress()

	e.chain.Returns(tokenAddr, contracts.ERC20ABI, contracts.MethodTotalSupply, testutil.TokensToWei(1_000_000_000))
	e.chain.Returns(tokenAddr, contracts.ERC20ABI, contracts.MethodDecimals, uint8(18))
	e.chain.Handle(tokenAddr, contracts.ERC20ABI, contracts.MethodBalanceOf, func(args []any, _ *big.Int) ([]any, error) {
		if args[0].(common.Address) == deadAddress {
			return []any{testutil.TokensToWei(100_000_000)}, nil
		}
		return []any{big.NewInt(0)}, nil
	})
	e.chain.Returns(c.PairAddress(), contracts.PairABI, contracts.MethodToken0, wbnb)
	e.chain.Returns(c.PairAddress(), contracts.PairABI, contracts.MethodGetReserves,
		testutil.TokensToWei(100), testutil.TokensToWei(120_000_000), uint32(0))
	e.chain.Handle(c.RouterAddress(), contracts.RouterABI, contracts.MethodGetAmountsOut,
		func(args []any, _ *big.Int) ([]any, error) {
			in := args[0].(*big.Int)
			path := args[1].([]common.Address)
			switch {
			case len(path) == 2 && path[0] == wbnb && path[1] == usdt:
				return []any{[]*big.Int{in, testutil.TokensToWei(600)}}, nil
			case len(path) == 3:
				return []any{[]*big.Int{in, weiFraction("0.0008"), weiFraction("0.5")}}, nil
			case len(path) == 2 && path[1] == wbnb:
				return []any{[]*big.Int{in, weiFraction("0.0008")}}, nil
			default:
				return nil, testutil.ErrReverted
			}
		})
}

func TestRefreshToken_MarketSourcesDown(t *testing.T) {
	env := newEnv(t, false)
	env.tokenContracts()
	env.market.On("GetPair", mock.Anything).Return(nil, errors.New("dexscreener unavailable"))
	env.market.On("GetHolderCount", mock.Anything).Return(int64(0), errors.New("rate limit exceeded"))

	data, err := env.svc.RefreshToken(t.Context(), true)
	require.NoError(t, err)

	assert.Equal(t, "1000.0M", data.TotalSupply)
	assert.Equal(t, "100.0M", data.Burned)
	assert.Equal(t, "900.0M", data.Circulating)
	assert.Equal(t, "$0.500000", data.PriceUsdt)
	assert.Equal(t, "0.00080000 BNB", data.PriceBnb)
	assert.Equal(t, "$450.0M", data.MarketCap)
	assert.Equal(t, "$120.0K", data.Liquidity)
	assert.InDelta(t, 120_000, data.LiquidityUsd, 0.001)
	assert.Equal(t, "$0.00", data.Volume24h)
	assert.Equal(t, holdersUnavailable, data.Holders)
	assert.Equal(t, "rate limit exceeded", data.HolderCountError)
}

func TestRefreshToken_MarketDataPreferred(t *testing.T) {
	env := newEnv(t, false)
	env.tokenContracts()
	env.market.On("GetPair", mock.Anything).Return(&marketclient.PairData{
		PriceUsd:       decimal.RequireFromString("0.6"),
		Volume24h:      decimal.NewFromInt(1_234),
		LiquidityUsd:   decimal.NewFromInt(50_000),
		PriceChange24h: decimal.RequireFromString("-5.5"),
	}, nil).Once()
	env.market.On("GetHolderCount", mock.Anything).Return(int64(12_345), nil)

	data, err := env.svc.RefreshToken(t.Context(), true)
	require.NoError(t, err)

	assert.Equal(t, "$0.600000", data.PriceUsdt)
	// no market cap from the pair, derived from circulating supply
	assert.Equal(t, "$540.0M", data.MarketCap)
	assert.Equal(t, "$50.0K", data.Liquidity)
	assert.Equal(t, "$1.2K", data.Volume24h)
	assert.InDelta(t, -5.5, data.PriceChange24h, 0.0001)
	assert.Equal(t, "12,345", data.Holders)
	assert.Empty(t, data.HolderCountError)
}

func TestRefreshToken_SupplyRequired(t *testing.T) {
	env := newEnv(t, false)
	env.market.On("GetPair", mock.Anything).Return(nil, errors.New("down")).Maybe()
	env.market.On("GetHolderCount", mock.Anything).Return(int64(0), errors.New("down")).Maybe()

	_, err := env.svc.RefreshToken(t.Context(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), errMsgToken)
}
