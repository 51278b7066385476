package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/marketclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/format"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
)

const holdersUnavailable = "N/A"

var (
	deadAddress = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	two         = decimal.NewFromInt(2)
)

// tokenChain is what the token page reads from contracts.
type tokenChain struct {
	totalSupply *big.Int
	burned      *big.Int
	decimals    int32
	// liquidityUsd is zero when the pair reserves could not be read.
	liquidityUsd decimal.Decimal
	priceUsd     decimal.Decimal
	priceBnb     decimal.Decimal
}

// RefreshToken returns supply, price and market figures of the token.
func (s *Service) RefreshToken(ctx context.Context, force bool) (*types.TokenData, error) {
	return refresh(ctx, s, refreshJob{
		domain: types.DomainToken,
		kind:   cache.KindTokenData,
		force:  force,
		errMsg: errMsgToken,
	}, func(ctx context.Context) (*types.TokenData, error) {
		return s.fetchToken(ctx, force)
	})
}

func (s *Service) fetchToken(ctx context.Context, force bool) (*types.TokenData, error) {
	var (
		wg         conc.WaitGroup
		pair       *marketclient.PairData
		pairErr    error
		holders    int64
		holdersErr error
		chain      *tokenChain
		chainErr   error
	)

	wg.Go(func() {
		pair, pairErr = s.MarketPair(ctx, force)
	})
	wg.Go(func() {
		holders, holdersErr = s.market.GetHolderCount(ctx)
	})
	wg.Go(func() {
		chain, chainErr = s.fetchTokenChain(ctx)
	})
	wg.Wait()

	if chainErr != nil {
		return nil, fmt.Errorf("failed to fetch basic token data: %w", chainErr)
	}
	if pairErr != nil {
		log.Ctx(ctx).Warn().Err(pairErr).Msg("market data unavailable")
		pair = nil
	}

	circulating := new(big.Int).Sub(chain.totalSupply, chain.burned)
	circulatingUnits := format.FromWei(circulating, chain.decimals)

	out := &types.TokenData{
		TotalSupply: format.Number(format.FromWei(chain.totalSupply, chain.decimals)),
		Burned:      format.Number(format.FromWei(chain.burned, chain.decimals)),
		Circulating: format.Number(circulatingUnits),
		PriceBnb:    format.PriceBNB(chain.priceBnb),
		Holders:     holdersUnavailable,
	}

	price := chain.priceUsd
	liquidity := chain.liquidityUsd
	marketCap := decimal.Zero
	volume := decimal.Zero
	if pair != nil {
		if pair.PriceUsd.IsPositive() {
			price = pair.PriceUsd
		}
		if pair.LiquidityUsd.IsPositive() {
			liquidity = pair.LiquidityUsd
		}
		marketCap = pair.MarketCap
		volume = pair.Volume24h
		out.PriceChange24h = pair.PriceChange24h.InexactFloat64()
	}
	if !marketCap.IsPositive() {
		marketCap = circulatingUnits.Mul(price)
	}

	out.PriceUsdt = format.PriceUSD(price)
	out.MarketCap = format.Currency(marketCap)
	out.Volume24h = format.Currency(volume)
	out.Volume24hUsd = volume.InexactFloat64()
	out.Liquidity = format.Currency(liquidity)
	out.LiquidityUsd = liquidity.InexactFloat64()

	if holdersErr != nil {
		log.Ctx(ctx).Warn().Err(holdersErr).Msg("holder count unavailable")
		out.HolderCountError = holdersErr.Error()
	} else {
		out.Holders = format.Count(holders)
	}

	return out, nil
}

// MarketPair returns the DexScreener figures of the token pair.
func (s *Service) MarketPair(ctx context.Context, force bool) (*marketclient.PairData, error) {
	return cached(ctx, s, cache.KindMarketData, "", force, s.market.GetPair)
}

// fetchTokenChain reads supply and burns first, then quotes one whole token
// through the router once decimals are known. Only totalSupply is required.
func (s *Service) fetchTokenChain(ctx context.Context) (*tokenChain, error) {
	c := s.cfg.Contracts
	token, pair, router := c.TokenAddress(), c.PairAddress(), c.RouterAddress()
	wbnb, usdt := c.WBNBAddress(), c.USDTAddress()
	oneBNB := new(big.Int).Exp(big.NewInt(10), big.NewInt(format.TokenDecimals), nil)

	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(token, contracts.ERC20ABI, contracts.MethodTotalSupply),
		multicall.NewCall(token, contracts.ERC20ABI, contracts.MethodDecimals),
		multicall.NewCall(token, contracts.ERC20ABI, contracts.MethodBalanceOf, deadAddress),
		multicall.NewCall(token, contracts.ERC20ABI, contracts.MethodBalanceOf, common.Address{}),
		multicall.NewCall(pair, contracts.PairABI, contracts.MethodToken0),
		multicall.NewCall(pair, contracts.PairABI, contracts.MethodGetReserves),
		multicall.NewCall(router, contracts.RouterABI, contracts.MethodGetAmountsOut, oneBNB, []common.Address{wbnb, usdt}),
	})
	if err != nil {
		return nil, err
	}

	supply, err := multicall.DecodeAs[*big.Int](results[0])
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return nil, errors.New("empty total supply")
	}

	out := &tokenChain{
		totalSupply: supply,
		burned:      new(big.Int),
		decimals:    format.TokenDecimals,
	}
	if d, err := multicall.DecodeAs[uint8](results[1]); err == nil {
		out.decimals = int32(d)
	}
	for _, r := range results[2:4] {
		out.burned.Add(out.burned, bigOr(ctx, r, new(big.Int)))
	}

	bnbPrice := decimal.NewFromFloat(s.cfg.Market.BNBPriceFallback)
	if amounts, err := multicall.DecodeAs[[]*big.Int](results[6]); err == nil && len(amounts) == 2 {
		bnbPrice = format.FromWei(amounts[1], format.TokenDecimals)
	} else {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to quote BNB price, using fallback")
	}

	token0, err0 := multicall.DecodeAs[common.Address](results[4])
	var reserves contracts.PairReserves
	if err := results[5].Decode(&reserves); err0 == nil && err == nil {
		wbnbReserve := reserves.Reserve1
		if token0 == wbnb {
			wbnbReserve = reserves.Reserve0
		}
		out.liquidityUsd = format.FromWei(wbnbReserve, format.TokenDecimals).Mul(bnbPrice).Mul(two)
	} else {
		log.Ctx(ctx).Warn().Msg("failed to read pair reserves")
	}

	s.quoteToken(ctx, out)
	return out, nil
}

func (s *Service) quoteToken(ctx context.Context, out *tokenChain) {
	c := s.cfg.Contracts
	token, router := c.TokenAddress(), c.RouterAddress()
	wbnb, usdt := c.WBNBAddress(), c.USDTAddress()
	amountIn := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(out.decimals)), nil)

	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(router, contracts.RouterABI, contracts.MethodGetAmountsOut, amountIn, []common.Address{token, wbnb, usdt}),
		multicall.NewCall(router, contracts.RouterABI, contracts.MethodGetAmountsOut, amountIn, []common.Address{token, usdt}),
		multicall.NewCall(router, contracts.RouterABI, contracts.MethodGetAmountsOut, amountIn, []common.Address{token, wbnb}),
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to quote token price")
		return
	}

	for _, r := range results[:2] {
		if last, ok := lastAmount(r); ok {
			out.priceUsd = format.FromWei(last, format.TokenDecimals)
			break
		}
	}
	if last, ok := lastAmount(results[2]); ok {
		out.priceBnb = format.FromWei(last, format.TokenDecimals)
	}
}

func lastAmount(r multicall.Result) (*big.Int, bool) {
	amounts, err := multicall.DecodeAs[[]*big.Int](r)
	if err != nil || len(amounts) == 0 {
		return nil, false
	}
	return amounts[len(amounts)-1], true
}
