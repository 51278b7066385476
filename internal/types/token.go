package types

// TokenData is the token page. Market figures and Holders are best effort,
// they keep their zero value when the market sources are unavailable.
type TokenData struct {
	TotalSupply      string  `json:"totalSupply"`
	Burned           string  `json:"burned"`
	Circulating      string  `json:"circulating"`
	PriceUsdt        string  `json:"priceUsdt"`
	PriceBnb         string  `json:"priceBnb"`
	MarketCap        string  `json:"marketCap"`
	Volume24h        string  `json:"volume24h"`
	Liquidity        string  `json:"liquidity"`
	PriceChange24h   float64 `json:"priceChange24h"`
	Holders          string  `json:"holders"`
	HolderCountError string  `json:"holderCountError,omitempty"`
	Volume24hUsd     float64 `json:"volume24hUsd"`
	LiquidityUsd     float64 `json:"liquidityUsd"`
}
