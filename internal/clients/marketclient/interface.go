package marketclient

import "context"

//go:generate mockery --name=MarketInterface --output=../../../tests/mocks --outpkg=mocks --filename=mock_market_client.go
type MarketInterface interface {
	GetPair(ctx context.Context) (*PairData, error)
	GetHolderCount(ctx context.Context) (int64, error)
}
