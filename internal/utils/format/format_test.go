package format

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil))
}

func TestTokenAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		expected string
	}{
		{"millions", tokens(1_500_000), "1.5M"},
		{"thousands", tokens(1_500), "1.5K"},
		{"units", tokens(42), "42.00"},
		{"exactly one thousand", tokens(1_000), "1.0K"},
		{"fraction", big.NewInt(5e17), "0.50"},
		{"nil", nil, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TokenAmount(tt.amount))
		})
	}
}

func TestSupply(t *testing.T) {
	assert.Equal(t, "2.0M", Supply(tokens(2_000_000)))
	assert.Equal(t, "999", Supply(new(big.Int).Add(tokens(999), big.NewInt(9e17))))
}

func TestPercentFromBP(t *testing.T) {
	assert.Equal(t, "2.5%", PercentFromBP(250))
	assert.Equal(t, "10%", PercentFromBP(1000))
	assert.Equal(t, "0%", PercentFromBP(0))
	assert.Equal(t, "0.25%", PercentFromBP(25))

	assert.Equal(t, "1.50%", FixedPercentFromBP(150, 2))
	assert.Equal(t, "15%", FixedPercentFromBP(1500, 0))
}

func TestLockDuration(t *testing.T) {
	assert.Equal(t, "No Lock", LockDuration(0))
	assert.Equal(t, "90 Days", LockDuration(90*86400))
	assert.Equal(t, "0 Days", LockDuration(3600))
}

func TestMarketFormatting(t *testing.T) {
	assert.Equal(t, "$1.5M", Currency(decimal.NewFromInt(1_500_000)))
	assert.Equal(t, "$2.3K", Currency(decimal.RequireFromString("2345.6")))
	assert.Equal(t, "$12.34", Currency(decimal.RequireFromString("12.341")))
	assert.Equal(t, "$0.023400", PriceUSD(decimal.RequireFromString("0.0234")))
	assert.Equal(t, "0.00003900 BNB", PriceBNB(decimal.RequireFromString("0.000039")))
	assert.Equal(t, "1,234,567", Count(1234567))
}

func TestParseUnits(t *testing.T) {
	wei, err := ParseUnits("1.5", TokenDecimals)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", wei.String())
	assert.Equal(t, "1.5", Units(wei))

	_, err = ParseUnits("abc", TokenDecimals)
	assert.Error(t, err)

	_, err = ParseUnits("-1", TokenDecimals)
	assert.Error(t, err)
}

func TestPercentFromBPDecimal(t *testing.T) {
	avg := decimal.NewFromInt(1000 + 1250 + 1500).Div(decimal.NewFromInt(3))
	assert.Equal(t, "12.5%", PercentFromBPDecimal(avg))
	assert.Equal(t, "3.33%", PercentFromBPDecimal(decimal.NewFromInt(1000).Div(decimal.NewFromInt(3))))
}
