// Package format turns raw on-chain integers into the strings the API serves.
package format

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// TokenDecimals is the precision of the staking token and of USDT on BSC.
const TokenDecimals = 18

const (
	secondsPerDay = 86400
	noLock        = "No Lock"
)

var (
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
)

// FromWei converts a raw amount with the given number of decimals into units.
func FromWei(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// ToWei converts units into a raw amount, truncating extra precision.
func ToWei(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}

// ParseUnits parses a human amount such as "12.5" into a raw amount.
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid amount %q: must not be negative", s)
	}
	return ToWei(d, decimals), nil
}

// Units renders a raw amount with its full precision, e.g. "1.5".
func Units(amount *big.Int) string {
	return FromWei(amount, TokenDecimals).String()
}

// TokenAmount renders a raw 18-decimal amount compactly: 1.5M, 1.5K, 42.00.
func TokenAmount(amount *big.Int) string {
	return compact(FromWei(amount, TokenDecimals))
}

func compact(v decimal.Decimal) string {
	switch {
	case v.GreaterThanOrEqual(million):
		return v.Div(million).StringFixed(1) + "M"
	case v.GreaterThanOrEqual(thousand):
		return v.Div(thousand).StringFixed(1) + "K"
	default:
		return v.StringFixed(2)
	}
}

// Supply is TokenAmount for supply figures, whole units below a thousand
// are shown without decimals.
func Supply(amount *big.Int) string {
	return Number(FromWei(amount, TokenDecimals))
}

// Number renders units as 1.5M, 1.5K or a comma separated whole number.
func Number(v decimal.Decimal) string {
	if v.GreaterThanOrEqual(thousand) {
		return compact(v)
	}
	return humanize.Comma(v.Floor().IntPart())
}

// PercentFromBP renders basis points as a percentage without trailing
// zeros: 250 is "2.5%", 1000 is "10%".
func PercentFromBP(bp int64) string {
	return PercentFromBPDecimal(decimal.NewFromInt(bp))
}

// PercentFromBPDecimal is PercentFromBP for fractional basis points, such as
// an average, rounded to two decimals.
func PercentFromBPDecimal(bp decimal.Decimal) string {
	return bp.Shift(-2).Round(2).String() + "%"
}

// FixedPercentFromBP renders basis points with a fixed number of decimals.
func FixedPercentFromBP(bp int64, places int32) string {
	return decimal.New(bp, -2).StringFixed(places) + "%"
}

func LockDuration(seconds uint64) string {
	if seconds == 0 {
		return noLock
	}
	return fmt.Sprintf("%d Days", seconds/secondsPerDay)
}

// Currency renders a USD figure compactly: $1.5M, $1.5K, $42.00.
func Currency(v decimal.Decimal) string {
	return "$" + compact(v)
}

func PriceUSD(v decimal.Decimal) string {
	return "$" + v.StringFixed(6)
}

func PriceBNB(v decimal.Decimal) string {
	return v.StringFixed(8) + " BNB"
}

// Count renders an integer with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// BasisPoints converts a percentage such as 12.5 to basis points, truncating
// anything below one basis point.
func BasisPoints(percent decimal.Decimal) int64 {
	return percent.Shift(2).Floor().IntPart()
}
