package types

import "math/big"

// Uint64 converts a contract integer, treating nil and out of range values
// as zero.
func Uint64(b *big.Int) uint64 {
	if b == nil || !b.IsUint64() {
		return 0
	}
	return b.Uint64()
}

func Int64(b *big.Int) int64 {
	if b == nil || !b.IsInt64() {
		return 0
	}
	return b.Int64()
}

// String is the decimal form of b, "0" for nil.
func String(b *big.Int) string {
	if b == nil {
		return "0"
	}
	return b.String()
}
