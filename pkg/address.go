package pkg

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidAddress = errors.New("invalid address")

// ParseAddress accepts a 0x prefixed, 20 byte hex address in any case.
func ParseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) || len(address) != 2*common.AddressLength+2 {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return common.HexToAddress(address), nil
}
