package txclient

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

//go:generate mockery --name=TransactorInterface --output=../../../tests/mocks --outpkg=mocks --filename=mock_transactor.go
type TransactorInterface interface {
	From() common.Address
	Invoke(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...any) (*types.Receipt, error)
}
