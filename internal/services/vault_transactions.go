package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/txclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
)

// PackageParams are the admin inputs of a vault package.
type PackageParams struct {
	Name                    string
	MinAmount               *big.Int
	MaxAmount               *big.Int
	DailyRateBasisPoints    int64
	BaseDurationDays        uint64
	ReferralBonusDays       uint64
	ClosingBonusBasisPoints int64
}

func (p PackageParams) args() []any {
	return []any{
		p.Name,
		orZero(p.MinAmount),
		orZero(p.MaxAmount),
		big.NewInt(p.DailyRateBasisPoints),
		new(big.Int).SetUint64(p.BaseDurationDays),
		new(big.Int).SetUint64(p.ReferralBonusDays),
		big.NewInt(p.ClosingBonusBasisPoints),
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func (s *Service) vaultAddress() (common.Address, error) {
	vault, ok := s.cfg.Contracts.VaultAddress()
	if !ok {
		return common.Address{}, ErrContractNotConfigured
	}
	return vault, nil
}

func (s *Service) vaultWrite(ctx context.Context, method string, args ...any) (common.Hash, error) {
	if s.tx == nil {
		return common.Hash{}, txclient.ErrSignerRequired
	}
	vault, err := s.vaultAddress()
	if err != nil {
		return common.Hash{}, err
	}

	hash, err := s.invoke(ctx, vault, contracts.VaultABI, method, args...)
	if err != nil {
		return hash, err
	}
	s.refreshAfterWrite(ctx, global(types.DomainVault), forUser(types.DomainVault, s.sender()))
	return hash, nil
}

// VaultStake approves the vault to pull amount USDT and then stakes it in
// packageID.
func (s *Service) VaultStake(ctx context.Context, packageID uint64, amount *big.Int, referrer common.Address) (common.Hash, error) {
	if s.tx == nil {
		return common.Hash{}, txclient.ErrSignerRequired
	}
	vault, err := s.vaultAddress()
	if err != nil {
		return common.Hash{}, err
	}

	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(vault, contracts.VaultABI, contracts.MethodUsdtToken),
	})
	if err != nil {
		return common.Hash{}, err
	}
	usdt, err := multicall.DecodeAs[common.Address](results[0])
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to read vault USDT token: %w", err)
	}

	if _, err := s.invoke(ctx, usdt, contracts.ERC20ABI, contracts.MethodApprove, vault, amount); err != nil {
		return common.Hash{}, err
	}

	return s.vaultWrite(ctx, contracts.MethodStake, new(big.Int).SetUint64(packageID), amount, referrer)
}

func (s *Service) VaultClaimRewards(ctx context.Context) (common.Hash, error) {
	return s.vaultWrite(ctx, contracts.MethodClaimRewards)
}

func (s *Service) ClaimRestakeBonus(ctx context.Context) (common.Hash, error) {
	return s.vaultWrite(ctx, contracts.MethodClaimRestakeBonus)
}

func (s *Service) ClaimClosingBonus(ctx context.Context) (common.Hash, error) {
	return s.vaultWrite(ctx, contracts.MethodClaimClosingBonus)
}

func (s *Service) CompleteStake(ctx context.Context) (common.Hash, error) {
	return s.vaultWrite(ctx, contracts.MethodCompleteStake)
}

func (s *Service) CreatePackage(ctx context.Context, p PackageParams) (common.Hash, error) {
	return s.vaultWrite(ctx, contracts.MethodCreatePackage, p.args()...)
}

func (s *Service) UpdatePackage(ctx context.Context, packageID uint64, p PackageParams, active bool) (common.Hash, error) {
	args := append([]any{new(big.Int).SetUint64(packageID)}, p.args()...)
	args = append(args, active)
	return s.vaultWrite(ctx, contracts.MethodUpdatePackage, args...)
}

// WithdrawUsdt moves amount USDT from the vault to its owner.
func (s *Service) WithdrawUsdt(ctx context.Context, amount *big.Int) (common.Hash, error) {
	return s.vaultWrite(ctx, contracts.MethodWithdrawUsdt, amount)
}
