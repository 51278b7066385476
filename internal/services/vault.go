package services

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/cache"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/multicall"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/format"
	"github.com/rs/zerolog/log"
)

// Messages of the vault parts that failed while the others loaded.
const (
	errMsgVaultPackages = "Failed to load staking packages"
	errMsgVaultStats    = "Failed to load contract stats"
	errMsgVaultStake    = "Failed to load user stake"
	errMsgVaultReferral = "Failed to load referral stats"
	errMsgVaultPending  = "Failed to load pending rewards"
	errMsgVaultOwner    = "Failed to check owner"
)

var errVaultUnavailable = errors.New("every vault read failed")

// vaultJob builds the refresh job of a vault key. Without a configured vault
// the fetch fails with ErrContractNotConfigured and the state carries the
// not deployed message.
func (s *Service) vaultJob(kind cache.Kind, address string, force bool) (refreshJob, common.Address, bool) {
	vault, ok := s.cfg.Contracts.VaultAddress()
	job := refreshJob{
		domain:  types.DomainVault,
		kind:    kind,
		address: address,
		force:   force,
		errMsg:  errMsgVault,
	}
	if !ok {
		job.errMsg = errMsgNotDeployed
		job.force = true
	}
	return job, vault, ok
}

// RefreshVault returns the wallet independent part of the vault page.
func (s *Service) RefreshVault(ctx context.Context, force bool) (*types.VaultOverview, error) {
	job, vault, ok := s.vaultJob(cache.KindVaultData, "", force)
	return refresh(ctx, s, job, func(ctx context.Context) (*types.VaultOverview, error) {
		if !ok {
			return nil, ErrContractNotConfigured
		}
		return s.fetchVault(ctx, vault)
	})
}

func (s *Service) fetchVault(ctx context.Context, vault common.Address) (*types.VaultOverview, error) {
	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(vault, contracts.VaultABI, contracts.MethodGetActivePackages),
		multicall.NewCall(vault, contracts.VaultABI, contracts.MethodGetContractStats),
	})
	if err != nil {
		return nil, err
	}

	out := &types.VaultOverview{
		Packages:      []types.VaultPackage{},
		OneDreamPrice: "0",
	}

	packages, pkgErr := multicall.DecodeAs[[]contracts.VaultPackage](results[0])
	if pkgErr != nil {
		log.Ctx(ctx).Warn().Err(pkgErr).Msg("failed to read vault packages")
		out.Errors = append(out.Errors, errMsgVaultPackages)
	}
	for _, p := range packages {
		out.Packages = append(out.Packages, types.NewVaultPackage(p))
	}

	var stats contracts.VaultContractStats
	statsErr := results[1].Decode(&stats)
	if statsErr != nil {
		log.Ctx(ctx).Warn().Err(statsErr).Msg("failed to read vault stats")
		out.Errors = append(out.Errors, errMsgVaultStats)
	} else {
		out.ContractStats = types.NewVaultContractStats(stats)
		out.OneDreamPrice = out.ContractStats.CurrentOneDreamPrice
	}

	if pkgErr != nil && statsErr != nil {
		return nil, errors.Join(errVaultUnavailable, pkgErr, statsErr)
	}
	return out, nil
}

// RefreshVaultUser returns the vault position of user.
func (s *Service) RefreshVaultUser(ctx context.Context, user common.Address, force bool) (*types.VaultUserData, error) {
	job, vault, ok := s.vaultJob(cache.KindVaultUser, user.Hex(), force)
	return refresh(ctx, s, job, func(ctx context.Context) (*types.VaultUserData, error) {
		if !ok {
			return nil, ErrContractNotConfigured
		}
		return s.fetchVaultUser(ctx, vault, user)
	})
}

func (s *Service) fetchVaultUser(ctx context.Context, vault, user common.Address) (*types.VaultUserData, error) {
	results, err := s.reader.Read(ctx, []multicall.Call{
		multicall.NewCall(vault, contracts.VaultABI, contracts.MethodGetUserStakeBasic, user),
		multicall.NewCall(vault, contracts.VaultABI, contracts.MethodGetUserStakeDuration, user),
		multicall.NewCall(vault, contracts.VaultABI, contracts.MethodGetUserStakeBonus, user),
		multicall.NewCall(vault, contracts.VaultABI, contracts.MethodGetReferralStats, user),
		multicall.NewCall(vault, contracts.VaultABI, contracts.MethodCalculatePendingRewards, user),
		multicall.NewCall(vault, contracts.VaultABI, contracts.MethodOwner),
	})
	if err != nil {
		return nil, err
	}

	logger := log.Ctx(ctx).With().Str("address", user.Hex()).Logger()
	out := &types.VaultUserData{
		Address:        user.Hex(),
		PendingRewards: "0",
	}
	failed := 0
	fail := func(err error, msg string) {
		logger.Warn().Err(err).Msg(msg)
		out.Errors = append(out.Errors, msg)
		failed++
	}

	var (
		basic    contracts.VaultStakeBasic
		duration contracts.VaultStakeDuration
		bonus    contracts.VaultStakeBonus
	)
	if err := errors.Join(results[0].Decode(&basic), results[1].Decode(&duration), results[2].Decode(&bonus)); err != nil {
		fail(err, errMsgVaultStake)
	} else {
		out.UserStake = types.NewVaultUserStake(basic, duration, bonus)
	}

	var referral contracts.VaultReferralStats
	if err := results[3].Decode(&referral); err != nil {
		fail(err, errMsgVaultReferral)
	} else {
		out.ReferralStats = types.NewVaultReferralStats(referral)
	}

	if pending, err := multicall.DecodeAs[*big.Int](results[4]); err != nil {
		fail(err, errMsgVaultPending)
	} else {
		out.PendingRewards = format.Units(pending)
	}

	if owner, err := multicall.DecodeAs[common.Address](results[5]); err != nil {
		fail(err, errMsgVaultOwner)
	} else {
		out.IsOwner = owner == user
	}

	if failed == 4 {
		return nil, errVaultUnavailable
	}
	return out, nil
}
