package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/contracts"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/format"
)

type VaultPackage struct {
	ID                      uint64 `json:"id"`
	Name                    string `json:"name"`
	MinAmount               string `json:"minAmount"`
	MaxAmount               string `json:"maxAmount"`
	DailyRateBasisPoints    int64  `json:"dailyRateBasisPoints"`
	DailyRate               string `json:"dailyRate"`
	BaseDurationDays        uint64 `json:"baseDurationDays"`
	ReferralBonusDays       uint64 `json:"referralBonusDays"`
	ClosingBonusBasisPoints int64  `json:"closingBonusBasisPoints"`
	ClosingBonusRate        string `json:"closingBonusRate"`
	Active                  bool   `json:"active"`
}

func NewVaultPackage(p contracts.VaultPackage) VaultPackage {
	daily := Int64(p.DailyRateBasisPoints)
	closing := Int64(p.ClosingBonusBasisPoints)

	return VaultPackage{
		ID:                      Uint64(p.ID),
		Name:                    p.Name,
		MinAmount:               format.Units(p.MinAmount),
		MaxAmount:               format.Units(p.MaxAmount),
		DailyRateBasisPoints:    daily,
		DailyRate:               format.FixedPercentFromBP(daily, 2),
		BaseDurationDays:        Uint64(p.BaseDurationDays),
		ReferralBonusDays:       Uint64(p.ReferralBonusDays),
		ClosingBonusBasisPoints: closing,
		ClosingBonusRate:        format.FixedPercentFromBP(closing, 0),
		Active:                  p.Active,
	}
}

type VaultUserStake struct {
	PackageID           uint64 `json:"packageId"`
	UsdtAmount          string `json:"usdtAmount"`
	StartTime           uint64 `json:"startTime"`
	LastClaimTime       uint64 `json:"lastClaimTime"`
	BaseDurationDays    uint64 `json:"baseDurationDays"`
	ReferralCount       uint64 `json:"referralCount"`
	TotalDurationDays   uint64 `json:"totalDurationDays"`
	RestakeCount        uint64 `json:"restakeCount"`
	RestakeBonus        string `json:"restakeBonus"`
	RestakeBonusClaimed bool   `json:"restakeBonusClaimed"`
	ClosingBonus        string `json:"closingBonus"`
	ClosingBonusClaimed bool   `json:"closingBonusClaimed"`
	Referrer            string `json:"referrer"`
	IsActive            bool   `json:"isActive"`
}

// NewVaultUserStake merges the three stake views. It returns nil when the
// user has no active stake.
func NewVaultUserStake(
	basic contracts.VaultStakeBasic, duration contracts.VaultStakeDuration, bonus contracts.VaultStakeBonus,
) *VaultUserStake {
	if !basic.IsActive {
		return nil
	}

	return &VaultUserStake{
		PackageID:           Uint64(basic.PackageID),
		UsdtAmount:          format.Units(basic.UsdtAmount),
		StartTime:           Uint64(basic.StartTime),
		LastClaimTime:       Uint64(basic.LastClaimTime),
		BaseDurationDays:    Uint64(duration.BaseDurationDays),
		ReferralCount:       Uint64(duration.ReferralCount),
		TotalDurationDays:   Uint64(duration.TotalDurationDays),
		RestakeCount:        Uint64(duration.RestakeCount),
		RestakeBonus:        format.Units(bonus.RestakeBonus),
		RestakeBonusClaimed: bonus.RestakeBonusClaimed,
		ClosingBonus:        format.Units(bonus.ClosingBonus),
		ClosingBonusClaimed: bonus.ClosingBonusClaimed,
		Referrer:            bonus.Referrer.Hex(),
		IsActive:            basic.IsActive,
	}
}

type VaultContractStats struct {
	TotalUsdtStaked      string `json:"totalUsdtStaked"`
	TotalStakers         uint64 `json:"totalStakers"`
	TotalRewardsPaid     string `json:"totalRewardsPaid"`
	UsdtBalance          string `json:"usdtBalance"`
	OneDreamBalance      string `json:"oneDreamBalance"`
	CurrentOneDreamPrice string `json:"currentOneDreamPrice"`
}

func NewVaultContractStats(s contracts.VaultContractStats) *VaultContractStats {
	return &VaultContractStats{
		TotalUsdtStaked:      format.Units(s.TotalUsdtStaked),
		TotalStakers:         Uint64(s.TotalStakers),
		TotalRewardsPaid:     format.Units(s.TotalRewardsPaid),
		UsdtBalance:          format.Units(s.UsdtBalance),
		OneDreamBalance:      format.Units(s.OneDreamBalance),
		CurrentOneDreamPrice: format.Units(s.CurrentOneDreamPrice),
	}
}

type VaultReferralStats struct {
	TotalReferralCount uint64   `json:"totalReferralCount"`
	ReferredUsers      []string `json:"referredUsers"`
}

func NewVaultReferralStats(s contracts.VaultReferralStats) *VaultReferralStats {
	return &VaultReferralStats{
		TotalReferralCount: Uint64(s.TotalReferralCount),
		ReferredUsers:      hexAddresses(s.ReferredUsersList),
	}
}

func hexAddresses(addrs []common.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Hex()
	}
	return out
}

// VaultOverview is the wallet independent part of the vault page. Packages
// and ContractStats are fetched independently, either may be missing.
type VaultOverview struct {
	Packages      []VaultPackage      `json:"packages"`
	ContractStats *VaultContractStats `json:"contractStats"`
	OneDreamPrice string              `json:"oneDreamPrice"`
	Errors        []string            `json:"errors,omitempty"`
}

type VaultUserData struct {
	Address        string              `json:"address"`
	UserStake      *VaultUserStake     `json:"userStake"`
	ReferralStats  *VaultReferralStats `json:"referralStats"`
	PendingRewards string              `json:"pendingRewards"`
	IsOwner        bool                `json:"isOwner"`
	Errors         []string            `json:"errors,omitempty"`
}
