package cli

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/services"
	"github.com/spf13/cobra"
)

// VaultTxCmds are the write commands of the USDT vault. They fail with a
// not deployed error while contracts.vault is empty.
func VaultTxCmds() []*cobra.Command {
	stake := &cobra.Command{
		Use:   "vault-stake <package-id> <usdt-amount>",
		Short: "Approve USDT and stake it into a vault package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			packageID, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			referrer, err := referrerFlag(cmd)
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.VaultStake(ctx, packageID, amount, referrer)
			})
		},
	}
	stake.Flags().String("referrer", "", "Referrer address")

	withdraw := &cobra.Command{
		Use:   "vault-withdraw-usdt <amount>",
		Short: "Withdraw USDT from the vault (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.WithdrawUsdt(ctx, amount)
			})
		},
	}

	createPackage := &cobra.Command{
		Use:   "vault-create-package",
		Short: "Create a vault package (owner only)",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := packageFlags(cmd)
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.CreatePackage(ctx, p)
			})
		},
	}
	addPackageFlags(createPackage)

	updatePackage := &cobra.Command{
		Use:   "vault-update-package <package-id>",
		Short: "Replace the terms of a vault package (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packageID, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			p, err := packageFlags(cmd)
			if err != nil {
				return err
			}
			active, err := cmd.Flags().GetBool("active")
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.UpdatePackage(ctx, packageID, p, active)
			})
		},
	}
	addPackageFlags(updatePackage)
	updatePackage.Flags().Bool("active", true, "Whether the package accepts new stakes")

	return []*cobra.Command{
		stake,
		vaultCmd("vault-claim-rewards", "Claim the accrued vault rewards", (*services.Service).VaultClaimRewards),
		vaultCmd("vault-claim-restake-bonus", "Claim the restake bonus", (*services.Service).ClaimRestakeBonus),
		vaultCmd("vault-claim-closing-bonus", "Claim the closing bonus of a finished stake", (*services.Service).ClaimClosingBonus),
		vaultCmd("vault-complete-stake", "Complete a vault stake whose duration has passed", (*services.Service).CompleteStake),
		withdraw,
		createPackage,
		updatePackage,
	}
}

// vaultCmd builds a command for a vault write without arguments.
func vaultCmd(use, short string, method func(*services.Service, context.Context) (common.Hash, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return method(svc, ctx)
			})
		},
	}
}

func addPackageFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Package name")
	cmd.Flags().String("min-amount", "0", "Minimum stake in USDT")
	cmd.Flags().String("max-amount", "0", "Maximum stake in USDT")
	cmd.Flags().String("daily-rate", "", "Daily rate in percent, e.g. 0.5")
	cmd.Flags().Uint64("base-duration-days", 0, "Base duration in days")
	cmd.Flags().Uint64("referral-bonus-days", 0, "Days added per referral")
	cmd.Flags().String("closing-bonus", "0", "Closing bonus in percent")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("daily-rate")
}

func packageFlags(cmd *cobra.Command) (services.PackageParams, error) {
	var p services.PackageParams
	flags := cmd.Flags()

	name, err := flags.GetString("name")
	if err != nil {
		return p, err
	}
	minAmount, err := flags.GetString("min-amount")
	if err != nil {
		return p, err
	}
	maxAmount, err := flags.GetString("max-amount")
	if err != nil {
		return p, err
	}
	dailyRate, err := flags.GetString("daily-rate")
	if err != nil {
		return p, err
	}
	baseDays, err := flags.GetUint64("base-duration-days")
	if err != nil {
		return p, err
	}
	bonusDays, err := flags.GetUint64("referral-bonus-days")
	if err != nil {
		return p, err
	}
	closing, err := flags.GetString("closing-bonus")
	if err != nil {
		return p, err
	}

	p.Name = name
	p.BaseDurationDays = baseDays
	p.ReferralBonusDays = bonusDays
	if p.MinAmount, err = parseAmount(minAmount); err != nil {
		return p, err
	}
	if p.MaxAmount, err = parseAmount(maxAmount); err != nil {
		return p, err
	}
	if p.DailyRateBasisPoints, err = parsePercent(dailyRate); err != nil {
		return p, err
	}
	if p.ClosingBonusBasisPoints, err = parsePercent(closing); err != nil {
		return p, err
	}
	return p, nil
}
