package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/tracing"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/services"
	"github.com/onedreamlabs/onedream-staking-indexer/pkg"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// StakingTxCmds are the write commands of the staking contract. All of them
// need signer.private-key.
func StakingTxCmds() []*cobra.Command {
	stake := &cobra.Command{
		Use:   "stake <plan-id> <amount>",
		Short: "Stake 1DREAM into a plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseIndex(args[0])
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
				return svc.Stake(ctx, planID, amount, referrer)
			})
		},
	}
	stake.Flags().String("referrer", "", "Referrer address")

	unstake := &cobra.Command{
		Use:   "unstake <stake-index>",
		Short: "Withdraw a stake, paying the early unstake fee when still locked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.Unstake(ctx, idx)
			})
		},
	}

	claimRewards := &cobra.Command{
		Use:   "claim-rewards <stake-index>",
		Short: "Claim the pending rewards of a stake",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.ClaimRewards(ctx, idx)
			})
		},
	}

	approve := &cobra.Command{
		Use:   "approve <amount>",
		Short: "Approve the staking contract to spend 1DREAM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.Approve(ctx, amount)
			})
		},
	}

	claimReferral := &cobra.Command{
		Use:   "claim-referral-bonus <staker> <stake-index>",
		Short: "Claim the referral bonus of one referred stake",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			staker, err := pkg.ParseAddress(args[0])
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.ClaimReferralBonus(ctx, staker, idx)
			})
		},
	}

	claimAllReferral := &cobra.Command{
		Use:   "claim-all-referral-bonuses",
		Short: "Claim every referral bonus that is currently claimable",
		Args:  cobra.ExactArgs(0),
		RunE:  claimAllReferralBonuses,
	}

	setCommission := &cobra.Command{
		Use:   "set-commission <percent>",
		Short: "Set the referral commission, e.g. 2.5 for 2.5%",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, err := parsePercent(args[0])
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.SetReferralCommission(ctx, bp)
			})
		},
	}

	addPlan := &cobra.Command{
		Use:   "add-plan",
		Short: "Add a staking plan",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := planFlags(cmd)
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.AddStakingPlan(ctx, p)
			})
		},
	}
	addPlanFlags(addPlan)

	updatePlan := &cobra.Command{
		Use:   "update-plan <plan-id>",
		Short: "Replace the terms of an existing staking plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			p, err := planFlags(cmd)
			if err != nil {
				return err
			}
			return runTx(cmd, func(ctx context.Context, svc *services.Service) (common.Hash, error) {
				return svc.UpdateStakingPlan(ctx, planID, p)
			})
		},
	}
	addPlanFlags(updatePlan)

	return []*cobra.Command{
		stake, unstake, claimRewards, approve, claimReferral, claimAllReferral, setCommission, addPlan, updatePlan,
	}
}

func claimAllReferralBonuses(cmd *cobra.Command, _ []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	hashes, err := a.service.ClaimAllReferralBonuses(ctx)
	for _, h := range hashes {
		fmt.Fprintln(cmd.OutOrStdout(), h.Hex())
	}
	if errors.Is(err, services.ErrNothingToClaim) {
		log.Ctx(ctx).Info().Msg("Nothing to claim")
		return nil
	}
	if err != nil {
		return fmt.Errorf("claimed %d bonuses before failing: %w", len(hashes), err)
	}
	log.Ctx(ctx).Info().Int("claimed", len(hashes)).Msg("referral bonuses claimed")
	return nil
}

func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Plan name")
	cmd.Flags().String("apy", "", "APY in percent, e.g. 12.5")
	cmd.Flags().Uint64("lock-days", 0, "Lock duration in days, 0 for flexible")
	cmd.Flags().String("early-unstake-fee", "0", "Early unstake fee in percent")
	cmd.Flags().String("min-stake", "0", "Minimum stake in 1DREAM")
	cmd.Flags().Bool("active", true, "Whether the plan accepts new stakes")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("apy")
}

func planFlags(cmd *cobra.Command) (services.PlanParams, error) {
	var p services.PlanParams
	flags := cmd.Flags()

	name, err := flags.GetString("name")
	if err != nil {
		return p, err
	}
	apy, err := flags.GetString("apy")
	if err != nil {
		return p, err
	}
	lockDays, err := flags.GetUint64("lock-days")
	if err != nil {
		return p, err
	}
	fee, err := flags.GetString("early-unstake-fee")
	if err != nil {
		return p, err
	}
	minStake, err := flags.GetString("min-stake")
	if err != nil {
		return p, err
	}
	active, err := flags.GetBool("active")
	if err != nil {
		return p, err
	}

	p.Name = name
	p.LockDurationDays = lockDays
	p.Active = active
	if p.ApyBasisPoints, err = parsePercent(apy); err != nil {
		return p, err
	}
	if p.EarlyUnstakeFeeBasisPoints, err = parsePercent(fee); err != nil {
		return p, err
	}
	if p.MinStakeAmount, err = parseAmount(minStake); err != nil {
		return p, err
	}
	return p, nil
}
