package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/tracing"
	"github.com/onedreamlabs/onedream-staking-indexer/pkg"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// DumpReferralsCmd rebuilds the referral history of one referrer from chain
// logs, bypassing the cache.
// Usage: ./onedream-staking-indexer dump-referrals <address> --config config.yml [--raw]
func DumpReferralsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-referrals <address>",
		Short: "Scan the chain for stakes referred by an address and print them",
		Args:  cobra.ExactArgs(1),
		RunE:  dumpReferrals,
	}

	cmd.Flags().Bool("raw", false, "Print the scanner result as is instead of the JSON view")

	return cmd
}

func dumpReferrals(cmd *cobra.Command, args []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	referrer, err := pkg.ParseAddress(args[0])
	if err != nil {
		return err
	}

	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return fmt.Errorf("failed to parse raw flag: %w", err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	if raw {
		result, err := a.referrals.ReferredStakes(ctx, referrer)
		if err != nil {
			return fmt.Errorf("failed to scan referred stakes: %w", err)
		}
		spew.Fdump(os.Stdout, result)
		return nil
	}

	stakes, err := a.service.ReferredStakes(ctx, referrer, true)
	if err != nil {
		return fmt.Errorf("failed to scan referred stakes: %w", err)
	}
	if stakes.Incomplete() {
		log.Ctx(ctx).Warn().
			Int("failed_ranges", len(stakes.FailedRanges)).
			Int("skipped_events", stakes.SkippedEvents).
			Msg("Referral history is incomplete")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stakes)
}
