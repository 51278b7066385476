package cli

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/tracing"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/services"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/utils/format"
	"github.com/onedreamlabs/onedream-staking-indexer/pkg"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// 1DREAM and BSC USDT both use 18 decimals.
const tokenDecimals = 18

type txFunc func(ctx context.Context, svc *services.Service) (common.Hash, error)

// runTx builds the service, sends one transaction and prints its hash once
// mined.
func runTx(cmd *cobra.Command, send txFunc) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	hash, err := send(ctx, a.service)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("tx_hash", hash.Hex()).Str("command", cmd.Name()).Msg("transaction confirmed")
	fmt.Fprintln(cmd.OutOrStdout(), hash.Hex())
	return nil
}

func parseAmount(s string) (*big.Int, error) {
	return format.ParseUnits(s, tokenDecimals)
}

// parsePercent turns "2.5" into 250 basis points.
func parsePercent(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid percent %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid percent %q: must not be negative", s)
	}
	return format.BasisPoints(d), nil
}

func parseIndex(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", s, err)
	}
	return v, nil
}

// referrerFlag reads --referrer, the zero address when unset.
func referrerFlag(cmd *cobra.Command) (common.Address, error) {
	v, err := cmd.Flags().GetString("referrer")
	if err != nil || v == "" {
		return common.Address{}, err
	}
	return pkg.ParseAddress(v)
}
