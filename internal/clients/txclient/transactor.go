package txclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/clients/rpcclient"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/config"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSignerRequired is returned by writes when no signer is configured.
	ErrSignerRequired = errors.New("wallet not connected")
	// ErrTxReverted is returned when a transaction is mined with a failed status.
	ErrTxReverted = errors.New("transaction reverted")
)

type Transactor struct {
	chain  rpcclient.ChainInterface
	signer Signer
	cfg    *config.SignerConfig
}

func NewTransactor(chain rpcclient.ChainInterface, signer Signer, cfg *config.SignerConfig) *Transactor {
	return &Transactor{
		chain:  chain,
		signer: signer,
		cfg:    cfg,
	}
}

func (t *Transactor) From() common.Address {
	return t.signer.Address()
}

// Invoke packs a call to method and submits it with Transact.
func (t *Transactor) Invoke(
	ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...any,
) (*types.Receipt, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", method, err)
	}

	receipt, err := t.Transact(ctx, to, data)
	metrics.RecordTxSubmitted(method, err != nil)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", method, err)
	}
	return receipt, nil
}

// Transact signs and sends one transaction and waits until it is mined.
// Errors are not retried, a rejected or reverted write is final.
func (t *Transactor) Transact(ctx context.Context, to common.Address, data []byte) (*types.Receipt, error) {
	from := t.signer.Address()

	chainID, err := t.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	nonce, err := t.chain.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := t.chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	gas, err := t.chain.EstimateGas(ctx, ethereum.CallMsg{
		From:     from,
		To:       &to,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gas = uint64(float64(gas) * t.cfg.GasLimitMultiplier)

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    new(big.Int),
		Data:     data,
	})
	signed, err := t.signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := t.chain.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("tx_hash", signed.Hash().Hex()).
		Str("to", to.Hex()).
		Uint64("nonce", nonce).
		Uint64("gas", gas).
		Msg("transaction sent")

	receipt, err := t.waitMined(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTxReverted, signed.Hash().Hex())
	}

	return receipt, nil
}

func (t *Transactor) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.ReceiptTimeout)
	defer cancel()

	ticker := time.NewTicker(t.cfg.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := t.chain.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			log.Ctx(ctx).Debug().Err(err).Str("tx_hash", hash.Hex()).Msg("failed to get receipt, polling again")
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
