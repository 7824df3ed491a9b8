// ===============================
// File: internal/jupiter/swapper.go
// ===============================
package jupiter

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/bonedaddy/auto-jlp/internal/wallet"
)

// Ledger is the submission surface the swapper needs.
type Ledger interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error)
}

// Swapper signs and submits swap transactions built by the router.
type Swapper struct {
	ledger Ledger
	wallet *wallet.Wallet
	logger *zap.Logger
}

func NewSwapper(ledger Ledger, w *wallet.Wallet, logger *zap.Logger) *Swapper {
	return &Swapper{
		ledger: ledger,
		wallet: w,
		logger: logger.Named("swapper"),
	}
}

// ExecuteSwap decodes the router-built transaction, re-signs it against a
// fresh blockhash and submits, retrying up to maxAttempts with a fixed delay.
func (s *Swapper) ExecuteSwap(ctx context.Context, swap *SwapResponse, skipPreflight bool, maxAttempts uint, delay time.Duration) (solana.Signature, error) {
	raw, err := base64.StdEncoding.DecodeString(swap.SwapTransaction)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to decode swap transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to deserialize swap transaction: %w", err)
	}

	operation := func() (solana.Signature, error) {
		blockhash, err := s.ledger.GetLatestBlockhash(ctx)
		if err != nil {
			return solana.Signature{}, err
		}
		tx.Message.RecentBlockhash = blockhash
		tx.Signatures = nil
		if err := s.wallet.SignTransaction(tx); err != nil {
			return solana.Signature{}, backoff.Permanent(err)
		}
		return s.ledger.SendTransaction(ctx, tx, skipPreflight)
	}

	notify := func(err error, d time.Duration) {
		s.logger.Warn("swap submission failed, retrying",
			zap.Error(err), zap.Duration("backoff", d))
	}

	sig, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(delay)),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(notify))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("swap submission exhausted retries: %w", err)
	}
	return sig, nil
}
