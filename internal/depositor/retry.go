// ================================
// File: internal/depositor/retry.go
// ================================
package depositor

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/bonedaddy/auto-jlp/internal/wallet"
)

const (
	// DefaultSubmitAttempts bounds deposit submission retries per tick.
	DefaultSubmitAttempts uint = 3
	// DefaultSubmitDelay is the pause between submission attempts.
	DefaultSubmitDelay = 250 * time.Millisecond
)

// Submitter signs and submits transactions with a bounded constant-delay
// retry. Each attempt fetches a fresh blockhash, since blockhashes expire.
type Submitter struct {
	ledger      Ledger
	wallet      *wallet.Wallet
	logger      *zap.Logger
	maxAttempts uint
	delay       time.Duration
}

func NewSubmitter(ledger Ledger, w *wallet.Wallet, logger *zap.Logger, maxAttempts uint, delay time.Duration) *Submitter {
	if maxAttempts == 0 {
		maxAttempts = DefaultSubmitAttempts
	}
	if delay <= 0 {
		delay = DefaultSubmitDelay
	}
	return &Submitter{
		ledger:      ledger,
		wallet:      w,
		logger:      logger.Named("submitter"),
		maxAttempts: maxAttempts,
		delay:       delay,
	}
}

// Submit builds a transaction from instructions, signs it and sends it with
// preflight simulation enabled. Exhausting the attempts returns the last
// error; the caller abandons the tick and carries on.
func (s *Submitter) Submit(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	operation := func() (solana.Signature, error) {
		blockhash, err := s.ledger.GetLatestBlockhash(ctx)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to fetch blockhash: %w", err)
		}
		tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(s.wallet.PublicKey))
		if err != nil {
			return solana.Signature{}, backoff.Permanent(fmt.Errorf("failed to build transaction: %w", err))
		}
		if err := s.wallet.SignTransaction(tx); err != nil {
			return solana.Signature{}, backoff.Permanent(fmt.Errorf("failed to sign transaction: %w", err))
		}
		return s.ledger.SendTransaction(ctx, tx, false)
	}

	notify := func(err error, d time.Duration) {
		s.logger.Warn("submission failed, retrying",
			zap.Error(err), zap.Duration("backoff", d))
	}

	sig, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.delay)),
		backoff.WithMaxTries(s.maxAttempts),
		backoff.WithNotify(notify))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("submission exhausted %d attempts: %w", s.maxAttempts, err)
	}
	return sig, nil
}
