// ==================================
// File: internal/solclient/client.go
// ==================================

// Package solclient wraps the Solana JSON-RPC client with the handful of
// operations the depositor consumes: account reads, batched reads, blockhash
// retrieval and transaction submission.
package solclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

const (
	requestTimeout   = 5 * time.Second
	confirmPollEvery = 500 * time.Millisecond
	confirmDeadline  = 60 * time.Second
)

// ErrConfirmationTimeout is returned when a transaction is not confirmed
// within the polling deadline.
var ErrConfirmationTimeout = errors.New("transaction confirmation timeout")

type Client struct {
	rpc    *rpc.Client
	logger *zap.Logger
}

func New(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:    rpc.New(rpcURL),
		logger: logger.Named("solclient"),
	}
}

// GetAccountData returns the raw bytes of a single account.
func (c *Client) GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	result, err := c.rpc.GetAccountInfoWithOpts(cctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account info for %s: %w", account, err)
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("account not found: %s", account)
	}
	return result.Value.Data.GetBinary(), nil
}

// GetMultipleAccountData reads several accounts in one batch request. The
// returned slice is index-aligned with the input; missing accounts come back
// as nil entries for the caller to judge.
func (c *Client) GetMultipleAccountData(ctx context.Context, accounts ...solana.PublicKey) ([][]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.rpc.GetMultipleAccounts(cctx, accounts...)
	if err != nil {
		return nil, fmt.Errorf("failed to get multiple accounts: %w", err)
	}

	data := make([][]byte, len(accounts))
	for i, info := range resp.Value {
		if info != nil {
			data[i] = info.Data.GetBinary()
		}
	}
	return data, nil
}

// GetLatestBlockhash fetches a fresh blockhash for signing.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	result, err := c.rpc.GetLatestBlockhash(cctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return result.Value.Blockhash, nil
}

// SendTransaction submits a signed transaction. Preflight simulation runs
// unless skipPreflight is set.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       skipPreflight,
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// SendAndConfirmTransaction submits a signed transaction and polls its
// signature status until it reaches confirmed commitment.
func (c *Client) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.SendTransaction(ctx, tx, false)
	if err != nil {
		return solana.Signature{}, err
	}

	ticker := time.NewTicker(confirmPollEvery)
	defer ticker.Stop()
	deadline := time.After(confirmDeadline)

	for {
		select {
		case <-ctx.Done():
			return sig, ctx.Err()
		case <-deadline:
			return sig, ErrConfirmationTimeout
		case <-ticker.C:
			confirmed, err := c.checkConfirmation(ctx, sig)
			if err != nil {
				c.logger.Warn("confirmation check failed", zap.Error(err))
				continue
			}
			if confirmed {
				return sig, nil
			}
		}
	}
}

func (c *Client) checkConfirmation(ctx context.Context, signature solana.Signature) (bool, error) {
	response, err := c.rpc.GetSignatureStatuses(ctx, false, signature)
	if err != nil {
		return false, fmt.Errorf("failed to get signature status: %w", err)
	}
	if len(response.Value) == 0 || response.Value[0] == nil {
		return false, nil
	}
	status := response.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("transaction %s failed: %v", signature, status.Err)
	}
	return status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		status.ConfirmationStatus == rpc.ConfirmationStatusFinalized, nil
}
