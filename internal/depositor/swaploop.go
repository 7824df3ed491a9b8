// ===================================
// File: internal/depositor/swaploop.go
// ===================================
package depositor

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/bonedaddy/auto-jlp/internal/jupiter"
	"github.com/bonedaddy/auto-jlp/internal/perps"
	"github.com/bonedaddy/auto-jlp/internal/wallet"
)

const (
	// rateRefreshInterval paces the background price refresh.
	rateRefreshInterval = 60 * time.Second
	// DefaultQuoteAttempts bounds quote-and-swap rounds per notification.
	DefaultQuoteAttempts uint = 3
	// DefaultQuoteDelay is the pause between quote rounds.
	DefaultQuoteDelay = time.Second
	// swapSubmitAttempts bounds the inner swap transaction submission.
	swapSubmitAttempts uint = 5
)

// SwapLoop sells LP tokens through the aggregator whenever a deposit
// notification arrives and the market price beats the pool-implied price.
// The two prices refresh on independent cadence in a background goroutine
// and are read lock-free at decision time.
type SwapLoop struct {
	keys    *perps.AccountKeys
	ledger  Ledger
	wallet  *wallet.Wallet
	api     *jupiter.Client
	swapper *jupiter.Swapper
	logger  *zap.Logger
	notify  <-chan struct{}

	poolRate *atomic.Float64
	swapRate *atomic.Float64
}

func NewSwapLoop(keys *perps.AccountKeys, ledger Ledger, w *wallet.Wallet, api *jupiter.Client, logger *zap.Logger, notify <-chan struct{}) *SwapLoop {
	return &SwapLoop{
		keys:     keys,
		ledger:   ledger,
		wallet:   w,
		api:      api,
		swapper:  jupiter.NewSwapper(ledger, w, logger),
		logger:   logger.Named("swaploop"),
		notify:   notify,
		poolRate: atomic.NewFloat64(0),
		swapRate: atomic.NewFloat64(0),
	}
}

// Run refreshes rates in the background and services deposit notifications
// until the context ends.
func (s *SwapLoop) Run(ctx context.Context) error {
	s.refreshRates(ctx)
	go s.refreshLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.notify:
			if err := s.handleSwap(ctx); err != nil {
				s.logger.Error("swap round failed", zap.Error(err))
			}
		}
	}
}

func (s *SwapLoop) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(rateRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshRates(ctx)
		}
	}
}

// refreshRates updates the pool-implied and market prices independently; a
// failure on either side leaves the previous value in place.
func (s *SwapLoop) refreshRates(ctx context.Context) {
	usdcATA, err := s.wallet.ATA(perps.USDCTokenMint)
	if err != nil {
		s.logger.Error("failed to derive usdc token account", zap.Error(err))
		return
	}
	live, err := s.keys.LoadAccounts(ctx, s.ledger, usdcATA)
	if err != nil {
		s.logger.Error("failed to refresh pool rate", zap.Error(err))
	} else {
		s.poolRate.Store(live.JLPPrice())
	}

	price, err := s.api.Price(ctx, perps.LPTokenMint.String(), perps.USDCTokenMint.String())
	if err != nil {
		s.logger.Error("failed to refresh market rate", zap.Error(err))
	} else {
		s.swapRate.Store(price)
	}

	s.logger.Debug("rates refreshed",
		zap.Float64("pool_rate", s.poolRate.Load()),
		zap.Float64("swap_rate", s.swapRate.Load()))
}

// shouldSwap applies the price gate: sell only when the discounted market
// price still beats the pool-implied price. Unknown rates never pass.
func shouldSwap(poolRate, swapRate float64) bool {
	if poolRate <= 0 || swapRate <= 0 {
		return false
	}
	return swapRate*perps.SlippageFactor >= poolRate
}

func (s *SwapLoop) handleSwap(ctx context.Context) error {
	balance, err := s.lpBalance(ctx)
	if err != nil {
		s.logger.Warn("failed to read lp token balance", zap.Error(err))
		return nil
	}
	if balance == 0 {
		s.logger.Debug("no lp tokens to swap")
		return nil
	}

	poolRate, swapRate := s.poolRate.Load(), s.swapRate.Load()
	if !shouldSwap(poolRate, swapRate) {
		s.logger.Info("holding lp tokens, market below pool price",
			zap.Float64("pool_rate", poolRate),
			zap.Float64("swap_rate", swapRate))
		return nil
	}

	s.logger.Info("selling lp tokens",
		zap.Uint64("amount", balance),
		zap.Float64("pool_rate", poolRate),
		zap.Float64("swap_rate", swapRate))

	operation := func() (solana.Signature, error) {
		quote, err := s.api.NewQuote(ctx, perps.LPTokenMint.String(), perps.USDCTokenMint.String(), balance, nil)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to fetch quote: %w", err)
		}
		swap, err := s.api.NewSwap(ctx, quote, s.wallet.PublicKey.String(), true)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to build swap: %w", err)
		}
		return s.swapper.ExecuteSwap(ctx, swap, false, swapSubmitAttempts, time.Second)
	}
	notify := func(err error, d time.Duration) {
		s.logger.Warn("swap attempt failed, retrying",
			zap.Error(err), zap.Duration("backoff", d))
	}

	sig, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(DefaultQuoteDelay)),
		backoff.WithMaxTries(DefaultQuoteAttempts),
		backoff.WithNotify(notify))
	if err != nil {
		return fmt.Errorf("swap exhausted %d attempts: %w", DefaultQuoteAttempts, err)
	}
	s.logger.Info("sold lp tokens", zap.String("signature", sig.String()))
	return nil
}

func (s *SwapLoop) lpBalance(ctx context.Context) (uint64, error) {
	ata, err := s.wallet.ATA(perps.LPTokenMint)
	if err != nil {
		return 0, err
	}
	data, err := s.ledger.GetAccountData(ctx, ata)
	if err != nil {
		return 0, err
	}
	var acct token.Account
	if err := bin.NewBinDecoder(data).Decode(&acct); err != nil {
		return 0, fmt.Errorf("failed to decode lp token account: %w", err)
	}
	return acct.Amount, nil
}
