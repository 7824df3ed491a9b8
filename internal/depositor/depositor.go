// ====================================
// File: internal/depositor/depositor.go
// ====================================

// Package depositor runs the two long-lived loops of the agent: the deposit
// control loop, which polls pool capacity and submits sized liquidity
// deposits, and the swap trigger loop, which sells acquired LP tokens back
// through the aggregator when the market price beats the pool-implied one.
package depositor

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bonedaddy/auto-jlp/internal/jupiter"
	"github.com/bonedaddy/auto-jlp/internal/perps"
	"github.com/bonedaddy/auto-jlp/internal/wallet"
)

// DefaultTickInterval is the deposit polling cadence.
const DefaultTickInterval = 250 * time.Millisecond

// swapNotifyBuffer bounds the queue of deposit-completion notifications; a
// full buffer drops the notification with a log rather than stalling the
// deposit loop.
const swapNotifyBuffer = 128

// Ledger is the full remote surface the loops consume. *solclient.Client
// implements it; tests substitute fakes.
type Ledger interface {
	perps.Ledger
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error)
	SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Options configures a deposit run.
type Options struct {
	DepositMint       solana.PublicKey
	DepositAmountUI   float64
	Force             bool
	SkipCapacityCheck bool
	// PriorityFeeUI is the compute unit price in UI SOL terms.
	PriorityFeeUI float64
	TickInterval  time.Duration
}

// Depositor is the top-level agent.
type Depositor struct {
	opts    Options
	ledger  Ledger
	wallet  *wallet.Wallet
	api     *jupiter.Client
	logger  *zap.Logger
	submit  *Submitter
	policy  perps.DepositPolicy
	keys    *perps.AccountKeys
	mint    token.Mint
	usdcATA solana.PublicKey
	swapCh  chan struct{}
}

func New(ledger Ledger, w *wallet.Wallet, api *jupiter.Client, logger *zap.Logger, opts Options) *Depositor {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &Depositor{
		opts:   opts,
		ledger: ledger,
		wallet: w,
		api:    api,
		logger: logger.Named("depositor"),
		submit: NewSubmitter(ledger, w, logger, DefaultSubmitAttempts, DefaultSubmitDelay),
		policy: perps.DepositPolicy{
			AmountUI:          opts.DepositAmountUI,
			Force:             opts.Force,
			SkipCapacityCheck: opts.SkipCapacityCheck,
		},
		swapCh: make(chan struct{}, swapNotifyBuffer),
	}
}

// Run performs startup (key cache, mint decimals, LP token account
// bootstrap), spawns the swap trigger loop and ticks the deposit loop until
// a termination signal arrives. Per-tick errors are logged and absorbed;
// only startup failures or signals end the run.
func (d *Depositor) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer cancel()

	if err := d.bootstrap(ctx); err != nil {
		return err
	}

	swapLoop := NewSwapLoop(d.keys, d.ledger, d.wallet, d.api, d.logger, d.swapCh)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return swapLoop.Run(gctx)
	})
	g.Go(func() error {
		return d.depositLoop(gctx)
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	d.logger.Info("goodbye")
	return nil
}

func (d *Depositor) bootstrap(ctx context.Context) error {
	keys, err := perps.LoadAccountKeys(ctx, d.ledger, perps.PerpetualsAddress, perps.PoolAddress)
	if err != nil {
		return fmt.Errorf("failed to load account keys: %w", err)
	}
	d.keys = keys

	mintData, err := d.ledger.GetAccountData(ctx, d.opts.DepositMint)
	if err != nil {
		return fmt.Errorf("failed to fetch deposit mint %s: %w", d.opts.DepositMint, err)
	}
	if err := bin.NewBinDecoder(mintData).Decode(&d.mint); err != nil {
		return fmt.Errorf("failed to decode deposit mint: %w", err)
	}

	d.usdcATA, err = d.wallet.ATA(d.opts.DepositMint)
	if err != nil {
		return fmt.Errorf("failed to derive deposit token account: %w", err)
	}

	// one-time LP token account bootstrap, idempotent across restarts
	ix, err := d.keys.CreateLPTokenATAInstruction(ctx, d.ledger, d.wallet.PublicKey)
	if err != nil {
		return err
	}
	if ix != nil {
		blockhash, err := d.ledger.GetLatestBlockhash(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch blockhash: %w", err)
		}
		tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(d.wallet.PublicKey))
		if err != nil {
			return err
		}
		if err := d.wallet.SignTransaction(tx); err != nil {
			return err
		}
		sig, err := d.ledger.SendAndConfirmTransaction(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to create lp token account: %w", err)
		}
		d.logger.Info("created lp token account", zap.String("signature", sig.String()))
	}

	d.logger.Info("depositor ready",
		zap.String("owner", d.wallet.String()),
		zap.String("deposit_mint", d.opts.DepositMint.String()),
		zap.Float64("deposit_amount", d.opts.DepositAmountUI),
		zap.Int("custodies", len(keys.Custodies)))
	return nil
}

func (d *Depositor) depositLoop(ctx context.Context) error {
	ticker := time.NewTicker(d.opts.TickInterval)
	defer ticker.Stop()

	for {
		// shutdown wins ties with the timer
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		d.tick(ctx)
	}
}

// tick runs one deposit round. Failures are tick-local: logged, never fatal.
func (d *Depositor) tick(ctx context.Context) {
	live, err := d.keys.LoadAccounts(ctx, d.ledger, d.usdcATA)
	if err != nil {
		d.logger.Error("failed to load live accounts", zap.Error(err))
		return
	}

	jlpPrice := live.JLPPrice()
	d.logger.Info("pool state",
		zap.Uint64("aum", live.Pool.AumUsd),
		zap.Uint64("aum_max", live.Pool.Limit.MaxAumUsd),
		zap.Float64("jlp_price", jlpPrice))

	plan, ok := d.policy.ComputePlan(live, d.mint.Decimals)
	if !ok {
		d.logger.Debug("max deposit cap reached")
		return
	}
	if plan.Amount == 0 {
		d.logger.Debug("nothing to deposit")
		return
	}

	addLiquidity, err := d.keys.AddLiquidityInstruction(d.opts.DepositMint, d.wallet.PublicKey, plan.Amount, plan.MinOut)
	if err != nil {
		d.logger.Error("failed to build add liquidity instruction", zap.Error(err))
		return
	}
	instructions := []solana.Instruction{
		perps.SetComputeUnitPriceInstruction(perps.ToNative(d.opts.PriorityFeeUI, 9)),
		perps.SetComputeUnitLimitInstruction(perps.DepositComputeUnits),
		addLiquidity,
	}

	d.logger.Info("depositing",
		zap.Uint64("amount", plan.Amount),
		zap.Uint64("min_out", plan.MinOut))

	sig, err := d.submit.Submit(ctx, instructions)
	if err != nil {
		d.logger.Error("failed to send add liquidity tx", zap.Error(err))
		return
	}
	d.logger.Info("sent add liquidity", zap.String("signature", sig.String()))

	d.notifySwap(ctx)
}

// notifySwap queues a swap trigger for the completed deposit. A full buffer
// stalls the tick until the swap loop drains it; notifications carry no
// payload, so none may be dropped without losing a trigger.
func (d *Depositor) notifySwap(ctx context.Context) {
	select {
	case d.swapCh <- struct{}{}:
	case <-ctx.Done():
	}
}
