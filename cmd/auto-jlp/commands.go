// ==============================
// File: cmd/auto-jlp/commands.go
// ==============================
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bonedaddy/auto-jlp/internal/config"
	"github.com/bonedaddy/auto-jlp/internal/jupiter"
	"github.com/bonedaddy/auto-jlp/internal/perps"
)

func checkLiquidity(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	client := cfg.RPCClient(log)
	w, err := cfg.Wallet()
	if err != nil {
		return err
	}
	keys, err := perps.LoadAccountKeys(ctx, client, perps.PerpetualsAddress, perps.PoolAddress)
	if err != nil {
		return fmt.Errorf("failed to load account keys: %w", err)
	}
	usdcATA, err := w.ATA(perps.USDCTokenMint)
	if err != nil {
		return err
	}
	live, err := keys.LoadAccounts(ctx, client, usdcATA)
	if err != nil {
		return fmt.Errorf("failed to load live accounts: %w", err)
	}

	var room uint64
	if live.HasCapacity() {
		room = live.Pool.Limit.MaxAumUsd - live.Pool.AumUsd
	}
	fmt.Printf("pool:          %s\n", live.Pool.Name)
	fmt.Printf("aum:           %d\n", live.Pool.AumUsd)
	fmt.Printf("aum limit:     %d\n", live.Pool.Limit.MaxAumUsd)
	fmt.Printf("deposit room:  %d\n", room)
	fmt.Printf("jlp price:     %f\n", live.JLPPrice())
	return nil
}

func swapTokens(cmd *cobra.Command, cfg *config.Config, log *zap.Logger) error {
	inputStr, _ := cmd.Flags().GetString("input-token")
	outputStr, _ := cmd.Flags().GetString("output-token")
	amountUI, _ := cmd.Flags().GetFloat64("swap-amount")
	decimals, _ := cmd.Flags().GetUint8("input-decimals")

	if _, err := solana.PublicKeyFromBase58(inputStr); err != nil {
		return fmt.Errorf("invalid input token %q: %w", inputStr, err)
	}
	if _, err := solana.PublicKeyFromBase58(outputStr); err != nil {
		return fmt.Errorf("invalid output token %q: %w", outputStr, err)
	}
	if amountUI <= 0 {
		return fmt.Errorf("swap amount must be positive, got %v", amountUI)
	}
	amount := perps.ToNative(amountUI, decimals)

	w, err := cfg.Wallet()
	if err != nil {
		return err
	}
	client := cfg.RPCClient(log)
	api := jupiter.NewClient()
	ctx := cmd.Context()

	quote, err := api.NewQuote(ctx, inputStr, outputStr, amount, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch quote: %w", err)
	}
	log.Info("quote received",
		zap.String("in_amount", quote.InAmount),
		zap.String("out_amount", quote.OutAmount))

	swap, err := api.NewSwap(ctx, quote, w.PublicKey.String(), true)
	if err != nil {
		return fmt.Errorf("failed to build swap: %w", err)
	}
	swapper := jupiter.NewSwapper(client, w, log)
	sig, err := swapper.ExecuteSwap(ctx, swap, false, 5, time.Second)
	if err != nil {
		return fmt.Errorf("swap failed: %w", err)
	}
	fmt.Printf("swap signature: %s\n", sig)
	return nil
}
