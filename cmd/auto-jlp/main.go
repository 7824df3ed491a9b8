// ==============================
// File: cmd/auto-jlp/main.go
// ==============================
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bonedaddy/auto-jlp/internal/config"
	"github.com/bonedaddy/auto-jlp/internal/depositor"
	"github.com/bonedaddy/auto-jlp/internal/jupiter"
	"github.com/bonedaddy/auto-jlp/internal/logger"
	"github.com/bonedaddy/auto-jlp/internal/perps"
)

func main() {
	var (
		configPath string
		debug      bool
	)

	root := &cobra.Command{
		Use:          "auto-jlp",
		Short:        "Automated liquidity provisioning for the Jupiter JLP pool",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "config file path")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	configNewCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a config file with a fresh keypair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keypairType, _ := cmd.Flags().GetString("keypair-type")
			cfg, err := config.New(keypairType)
			if err != nil {
				return err
			}
			if err := cfg.Save(configPath); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", configPath)
			return nil
		},
	}
	configNewCmd.Flags().String("keypair-type", "ed25519", "keypair type to generate")
	configCmd.AddCommand(configNewCmd)
	root.AddCommand(configCmd)

	checkCmd := &cobra.Command{
		Use:   "check-jlp-liquidity",
		Short: "Print the pool's assets under management and deposit capacity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(configPath, debug)
			if err != nil {
				return err
			}
			defer logger.Sync(log)
			return checkLiquidity(cmd.Context(), cfg, log)
		},
	}
	root.AddCommand(checkCmd)

	depositCmd := &cobra.Command{
		Use:   "auto-deposit",
		Short: "Run the capacity-aware deposit loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(configPath, debug)
			if err != nil {
				return err
			}
			defer logger.Sync(log)

			mintStr, _ := cmd.Flags().GetString("deposit-mint")
			mint, err := solana.PublicKeyFromBase58(mintStr)
			if err != nil {
				return fmt.Errorf("invalid deposit mint %q: %w", mintStr, err)
			}
			amount, _ := cmd.Flags().GetFloat64("deposit-amount")
			if amount <= 0 {
				return fmt.Errorf("deposit amount must be positive, got %v", amount)
			}
			force, _ := cmd.Flags().GetBool("force")
			skipCheck, _ := cmd.Flags().GetBool("skip-capacity-check")
			priorityFee, _ := cmd.Flags().GetFloat64("priority-fee")

			w, err := cfg.Wallet()
			if err != nil {
				return err
			}
			d := depositor.New(cfg.RPCClient(log), w, jupiter.NewClient(), log, depositor.Options{
				DepositMint:       mint,
				DepositAmountUI:   amount,
				Force:             force,
				SkipCapacityCheck: skipCheck,
				PriorityFeeUI:     priorityFee,
			})
			return d.Run(cmd.Context())
		},
	}
	depositCmd.Flags().String("deposit-mint", perps.USDCTokenMint.String(), "mint of the token to deposit")
	depositCmd.Flags().Float64("deposit-amount", 0, "deposit size per round, in UI units")
	depositCmd.Flags().Bool("force", false, "deposit the configured amount regardless of capacity or balance")
	depositCmd.Flags().Bool("skip-capacity-check", false, "size deposits without the capacity gate")
	depositCmd.Flags().Float64("priority-fee", 0, "priority fee in SOL per compute unit")
	root.AddCommand(depositCmd)

	swapCmd := &cobra.Command{
		Use:   "swap-tokens",
		Short: "Swap tokens once through the aggregator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(configPath, debug)
			if err != nil {
				return err
			}
			defer logger.Sync(log)
			return swapTokens(cmd, cfg, log)
		},
	}
	swapCmd.Flags().String("input-token", perps.LPTokenMint.String(), "mint of the token to sell")
	swapCmd.Flags().String("output-token", perps.USDCTokenMint.String(), "mint of the token to buy")
	swapCmd.Flags().Float64("swap-amount", 0, "amount to sell, in UI units")
	swapCmd.Flags().Uint8("input-decimals", 6, "decimals of the input token")
	root.AddCommand(swapCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func setup(configPath string, debug bool) (*config.Config, *zap.Logger, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Debug = debug
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Sync(log)
		return nil, nil, err
	}
	return cfg, log, nil
}
