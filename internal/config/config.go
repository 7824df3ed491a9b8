// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bonedaddy/auto-jlp/internal/solclient"
	"github.com/bonedaddy/auto-jlp/internal/wallet"
)

const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

// Config is the persisted configuration: the signing key material and the
// RPC endpoint the agent talks to.
type Config struct {
	Keypair     string `mapstructure:"keypair"`
	KeypairType string `mapstructure:"keypair_type"`
	RPCURL      string `mapstructure:"rpc_url"`
}

// New generates a configuration with a fresh keypair.
func New(keypairType string) (*Config, error) {
	w, err := wallet.Generate()
	if err != nil {
		return nil, err
	}
	return &Config{
		Keypair:     w.Export(),
		KeypairType: keypairType,
		RPCURL:      DefaultRPCURL,
	}, nil
}

// Load reads and validates the configuration file at path. The RPC endpoint
// can be overridden with AUTO_JLP_RPC_URL.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("rpc_url", DefaultRPCURL)

	v.SetEnvPrefix("AUTO_JLP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if envRPC := v.GetString("RPC_URL"); envRPC != "" {
		cfg.RPCURL = envRPC
	}

	return &cfg, validate(&cfg)
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.Set("keypair", c.Keypair)
	v.Set("keypair_type", c.KeypairType)
	v.Set("rpc_url", c.RPCURL)
	return v.WriteConfigAs(path)
}

// Wallet builds the signing wallet from the stored key material.
func (c *Config) Wallet() (*wallet.Wallet, error) {
	return wallet.New(c.Keypair)
}

// RPCClient builds the ledger client for the configured endpoint.
func (c *Config) RPCClient(logger *zap.Logger) *solclient.Client {
	return solclient.New(c.RPCURL, logger)
}

func validate(cfg *Config) error {
	if cfg.Keypair == "" {
		return errors.New("missing keypair in configuration")
	}
	if cfg.RPCURL == "" {
		return errors.New("missing rpc_url in configuration")
	}
	parsed, err := url.Parse(cfg.RPCURL)
	if err != nil || !strings.HasPrefix(parsed.Scheme, "http") {
		return errors.New("invalid RPC URL protocol")
	}
	return nil
}
