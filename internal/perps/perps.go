// Package perps wraps the on-chain Jupiter perpetuals program: account
// decoding, the JLP pool account-key cache, deposit sizing and the
// add-liquidity instruction builder.
package perps

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Mainnet addresses of the perpetuals program and the JLP pool it owns.
var (
	ProgramID = solana.MustPublicKeyFromBase58("PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu")

	PerpetualsAddress = solana.MustPublicKeyFromBase58("H4ND9aYttUVLFmNypZqLjZ52FYiGvdEB45GmwNoKEjTj")
	PoolAddress       = solana.MustPublicKeyFromBase58("5BUwFW4nRbftYTDMbgxykoFWqWHPzahFSNAaaaJtVKsq")

	LPTokenMint   = solana.MustPublicKeyFromBase58("27G8MtK7VtTcCHkpASjSDdkWWYfoqT6ggEuKidVJidD4")
	USDCTokenMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

// Ledger is the subset of the RPC surface the cache reads through. The
// concrete implementation lives in internal/solclient; tests substitute a fake.
type Ledger interface {
	GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
	GetMultipleAccountData(ctx context.Context, accounts ...solana.PublicKey) ([][]byte, error)
}
