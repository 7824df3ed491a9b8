// =============================
// File: internal/perps/cache.go
// =============================
package perps

import (
	"context"
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// PDA seeds used by the perpetuals program.
var (
	transferAuthoritySeed = []byte("transfer_authority")
	eventAuthoritySeed    = []byte("__event_authority")
)

// CustodyKeys holds the cached addresses for one supported deposit asset.
type CustodyKeys struct {
	Account      solana.PublicKey
	Mint         solana.PublicKey
	TokenAccount solana.PublicKey
	Oracle       solana.PublicKey
}

// AccountKeys caches every address needed to build deposit instructions.
// Built once at startup and never mutated afterwards, so it is shared between
// the deposit and swap loops without locking.
type AccountKeys struct {
	Perpetuals        solana.PublicKey
	Pool              solana.PublicKey
	Program           solana.PublicKey
	Custodies         []CustodyKeys
	TransferAuthority solana.PublicKey
	EventAuthority    solana.PublicKey
}

// LiveAccounts is a point-in-time snapshot of the accounts consulted every
// tick. Each tick replaces the whole snapshot; fields are never updated in
// place.
type LiveAccounts struct {
	Pool             *Pool
	LPMint           token.Mint
	USDCTokenAccount token.Account
}

// LoadAccountKeys fetches the pool account, walks its custody list and
// derives the program authorities, producing the process-lifetime key cache.
func LoadAccountKeys(ctx context.Context, ledger Ledger, perpetuals, pool solana.PublicKey) (*AccountKeys, error) {
	data, err := ledger.GetAccountData(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool account %s: %w", pool, err)
	}
	poolAcct, err := DecodePool(data)
	if err != nil {
		return nil, err
	}

	custodies := make([]CustodyKeys, 0, len(poolAcct.Custodies))
	for _, custody := range poolAcct.Custodies {
		data, err := ledger.GetAccountData(ctx, custody)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch custody account %s: %w", custody, err)
		}
		custodyAcct, err := DecodeCustody(data)
		if err != nil {
			return nil, err
		}
		custodies = append(custodies, CustodyKeys{
			Account:      custody,
			Mint:         custodyAcct.Mint,
			TokenAccount: custodyAcct.TokenAccount,
			Oracle:       custodyAcct.Oracle.OracleAccount,
		})
	}

	transferAuthority, _, err := solana.FindProgramAddress([][]byte{transferAuthoritySeed}, ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive transfer authority: %w", err)
	}
	eventAuthority, _, err := solana.FindProgramAddress([][]byte{eventAuthoritySeed}, ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	return &AccountKeys{
		Perpetuals:        perpetuals,
		Pool:              pool,
		Program:           ProgramID,
		Custodies:         custodies,
		TransferAuthority: transferAuthority,
		EventAuthority:    eventAuthority,
	}, nil
}

// LoadAccounts reads the pool, the LP token mint and the designated deposit
// token account in one batched request and decodes each. A missing account in
// the batch response fails the whole snapshot; the caller abandons the tick.
func (ak *AccountKeys) LoadAccounts(ctx context.Context, ledger Ledger, usdcTokenAccount solana.PublicKey) (*LiveAccounts, error) {
	data, err := ledger.GetMultipleAccountData(ctx, ak.Pool, LPTokenMint, usdcTokenAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live accounts: %w", err)
	}
	for i, d := range data {
		if d == nil {
			return nil, fmt.Errorf("live account %d of 3: %w", i, ErrAccountNotFound)
		}
	}

	poolAcct, err := DecodePool(data[0])
	if err != nil {
		return nil, err
	}

	live := &LiveAccounts{Pool: poolAcct}
	if err := bin.NewBinDecoder(data[1]).Decode(&live.LPMint); err != nil {
		return nil, fmt.Errorf("failed to decode lp token mint: %w", err)
	}
	if err := bin.NewBinDecoder(data[2]).Decode(&live.USDCTokenAccount); err != nil {
		return nil, fmt.Errorf("failed to decode deposit token account: %w", err)
	}
	return live, nil
}

// CustodyForMint returns the cached custody entry for a deposit mint.
func (ak *AccountKeys) CustodyForMint(mint solana.PublicKey) (*CustodyKeys, bool) {
	for i := range ak.Custodies {
		if ak.Custodies[i].Mint.Equals(mint) {
			return &ak.Custodies[i], true
		}
	}
	return nil, false
}

// JLPPrice reproduces the program's own AUM-per-token accounting: pool AUM
// divided by the UI LP supply, brought back to the USD fixed-point scale.
func (la *LiveAccounts) JLPPrice() float64 {
	uiSupply := ToUI(la.LPMint.Supply, la.LPMint.Decimals)
	if uiSupply == 0 {
		return 0
	}
	return (float64(la.Pool.AumUsd) / uiSupply) / math.Pow10(int(la.LPMint.Decimals))
}

// HasCapacity reports whether the pool is below its AUM ceiling.
func (la *LiveAccounts) HasCapacity() bool {
	return la.Pool.AumUsd < la.Pool.Limit.MaxAumUsd
}
