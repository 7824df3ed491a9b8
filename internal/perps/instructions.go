// =============================
// File: internal/perps/instructions.go
// =============================
package perps

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Instruction discriminator extracted from the IDL
// (sha256("global:add_liquidity2")[:8]).
var addLiquidityDiscriminator = []byte{228, 162, 78, 28, 70, 219, 116, 115}

// ErrNoCustodyForMint means the requested deposit asset is not backed by any
// custody of the pool.
var ErrNoCustodyForMint = errors.New("pool has no custody for mint")

// AddLiquidityInstruction builds the deposit instruction for the given mint
// and owner. Amounts are in native units.
//
// After the fixed accounts the program expects every custody of the pool in
// cache order (writable only when it backs the deposit mint) followed by
// every custody's oracle account (read-only): it recomputes the AUM across
// all assets, not just the deposited one. Reordering or changing mutability
// of that suffix makes the program reject the transaction.
func (ak *AccountKeys) AddLiquidityInstruction(depositMint, owner solana.PublicKey, amount, minOut uint64) (solana.Instruction, error) {
	custody, ok := ak.CustodyForMint(depositMint)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCustodyForMint, depositMint)
	}

	fundingAccount, _, err := solana.FindAssociatedTokenAddress(owner, depositMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive funding account: %w", err)
	}
	lpTokenAccount, _, err := solana.FindAssociatedTokenAddress(owner, LPTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive lp token account: %w", err)
	}

	data := make([]byte, 8+8+8)
	copy(data[0:8], addLiquidityDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], amount)
	binary.LittleEndian.PutUint64(data[16:24], minOut)

	accountMetas := []*solana.AccountMeta{
		solana.NewAccountMeta(owner, true, true),
		solana.NewAccountMeta(fundingAccount, true, false),
		solana.NewAccountMeta(lpTokenAccount, true, false),
		solana.NewAccountMeta(ak.TransferAuthority, false, false),
		solana.NewAccountMeta(ak.Perpetuals, false, false),
		solana.NewAccountMeta(ak.Pool, true, false),
		solana.NewAccountMeta(custody.Account, true, false),
		solana.NewAccountMeta(custody.Oracle, false, false),
		solana.NewAccountMeta(custody.TokenAccount, true, false),
		solana.NewAccountMeta(LPTokenMint, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(ak.EventAuthority, false, false),
		solana.NewAccountMeta(ak.Program, false, false),
	}
	for _, c := range ak.Custodies {
		accountMetas = append(accountMetas, solana.NewAccountMeta(c.Account, c.Mint.Equals(depositMint), false))
	}
	for _, c := range ak.Custodies {
		accountMetas = append(accountMetas, solana.NewAccountMeta(c.Oracle, false, false))
	}

	return solana.NewInstruction(ak.Program, accountMetas, data), nil
}

// CreateLPTokenATAInstruction probes whether the owner already has an
// associated account for the LP token and returns a create instruction if
// not. Returns (nil, nil) when the account exists, so calling it on every
// startup is safe.
func (ak *AccountKeys) CreateLPTokenATAInstruction(ctx context.Context, ledger Ledger, owner solana.PublicKey) (solana.Instruction, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, LPTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive lp token ata: %w", err)
	}
	if _, err := ledger.GetAccountData(ctx, ata); err == nil {
		return nil, nil
	}
	return createAssociatedTokenAccountIdempotentInstruction(owner, owner, LPTokenMint, ata), nil
}

func createAssociatedTokenAccountIdempotentInstruction(payer, wallet, mint, ata solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: ata, IsWritable: true, IsSigner: false},
			{PublicKey: wallet, IsWritable: false, IsSigner: false},
			{PublicKey: mint, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		},
		[]byte{1}, // create idempotent
	)
}
