// =====================================
// File: internal/perps/computebudget.go
// =====================================
package perps

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var computeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	setComputeUnitLimit uint8 = 2
	setComputeUnitPrice uint8 = 3
)

// DepositComputeUnits is the unit limit requested for a deposit transaction.
const DepositComputeUnits uint32 = 400_000

// SetComputeUnitLimitInstruction caps the compute units of a transaction.
func SetComputeUnitLimitInstruction(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = setComputeUnitLimit
	binary.LittleEndian.PutUint32(data[1:], units)
	return solana.NewInstruction(computeBudgetProgramID, []*solana.AccountMeta{}, data)
}

// SetComputeUnitPriceInstruction sets the priority fee in micro-lamports per
// compute unit.
func SetComputeUnitPriceInstruction(microLamports uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = setComputeUnitPrice
	binary.LittleEndian.PutUint64(data[1:], microLamports)
	return solana.NewInstruction(computeBudgetProgramID, []*solana.AccountMeta{}, data)
}
