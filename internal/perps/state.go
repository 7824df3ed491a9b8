// =============================
// File: internal/perps/state.go
// =============================
package perps

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Account discriminators extracted from the IDL (sha256("account:<Name>")[:8]).
var (
	poolDiscriminator    = []byte{241, 154, 109, 4, 17, 177, 109, 188}
	custodyDiscriminator = []byte{1, 184, 48, 81, 93, 131, 63, 145}
)

var (
	// ErrBadDiscriminator means the account bytes do not start with the
	// expected 8-byte discriminator, i.e. the address points at something
	// other than the account type we asked for.
	ErrBadDiscriminator = errors.New("unexpected account discriminator")

	// ErrAccountNotFound means a batched read returned no data for one of
	// the requested addresses.
	ErrAccountNotFound = errors.New("account not found")
)

// Pool is the decoded on-chain pool account, restricted to the fields the
// depositor reads. AumUsd and Limit.MaxAumUsd share the program's 1e6
// fixed-point USD scale.
type Pool struct {
	Name      string
	Custodies []solana.PublicKey
	AumUsd    uint64
	Limit     PoolLimit
}

type PoolLimit struct {
	MaxAumUsd uint64
}

// Custody is the decoded custody account for one supported deposit asset.
type Custody struct {
	Pool         solana.PublicKey
	Mint         solana.PublicKey
	TokenAccount solana.PublicKey
	Decimals     uint8
	Oracle       OracleParams
}

type OracleParams struct {
	OracleAccount solana.PublicKey
	OracleType    uint8
}

// DecodePool parses a pool account. The 8-byte discriminator prefix is
// verified and skipped before the borsh payload.
func DecodePool(data []byte) (*Pool, error) {
	payload, err := stripDiscriminator(data, poolDiscriminator)
	if err != nil {
		return nil, fmt.Errorf("pool account: %w", err)
	}
	var pool Pool
	if err := bin.NewBorshDecoder(payload).Decode(&pool); err != nil {
		return nil, fmt.Errorf("failed to decode pool account: %w", err)
	}
	return &pool, nil
}

// DecodeCustody parses a custody account.
func DecodeCustody(data []byte) (*Custody, error) {
	payload, err := stripDiscriminator(data, custodyDiscriminator)
	if err != nil {
		return nil, fmt.Errorf("custody account: %w", err)
	}
	var custody Custody
	if err := bin.NewBorshDecoder(payload).Decode(&custody); err != nil {
		return nil, fmt.Errorf("failed to decode custody account: %w", err)
	}
	return &custody, nil
}

func stripDiscriminator(data, want []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("data too short (%d bytes): %w", len(data), ErrBadDiscriminator)
	}
	if !bytes.Equal(data[:8], want) {
		return nil, ErrBadDiscriminator
	}
	return data[8:], nil
}
