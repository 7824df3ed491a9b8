package perps

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/stretchr/testify/require"
)

// The byte layouts below are the contract with the on-chain program: an
// 8-byte discriminator followed by the borsh payload. Fixtures are produced
// by the symmetric encoders so decode changes that break the layout fail
// these tests rather than silently reinterpreting bytes.

func encodePool(t *testing.T, p Pool) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.Write(poolDiscriminator)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(p))
	return buf.Bytes()
}

func encodeCustody(t *testing.T, c Custody) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.Write(custodyDiscriminator)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(c))
	return buf.Bytes()
}

func encodeMint(t *testing.T, m token.Mint) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, m.MarshalWithEncoder(bin.NewBinEncoder(buf)))
	return buf.Bytes()
}

func encodeTokenAccount(t *testing.T, a token.Account) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, a.MarshalWithEncoder(bin.NewBinEncoder(buf)))
	return buf.Bytes()
}

// fakeLedger serves canned account bytes, standing in for the RPC node.
type fakeLedger struct {
	accounts map[solana.PublicKey][]byte
}

func (f *fakeLedger) GetAccountData(_ context.Context, account solana.PublicKey) ([]byte, error) {
	data, ok := f.accounts[account]
	if !ok {
		return nil, fmt.Errorf("account %s not found", account)
	}
	return data, nil
}

func (f *fakeLedger) GetMultipleAccountData(_ context.Context, accounts ...solana.PublicKey) ([][]byte, error) {
	data := make([][]byte, len(accounts))
	for i, account := range accounts {
		data[i] = f.accounts[account]
	}
	return data, nil
}

func testPubkey(seed byte) solana.PublicKey {
	var raw [32]byte
	for i := range raw {
		raw[i] = seed
	}
	return solana.PublicKeyFromBytes(raw[:])
}
