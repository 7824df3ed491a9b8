package perps

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePool(t *testing.T) {
	custodies := []solana.PublicKey{testPubkey(1), testPubkey(2)}
	data := encodePool(t, Pool{
		Name:      "Pool 1",
		Custodies: custodies,
		AumUsd:    900,
		Limit:     PoolLimit{MaxAumUsd: 1000},
	})

	pool, err := DecodePool(data)
	require.NoError(t, err)
	assert.Equal(t, "Pool 1", pool.Name)
	assert.Equal(t, custodies, pool.Custodies)
	assert.Equal(t, uint64(900), pool.AumUsd)
	assert.Equal(t, uint64(1000), pool.Limit.MaxAumUsd)
}

func TestDecodePool_BadDiscriminator(t *testing.T) {
	data := encodeCustody(t, Custody{Mint: testPubkey(1)})

	_, err := DecodePool(data)
	assert.ErrorIs(t, err, ErrBadDiscriminator)
}

func TestDecodePool_ShortData(t *testing.T) {
	_, err := DecodePool([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrBadDiscriminator)
}

func TestDecodeCustody(t *testing.T) {
	data := encodeCustody(t, Custody{
		Pool:         PoolAddress,
		Mint:         USDCTokenMint,
		TokenAccount: testPubkey(7),
		Decimals:     6,
		Oracle:       OracleParams{OracleAccount: testPubkey(8), OracleType: 1},
	})

	custody, err := DecodeCustody(data)
	require.NoError(t, err)
	assert.Equal(t, USDCTokenMint, custody.Mint)
	assert.Equal(t, testPubkey(7), custody.TokenAccount)
	assert.Equal(t, testPubkey(8), custody.Oracle.OracleAccount)
	assert.Equal(t, uint8(6), custody.Decimals)
}

func TestDecodeCustody_TruncatedPayload(t *testing.T) {
	data := encodeCustody(t, Custody{Mint: USDCTokenMint})

	_, err := DecodeCustody(data[:len(data)-4])
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadDiscriminator)
}
