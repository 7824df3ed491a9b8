package wallet

import (
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromExport(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	restored, err := New(w.Export())
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey, restored.PublicKey)
}

func TestNew_RejectsBadKey(t *testing.T) {
	_, err := New("not base58 at all!!!")
	assert.Error(t, err)

	// valid base58 but wrong length
	_, err = New("3yZe7d")
	assert.Error(t, err)
}

func TestATA_Memoized(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	want, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	require.NoError(t, err)

	got, err := w.ATA(mint)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	again, err := w.ATA(mint)
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestATA_Concurrent(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)
	usdc := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	jlp := solana.MustPublicKeyFromBase58("27G8MtK7VtTcCHkpASjSDdkWWYfoqT6ggEuKidVJidD4")

	// the deposit and swap goroutines hit the cache at the same time
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		mint := usdc
		if i%2 == 0 {
			mint = jlp
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := w.ATA(mint)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestSignTransaction(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(
			solana.SystemProgramID,
			[]*solana.AccountMeta{{PublicKey: w.PublicKey, IsSigner: true, IsWritable: true}},
			[]byte{0},
		)},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey),
	)
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	assert.Len(t, tx.Signatures, 1)
	require.NoError(t, tx.VerifySignatures())
}
