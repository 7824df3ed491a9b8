// =====================================
// File: internal/depositor/retry_test.go
// =====================================
package depositor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bonedaddy/auto-jlp/internal/wallet"
)

// fakeLedger scripts the remote surface for loop tests.
type fakeLedger struct {
	accounts  map[solana.PublicKey][]byte
	sendErrs  []error
	sendCalls int
	signature solana.Signature
}

func (f *fakeLedger) GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	if data, ok := f.accounts[account]; ok {
		return data, nil
	}
	return nil, errors.New("account not found")
}

func (f *fakeLedger) GetMultipleAccountData(ctx context.Context, accounts ...solana.PublicKey) ([][]byte, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeLedger) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return solana.Hash{1}, nil
}

func (f *fakeLedger) SendTransaction(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error) {
	call := f.sendCalls
	f.sendCalls++
	if call < len(f.sendErrs) && f.sendErrs[call] != nil {
		return solana.Signature{}, f.sendErrs[call]
	}
	return f.signature, nil
}

func (f *fakeLedger) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return f.SendTransaction(ctx, tx, false)
}

func transferInstruction(t *testing.T, w *wallet.Wallet) solana.Instruction {
	t.Helper()
	return solana.NewInstruction(
		solana.SystemProgramID,
		solana.AccountMetaSlice{solana.NewAccountMeta(w.PublicKey, true, true)},
		[]byte{2, 0, 0, 0},
	)
}

func TestSubmitRetriesUntilSuccess(t *testing.T) {
	w, err := wallet.Generate()
	require.NoError(t, err)

	want := solana.Signature{42}
	ledger := &fakeLedger{
		sendErrs:  []error{errors.New("node is behind"), errors.New("blockhash not found")},
		signature: want,
	}
	s := NewSubmitter(ledger, w, zap.NewNop(), 3, time.Millisecond)

	sig, err := s.Submit(context.Background(), []solana.Instruction{transferInstruction(t, w)})
	require.NoError(t, err)
	assert.Equal(t, want, sig)
	assert.Equal(t, 3, ledger.sendCalls)
}

func TestSubmitExhaustsAttempts(t *testing.T) {
	w, err := wallet.Generate()
	require.NoError(t, err)

	ledger := &fakeLedger{
		sendErrs: []error{
			errors.New("node is behind"),
			errors.New("node is behind"),
			errors.New("node is behind"),
		},
	}
	s := NewSubmitter(ledger, w, zap.NewNop(), 3, time.Millisecond)

	_, err = s.Submit(context.Background(), []solana.Instruction{transferInstruction(t, w)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted 3 attempts")
	assert.Equal(t, 3, ledger.sendCalls)
}

func TestNewSubmitterDefaults(t *testing.T) {
	w, err := wallet.Generate()
	require.NoError(t, err)

	s := NewSubmitter(&fakeLedger{}, w, zap.NewNop(), 0, 0)
	assert.Equal(t, DefaultSubmitAttempts, s.maxAttempts)
	assert.Equal(t, DefaultSubmitDelay, s.delay)
}
