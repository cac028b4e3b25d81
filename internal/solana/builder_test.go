package solana

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPartiallySigned(t *testing.T) {
	feePayer := solana.NewWallet().PrivateKey
	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()

	fetcher := &fakeBlockhashFetcher{blockhash: solana.Hash{1, 2, 3}}
	b := newTxBuilder(fetcher, feePayer)

	ix := system.NewTransferInstruction(1_000, sender, recipient).Build()

	serialized, err := b.BuildPartiallySigned(context.Background(), []solana.Instruction{ix})
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls, "one fresh blockhash per build")

	txBytes, err := base64.StdEncoding.DecodeString(serialized)
	require.NoError(t, err)
	tx, err := solana.TransactionFromBytes(txBytes)
	require.NoError(t, err)

	// Fee payer signed and sender both required; only the fee payer's slot
	// is populated. The sender co-signs out of band before broadcast.
	require.EqualValues(t, 2, tx.Message.Header.NumRequiredSignatures)
	require.Len(t, tx.Signatures, 2)

	assert.Equal(t, feePayer.PublicKey(), tx.Message.AccountKeys[0], "fee payer pays chain fees")

	signed := 0
	for _, sig := range tx.Signatures {
		if !sig.IsZero() {
			signed++
		}
	}
	assert.Equal(t, 1, signed, "exactly the fee payer's signature present")

	// The fee payer's signature must verify against the message.
	msgBytes, err := tx.Message.MarshalBinary()
	require.NoError(t, err)
	assert.True(t, tx.Signatures[0].Verify(feePayer.PublicKey(), msgBytes))
}

func TestBuildPartiallySignedFreshBlockhashPerCall(t *testing.T) {
	feePayer := solana.NewWallet().PrivateKey
	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()

	fetcher := &fakeBlockhashFetcher{blockhash: solana.Hash{9}}
	b := newTxBuilder(fetcher, feePayer)

	ix := system.NewTransferInstruction(1, sender, recipient).Build()

	_, err := b.BuildPartiallySigned(context.Background(), []solana.Instruction{ix})
	require.NoError(t, err)
	_, err = b.BuildPartiallySigned(context.Background(), []solana.Instruction{ix})
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls)
}

func TestBuildSelfSigned(t *testing.T) {
	feePayer := solana.NewWallet().PrivateKey

	fetcher := &fakeBlockhashFetcher{blockhash: solana.Hash{7}}
	b := newTxBuilder(fetcher, feePayer)

	// Fee payer provisioning its own account: sole required signer.
	mint := solana.NewWallet().PublicKey()
	ata, err := DeriveAssociatedTokenAddress(feePayer.PublicKey(), mint, solana.TokenProgramID)
	require.NoError(t, err)

	ix := createATAInstruction(feePayer.PublicKey(), ata, feePayer.PublicKey(), mint, solana.TokenProgramID)

	tx, err := b.BuildSelfSigned(context.Background(), []solana.Instruction{ix})
	require.NoError(t, err)

	require.EqualValues(t, 1, tx.Message.Header.NumRequiredSignatures)
	require.Len(t, tx.Signatures, 1)
	assert.False(t, tx.Signatures[0].IsZero())
}
