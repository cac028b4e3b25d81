package solana

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// txBuilder attaches a fresh blockhash to an instruction plan, signs as the
// fee payer, and serializes. It holds the fee payer's key only; the sender's
// signature slot stays open, so this component can never move user funds on
// its own.
type txBuilder struct {
	rpcClient blockhashFetcher
	feePayer  solana.PrivateKey
}

func newTxBuilder(rpcClient blockhashFetcher, feePayer solana.PrivateKey) *txBuilder {
	return &txBuilder{
		rpcClient: rpcClient,
		feePayer:  feePayer,
	}
}

// BuildPartiallySigned builds a transaction the sender must co-sign before
// broadcast. A new blockhash is fetched on every call; reusing one past its
// expiry window gets the transaction rejected on-chain.
func (b *txBuilder) BuildPartiallySigned(ctx context.Context, ixs []solana.Instruction) (string, error) {
	tx, err := b.build(ctx, ixs)
	if err != nil {
		return "", err
	}

	_, err = tx.PartialSign(b.feePayerOnly())
	if err != nil {
		return "", fmt.Errorf("solana: failed to sign as fee payer: %w", err)
	}

	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("solana: failed to marshal transaction: %w", err)
	}

	return base64.StdEncoding.EncodeToString(txBytes), nil
}

// BuildSelfSigned builds a transaction the fee payer signs entirely. Used
// for the fee payer's own account provisioning, where it is the only
// required signer.
func (b *txBuilder) BuildSelfSigned(ctx context.Context, ixs []solana.Instruction) (*solana.Transaction, error) {
	tx, err := b.build(ctx, ixs)
	if err != nil {
		return nil, err
	}

	_, err = tx.Sign(b.feePayerOnly())
	if err != nil {
		return nil, fmt.Errorf("solana: failed to sign transaction: %w", err)
	}

	return tx, nil
}

func (b *txBuilder) build(ctx context.Context, ixs []solana.Instruction) (*solana.Transaction, error) {
	block, err := b.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("solana: failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		ixs,
		block.Value.Blockhash,
		solana.TransactionPayer(b.feePayer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("solana: failed to create transaction: %w", err)
	}

	return tx, nil
}

// feePayerOnly returns key material for the fee payer and nil for every
// other required signer, leaving their slots unsigned.
func (b *txBuilder) feePayerOnly() func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(b.feePayer.PublicKey()) {
			k := b.feePayer
			return &k
		}
		return nil
	}
}
