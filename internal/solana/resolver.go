package solana

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

// AccountRecord describes one owner's associated token account for a mint.
// Exists is fetched fresh per request and must never be cached.
type AccountRecord struct {
	Owner   solana.PublicKey
	Mint    solana.PublicKey
	Program solana.PublicKey
	Address solana.PublicKey
	Exists  bool
}

// DeriveAssociatedTokenAddress derives the canonical per-owner token account
// for any token program (legacy SPL or Token-2022). Pure function, no I/O.
func DeriveAssociatedTokenAddress(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			owner[:],
			tokenProgram[:],
			mint[:],
		},
		solana.SPLAssociatedTokenAccountProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("solana: failed to derive associated token address: %w", err)
	}
	return addr, nil
}

type accountResolver struct {
	rpcClient accountFetcher
}

func newAccountResolver(rpcClient accountFetcher) *accountResolver {
	return &accountResolver{
		rpcClient: rpcClient,
	}
}

// Resolve derives the associated account address and checks whether an
// account currently lives there. Absence of metadata means "does not exist",
// not an error.
func (r *accountResolver) Resolve(ctx context.Context, owner, mint, tokenProgram solana.PublicKey) (AccountRecord, error) {
	addr, err := DeriveAssociatedTokenAddress(owner, mint, tokenProgram)
	if err != nil {
		return AccountRecord{}, err
	}

	exists, err := r.accountExists(ctx, addr)
	if err != nil {
		return AccountRecord{}, err
	}

	return AccountRecord{
		Owner:   owner,
		Mint:    mint,
		Program: tokenProgram,
		Address: addr,
		Exists:  exists,
	}, nil
}

func (r *accountResolver) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	accountInfo, err := r.rpcClient.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("solana: failed to get account info: %w: %w", types.ErrUpstreamUnavailable, err)
	}
	return accountInfo.Value != nil, nil
}
