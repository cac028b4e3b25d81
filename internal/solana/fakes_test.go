package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

// fakeAccountFetcher serves GetAccountInfo from a fixed map; unknown
// addresses get rpc.ErrNotFound like a real node.
type fakeAccountFetcher struct {
	accounts map[solana.PublicKey]*rpc.Account
	calls    int
}

func (f *fakeAccountFetcher) GetAccountInfo(_ context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	f.calls++
	acc, ok := f.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{Value: acc}, nil
}

type fakeBlockhashFetcher struct {
	blockhash solana.Hash
	calls     int
}

func (f *fakeBlockhashFetcher) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	f.calls++
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            f.blockhash,
			LastValidBlockHeight: 100,
		},
	}, nil
}

// fakePrices quotes fixed USD prices per mint; missing mints fail closed.
type fakePrices struct {
	prices map[string]decimal.Decimal
}

func (f *fakePrices) USDPrice(_ context.Context, mint string) (decimal.Decimal, error) {
	price, ok := f.prices[mint]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for mint %s: %w", mint, types.ErrPriceUnavailable)
	}
	return price, nil
}

// fakeTxSender records broadcast transactions and echoes back the fee
// payer's signature, like a node accepting the submission.
type fakeTxSender struct {
	sent []*solana.Transaction
	err  error
}

func (f *fakeTxSender) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if f.err != nil {
		return solana.Signature{}, f.err
	}
	f.sent = append(f.sent, tx)
	return tx.Signatures[0], nil
}

type fakeStatusFetcher struct {
	// statuses is consumed one element per poll; the last element repeats.
	statuses []*rpc.SignatureStatusesResult
	calls    int
}

func (f *fakeStatusFetcher) GetSignatureStatuses(_ context.Context, _ bool, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	idx := f.calls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.calls++
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{f.statuses[idx]},
	}, nil
}

// tokenAccount is a minimal existing account owned by the token program.
func tokenAccount(t *testing.T, owner solana.PublicKey) *rpc.Account {
	t.Helper()
	return accountFromJSON(t, owner, make([]byte, 165))
}

// mintAccount builds an SPL mint account with the given decimals, matching
// the 82-byte Mint layout (decimals at offset 44, initialized flag at 45).
func mintAccount(t *testing.T, owner solana.PublicKey, decimals uint8) *rpc.Account {
	t.Helper()
	data := make([]byte, 82)
	data[44] = decimals
	data[45] = 1
	return accountFromJSON(t, owner, data)
}

func accountFromJSON(t *testing.T, owner solana.PublicKey, data []byte) *rpc.Account {
	t.Helper()
	raw := fmt.Sprintf(
		`{"lamports":1461600,"owner":%q,"data":[%q,"base64"],"executable":false,"rentEpoch":0}`,
		owner.String(), base64.StdEncoding.EncodeToString(data),
	)
	var acc rpc.Account
	require.NoError(t, json.Unmarshal([]byte(raw), &acc))
	return &acc
}
