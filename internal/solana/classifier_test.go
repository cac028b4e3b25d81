package solana

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

func TestClassifyNativeSentinel(t *testing.T) {
	fetcher := &fakeAccountFetcher{}
	c := newClassifier(fetcher, NewMemoryCache())

	desc, err := c.Classify(context.Background(), types.NativeAssetSentinel)
	require.NoError(t, err)

	assert.True(t, desc.Native)
	assert.EqualValues(t, 9, desc.Decimals)
	assert.Equal(t, 0, fetcher.calls, "native sentinel must not touch the network")
}

func TestClassifyMint(t *testing.T) {
	tests := []struct {
		name    string
		program solana.PublicKey
	}{
		{name: "legacy SPL token", program: solana.TokenProgramID},
		{name: "token-2022", program: solana.Token2022ProgramID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mint := solana.NewWallet().PublicKey()
			fetcher := &fakeAccountFetcher{
				accounts: map[solana.PublicKey]*rpc.Account{
					mint: mintAccount(t, tt.program, 6),
				},
			}
			c := newClassifier(fetcher, NewMemoryCache())

			desc, err := c.Classify(context.Background(), mint.String())
			require.NoError(t, err)

			assert.Equal(t, mint, desc.Mint)
			assert.Equal(t, tt.program, desc.Program)
			assert.EqualValues(t, 6, desc.Decimals)
			assert.False(t, desc.Native)
		})
	}
}

func TestClassifyCacheCoherence(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	fetcher := &fakeAccountFetcher{
		accounts: map[solana.PublicKey]*rpc.Account{
			mint: mintAccount(t, solana.TokenProgramID, 8),
		},
	}
	c := newClassifier(fetcher, NewMemoryCache())

	first, err := c.Classify(context.Background(), mint.String())
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)

	second, err := c.Classify(context.Background(), mint.String())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "second classification must be served from cache")
}

func TestClassifyFailures(t *testing.T) {
	unknownMint := solana.NewWallet().PublicKey()
	wrongOwner := solana.NewWallet().PublicKey()

	fetcher := &fakeAccountFetcher{
		accounts: map[solana.PublicKey]*rpc.Account{
			wrongOwner: mintAccount(t, solana.SystemProgramID, 6),
		},
	}
	cache := NewMemoryCache()
	c := newClassifier(fetcher, cache)

	t.Run("missing mint", func(t *testing.T) {
		_, err := c.Classify(context.Background(), unknownMint.String())
		assert.ErrorIs(t, err, types.ErrAssetNotFound)
	})

	t.Run("not a token program owner", func(t *testing.T) {
		_, err := c.Classify(context.Background(), wrongOwner.String())
		assert.ErrorIs(t, err, types.ErrAssetNotFound)
	})

	t.Run("malformed address", func(t *testing.T) {
		_, err := c.Classify(context.Background(), "not-base58!!")
		var validationErr *types.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})

	t.Run("failures never populate the cache", func(t *testing.T) {
		_, ok := cache.Get(unknownMint)
		assert.False(t, ok)
		_, ok = cache.Get(wrongOwner)
		assert.False(t, ok)
	})
}
