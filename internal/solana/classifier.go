package solana

import (
	"context"
	"errors"
	"fmt"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

// AssetDescriptor identifies a fungible asset and the program governing it.
// Immutable for the lifetime of a mint, so descriptors are cacheable forever.
type AssetDescriptor struct {
	Mint     solana.PublicKey
	Decimals uint8
	Program  solana.PublicKey // zero value when Native
	Native   bool
}

// ClassifierCache stores mint classifications. Writes are idempotent (a
// mint's owning program never changes), so concurrent populates are safe.
type ClassifierCache interface {
	Get(mint solana.PublicKey) (AssetDescriptor, bool)
	Put(mint solana.PublicKey, desc AssetDescriptor)
}

type memoryCache struct {
	mu sync.RWMutex
	m  map[solana.PublicKey]AssetDescriptor
}

// NewMemoryCache returns the default unbounded in-process ClassifierCache.
func NewMemoryCache() ClassifierCache {
	return &memoryCache{m: make(map[solana.PublicKey]AssetDescriptor)}
}

func (c *memoryCache) Get(mint solana.PublicKey) (AssetDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	desc, ok := c.m[mint]
	return desc, ok
}

func (c *memoryCache) Put(mint solana.PublicKey, desc AssetDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[mint] = desc
}

type classifier struct {
	rpcClient accountFetcher
	cache     ClassifierCache
}

func newClassifier(rpcClient accountFetcher, cache ClassifierCache) *classifier {
	return &classifier{
		rpcClient: rpcClient,
		cache:     cache,
	}
}

// Classify resolves an asset address to its descriptor. The native sentinel
// is recognized by exact equality and never touches the network. For mints,
// the mint account's owner decides between legacy SPL and Token-2022; the
// base Mint layout is identical for both, so decimals decode the same way.
func (c *classifier) Classify(ctx context.Context, assetAddress string) (AssetDescriptor, error) {
	if assetAddress == types.NativeAssetSentinel {
		return AssetDescriptor{
			Decimals: 9,
			Native:   true,
		}, nil
	}

	mint, err := solana.PublicKeyFromBase58(assetAddress)
	if err != nil {
		return AssetDescriptor{}, &types.ValidationError{Field: "assetAddress", Reason: "not a valid address"}
	}

	if desc, ok := c.cache.Get(mint); ok {
		return desc, nil
	}

	accountInfo, err := c.rpcClient.GetAccountInfo(ctx, mint)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return AssetDescriptor{}, fmt.Errorf("solana: mint %s: %w", mint, types.ErrAssetNotFound)
		}
		return AssetDescriptor{}, fmt.Errorf("solana: failed to get mint account info: %w: %w", types.ErrUpstreamUnavailable, err)
	}

	if accountInfo.Value == nil {
		return AssetDescriptor{}, fmt.Errorf("solana: mint %s: %w", mint, types.ErrAssetNotFound)
	}

	owner := accountInfo.Value.Owner
	if owner != solana.TokenProgramID && owner != solana.Token2022ProgramID {
		return AssetDescriptor{}, fmt.Errorf(
			"solana: account %s is owned by %s, not a token program: %w",
			mint, owner, types.ErrAssetNotFound,
		)
	}

	data := accountInfo.Value.Data.GetBinary()
	var mintData token.Mint
	if err := mintData.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return AssetDescriptor{}, fmt.Errorf("solana: failed to deserialize mint data: %w", err)
	}

	desc := AssetDescriptor{
		Mint:     mint,
		Decimals: mintData.Decimals,
		Program:  owner,
	}
	c.cache.Put(mint, desc)

	return desc, nil
}
