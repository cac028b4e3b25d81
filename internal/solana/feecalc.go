package solana

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/SuperteamDAO/earn-sub007/internal/jupiter"
	"github.com/SuperteamDAO/earn-sub007/internal/types"
	"github.com/SuperteamDAO/earn-sub007/internal/util"
)

// PriceSource quotes the current USD price of a mint.
type PriceSource interface {
	USDPrice(ctx context.Context, mint string) (decimal.Decimal, error)
}

type feeCalculator struct {
	prices              PriceSource
	creationCostLamport uint64
}

func newFeeCalculator(prices PriceSource, creationCostLamports uint64) *feeCalculator {
	return &feeCalculator{
		prices:              prices,
		creationCostLamport: creationCostLamports,
	}
}

// CreationFee converts the fixed lamport cost of provisioning a token
// account into the transferred asset's smallest unit, rounding up so the fee
// payer is never under-compensated. Fails closed when either price is
// unavailable; charging zero on a funds-movement path is not acceptable.
func (f *feeCalculator) CreationFee(ctx context.Context, mint solana.PublicKey, decimals uint8) (uint64, error) {
	solUSD, err := f.prices.USDPrice(ctx, jupiter.WrappedSolMint)
	if err != nil {
		return 0, fmt.Errorf("failed to price SOL: %w", err)
	}

	tokenUSD, err := f.prices.USDPrice(ctx, mint.String())
	if err != nil {
		return 0, fmt.Errorf("failed to price mint %s: %w", mint, err)
	}

	if !tokenUSD.IsPositive() {
		return 0, fmt.Errorf("mint %s has no positive USD price: %w", mint, types.ErrPriceUnavailable)
	}

	lamports := decimal.NewFromBigInt(new(big.Int).SetUint64(f.creationCostLamport), 0)
	costUSD := lamports.Shift(-util.SolDecimals).Mul(solUSD)

	fee := costUSD.Div(tokenUSD).Shift(int32(decimals)).Ceil()

	feeInt := fee.BigInt()
	if !feeInt.IsUint64() {
		return 0, fmt.Errorf("creation fee %s overflows smallest unit range", fee)
	}

	return feeInt.Uint64(), nil
}
