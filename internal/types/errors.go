package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/SuperteamDAO/earn-sub007/internal/util"
)

var (
	// ErrAssetNotFound means the mint has no on-chain metadata or is not
	// owned by a known token program. Fatal for the request, never retried.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrPriceUnavailable means the oracle returned no usable USD price.
	// The fee calculation fails closed instead of charging zero.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrUpstreamUnavailable wraps RPC or oracle transport failures. The
	// caller may retry the whole request later.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrConfirmationTimeout means the fee payer's provisioning transaction
	// did not reach finality within the poll budget. The side effect is in
	// an indeterminate state and must not be assumed absent.
	ErrConfirmationTimeout = errors.New("confirmation timeout")
)

// ValidationError reports malformed or unacceptable request input. Always a
// client error, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientAmountError means the requested amount does not exceed the
// account-provisioning fee. MinimumAmount is the smallest viable amount in
// smallest units, so the client can show the user a floor.
type InsufficientAmountError struct {
	RequestedAmount uint64
	CreationFee     uint64
	Decimals        uint8
}

func (e *InsufficientAmountError) Error() string {
	minimum := util.FromBaseUnits(new(big.Int).SetUint64(e.MinimumAmount()), int(e.Decimals))
	return fmt.Sprintf(
		"amount %d does not cover account creation fee %d; minimum withdrawal is %s",
		e.RequestedAmount, e.CreationFee, minimum,
	)
}

// MinimumAmount is the smallest amount, in smallest units, that would have
// been accepted.
func (e *InsufficientAmountError) MinimumAmount() uint64 {
	return e.CreationFee + 1
}
