package util

import (
	"fmt"
	"math/big"
	"strings"
)

// SolDecimals is the decimal precision of native SOL (1 SOL = 1e9 lamports).
const SolDecimals = 9

// ToBaseUnits converts a human-readable amount to base units
// e.g., "10" USDC (6 decimals) -> "10000000"
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	negative := false
	if strings.HasPrefix(amount, "-") {
		negative = true
		amount = amount[1:]
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	whole := parts[0]
	frac := ""
	if len(parts) > 1 {
		frac = parts[1]
	}

	// Pad or truncate fractional part to decimals length
	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	combined := whole + frac

	// Remove leading zeros (but keep at least one digit)
	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		combined = "0"
	}

	result, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}

	if negative {
		result.Neg(result)
	}

	return result, nil
}

// FromBaseUnits converts base units to a human-readable amount
// e.g., "10000000" with 6 decimals -> "10"
func FromBaseUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	str := amount.String()
	negative := false
	if strings.HasPrefix(str, "-") {
		negative = true
		str = str[1:]
	}

	if len(str) <= decimals {
		str = strings.Repeat("0", decimals-len(str)+1) + str
	}

	insertPos := len(str) - decimals
	whole := str[:insertPos]
	frac := strings.TrimRight(str[insertPos:], "0")

	result := whole
	if frac != "" {
		result = whole + "." + frac
	}

	if negative {
		result = "-" + result
	}

	return result
}
