package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsufficientAmountError(t *testing.T) {
	err := &InsufficientAmountError{
		RequestedAmount: 300_000,
		CreationFee:     500_000,
		Decimals:        6,
	}

	assert.EqualValues(t, 500_001, err.MinimumAmount())
	assert.Contains(t, err.Error(), "minimum withdrawal is 0.500001")
}
