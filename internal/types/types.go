package types

import "encoding/json"

// WithdrawalRequest is the caller's intent to move value out of their wallet.
// Amount is in human-readable units of the asset; AssetAddress is either a
// token mint or the native SOL sentinel.
type WithdrawalRequest struct {
	RecipientAddress string `json:"recipientAddress"`
	Amount           string `json:"amount"`
	AssetAddress     string `json:"assetAddress"`
}

// UnmarshalJSON accepts the amount as either a decimal string or a JSON
// number, normalizing both to the string form the rest of the pipeline
// parses.
func (r *WithdrawalRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		RecipientAddress string      `json:"recipientAddress"`
		Amount           json.Number `json:"amount"`
		AssetAddress     string      `json:"assetAddress"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.RecipientAddress = raw.RecipientAddress
	r.Amount = raw.Amount.String()
	r.AssetAddress = raw.AssetAddress
	return nil
}

// WithdrawalEnvelope is what the caller gets back: a partially signed
// transaction (fee payer signed, sender slot open) plus the fee disclosure.
// ReceiverAccountExisted reflects state before this transaction.
type WithdrawalEnvelope struct {
	SerializedTransaction  string `json:"serializedTransaction"`
	ReceiverAccountExisted bool   `json:"receiverAccountExisted"`
	AccountCreationCost    uint64 `json:"accountCreationCost"`
}

// NativeAssetSentinel marks a withdrawal of SOL rather than an SPL token.
const NativeAssetSentinel = "SOL"
