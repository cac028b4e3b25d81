package solana

import "time"

// Config collects the chain-specific tunables so environment-specific tuning
// never requires code changes.
type Config struct {
	RpcURL string `envconfig:"SOLANA_RPC_URL" required:"true"`

	// Compute budget attached to token transfers.
	ComputeUnitLimit              uint32 `envconfig:"SOLANA_COMPUTE_UNIT_LIMIT" default:"200000"`
	ComputeUnitPriceMicroLamports uint64 `envconfig:"SOLANA_COMPUTE_UNIT_PRICE" default:"10000"`

	// Lamports charged for provisioning a recipient token account: rent for
	// a 165-byte token account plus margin so the fee payer is never
	// under-compensated.
	AtaCreationCostLamports uint64 `envconfig:"SOLANA_ATA_CREATION_COST_LAMPORTS" default:"2100000"`

	// Confirmation poll budget for the fee payer's own provisioning
	// transaction.
	PollInterval    time.Duration `envconfig:"SOLANA_POLL_INTERVAL" default:"2s"`
	PollMaxAttempts int           `envconfig:"SOLANA_POLL_MAX_ATTEMPTS" default:"30"`
}
