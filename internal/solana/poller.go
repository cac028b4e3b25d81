package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

// PollOutcome is the terminal state of a confirmation poll. TimedOut is
// distinct from Failed: the transaction may still confirm after the poller
// gives up, so the outcome is unknown rather than rejected.
type PollOutcome string

const (
	PollConfirmed PollOutcome = "confirmed"
	PollFailed    PollOutcome = "failed"
	PollTimedOut  PollOutcome = "timed_out"
)

type confirmationPoller struct {
	rpcClient   statusFetcher
	interval    time.Duration
	maxAttempts int
}

func newConfirmationPoller(rpcClient statusFetcher, interval time.Duration, maxAttempts int) *confirmationPoller {
	return &confirmationPoller{
		rpcClient:   rpcClient,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// WaitConfirmed polls signature status at a fixed interval until the
// transaction is confirmed, rejected on-chain, or the attempt budget runs
// out. Status fetch errors consume an attempt and the loop keeps going; the
// chain may simply not have observed the signature yet.
func (p *confirmationPoller) WaitConfirmed(ctx context.Context, sig solana.Signature) (PollOutcome, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		out, err := p.rpcClient.GetSignatureStatuses(ctx, true, sig)
		if err != nil || out == nil || len(out.Value) == 0 {
			continue
		}

		status := out.Value[0]
		if status == nil {
			// Not observed yet, keep polling.
			continue
		}

		if status.Err != nil {
			return PollFailed, fmt.Errorf("solana: transaction %s failed on-chain: %v", sig, status.Err)
		}

		if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return PollConfirmed, nil
		}
	}

	return PollTimedOut, fmt.Errorf("solana: transaction %s not confirmed after %d attempts: %w",
		sig, p.maxAttempts, types.ErrConfirmationTimeout)
}
