package solana

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

func TestWaitConfirmed(t *testing.T) {
	sig := solana.Signature{}

	t.Run("pending then confirmed", func(t *testing.T) {
		fetcher := &fakeStatusFetcher{statuses: []*rpc.SignatureStatusesResult{
			nil, // not yet observed
			{ConfirmationStatus: rpc.ConfirmationStatusProcessed},
			{ConfirmationStatus: rpc.ConfirmationStatusConfirmed},
		}}
		p := newConfirmationPoller(fetcher, time.Millisecond, 10)

		outcome, err := p.WaitConfirmed(context.Background(), sig)
		require.NoError(t, err)
		assert.Equal(t, PollConfirmed, outcome)
		assert.Equal(t, 3, fetcher.calls)
	})

	t.Run("finalized counts as confirmed", func(t *testing.T) {
		fetcher := &fakeStatusFetcher{statuses: []*rpc.SignatureStatusesResult{
			{ConfirmationStatus: rpc.ConfirmationStatusFinalized},
		}}
		p := newConfirmationPoller(fetcher, time.Millisecond, 10)

		outcome, err := p.WaitConfirmed(context.Background(), sig)
		require.NoError(t, err)
		assert.Equal(t, PollConfirmed, outcome)
	})

	t.Run("on-chain rejection", func(t *testing.T) {
		fetcher := &fakeStatusFetcher{statuses: []*rpc.SignatureStatusesResult{
			{Err: map[string]any{"InstructionError": []any{0, "Custom"}}},
		}}
		p := newConfirmationPoller(fetcher, time.Millisecond, 10)

		outcome, err := p.WaitConfirmed(context.Background(), sig)
		require.Error(t, err)
		assert.Equal(t, PollFailed, outcome)
		assert.NotErrorIs(t, err, types.ErrConfirmationTimeout)
	})

	t.Run("attempt budget exhausted", func(t *testing.T) {
		fetcher := &fakeStatusFetcher{statuses: []*rpc.SignatureStatusesResult{
			{ConfirmationStatus: rpc.ConfirmationStatusProcessed},
		}}
		p := newConfirmationPoller(fetcher, time.Millisecond, 5)

		outcome, err := p.WaitConfirmed(context.Background(), sig)
		assert.ErrorIs(t, err, types.ErrConfirmationTimeout)
		assert.Equal(t, PollTimedOut, outcome)
		assert.Equal(t, 5, fetcher.calls)
	})

	t.Run("cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fetcher := &fakeStatusFetcher{statuses: []*rpc.SignatureStatusesResult{nil}}
		p := newConfirmationPoller(fetcher, time.Hour, 10)

		_, err := p.WaitConfirmed(ctx, sig)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, fetcher.calls)
	})
}
