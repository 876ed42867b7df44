package txconfirm

import (
	"context"
	"errors"
	"testing"

	"github.com/gabapcia/confirmtrack/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackByHeads(t *testing.T) {
	const txHash = "0xdeadbeef"

	t.Run("accumulates confirmations from the feed until the target", func(t *testing.T) {
		headsCh := make(chan HeadEvent, 3)
		headsCh <- HeadEvent{Header: testHeader(10, "0xa", "0x9")}
		headsCh <- HeadEvent{Header: testHeader(11, "0xb", "0xa")}
		headsCh <- HeadEvent{Header: testHeader(12, "0xc", "0xb")}
		close(headsCh)

		receipt := &Receipt{
			TransactionHash: txHash,
			BlockHash:       "0xa",
			BlockNumber:     types.HexFromInt(10),
			Status:          "0x1",
		}

		reader := &fakeChainReader{
			fetchReceiptFunc: func(ctx context.Context, hash string) (*Receipt, error) {
				assert.Equal(t, txHash, hash)
				return receipt, nil
			},
		}

		tr := New(reader, WithHeadSubscriber(&fakeHeadSubscriber{
			subscribeFunc: func(ctx context.Context) (<-chan HeadEvent, error) {
				return headsCh, nil
			},
		}), WithRequiredConfirmations(2))

		events, err := tr.Track(t.Context(), txHash)
		require.NoError(t, err)
		defer tr.Stop()

		collected := collectEvents(t, events)
		require.Len(t, collected, 2)

		assert.Equal(t, 1, collected[0].Confirmations)
		assert.Equal(t, 0, collected[0].Checks)
		assert.Equal(t, receipt, collected[0].Receipt)
		assert.NoError(t, collected[0].Err)

		assert.Equal(t, 2, collected[1].Confirmations)
		assert.Equal(t, 1, collected[1].Checks)
		assert.NoError(t, collected[1].Err)

		// the third announcement was never consumed
		assert.Equal(t, 2, reader.receiptCallCount())
	})

	t.Run("repeated height is skipped without a receipt fetch", func(t *testing.T) {
		headsCh := make(chan HeadEvent, 3)
		headsCh <- HeadEvent{Header: testHeader(10, "0xa", "0x9")}
		headsCh <- HeadEvent{Header: testHeader(10, "0xa2", "0x9")}
		headsCh <- HeadEvent{Header: testHeader(11, "0xb", "0xa")}
		close(headsCh)

		reader := &fakeChainReader{
			fetchReceiptFunc: func(ctx context.Context, hash string) (*Receipt, error) {
				return &Receipt{TransactionHash: txHash, BlockHash: "0xa"}, nil
			},
		}

		tr := New(reader, WithHeadSubscriber(&fakeHeadSubscriber{
			subscribeFunc: func(ctx context.Context) (<-chan HeadEvent, error) {
				return headsCh, nil
			},
		}), WithRequiredConfirmations(2))

		events, err := tr.Track(t.Context(), txHash)
		require.NoError(t, err)
		defer tr.Stop()

		collected := collectEvents(t, events)
		require.Len(t, collected, 2)
		assert.Equal(t, 2, collected[1].Confirmations)

		assert.Equal(t, 2, reader.receiptCallCount())
	})

	t.Run("receipt fetch failure terminates the stream", func(t *testing.T) {
		headsCh := make(chan HeadEvent, 2)
		headsCh <- HeadEvent{Header: testHeader(10, "0xa", "0x9")}
		headsCh <- HeadEvent{Header: testHeader(11, "0xb", "0xa")}
		close(headsCh)

		transportErr := errors.New("connection refused")

		reader := &fakeChainReader{
			fetchReceiptFunc: func(ctx context.Context, hash string) (*Receipt, error) {
				return nil, transportErr
			},
		}

		tr := New(reader, WithHeadSubscriber(&fakeHeadSubscriber{
			subscribeFunc: func(ctx context.Context) (<-chan HeadEvent, error) {
				return headsCh, nil
			},
		}))

		events, err := tr.Track(t.Context(), txHash)
		require.NoError(t, err)
		defer tr.Stop()

		collected := collectEvents(t, events)
		require.Len(t, collected, 1)
		assert.ErrorIs(t, collected[0].Err, transportErr)
		assert.Zero(t, collected[0].Confirmations)
		assert.Zero(t, collected[0].Checks)

		assert.Equal(t, 1, reader.receiptCallCount())
	})

	t.Run("feed failure is forwarded as the terminal event", func(t *testing.T) {
		feedErr := errors.New("websocket closed unexpectedly")

		headsCh := make(chan HeadEvent, 1)
		headsCh <- HeadEvent{Err: feedErr}
		close(headsCh)

		tr := New(&fakeChainReader{}, WithHeadSubscriber(&fakeHeadSubscriber{
			subscribeFunc: func(ctx context.Context) (<-chan HeadEvent, error) {
				return headsCh, nil
			},
		}))

		events, err := tr.Track(t.Context(), txHash)
		require.NoError(t, err)
		defer tr.Stop()

		collected := collectEvents(t, events)
		require.Len(t, collected, 1)
		assert.ErrorIs(t, collected[0].Err, feedErr)
	})

	t.Run("check budget runs out before confirmation", func(t *testing.T) {
		headsCh := make(chan HeadEvent, 3)
		headsCh <- HeadEvent{Header: testHeader(10, "0xa", "0x9")}
		headsCh <- HeadEvent{Header: testHeader(11, "0xb", "0xa")}
		headsCh <- HeadEvent{Header: testHeader(12, "0xc", "0xb")}
		close(headsCh)

		reader := &fakeChainReader{
			fetchReceiptFunc: func(ctx context.Context, hash string) (*Receipt, error) {
				return nil, nil // never mined
			},
		}

		tr := New(reader, WithHeadSubscriber(&fakeHeadSubscriber{
			subscribeFunc: func(ctx context.Context) (<-chan HeadEvent, error) {
				return headsCh, nil
			},
		}), WithMaxChecks(2))

		events, err := tr.Track(t.Context(), txHash)
		require.NoError(t, err)
		defer tr.Stop()

		collected := collectEvents(t, events)
		require.Len(t, collected, 1)
		assert.ErrorIs(t, collected[0].Err, ErrConfirmationTimeout)
		assert.Zero(t, collected[0].Confirmations)
		assert.Equal(t, 2, collected[0].Checks)
		assert.Nil(t, collected[0].Receipt)
	})

	t.Run("timeout event carries the best known receipt", func(t *testing.T) {
		headsCh := make(chan HeadEvent, 2)
		headsCh <- HeadEvent{Header: testHeader(10, "0xa", "0x9")}
		headsCh <- HeadEvent{Header: testHeader(11, "0xb", "0xa")}
		close(headsCh)

		receipt := &Receipt{TransactionHash: txHash, BlockHash: "0xa"}

		reader := &fakeChainReader{
			fetchReceiptFunc: func(ctx context.Context, hash string) (*Receipt, error) {
				return receipt, nil
			},
		}

		tr := New(reader, WithHeadSubscriber(&fakeHeadSubscriber{
			subscribeFunc: func(ctx context.Context) (<-chan HeadEvent, error) {
				return headsCh, nil
			},
		}), WithRequiredConfirmations(5), WithMaxChecks(2))

		events, err := tr.Track(t.Context(), txHash)
		require.NoError(t, err)
		defer tr.Stop()

		collected := collectEvents(t, events)
		require.Len(t, collected, 3)

		terminal := collected[2]
		assert.ErrorIs(t, terminal.Err, ErrConfirmationTimeout)
		assert.Equal(t, 2, terminal.Confirmations)
		assert.Equal(t, 2, terminal.Checks)
		assert.Equal(t, receipt, terminal.Receipt)
	})
}
