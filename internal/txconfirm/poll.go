package txconfirm

import (
	"context"
	"fmt"
	"time"

	"github.com/gabapcia/confirmtrack/internal/pkg/x/chflow"
)

// trackByPolling observes the transaction in poll mode on a fixed period.
// The timer for the next cycle only starts after the previous cycle has
// fully resolved, so cycles never overlap and confirmations cannot be
// double counted by slow fetches.
//
// The function owns eventCh and closes it on exit; closing is the stream's
// completion signal.
func (t *tracker) trackByPolling(ctx context.Context, txHash string, eventCh chan<- Event) {
	defer close(eventCh)

	st := newTrackingState()
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(t.pollInterval):
		}

		next, done := t.observeTick(ctx, txHash, st, eventCh)
		if done {
			return
		}

		st = next
	}
}

// observeTick runs one poll-mode observation cycle. It returns the updated
// state and whether the cycle was terminal.
//
// Unlike push mode there is no ordered feed to trust, so each cycle re-reads
// the receipt and validates the block it points at against the previously
// accepted confirming block:
//
//   - The first block found is accepted unconditionally and anchors the
//     continuity chain.
//   - Later blocks are accepted only when chain-continuous with and strictly
//     taller than the anchor; anything else is a reorganized or stale view
//     and is skipped silently, leaving state untouched for the next tick.
//
// Any fetch failure is terminal and is reported before the check would have
// been counted. The check counts on every non-failing cycle, receipt or not.
func (t *tracker) observeTick(ctx context.Context, txHash string, st trackingState, eventCh chan<- Event) (trackingState, bool) {
	receipt, err := t.reader.FetchReceipt(ctx, txHash)
	if err != nil {
		chflow.Send(ctx, eventCh, Event{
			Confirmations: st.confirmations,
			Checks:        st.checks,
			Err:           err,
		})
		return st, true
	}

	if receipt != nil {
		block, err := t.reader.FetchBlockByHash(ctx, receipt.BlockHash)
		if err != nil {
			chflow.Send(ctx, eventCh, Event{
				Confirmations: st.confirmations,
				Checks:        st.checks,
				Err:           err,
			})
			return st, true
		}

		if st.lastConfirmed == nil || isValidConfirmation(*st.lastConfirmed, block) {
			st.lastConfirmed = &block
			st.lastReceipt = receipt
			st.confirmations++

			if ok := chflow.Send(ctx, eventCh, Event{
				Receipt:       receipt,
				Confirmations: st.confirmations,
				Checks:        st.checks,
			}); !ok {
				return st, true
			}

			if isConfirmed(st.confirmations, t.requiredConfirmations) {
				return st, true
			}
		}
	}

	st.checks++

	if isTimeoutExceeded(st.checks, t.maxChecks) {
		chflow.Send(ctx, eventCh, Event{
			Receipt:       st.lastReceipt,
			Confirmations: st.confirmations,
			Checks:        st.checks,
			Err:           fmt.Errorf("%w: %d checks performed", ErrConfirmationTimeout, st.checks),
		})
		return st, true
	}

	return st, false
}
