package txconfirm

import (
	"context"
	"fmt"

	"github.com/gabapcia/confirmtrack/internal/pkg/x/chflow"
)

// trackByHeads observes the transaction in push mode, driven by the
// new-heads feed. Each announcement runs exactly one observation cycle, and
// the next announcement is not consumed before the current cycle has fully
// resolved, so state mutation is strictly sequential.
//
// The feed's own ordering is trusted: announced headers are not re-checked
// for chain continuity the way polling re-checks fetched blocks. A provider
// that streams heads already serializes them along its canonical chain.
//
// The function owns eventCh and closes it on exit; closing is the stream's
// completion signal. Every send goes through chflow, so nothing is emitted
// once the tracking context has been canceled.
func (t *tracker) trackByHeads(ctx context.Context, txHash string, headsCh <-chan HeadEvent, eventCh chan<- Event) {
	defer close(eventCh)

	st := newTrackingState()
	for {
		head, ok := chflow.Receive(ctx, headsCh)
		if !ok {
			return
		}

		if head.Err != nil {
			chflow.Send(ctx, eventCh, Event{
				Confirmations: st.confirmations,
				Checks:        st.checks,
				Err:           head.Err,
			})
			return
		}

		next, done := t.observeHead(ctx, txHash, st, head.Header, eventCh)
		if done {
			return
		}

		st = next
	}
}

// observeHead runs one push-mode observation cycle for the announced header.
// It returns the updated state and whether the cycle was terminal.
//
// Cycle order matters and mirrors the counting rules exactly:
//
//  1. A height that was already processed ends the cycle immediately,
//     without a receipt fetch and without counting a check.
//  2. The receipt is fetched; a fetch failure is terminal and does not
//     count a check.
//  3. An existing receipt adds one confirmation and emits progress. Reaching
//     the target ends the cycle as confirmed before the check is counted.
//  4. The height is recorded as seen and the check counted; spending the
//     whole budget ends the cycle with the timeout error.
func (t *tracker) observeHead(ctx context.Context, txHash string, st trackingState, header BlockHeader, eventCh chan<- Event) (trackingState, bool) {
	height := header.Number.Int()
	if st.seenHeights.Contains(height) {
		return st, false
	}

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
		st.confirmations++
		st.lastReceipt = receipt

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

	st.seenHeights.Add(height)
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
