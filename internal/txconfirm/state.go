package txconfirm

import "github.com/gabapcia/confirmtrack/internal/pkg/types"

// trackingState is the whole mutable state of one confirmation tracking run.
//
// It is passed by value into each observation cycle and the updated copy is
// returned, so exactly one cycle at a time can ever touch it. Nothing here is
// shared between goroutines and no field survives the tracking run.
type trackingState struct {
	confirmations int             // blocks accepted as valid confirmations so far
	checks        int             // observation cycles counted against the timeout budget
	seenHeights   types.Set[int64] // block heights already processed (push mode)
	lastConfirmed *BlockHeader    // most recently accepted confirming block (poll mode)
	lastReceipt   *Receipt        // best known receipt, reported on timeout
}

func newTrackingState() trackingState {
	return trackingState{
		seenHeights: types.NewSet[int64](),
	}
}
