package ethereum

import (
	"context"
	"time"

	"github.com/gabapcia/confirmtrack/internal/pkg/types"
	"github.com/gabapcia/confirmtrack/internal/pkg/x/chflow"
	"github.com/gabapcia/confirmtrack/internal/txconfirm"
)

// headChannelBufferSize sizes the feed channel so a short burst of blocks
// (e.g. after a polling gap) does not stall the poll loop.
const headChannelBufferSize = 16

// fetchHeader retrieves one header by height, going through the configured
// retry when one is set. The feed re-attempts here because a missed header
// would silently skip an announcement; the tracker itself never retries.
func (c *client) fetchHeader(ctx context.Context, blockNumber types.Hex) (HeaderResponse, error) {
	if c.retry == nil {
		return c.getHeaderByNumber(ctx, blockNumber)
	}

	var header HeaderResponse
	err := c.retry.Execute(ctx, func() error {
		var fetchErr error
		header, fetchErr = c.getHeaderByNumber(ctx, blockNumber)
		return fetchErr
	})
	return header, err
}

// pollNewHeads announces every header from fromBlockNumber up to the node's
// latest known height, in ascending order.
//
// A failure to read the latest height is announced as a HeadEvent error and
// leaves fromBlockNumber unchanged so the next iteration re-checks the same
// range. A failure to fetch an individual header (after retries) is likewise
// announced as a HeadEvent error, and the iteration restarts from that height
// next time. All sends are context-aware so a canceled subscriber never
// blocks the feed goroutine.
//
// Returns the height the next iteration should start from.
func (c *client) pollNewHeads(ctx context.Context, fromBlockNumber types.Hex, headsCh chan<- txconfirm.HeadEvent) types.Hex {
	latestBlockNumber, err := c.getLatestBlockNumber(ctx)
	if err != nil {
		chflow.Send(ctx, headsCh, txconfirm.HeadEvent{Err: err})
		return fromBlockNumber
	}

	currentBlockNumber := fromBlockNumber
	for currentBlockNumber.Int() <= latestBlockNumber.Int() {
		header, err := c.fetchHeader(ctx, currentBlockNumber)
		if err != nil {
			chflow.Send(ctx, headsCh, txconfirm.HeadEvent{Err: err})
			return currentBlockNumber
		}

		if ok := chflow.Send(ctx, headsCh, txconfirm.HeadEvent{Header: header.toBlockHeader()}); !ok {
			return currentBlockNumber
		}

		currentBlockNumber = currentBlockNumber.Add(1)
	}

	return latestBlockNumber.Add(1)
}

// SubscribeNewHeads implements txconfirm.HeadSubscriber. The feed starts at
// the block after the latest height at subscription time and announces each
// subsequent header once, in order. The returned channel is closed when ctx
// is canceled.
func (c *client) SubscribeNewHeads(ctx context.Context) (<-chan txconfirm.HeadEvent, error) {
	latestBlockNumber, err := c.getLatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	startFromBlockNumber := latestBlockNumber.Add(1)

	headsCh := make(chan txconfirm.HeadEvent, headChannelBufferSize)
	go func() {
		defer close(headsCh)

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.headInterval):
				startFromBlockNumber = c.pollNewHeads(ctx, startFromBlockNumber, headsCh)
			}
		}
	}()

	return headsCh, nil
}
