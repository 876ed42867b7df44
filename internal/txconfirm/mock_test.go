package txconfirm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gabapcia/confirmtrack/internal/pkg/types"
)

const testEventTimeout = 2 * time.Second

// collectEvents reads the stream until it closes, failing the test if it
// does not terminate within the deadline.
func collectEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()

	var collected []Event
	deadline := time.After(testEventTimeout)

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, event)
		case <-deadline:
			t.Fatalf("event stream did not terminate, collected %d events so far", len(collected))
			return nil
		}
	}
}

func testHeader(height int64, hash, parentHash string) BlockHeader {
	return BlockHeader{
		Hash:       hash,
		ParentHash: parentHash,
		Number:     types.HexFromInt(height),
	}
}

// fakeChainReader is a scripted ChainReader for tests. Unset functions fail
// the call loudly by panicking, which keeps unexpected fetches visible.
type fakeChainReader struct {
	mu sync.Mutex

	fetchReceiptFunc     func(ctx context.Context, txHash string) (*Receipt, error)
	fetchBlockByHashFunc func(ctx context.Context, hash string) (BlockHeader, error)

	receiptCalls int
	blockCalls   int
}

func (f *fakeChainReader) FetchReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	f.mu.Lock()
	f.receiptCalls++
	f.mu.Unlock()

	return f.fetchReceiptFunc(ctx, txHash)
}

func (f *fakeChainReader) FetchBlockByHash(ctx context.Context, hash string) (BlockHeader, error) {
	f.mu.Lock()
	f.blockCalls++
	f.mu.Unlock()

	return f.fetchBlockByHashFunc(ctx, hash)
}

func (f *fakeChainReader) receiptCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.receiptCalls
}

// fakeHeadSubscriber hands out a prepared feed channel.
type fakeHeadSubscriber struct {
	subscribeFunc func(ctx context.Context) (<-chan HeadEvent, error)
}

func (f *fakeHeadSubscriber) SubscribeNewHeads(ctx context.Context) (<-chan HeadEvent, error) {
	return f.subscribeFunc(ctx)
}
