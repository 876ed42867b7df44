package txconfirm

import "context"

// ChainReader defines the read access the tracker needs on a blockchain node.
// Implementations live under internal/infra; every call may fail with a
// transport error and carries no ordering guarantee relative to other calls,
// so results must be tolerated even when they race with chain growth.
type ChainReader interface {
	// FetchReceipt retrieves the receipt for the given transaction hash.
	//
	// A nil Receipt with a nil error means the transaction has not been
	// mined yet; this is expected state, not a failure.
	FetchReceipt(ctx context.Context, txHash string) (*Receipt, error)

	// FetchBlockByHash retrieves the header of the block with the given hash.
	FetchBlockByHash(ctx context.Context, hash string) (BlockHeader, error)
}

// HeadEvent represents one announcement from a new-heads feed. It carries
// either the announced header or the error that broke the feed.
type HeadEvent struct {
	Header BlockHeader // announced block header (zero value if Err is set)
	Err    error       // feed failure (nil on success)
}

// HeadSubscriber is the optional push capability of a provider: a feed that
// proactively announces new block headers.
//
// A tracker constructed with a HeadSubscriber observes in push mode;
// without one it falls back to interval polling.
type HeadSubscriber interface {
	// SubscribeNewHeads starts the feed and returns its channel. The channel
	// is closed when ctx is canceled, which is also how the tracker
	// unsubscribes.
	SubscribeNewHeads(ctx context.Context) (<-chan HeadEvent, error)
}
