// Package ethereum implements the txconfirm chain ports for
// Ethereum-compatible nodes using a JSON-RPC client. It provides receipt and
// header lookups plus a new-heads feed built on top of block number polling.
package ethereum

import (
	"time"

	"github.com/gabapcia/confirmtrack/internal/pkg/resilience/retry"
	"github.com/gabapcia/confirmtrack/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/confirmtrack/internal/txconfirm"
)

// averageBlockTime defines the expected time between blocks in Ethereum.
// It is the default cadence of the new-heads feed.
const averageBlockTime = 12 * time.Second

// client talks to an Ethereum node over JSON-RPC. It satisfies both chain
// ports: readers use it for receipts and headers, and trackers in push mode
// use it as the new-heads feed.
type client struct {
	conn jsonrpc.Client // Underlying JSON-RPC client used to interact with the node

	headInterval time.Duration // polling cadence of the new-heads feed
	retry        retry.Retry   // optional recovery for head fetches inside the feed
}

var (
	_ txconfirm.ChainReader    = (*client)(nil)
	_ txconfirm.HeadSubscriber = (*client)(nil)
)

type config struct {
	headInterval time.Duration
	retry        retry.Retry
}

// Option configures the Ethereum client.
type Option func(*config)

// NewClient creates an Ethereum blockchain client using the provided
// JSON-RPC connection.
func NewClient(conn jsonrpc.Client, opts ...Option) *client {
	cfg := config{
		headInterval: averageBlockTime,
		retry:        nil,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		conn:         conn,
		headInterval: cfg.headInterval,
		retry:        cfg.retry,
	}
}

// WithHeadInterval overrides how often the new-heads feed checks the node
// for chain growth. Default: 12 seconds, the Ethereum average block time.
func WithHeadInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.headInterval = d
		}
	}
}

// WithRetry makes the new-heads feed re-attempt failed header fetches before
// reporting them on the feed. Receipt and header lookups made on behalf of a
// tracker are not retried: the tracker's error contract owns those failures.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}
