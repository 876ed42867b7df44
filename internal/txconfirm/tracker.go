// Package txconfirm tracks a single submitted transaction until it has
// accumulated a caller-chosen number of confirming blocks. Observation is
// driven either by a new-heads feed (push mode) or by a fixed-interval poll,
// and terminates on confirmation, on an exhausted check budget, or when the
// caller stops the tracker.
package txconfirm

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrTrackerAlreadyStarted is returned if Track is called more than once.
	// A tracker instance observes exactly one transaction for its lifetime.
	ErrTrackerAlreadyStarted = errors.New("tracker already started")

	// ErrConfirmationTimeout is wrapped into the terminal Event when the
	// configured check budget is spent before the transaction is confirmed.
	// It is advisory: the transaction may still confirm later.
	ErrConfirmationTimeout = errors.New("confirmation check budget exceeded")
)

const (
	defaultRequiredConfirmations = 12
	defaultMaxChecks             = 40
	defaultPollInterval          = 15 * time.Second

	eventChannelBufferSize = 5
)

// Service is the confirmation tracking entrypoint for one transaction.
type Service interface {
	// Track begins observing the given transaction hash and returns the
	// event stream. The stream delivers zero or more progress events, then
	// terminates: it is closed directly on confirmation or Stop, or closed
	// right after a single Event carrying the terminal error. Stream
	// termination releases the underlying feed subscription or timer,
	// whether or not Stop is ever called.
	//
	// Returns ErrTrackerAlreadyStarted on a second call.
	Track(ctx context.Context, txHash string) (<-chan Event, error)

	// Stop cancels the active observation and releases its feed or timer.
	// It is idempotent and a no-op after the stream has terminated.
	Stop()
}

type closeFunc func()

type tracker struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	reader ChainReader
	heads  HeadSubscriber // nil means the tracker polls

	requiredConfirmations int
	maxChecks             int
	pollInterval          time.Duration
}

var _ Service = (*tracker)(nil)

func (t *tracker) Track(ctx context.Context, txHash string) (<-chan Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.isStarted {
		return nil, ErrTrackerAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	eventCh := make(chan Event, eventChannelBufferSize)

	// The tracking goroutine owns the cancel: a terminal cycle releases its
	// feed subscription or timer even when the caller never calls Stop.
	if t.heads != nil {
		headsCh, err := t.heads.SubscribeNewHeads(ctx)
		if err != nil {
			cancel()
			return nil, err
		}

		go func() {
			defer cancel()
			t.trackByHeads(ctx, txHash, headsCh, eventCh)
		}()
	} else {
		go func() {
			defer cancel()
			t.trackByPolling(ctx, txHash, eventCh)
		}()
	}

	t.isStarted = true
	t.closeFunc = closeFunc(cancel)
	return eventCh, nil
}

func (t *tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closeFunc != nil {
		t.closeFunc()
	}
	t.closeFunc = nil
}

type config struct {
	heads                 HeadSubscriber
	requiredConfirmations int
	maxChecks             int
	pollInterval          time.Duration
}

// Option configures a tracker at construction time. The resulting
// configuration is immutable for the tracker's lifetime.
type Option func(*config)

// New creates a tracker for a single transaction using the given chain
// reader. Without options the tracker polls every 15 seconds, requires 12
// confirmations, and gives up after 40 checks.
func New(reader ChainReader, opts ...Option) *tracker {
	cfg := config{
		requiredConfirmations: defaultRequiredConfirmations,
		maxChecks:             defaultMaxChecks,
		pollInterval:          defaultPollInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &tracker{
		reader:                reader,
		heads:                 cfg.heads,
		requiredConfirmations: cfg.requiredConfirmations,
		maxChecks:             cfg.maxChecks,
		pollInterval:          cfg.pollInterval,
	}
}

// WithHeadSubscriber switches the tracker to push mode, driven by the given
// new-heads feed. This is the explicit capability flag: providers that cannot
// stream headers simply do not supply one and the tracker polls instead.
func WithHeadSubscriber(hs HeadSubscriber) Option {
	return func(c *config) {
		c.heads = hs
	}
}

// WithRequiredConfirmations sets how many confirming blocks must accumulate
// before the transaction counts as confirmed. Values below 1 are ignored.
func WithRequiredConfirmations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.requiredConfirmations = n
		}
	}
}

// WithMaxChecks sets the timeout budget as a number of observation cycles.
// Values below 1 are ignored.
func WithMaxChecks(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxChecks = n
		}
	}
}

// WithPollInterval sets the fixed period between polling cycles. It has no
// effect in push mode. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}
