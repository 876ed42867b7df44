package txconfirm

import "context"

// ProgressNotifier publishes confirmation progress to an external system,
// e.g. a message channel other services subscribe to.
//
// The tracker itself never calls a notifier: publishing is the stream
// consumer's concern, so a notifier failure cannot disturb an observation in
// flight. The port lives here because the payload is this package's Event.
type ProgressNotifier interface {
	// NotifyProgress delivers one emitted event for the given transaction.
	//
	// Implementations must treat the call as fire-and-forget from the
	// tracker's point of view: an error aborts nothing upstream.
	NotifyProgress(ctx context.Context, txHash string, event Event) error
}

// NopProgressNotifier discards all progress events. It is the default sink
// for callers that only consume the stream directly.
type NopProgressNotifier struct{}

var _ ProgressNotifier = (*NopProgressNotifier)(nil)

// NotifyProgress implements ProgressNotifier and does nothing.
func (NopProgressNotifier) NotifyProgress(context.Context, string, Event) error {
	return nil
}
