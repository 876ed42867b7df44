package cli

import (
	"context"
	"os"

	"github.com/gabapcia/confirmtrack/internal/txconfirm"

	"github.com/urfave/cli/v3"
)

// TrackerFactory builds a fresh tracker for one invocation. A tracker
// observes exactly one transaction, so every command run needs its own
// instance; extra options extend (and may override) the factory's defaults.
type TrackerFactory func(opts ...txconfirm.Option) txconfirm.Service

// Run initializes and executes the confirmtrack CLI application.
//
// It registers the available commands:
//
//   - `track`: Follows a transaction until confirmed, timed out, or interrupted.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - newTracker: Factory producing a tracker per invocation.
//   - notifier: Sink receiving every emitted progress event.
//
// This function sets up shell completion and invokes the CLI framework to parse and run commands.
func Run(ctx context.Context, newTracker TrackerFactory, notifier txconfirm.ProgressNotifier) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "confirmtrack",
		Description:           "Command-line interface for tracking transaction confirmations.",
		Usage:                 "confirmtrack [command] [flags]",
		Commands: []*cli.Command{
			trackTransactionCommand(newTracker, notifier),
		},
	}

	return app.Run(ctx, os.Args)
}
