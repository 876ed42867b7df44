package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabapcia/confirmtrack/internal/pkg/logger"
	"github.com/gabapcia/confirmtrack/internal/txconfirm"

	"github.com/urfave/cli/v3"
)

// trackTransactionCommand returns a CLI command that follows a single
// transaction until it is confirmed, the check budget runs out, or the user
// interrupts it.
//
// Usage example:
//
//	confirmtrack track --tx 0xABC123... --confirmations 6
//
// Flags left at zero fall back to the factory's configured defaults.
func trackTransactionCommand(newTracker TrackerFactory, notifier txconfirm.ProgressNotifier) *cli.Command {
	return &cli.Command{
		Name:        "track",
		Description: "Follow a submitted transaction until it has accumulated the required confirmations.",
		Usage:       "Tracks one transaction hash. Terminates on confirmation, timeout, or Ctrl+C.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "tx",
				Usage:    "Transaction hash to track (e.g., 0xABC123...)",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "confirmations",
				Usage: "Number of confirming blocks to wait for (0 = configured default)",
			},
			&cli.IntFlag{
				Name:  "max-checks",
				Usage: "Observation cycle budget before giving up (0 = configured default)",
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "Period between polling cycles (0 = configured default; poll mode only)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var (
				txHash        = c.String("tx")
				confirmations = int(c.Int("confirmations"))
				maxChecks     = int(c.Int("max-checks"))
				pollInterval  = c.Duration("poll-interval")
			)

			tr := newTracker(
				txconfirm.WithRequiredConfirmations(confirmations),
				txconfirm.WithMaxChecks(maxChecks),
				txconfirm.WithPollInterval(pollInterval),
			)

			events, err := tr.Track(ctx, txHash)
			if err != nil {
				return err
			}
			defer tr.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			return consumeEvents(ctx, txHash, tr, events, notifier, quit)
		},
	}
}

// consumeEvents drains the tracking stream, publishing each event to the
// notifier and logging progress. It returns nil on confirmation or interrupt,
// the context error when the stream was ended by cancellation, and the
// terminal error otherwise.
func consumeEvents(ctx context.Context, txHash string, tr txconfirm.Service, events <-chan txconfirm.Event, notifier txconfirm.ProgressNotifier, quit <-chan os.Signal) error {
	started := time.Now()

	for {
		select {
		case <-quit:
			tr.Stop()
			logger.Info(ctx, "tracking interrupted",
				"tx.hash", txHash,
				"tracking.elapsed", time.Since(started).String(),
			)
			return nil

		case event, ok := <-events:
			if !ok {
				// an eventless close also happens when the surrounding
				// context is canceled, which is not a confirmation
				if err := ctx.Err(); err != nil {
					logger.Info(ctx, "tracking canceled",
						"tx.hash", txHash,
						"tracking.elapsed", time.Since(started).String(),
					)
					return err
				}

				logger.Info(ctx, "transaction confirmed",
					"tx.hash", txHash,
					"tracking.elapsed", time.Since(started).String(),
				)
				return nil
			}

			if err := notifier.NotifyProgress(ctx, txHash, event); err != nil {
				logger.Error(ctx, "failed to publish confirmation progress",
					"tx.hash", txHash,
					"error", err,
				)
			}

			if event.Err != nil {
				logger.Error(ctx, "tracking failed",
					"tx.hash", txHash,
					"tracking.confirmations", event.Confirmations,
					"tracking.checks", event.Checks,
					"error", event.Err,
				)
				return event.Err
			}

			logger.Info(ctx, "confirmation progress",
				"tx.hash", txHash,
				"tracking.confirmations", event.Confirmations,
				"tracking.checks", event.Checks,
			)
		}
	}
}
