// Package redis publishes confirmation progress to Redis channels so other
// services can follow a transaction without talking to the node themselves.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabapcia/confirmtrack/internal/pkg/types"
	"github.com/gabapcia/confirmtrack/internal/txconfirm"
)

// progressKeyPrefix is the namespace prefix for all confirmation progress channels.
const progressKeyPrefix = "txconfirm"

// progressChannel constructs the Redis channel name used to publish progress
// for a specific transaction. The format is:
//
//	"txconfirm:progress:<txHash>"
func progressChannel(txHash string) string {
	return fmt.Sprintf("%s:progress:%s", progressKeyPrefix, txHash)
}

// progressMessage is the JSON payload published for each emitted event.
type progressMessage struct {
	TransactionHash string    `json:"transactionHash"`
	BlockHash       string    `json:"blockHash,omitempty"`
	BlockNumber     types.Hex `json:"blockNumber,omitempty"`
	Confirmations   int       `json:"confirmations"`
	Checks          int       `json:"checks"`
	Error           string    `json:"error,omitempty"`
}

// newProgressMessage flattens a tracker event into the published payload.
// The tracked hash is taken from the caller rather than the receipt, since
// error events may carry no receipt at all.
func newProgressMessage(txHash string, event txconfirm.Event) progressMessage {
	msg := progressMessage{
		TransactionHash: txHash,
		Confirmations:   event.Confirmations,
		Checks:          event.Checks,
	}

	if event.Receipt != nil {
		msg.BlockHash = event.Receipt.BlockHash
		msg.BlockNumber = event.Receipt.BlockNumber
	}
	if event.Err != nil {
		msg.Error = event.Err.Error()
	}

	return msg
}

// NotifyProgress publishes one tracker event to the transaction's progress
// channel. Subscribers receive a JSON document per emission; delivery is
// fire-and-forget pub/sub, so an absent subscriber simply misses the message.
func (c *client) NotifyProgress(ctx context.Context, txHash string, event txconfirm.Event) error {
	payload, err := json.Marshal(newProgressMessage(txHash, event))
	if err != nil {
		return err
	}

	return c.conn.Publish(ctx, progressChannel(txHash), payload).Err()
}

// Compile-time assertion that client implements the ProgressNotifier port.
var _ txconfirm.ProgressNotifier = (*client)(nil)
