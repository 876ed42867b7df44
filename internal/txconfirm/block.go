package txconfirm

import "github.com/gabapcia/confirmtrack/internal/pkg/types"

// Receipt is the on-chain inclusion record of the tracked transaction.
// It is absent (nil) until the transaction has been mined.
type Receipt struct {
	TransactionHash string    // Hash of the transaction this receipt belongs to
	BlockHash       string    // Hash of the block that includes the transaction
	BlockNumber     types.Hex // Height of the including block, hex encoded
	Status          types.Hex // Execution status as reported by the node ("0x1" on success)
}

// BlockHeader carries the minimal block identity needed for confirmation
// counting: its own hash, the hash of its predecessor, and its height.
//
// Two headers are chain-continuous iff next.ParentHash == previous.Hash.
type BlockHeader struct {
	Hash       string    // Unique block hash
	ParentHash string    // Hash of the predecessor block
	Number     types.Hex // Block height, hex encoded
}

// Event is a single emission of the confirmation stream.
//
// While tracking makes progress, Err is nil and Receipt/Confirmations report
// the newly accepted confirmation. A terminal failure (timeout or transport
// error) is delivered as the final Event with Err set; Receipt is the best
// known receipt at that point and may be nil if the transaction was never
// seen mined. Successful completion is signaled by the stream closing after
// the last progress Event, with no error Event at all.
type Event struct {
	Receipt       *Receipt // Receipt known at emission time (nil if not yet mined)
	Confirmations int      // Confirmations accumulated so far
	Checks        int      // Observation cycles performed so far
	Err           error    // Terminal error, nil on progress events
}
