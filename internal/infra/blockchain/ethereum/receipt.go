package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/gabapcia/confirmtrack/internal/pkg/types"
	"github.com/gabapcia/confirmtrack/internal/txconfirm"
)

// ErrBlockNotFound is returned when the node has no block for the requested
// hash, which can happen transiently right after a reorganization.
var ErrBlockNotFound = errors.New("block not found")

// nullResult is the raw JSON-RPC result used by Ethereum nodes for
// "this object does not exist (yet)".
var nullResult = []byte("null")

type (
	// ReceiptResponse represents the receipt object returned by
	// eth_getTransactionReceipt. Only the fields the tracker consumes are
	// decoded.
	ReceiptResponse struct {
		TransactionHash string    `json:"transactionHash"`
		BlockHash       string    `json:"blockHash"`
		BlockNumber     types.Hex `json:"blockNumber"`
		Status          types.Hex `json:"status"`
	}

	// HeaderResponse represents the header subset of the block object
	// returned by eth_getBlockByHash and eth_getBlockByNumber.
	HeaderResponse struct {
		Hash       string    `json:"hash"`
		ParentHash string    `json:"parentHash"`
		Number     types.Hex `json:"number"`
	}
)

// toReceipt converts a ReceiptResponse to the tracker's receipt type.
func (r ReceiptResponse) toReceipt() *txconfirm.Receipt {
	return &txconfirm.Receipt{
		TransactionHash: r.TransactionHash,
		BlockHash:       r.BlockHash,
		BlockNumber:     r.BlockNumber,
		Status:          r.Status,
	}
}

// toBlockHeader converts a HeaderResponse to the tracker's header type.
func (h HeaderResponse) toBlockHeader() txconfirm.BlockHeader {
	return txconfirm.BlockHeader{
		Hash:       h.Hash,
		ParentHash: h.ParentHash,
		Number:     h.Number,
	}
}

// isNull reports whether a raw JSON-RPC result is the null literal.
func isNull(data json.RawMessage) bool {
	return len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), nullResult)
}

// FetchReceipt implements txconfirm.ChainReader. A null result from the node
// means the transaction has not been mined yet and is reported as a nil
// receipt without error.
func (c *client) FetchReceipt(ctx context.Context, txHash string) (*txconfirm.Receipt, error) {
	data, err := c.conn.Fetch(ctx, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return nil, err
	}

	if isNull(data) {
		return nil, nil
	}

	var receiptResponse ReceiptResponse
	if err := json.Unmarshal(data, &receiptResponse); err != nil {
		return nil, err
	}

	return receiptResponse.toReceipt(), nil
}

// FetchBlockByHash implements txconfirm.ChainReader. Transaction bodies are
// not requested; the tracker only needs the header chain.
func (c *client) FetchBlockByHash(ctx context.Context, hash string) (txconfirm.BlockHeader, error) {
	data, err := c.conn.Fetch(ctx, "eth_getBlockByHash", hash, false)
	if err != nil {
		return txconfirm.BlockHeader{}, err
	}

	if isNull(data) {
		return txconfirm.BlockHeader{}, ErrBlockNotFound
	}

	var headerResponse HeaderResponse
	if err := json.Unmarshal(data, &headerResponse); err != nil {
		return txconfirm.BlockHeader{}, err
	}

	return headerResponse.toBlockHeader(), nil
}

// getLatestBlockNumber fetches the latest block number from the node.
func (c *client) getLatestBlockNumber(ctx context.Context) (types.Hex, error) {
	data, err := c.conn.Fetch(ctx, "eth_blockNumber")
	if err != nil {
		return "", err
	}

	var blockNumber types.Hex
	return blockNumber, json.Unmarshal(data, &blockNumber)
}

// getHeaderByNumber retrieves a block header by height.
func (c *client) getHeaderByNumber(ctx context.Context, blockNumber types.Hex) (HeaderResponse, error) {
	data, err := c.conn.Fetch(ctx, "eth_getBlockByNumber", blockNumber, false)
	if err != nil {
		return HeaderResponse{}, err
	}

	if isNull(data) {
		return HeaderResponse{}, ErrBlockNotFound
	}

	var headerResponse HeaderResponse
	return headerResponse, json.Unmarshal(data, &headerResponse)
}
