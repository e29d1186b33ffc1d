package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrReverted is returned when a transaction is mined with status 0.
var ErrReverted = errors.New("transaction reverted")

// DefaultPollInterval is how often WaitForReceipt asks for a receipt.
const DefaultPollInterval = 2 * time.Second

// EVMClient is a thin JSON-RPC client for EVM chains.
type EVMClient struct {
	url string
	rpc *rpc.Client
	eth *ethclient.Client
}

// Dial connects to the JSON-RPC endpoint at url. For HTTP endpoints no
// request is made until the first call.
func Dial(ctx context.Context, url string) (*EVMClient, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &EVMClient{url: url, rpc: c, eth: ethclient.NewClient(c)}, nil
}

// URL returns the endpoint this client talks to.
func (c *EVMClient) URL() string { return c.url }

// Close releases the underlying connection.
func (c *EVMClient) Close() { c.rpc.Close() }

// ChainID returns the chain's ID as reported by eth_chainId.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("eth_chainId: %w", err)
	}
	return id, nil
}

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}
	return n, nil
}

// CallContract executes an eth_call against the latest block. from may be nil
// for stateless reads. Reverts are returned as *RevertError.
func (c *EVMClient) CallContract(ctx context.Context, from *common.Address, to common.Address, data []byte, value *big.Int) ([]byte, error) {
	msg := ethereum.CallMsg{To: &to, Data: data, Value: value}
	if from != nil {
		msg.From = *from
	}
	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, asRevert(err)
	}
	return out, nil
}

// EstimateGas estimates gas for a call from `from` to `to`.
func (c *EVMClient) EstimateGas(ctx context.Context, from, to common.Address, data []byte, value *big.Int) (uint64, error) {
	gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data, Value: value})
	if err != nil {
		return 0, asRevert(err)
	}
	return gas, nil
}

// GasPrice returns the node's suggested legacy gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	gp, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("eth_gasPrice: %w", err)
	}
	return gp, nil
}

// GasTipCap returns the suggested priority fee. Nodes without
// eth_maxPriorityFeePerGas yield an error; callers fall back to GasPrice.
func (c *EVMClient) GasTipCap(ctx context.Context) (*big.Int, error) {
	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("eth_maxPriorityFeePerGas: %w", err)
	}
	return tip, nil
}

// PendingNonce returns the transaction count including queued transactions.
func (c *EVMClient) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	n, err := c.eth.PendingNonceAt(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("eth_getTransactionCount: %w", err)
	}
	return n, nil
}

// SendTransaction broadcasts a signed transaction and returns its hash.
func (c *EVMClient) SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("eth_sendRawTransaction: %w", err)
	}
	return tx.Hash(), nil
}

// TransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	r, err := c.eth.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eth_getTransactionReceipt: %w", err)
	}
	return r, nil
}

// WaitForReceipt polls every interval until the transaction is mined or ctx
// is done. A ctx without deadline waits indefinitely. A mined receipt with
// status 0 is returned together with ErrReverted.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// RevertError is a call that the node rejected because execution reverted.
type RevertError struct {
	Reason string // decoded Error(string) reason, or the node's message
	Data   []byte // raw revert payload, if the node returned one
	err    error
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return e.Reason
}

func (e *RevertError) Unwrap() error { return e.err }

// asRevert converts an RPC error into a *RevertError when it carries revert
// data or a revert message. Any other error is returned wrapped as-is.
func asRevert(err error) error {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if data, ok := revertData(dataErr.ErrorData()); ok {
			re := &RevertError{Data: data, err: err}
			if reason, uerr := abi.UnpackRevert(data); uerr == nil {
				re.Reason = "execution reverted: " + reason
			} else {
				re.Reason = extractRevertReason(err.Error())
			}
			return re
		}
	}
	msg := err.Error()
	if strings.Contains(msg, "revert") {
		return &RevertError{Reason: extractRevertReason(msg), err: err}
	}
	return fmt.Errorf("rpc call failed: %w", err)
}

func revertData(v interface{}) ([]byte, bool) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "0x") {
		return nil, false
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, false
	}
	return b, true
}

// extractRevertReason tries to pull the revert reason out of an RPC error message.
func extractRevertReason(errMsg string) string {
	// Common pattern: "execution reverted: <reason>"
	if idx := strings.Index(errMsg, "execution reverted"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx:])
	}
	if idx := strings.Index(errMsg, "revert"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx:])
	}
	return errMsg
}
