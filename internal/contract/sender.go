package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNoSigner is returned by Submit when the Sender has no signer.
var ErrNoSigner = errors.New("no signer configured")

// TxSigner signs transactions for a single account.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// WriteBackend is the node surface the Sender needs.
// *chain.EVMClient implements it.
type WriteBackend interface {
	CallBackend
	EstimateGas(ctx context.Context, from, to common.Address, data []byte, value *big.Int) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	GasTipCap(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*types.Receipt, error)
}

// PreparedTx is a simulated, fully priced transaction that has not been
// signed or sent.
type PreparedTx struct {
	Function  string
	From      common.Address
	To        common.Address
	Data      []byte
	Value     *big.Int
	Gas       uint64
	Nonce     uint64
	GasTipCap *big.Int
	GasFeeCap *big.Int
	ChainID   *big.Int
	Result    []any // return values the simulation produced
}

// Tx builds the unsigned EIP-1559 transaction.
func (p *PreparedTx) Tx() *types.Transaction {
	to := p.To
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   p.ChainID,
		Nonce:     p.Nonce,
		GasTipCap: p.GasTipCap,
		GasFeeCap: p.GasFeeCap,
		Gas:       p.Gas,
		To:        &to,
		Value:     p.Value,
		Data:      p.Data,
	})
}

// MaxCost is the most the transaction can spend: gas * feeCap + value.
func (p *PreparedTx) MaxCost() *big.Int {
	cost := new(big.Int).Mul(new(big.Int).SetUint64(p.Gas), p.GasFeeCap)
	return cost.Add(cost, p.Value)
}

// Sender simulates and sends state-changing contract calls.
type Sender struct {
	client       WriteBackend
	signer       TxSigner
	chainID      *big.Int
	pollInterval time.Duration
}

// NewSender creates a Sender. signer may be nil for a simulate-only sender.
func NewSender(client WriteBackend, signer TxSigner, chainID *big.Int, pollInterval time.Duration) *Sender {
	return &Sender{
		client:       client,
		signer:       signer,
		chainID:      chainID,
		pollInterval: pollInterval,
	}
}

// Simulate runs req as an eth_call from req.From, then estimates gas and
// prices the transaction. A revert comes back as the node's error, which is
// a *chain.RevertError for EVMClient.
func (s *Sender) Simulate(ctx context.Context, req CallRequest) (*PreparedTx, error) {
	data, err := PackCall(req.Function, req.Args)
	if err != nil {
		return nil, err
	}
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	out, err := s.client.CallContract(ctx, &req.From, req.Address, data, value)
	if err != nil {
		return nil, err
	}
	result, err := UnpackOutputs(req.Function, out)
	if err != nil {
		return nil, err
	}

	gas, err := s.client.EstimateGas(ctx, req.From, req.Address, data, value)
	if err != nil {
		return nil, fmt.Errorf("estimating gas: %w", err)
	}
	nonce, err := s.client.PendingNonce(ctx, req.From)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}
	gasPrice, err := s.client.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}
	tip, err := s.client.GasTipCap(ctx)
	if err != nil {
		tip = gasPrice
	}
	feeCap := new(big.Int).Mul(gasPrice, big.NewInt(2))
	if feeCap.Cmp(tip) < 0 {
		feeCap = new(big.Int).Set(tip)
	}

	return &PreparedTx{
		Function:  req.Function.Key(),
		From:      req.From,
		To:        req.Address,
		Data:      data,
		Value:     value,
		Gas:       gas,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		ChainID:   s.chainID,
		Result:    result,
	}, nil
}

// Submit signs p and broadcasts it, returning the transaction hash.
func (s *Sender) Submit(ctx context.Context, p *PreparedTx) (common.Hash, error) {
	if s.signer == nil {
		return common.Hash{}, ErrNoSigner
	}
	if s.signer.Address() != p.From {
		return common.Hash{}, fmt.Errorf("prepared for %s but signer is %s", p.From.Hex(), s.signer.Address().Hex())
	}

	signed, err := s.signer.SignTx(p.Tx(), s.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}
	hash, err := s.client.SendTransaction(ctx, signed)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}

// WaitForReceipt blocks until hash is mined or ctx is done.
func (s *Sender) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return s.client.WaitForReceipt(ctx, hash, s.pollInterval)
}
