// Package dispatch runs one contract function call as a read, a simulation or
// a signed transaction and records its outcome per function.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/render"
)

// ErrNotPayable is returned when a value is attached to a function that
// cannot receive one.
var ErrNotPayable = fmt.Errorf("%w: function is not payable", ErrValidation)

// DefaultReceiptTimeout bounds the wait for a transaction to be mined.
const DefaultReceiptTimeout = 3 * time.Minute

const (
	noteCompleted = "completed"
	noteReady     = "ready to execute"
	noteExecuted  = "transaction executed"
)

// Reader performs read-only calls. *contract.Caller implements it.
type Reader interface {
	Read(ctx context.Context, req contract.CallRequest) ([]any, error)
}

// Writer simulates and sends transactions. *contract.Sender implements it.
type Writer interface {
	Simulate(ctx context.Context, req contract.CallRequest) (*contract.PreparedTx, error)
	Submit(ctx context.Context, p *contract.PreparedTx) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// AccountSource lists the accounts of the connected wallet. The first one
// sends transactions.
type AccountSource interface {
	Accounts() []common.Address
}

// Target is the contract and chain calls are sent to.
type Target struct {
	Address string
	Chain   *chain.Chain
}

// InvocationResult is the outcome of one successful dispatch.
type InvocationResult struct {
	Function     string
	Args         []any
	Timestamp    time.Time
	Outcome      render.Value
	Outputs      []contract.FunctionOutput // declared outputs Outcome was decoded against
	Raw          any                       // []any, *contract.PreparedTx or *types.Receipt
	Note         string
	IsSimulation bool
	TxHash       *common.Hash
}

// Render builds the display tree of the outcome.
func (r *InvocationResult) Render() render.Node {
	return render.Render(r.Outcome, r.Outputs)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// OnTransition registers fn to observe every state change of a current
// dispatch.
func OnTransition(fn func(key string, s State)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// WithReceiptTimeout bounds the receipt wait. Zero waits until the context
// is done.
func WithReceiptTimeout(d time.Duration) Option {
	return func(c *Controller) { c.receiptTimeout = d }
}

// WithClock replaces time.Now for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// CallOption adjusts a single dispatch.
type CallOption func(*contract.CallRequest)

// WithCallValue attaches wei to a payable call.
func WithCallValue(v *big.Int) CallOption {
	return func(r *contract.CallRequest) { r.Value = v }
}

// Controller drives dispatches against one target.
type Controller struct {
	target         Target
	reader         Reader
	writer         Writer
	accounts       AccountSource
	store          *Store
	log            zerolog.Logger
	onTransition   func(string, State)
	receiptTimeout time.Duration
	now            func() time.Time
}

// NewController creates a Controller. writer and accounts may be nil when
// only reads are needed; store may be nil for a private store.
func NewController(target Target, reader Reader, writer Writer, accounts AccountSource, store *Store, opts ...Option) *Controller {
	if store == nil {
		store = NewStore()
	}
	c := &Controller{
		target:         target,
		reader:         reader,
		writer:         writer,
		accounts:       accounts,
		store:          store,
		log:            zerolog.Nop(),
		receiptTimeout: DefaultReceiptTimeout,
		now:            time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Store returns the store results are recorded in.
func (c *Controller) Store() *Store { return c.store }

// Target returns the contract and chain the controller calls.
func (c *Controller) Target() Target { return c.target }

// Dispatch validates row against fn and runs it: view and pure functions are
// read, anything else is simulated when simulate is set and sent as a signed
// transaction otherwise. The outcome, or the error, is recorded in the store
// unless a newer dispatch of the same function began meanwhile.
func (c *Controller) Dispatch(ctx context.Context, fn *contract.FunctionDescriptor, row contract.InputRow, simulate bool, opts ...CallOption) (*InvocationResult, error) {
	t := c.store.Begin(fn.Key())
	c.transition(t, Validating)

	req, err := c.validate(fn, row)
	if err == nil {
		for _, o := range opts {
			o(&req)
		}
		if req.Value != nil && req.Value.Sign() > 0 && !fn.IsPayable() {
			err = fmt.Errorf("%w: %s", ErrNotPayable, fn.Key())
		}
	}
	if err != nil {
		return nil, c.fail(t, err)
	}

	var res *InvocationResult
	switch {
	case fn.IsRead():
		c.transition(t, Reading)
		res, err = c.read(ctx, req)
	case simulate:
		c.transition(t, Simulating)
		res, err = c.simulate(ctx, req)
	default:
		c.transition(t, Writing)
		res, err = c.write(ctx, req)
	}
	if err != nil {
		return nil, c.fail(t, err)
	}

	res.Function = fn.Key()
	res.Args = req.Args
	res.Timestamp = c.now()
	if c.store.Complete(t, res) {
		c.notify(t.Key, Completed)
	}
	c.log.Debug().Str("function", t.Key).Str("note", res.Note).Msg("dispatch completed")
	return res, nil
}

func (c *Controller) validate(fn *contract.FunctionDescriptor, row contract.InputRow) (contract.CallRequest, error) {
	to, err := c.target.Validate()
	if err != nil {
		return contract.CallRequest{}, err
	}
	from, err := Sender(fn, c.accounts)
	if err != nil {
		return contract.CallRequest{}, err
	}
	if !fn.IsRead() && c.writer == nil {
		return contract.CallRequest{}, ErrNoSigner
	}

	args, err := contract.Coerce(fn, row)
	if err != nil {
		return contract.CallRequest{}, err
	}
	return contract.CallRequest{Address: to, Function: fn, Args: args, From: from}, nil
}

// Validate checks the contract address and chain without touching the
// network.
func (t Target) Validate() (common.Address, error) {
	addr := strings.TrimSpace(t.Address)
	if addr == "" {
		return common.Address{}, ErrMissingAddress
	}
	to, err := contract.ValidateAddress(addr)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	if t.Chain == nil {
		return common.Address{}, ErrNoChainSelected
	}
	return to, nil
}

// Sender returns the first connected account. Reads may go without one;
// anything else fails with ErrNoSigner.
func Sender(fn *contract.FunctionDescriptor, accounts AccountSource) (common.Address, error) {
	var from common.Address
	if accounts != nil {
		if accs := accounts.Accounts(); len(accs) > 0 {
			from = accs[0]
		}
	}
	if !fn.IsRead() && from == (common.Address{}) {
		return common.Address{}, ErrNoSigner
	}
	return from, nil
}

func (c *Controller) read(ctx context.Context, req contract.CallRequest) (*InvocationResult, error) {
	vals, err := c.reader.Read(ctx, req)
	if err != nil {
		return nil, transportError(ErrCall, err)
	}
	return &InvocationResult{
		Outcome: render.FromOutputs(req.Function.Outputs, vals),
		Outputs: req.Function.Outputs,
		Raw:     vals,
		Note:    noteCompleted,
	}, nil
}

func (c *Controller) simulate(ctx context.Context, req contract.CallRequest) (*InvocationResult, error) {
	p, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return &InvocationResult{
		Outcome:      preparedValue(p, req.Function, c.target.Chain.NativeCurrency),
		Raw:          p,
		Note:         noteReady,
		IsSimulation: true,
	}, nil
}

func (c *Controller) prepare(ctx context.Context, req contract.CallRequest) (*contract.PreparedTx, error) {
	p, err := c.writer.Simulate(ctx, req)
	if err != nil {
		if errors.Is(err, contract.ErrCoercion) {
			return nil, err
		}
		return nil, simulationError(err)
	}
	return p, nil
}

func (c *Controller) write(ctx context.Context, req contract.CallRequest) (*InvocationResult, error) {
	p, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	hash, err := c.writer.Submit(ctx, p)
	if err != nil {
		return nil, transportError(ErrTransaction, err)
	}
	c.log.Info().Str("function", req.Function.Key()).Str("hash", hash.Hex()).Msg("transaction sent")

	waitCtx := ctx
	if c.receiptTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.receiptTimeout)
		defer cancel()
	}
	receipt, err := c.writer.WaitForReceipt(waitCtx, hash)
	if err != nil {
		return nil, transportError(ErrTransaction, err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, fmt.Errorf("%w: %w (hash: %s)", ErrTransaction, chain.ErrReverted, hash.Hex())
	}
	return &InvocationResult{
		Outcome: receiptValue(receipt, c.target.Chain.NativeCurrency),
		Raw:     receipt,
		Note:    noteExecuted,
		TxHash:  &hash,
	}, nil
}

// transportError tags err with kind unless it is an argument error raised
// while encoding the call.
func transportError(kind, err error) error {
	if errors.Is(err, contract.ErrCoercion) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func (c *Controller) transition(t Ticket, s State) {
	if !c.store.Transition(t, s) {
		return
	}
	c.log.Debug().Str("function", t.Key).Stringer("state", s).Msg("dispatch transition")
	c.notify(t.Key, s)
}

func (c *Controller) fail(t Ticket, err error) error {
	if c.store.Fail(t, err) {
		c.notify(t.Key, Failed)
	}
	c.log.Warn().Err(err).Str("function", t.Key).Msg("dispatch failed")
	return err
}

func (c *Controller) notify(key string, s State) {
	if c.onTransition != nil {
		c.onTransition(key, s)
	}
}
