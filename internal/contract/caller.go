package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CallBackend is the stateless call primitive of a node.
// *chain.EVMClient implements it.
type CallBackend interface {
	CallContract(ctx context.Context, from *common.Address, to common.Address, data []byte, value *big.Int) ([]byte, error)
}

// CallRequest is one invocation of a catalog function against a contract.
type CallRequest struct {
	Address  common.Address
	Function *FunctionDescriptor
	Args     []any          // as returned by Coerce
	From     common.Address // zero for anonymous reads
	Value    *big.Int       // wei sent with payable calls; nil means none
}

// Caller calls read-only (view/pure) contract functions.
type Caller struct {
	client CallBackend
}

// NewCaller creates a Caller on top of client.
func NewCaller(client CallBackend) *Caller {
	return &Caller{client: client}
}

// Read performs an eth_call of req and returns the decoded return values.
func (c *Caller) Read(ctx context.Context, req CallRequest) ([]any, error) {
	data, err := PackCall(req.Function, req.Args)
	if err != nil {
		return nil, err
	}

	var from *common.Address
	if req.From != (common.Address{}) {
		from = &req.From
	}
	out, err := c.client.CallContract(ctx, from, req.Address, data, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", req.Function.Key(), err)
	}
	return UnpackOutputs(req.Function, out)
}
