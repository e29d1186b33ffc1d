// Package ens resolves ENS names so contracts can be addressed by name.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
)

var (
	// ErrNotFound is returned when a name has no resolver or no record.
	ErrNotFound = errors.New("ens record not found")
	// ErrUnsupportedChain is returned for chains without the ENS registry.
	ErrUnsupportedChain = errors.New("ens is not deployed on this chain")
)

// ENS registry address, the same on Ethereum mainnet and Sepolia.
var registryAddr = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

var registryChains = map[int64]bool{1: true, 11155111: true}

const resolverABI = `[
  {"type":"function","name":"resolver","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"type":"address"}]},
  {"type":"function","name":"addr","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"type":"address"}]}
]`

var catalog = func() *contract.Catalog {
	cat, _, err := contract.Parse(resolverABI)
	if err != nil {
		panic(err)
	}
	return cat
}()

// IsName reports whether s looks like an ENS name rather than an address.
func IsName(s string) bool {
	return !strings.HasPrefix(s, "0x") && strings.Contains(s, ".")
}

// Supported reports whether the ENS registry exists on chainID.
func Supported(chainID int64) bool { return registryChains[chainID] }

// Resolver resolves names through the registry on one chain.
type Resolver struct {
	caller *contract.Caller
}

// NewResolver creates a Resolver on top of backend.
func NewResolver(backend contract.CallBackend) *Resolver {
	return &Resolver{caller: contract.NewCaller(backend)}
}

// Resolve returns the address record of name.
func (r *Resolver) Resolve(ctx context.Context, name string) (common.Address, error) {
	node := Namehash(name)
	resolver, err := r.resolver(ctx, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	addr, err := r.address(ctx, resolver, "addr", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}

func (r *Resolver) resolver(ctx context.Context, node common.Hash) (common.Address, error) {
	return r.address(ctx, registryAddr, "resolver", node)
}

func (r *Resolver) address(ctx context.Context, at common.Address, fn string, node common.Hash) (common.Address, error) {
	out, err := r.call(ctx, at, fn, node)
	if err != nil {
		return common.Address{}, err
	}
	addr, _ := out[0].(common.Address)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no %s", ErrNotFound, fn)
	}
	return addr, nil
}

func (r *Resolver) call(ctx context.Context, at common.Address, name string, node common.Hash) ([]any, error) {
	fn, err := catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := r.caller.Read(ctx, contract.CallRequest{Address: at, Function: fn, Args: []any{node.Hex()}})
	if err != nil {
		return nil, fmt.Errorf("ens %s: %w", name, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("ens %s: unexpected %d return values", name, len(out))
	}
	return out, nil
}

// Namehash implements the EIP-137 namehash.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak256([]byte(labels[i]))
		node = common.BytesToHash(keccak256(append(node.Bytes(), label...)))
	}
	return node
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
