package ens

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	publicResolver = common.HexToAddress("0x231b0Ee14048e9dCcD1d247744d114a4EB5E8E63")
	vitalik        = common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
)

// fakeNode answers eth_call by exact calldata per contract. Unknown calls
// return a zero word.
type fakeNode struct {
	records map[common.Address]map[string][]byte
}

func (f *fakeNode) set(to common.Address, selector string, node common.Hash, out []byte) {
	if f.records == nil {
		f.records = map[common.Address]map[string][]byte{}
	}
	if f.records[to] == nil {
		f.records[to] = map[string][]byte{}
	}
	f.records[to][selector+hexutil.Encode(node.Bytes())[2:]] = out
}

func (f *fakeNode) CallContract(_ context.Context, _ *common.Address, to common.Address, data []byte, _ *big.Int) ([]byte, error) {
	if out, ok := f.records[to][hexutil.Encode(data)]; ok {
		return out, nil
	}
	return make([]byte, 32), nil
}

func word(addr common.Address) []byte { return common.LeftPadBytes(addr.Bytes(), 32) }

func TestNamehashVectors(t *testing.T) {
	assert.Equal(t, common.Hash{}, Namehash(""))
	assert.Equal(t, "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae", Namehash("eth").Hex())
	assert.Equal(t, "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f", Namehash("foo.eth").Hex())
	assert.NotEqual(t, Namehash("Test.eth"), Namehash("test.eth"))
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("vitalik.eth"))
	assert.True(t, IsName("sub.vault.eth"))
	assert.False(t, IsName("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"))
	assert.False(t, IsName("vault"))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(1))
	assert.True(t, Supported(11155111))
	assert.False(t, Supported(8453))
}

func TestResolve(t *testing.T) {
	node := &fakeNode{}
	hash := Namehash("vitalik.eth")
	node.set(registryAddr, "0x0178b8bf", hash, word(publicResolver))
	node.set(publicResolver, "0x3b3b57de", hash, word(vitalik))

	addr, err := NewResolver(node).Resolve(context.Background(), "vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, vitalik, addr)
}

func TestResolveWithoutResolver(t *testing.T) {
	_, err := NewResolver(&fakeNode{}).Resolve(context.Background(), "nobody.eth")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nobody.eth")
}

func TestResolveWithoutAddressRecord(t *testing.T) {
	node := &fakeNode{}
	node.set(registryAddr, "0x0178b8bf", Namehash("empty.eth"), word(publicResolver))

	_, err := NewResolver(node).Resolve(context.Background(), "empty.eth")
	assert.ErrorIs(t, err, ErrNotFound)
}
