package cmd

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/dispatch"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

const tokenABI = `[
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"type":"bool"}]},
  {"type":"function","name":"memo","stateMutability":"nonpayable",
   "inputs":[{"name":"","type":"string"}],"outputs":[]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"type":"uint8"}]}
]`

func tokenFunction(t *testing.T, name string) *contract.FunctionDescriptor {
	t.Helper()
	cat, _, err := contract.Parse(tokenABI)
	require.NoError(t, err)
	fn, err := cat.Lookup(name)
	require.NoError(t, err)
	return fn
}

func TestAssignInputsPositional(t *testing.T) {
	row, err := assignInputs(tokenFunction(t, "transfer"), []string{usdc, "1000"})
	require.NoError(t, err)
	assert.Equal(t, contract.InputRow{"to": usdc, "amount": "1000"}, row)
}

func TestAssignInputsNamed(t *testing.T) {
	row, err := assignInputs(tokenFunction(t, "transfer"), []string{"amount=0x10", "to=" + usdc})
	require.NoError(t, err)
	assert.Equal(t, contract.InputRow{"to": usdc, "amount": "0x10"}, row)
}

func TestAssignInputsKeepsEqualsInValues(t *testing.T) {
	row, err := assignInputs(tokenFunction(t, "memo"), []string{"a=b"})
	require.NoError(t, err)
	assert.Equal(t, contract.InputRow{"param_0": "a=b"}, row)

	row, err = assignInputs(tokenFunction(t, "memo"), []string{"param_0=x=y"})
	require.NoError(t, err)
	assert.Equal(t, contract.InputRow{"param_0": "x=y"}, row)
}

func TestAssignInputsTooMany(t *testing.T) {
	_, err := assignInputs(tokenFunction(t, "decimals"), []string{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decimals takes 0 input(s)")
}

func TestVerb(t *testing.T) {
	assert.Equal(t, "Calling", verb(tokenFunction(t, "decimals"), true))
	assert.Equal(t, "Simulating", verb(tokenFunction(t, "transfer"), true))
	assert.Equal(t, "Sending", verb(tokenFunction(t, "transfer"), false))
}

func TestResultHeader(t *testing.T) {
	anvil, err := chain.NewRegistry().Resolve(31337)
	require.NoError(t, err)
	ws := &workspace{title: "Token", chain: anvil, address: usdc}
	hash := common.HexToHash("0x01")

	out := resultHeader(ws, &dispatch.InvocationResult{
		Function:  "transfer",
		Timestamp: time.Now(),
		Note:      "transaction executed",
		TxHash:    &hash,
	})
	assert.Contains(t, out, "Token")
	assert.Contains(t, out, "Anvil (31337)")
	assert.Contains(t, out, "transaction executed")
	assert.Contains(t, out, hash.Hex())

	out = resultHeader(ws, &dispatch.InvocationResult{Function: "transfer", Note: "ready to execute", IsSimulation: true})
	assert.Contains(t, out, "simulation: ready to execute")
	assert.NotContains(t, out, "Tx Hash")
}

func TestCatalogTable(t *testing.T) {
	cat, _, err := contract.Parse(tokenABI)
	require.NoError(t, err)
	out := catalogTable(cat)
	assert.Contains(t, out, "transfer")
	assert.Contains(t, out, "0xa9059cbb")
	assert.Contains(t, out, "address to, uint256 amount")
	assert.Contains(t, out, "string param_0")
	assert.Contains(t, out, "uint8")
}

func TestChainTableMarksDefault(t *testing.T) {
	out := chainTable(chain.NewRegistry().Filter(false), "base")
	assert.Contains(t, out, "base *")
	assert.Contains(t, out, "8453")
	assert.NotContains(t, out, "sepolia")
}

// countingNode counts JSON-RPC requests and answers none of them.
func countingNode(t *testing.T) (string, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, &hits
}

func runCall(t *testing.T, target targetFlags, args ...string) error {
	t.Helper()
	withConfig(t)
	t.Setenv(wallet.EnvPrivateKey, "")
	prev := callTarget
	callTarget = target
	t.Cleanup(func() { callTarget = prev })
	return callCmd.RunE(callCmd, args)
}

func TestCallValidatesBeforeNetwork(t *testing.T) {
	const holder = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	tests := []struct {
		name    string
		address string
		args    []string
		want    error
	}{
		{"missing address", "", []string{"balanceOf", "account=" + holder}, dispatch.ErrMissingAddress},
		{"invalid address", "0x1234", []string{"balanceOf", "account=" + holder}, dispatch.ErrInvalidAddress},
		{"bad argument", usdc, []string{"balanceOf", "account=0x1234"}, contract.ErrInvalidAddressArgument},
		{"write without signer", usdc, []string{"transfer", holder, "1"}, dispatch.ErrNoSigner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, hits := countingNode(t)
			target := targetFlags{abiFlags: abiFlags{builtin: "erc20"}, address: tt.address, chain: "anvil", rpc: url}
			err := runCall(t, target, tt.args...)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, int32(0), hits.Load())
		})
	}
}
