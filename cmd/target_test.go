package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/dispatch"
	"github.com/Mohsinsiddi/abistudio/internal/rpc"
)

const usdc = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// withConfig points the package config at a fresh directory.
func withConfig(t *testing.T) {
	t.Helper()
	c, err := config.Load(t.TempDir())
	require.NoError(t, err)
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func bookmark(t *testing.T, e *contract.Entry) {
	t.Helper()
	reg, err := contractRegistry()
	require.NoError(t, err)
	require.NoError(t, reg.Add(e))
	require.NoError(t, reg.Save())
}

func TestResolveChainDefaultsToConfig(t *testing.T) {
	withConfig(t)
	c, err := resolveChain("")
	require.NoError(t, err)
	assert.Equal(t, "ethereum", c.Name)

	c, err = resolveChain("8453")
	require.NoError(t, err)
	assert.Equal(t, "base", c.Name)

	_, err = resolveChain("atlantis")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestResolveChainReadsOverlay(t *testing.T) {
	withConfig(t)
	overlay := `
[[chain]]
id = 7777
name = "devnet"
rpc_urls = ["http://127.0.0.1:9545"]
`
	require.NoError(t, os.WriteFile(cfg.ChainsFile, []byte(overlay), 0o600))

	c, err := resolveChain("devnet")
	require.NoError(t, err)
	assert.Equal(t, int64(7777), c.ID)
	assert.Equal(t, "http://127.0.0.1:9545", c.DefaultRPC())
}

func TestRPCCandidates(t *testing.T) {
	c := &chain.Chain{Name: "base", RPCURLs: []string{"https://a", "https://b"}}

	urls, algo := rpcCandidates(c, "", nil)
	assert.Equal(t, []string{"https://a", "https://b"}, urls)
	assert.Equal(t, rpc.AlgorithmFastest, algo)

	urls, algo = rpcCandidates(c, "", []string{"https://mine", "https://b"})
	assert.Equal(t, []string{"https://mine", "https://b", "https://a"}, urls)
	assert.Equal(t, rpc.AlgorithmFailover, algo)

	urls, algo = rpcCandidates(c, "http://127.0.0.1:8545", []string{"https://mine"})
	assert.Equal(t, []string{"http://127.0.0.1:8545"}, urls)
	assert.Equal(t, rpc.AlgorithmFailover, algo)
}

func TestLoadBuiltinABI(t *testing.T) {
	f := abiFlags{builtin: "erc20"}
	abi, err := f.load("")
	require.NoError(t, err)
	cat, _, err := contract.Parse(abi.text)
	require.NoError(t, err)
	_, err = cat.Lookup("balanceOf")
	assert.NoError(t, err)
	assert.Nil(t, abi.entry)
}

func TestLoadUnknownBuiltin(t *testing.T) {
	f := abiFlags{builtin: "erc4337"}
	_, err := f.load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "erc20")
}

func TestLoadABIFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Token.json")
	artifact := `{"abi":[{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"type":"address"}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(artifact), 0o600))

	abi, err := (&abiFlags{file: path}).load("")
	require.NoError(t, err)
	assert.Equal(t, path, abi.title)
	cat, _, err := contract.Parse(abi.text)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestLoadWithoutSource(t *testing.T) {
	_, err := (&abiFlags{}).load("")
	assert.Error(t, err)
}

func TestFindBookmark(t *testing.T) {
	withConfig(t)
	bookmark(t, &contract.Entry{Name: "usdc", Network: "ethereum", Address: usdc, Builtin: "erc20"})

	e, err := findBookmark("usdc", "")
	require.NoError(t, err)
	assert.Equal(t, "ethereum", e.Network)

	abi, err := (&abiFlags{contract: "usdc"}).load("")
	require.NoError(t, err)
	assert.Equal(t, "usdc", abi.title)
	require.NotNil(t, abi.entry)
	assert.Equal(t, usdc, abi.entry.Address)

	_, err = findBookmark("dai", "")
	assert.ErrorIs(t, err, contract.ErrContractNotFound)
}

func TestFindBookmarkOnSeveralChains(t *testing.T) {
	withConfig(t)
	bookmark(t, &contract.Entry{Name: "usdc", Network: "ethereum", Address: usdc, Builtin: "erc20"})
	bookmark(t, &contract.Entry{Name: "usdc", Network: "base", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Builtin: "erc20"})

	_, err := findBookmark("usdc", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass --chain")

	e, err := findBookmark("usdc", "8453")
	require.NoError(t, err)
	assert.Equal(t, "base", e.Network)
}

func TestErrorLineHints(t *testing.T) {
	assert.Contains(t, errorLine(dispatch.ErrNoSigner), "import-key")
	assert.Contains(t, errorLine(errors.Join(rpc.ErrNoHealthyRPC, errors.New("dial tcp: refused"))), "--rpc")
	assert.NotContains(t, errorLine(errors.New("boom")), "→")
}
