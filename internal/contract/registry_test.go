package contract_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *contract.Registry {
	t.Helper()
	return contract.NewRegistry(filepath.Join(t.TempDir(), "contracts.json"))
}

func TestRegistryAddAndGet(t *testing.T) {
	reg := newTestRegistry(t)

	err := reg.Add(&contract.Entry{
		Name:    "token",
		Network: "base",
		Address: "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
		ABI:     json.RawMessage(tokenABI),
	})
	require.NoError(t, err)

	got, err := reg.Get("token", "base")
	require.NoError(t, err)
	assert.Equal(t, checksummed, got.Address)

	text, err := got.ABIText()
	require.NoError(t, err)
	assert.JSONEq(t, tokenABI, text)
}

func TestRegistryAddValidates(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		name  string
		entry contract.Entry
		want  error
	}{
		{"bad address", contract.Entry{Name: "a", Network: "base", Address: "0x12", Builtin: "erc20"}, contract.ErrInvalidAddress},
		{"bad abi", contract.Entry{Name: "a", Network: "base", Address: checksummed, ABI: json.RawMessage(`[]`)}, contract.ErrNoFunctions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.entry
			assert.ErrorIs(t, reg.Add(&e), tt.want)
		})
	}

	assert.Error(t, reg.Add(&contract.Entry{Network: "base", Address: checksummed, Builtin: "erc20"}))
	assert.Error(t, reg.Add(&contract.Entry{Name: "a", Network: "base", Address: checksummed, Builtin: "nope"}))
	assert.Error(t, reg.Add(&contract.Entry{Name: "a", Network: "base", Address: checksummed}))
	assert.Empty(t, reg.All())
}

func TestRegistrySaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	reg := contract.NewRegistry(path)
	require.NoError(t, reg.Add(&contract.Entry{Name: "usdc", Network: "base", Address: checksummed, Builtin: "erc20"}))
	require.NoError(t, reg.Add(&contract.Entry{Name: "usdc", Network: "ethereum", Address: checksummed, Builtin: "erc20"}))
	require.NoError(t, reg.Add(&contract.Entry{Name: "dai", Network: "ethereum", Address: checksummed, ABI: json.RawMessage(tokenABI)}))
	require.NoError(t, reg.Save())

	loaded := contract.NewRegistry(path)
	require.NoError(t, loaded.Load())

	all := loaded.All()
	require.Len(t, all, 3)
	assert.Equal(t, "dai", all[0].Name)
	assert.Equal(t, "base", all[1].Network)
	assert.Equal(t, "ethereum", all[2].Network)
	assert.Len(t, loaded.GetByName("usdc"), 2)

	text, err := all[1].ABIText()
	require.NoError(t, err)
	cat, _, err := contract.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, 9, cat.Len())
}

func TestRegistryLoadMissingFile(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Load())
	assert.Empty(t, reg.All())
}

func TestRegistryRemove(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Add(&contract.Entry{Name: "usdc", Network: "base", Address: checksummed, Builtin: "erc20"}))

	require.NoError(t, reg.Remove("usdc", "base"))
	_, err := reg.Get("usdc", "base")
	assert.ErrorIs(t, err, contract.ErrContractNotFound)
	assert.ErrorIs(t, reg.Remove("usdc", "base"), contract.ErrContractNotFound)
}
