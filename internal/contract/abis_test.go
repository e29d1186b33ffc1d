package contract_test

import (
	"testing"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsParse(t *testing.T) {
	all := contract.AllBuiltins()
	require.Len(t, all, 2)
	assert.Equal(t, "eip5267", all[0].ID)
	assert.Equal(t, "erc20", all[1].ID)

	for _, b := range all {
		t.Run(b.ID, func(t *testing.T) {
			_, _, err := contract.Parse(b.ABI)
			assert.NoError(t, err)
		})
	}
}

func TestERC20Selectors(t *testing.T) {
	b, ok := contract.GetBuiltin("erc20")
	require.True(t, ok)
	cat, _, err := contract.Parse(b.ABI)
	require.NoError(t, err)
	assert.Equal(t, 9, cat.Len())

	want := map[string]string{
		"name":         "0x06fdde03",
		"symbol":       "0x95d89b41",
		"decimals":     "0x313ce567",
		"totalSupply":  "0x18160ddd",
		"balanceOf":    "0x70a08231",
		"allowance":    "0xdd62ed3e",
		"transfer":     "0xa9059cbb",
		"approve":      "0x095ea7b3",
		"transferFrom": "0x23b872dd",
	}
	for name, sel := range want {
		fn, err := cat.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, sel, fn.SelectorHex(), name)
	}
}

func TestEIP5267Domain(t *testing.T) {
	b, ok := contract.GetBuiltin("eip5267")
	require.True(t, ok)
	cat, _, err := contract.Parse(b.ABI)
	require.NoError(t, err)

	fn, err := cat.Lookup("eip712Domain")
	require.NoError(t, err)
	assert.Equal(t, "0x84b0196e", fn.SelectorHex())
	assert.Len(t, fn.Outputs, 7)
	assert.True(t, fn.IsRead())
}

func TestGetBuiltinUnknown(t *testing.T) {
	_, ok := contract.GetBuiltin("nope")
	assert.False(t, ok)
}
