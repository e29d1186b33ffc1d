package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	wei, _ := new(big.Int).SetString("2100000000000000", 10)
	assert.Equal(t, "0.0021 ETH", FormatAmount(wei, eth))
	assert.Equal(t, "0 ETH", FormatAmount(nil, eth))
	assert.Equal(t, "1.5", FormatAmount(big.NewInt(15), NativeCurrency{Decimals: 1}))
}

func TestFormatGwei(t *testing.T) {
	assert.Equal(t, "1.5 gwei", FormatGwei(big.NewInt(1_500_000_000)))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{"1.5 ETH", "1500000000000000000"},
		{" 0 ", "0"},
		{"0.000000000000000001", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in, eth)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmountErrors(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "0.0000000000000000001"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAmount(in, eth)
			assert.Error(t, err)
		})
	}
}
