package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeCommandFlags(t *testing.T) {
	f := probeCmd.Flags().Lookup("testnet")
	require.NotNil(t, f)
	assert.Equal(t, "false", f.DefValue)

	require.NoError(t, probeCmd.Flags().Parse([]string{"--testnet"}))
	t.Cleanup(func() { testnet = false })
	assert.True(t, testnet)
}

func TestShortErr(t *testing.T) {
	assert.Equal(t, "refused", shortErr(errors.New("refused")))
	long := shortErr(errors.New(strings.Repeat("x", 60)))
	assert.Equal(t, strings.Repeat("x", 40)+"…", long)
}
