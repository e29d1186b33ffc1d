package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreStaleTicketIsDropped(t *testing.T) {
	s := NewStore()
	older := s.Begin("transfer")
	newer := s.Begin("transfer")

	assert.False(t, s.Transition(older, Writing))
	assert.False(t, s.Complete(older, &InvocationResult{Note: "old"}))
	assert.False(t, s.Fail(older, errors.New("old")))
	assert.NoError(t, s.LastError())

	res := &InvocationResult{Note: "new"}
	require.True(t, s.Complete(newer, res))

	slot, ok := s.Get("transfer")
	require.True(t, ok)
	assert.Equal(t, Completed, slot.State)
	assert.Same(t, res, slot.Result)
	assert.Same(t, res, s.Result("transfer"))
}

func TestStoreFailRecordsLastError(t *testing.T) {
	s := NewStore()
	tk := s.Begin("approve")
	boom := errors.New("boom")
	require.True(t, s.Fail(tk, boom))

	slot, _ := s.Get("approve")
	assert.Equal(t, Failed, slot.State)
	assert.Equal(t, boom, slot.Err)
	assert.Nil(t, slot.Result)
	assert.Equal(t, boom, s.LastError())

	// A new dispatch of any function clears it.
	s.Begin("balanceOf")
	assert.NoError(t, s.LastError())
}

func TestStoreCompleteOverwritesFailure(t *testing.T) {
	s := NewStore()
	require.True(t, s.Fail(s.Begin("f"), errors.New("x")))
	require.True(t, s.Complete(s.Begin("f"), &InvocationResult{}))

	slot, _ := s.Get("f")
	assert.NoError(t, slot.Err)
	assert.NotNil(t, slot.Result)
}

func TestStoreKeysAndReset(t *testing.T) {
	s := NewStore()
	s.Begin("transfer")
	s.Begin("approve")
	s.Begin("balanceOf")
	assert.Equal(t, []string{"approve", "balanceOf", "transfer"}, s.Keys())

	_, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, s.Result("missing"))

	s.Reset()
	assert.Empty(t, s.Keys())
}

func TestSimulationErrorReason(t *testing.T) {
	err := simulationError(errors.New("rpc call failed: 503"))
	assert.Equal(t, "rpc call failed: 503", err.Reason)
	assert.Equal(t, "transport error: simulation failed: rpc call failed: 503", err.Error())

	bare := &SimulationError{}
	assert.Equal(t, "transport error: simulation failed", bare.Error())
}
