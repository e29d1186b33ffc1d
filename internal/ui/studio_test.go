package ui

import (
	"context"
	"math/big"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/dispatch"
)

const studioABI = `[
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]}
]`

const studioOwner = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

type staticReader struct{ calls int }

func (r *staticReader) Read(context.Context, contract.CallRequest) ([]any, error) {
	r.calls++
	return []any{big.NewInt(42)}, nil
}

func newTestStudio(t *testing.T) (StudioModel, *staticReader) {
	t.Helper()
	session := contract.NewSession()
	require.NoError(t, session.Load(studioABI))
	anvil, err := chain.NewRegistry().Resolve(31337)
	require.NoError(t, err)

	reader := &staticReader{}
	ctrl := dispatch.NewController(dispatch.Target{Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3", Chain: anvil}, reader, nil, nil, nil)
	return NewStudio(context.Background(), "vault", session, ctrl), reader
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(t *testing.T, m StudioModel, msg tea.Msg) (StudioModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	sm, ok := next.(StudioModel)
	require.True(t, ok)
	return sm, cmd
}

func TestStudioListsReadsFirst(t *testing.T) {
	m, _ := newTestStudio(t)
	require.Len(t, m.fns, 3)
	assert.Equal(t, "balanceOf", m.fns[0].Name)
	assert.Equal(t, "totalSupply", m.fns[1].Name)
	assert.Equal(t, "transfer", m.fns[2].Name)
}

func TestStudioNavigationIsBounded(t *testing.T) {
	m, _ := newTestStudio(t)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
	for range 5 {
		m, _ = send(t, m, runes("j"))
	}
	assert.Equal(t, 2, m.cursor)
	assert.Equal(t, "transfer", m.Selected().Name)
}

func TestStudioReadFlow(t *testing.T) {
	m, reader := newTestStudio(t)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, modeEdit, m.mode)

	m, _ = send(t, m, runes(studioOwner+"x"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, studioOwner, m.session.Row("balanceOf")["owner"])

	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "…")

	m, _ = send(t, m, cmd())
	assert.Equal(t, 1, reader.calls)
	assert.Empty(t, m.pending)

	view := m.View()
	assert.Contains(t, view, "completed")
	assert.Contains(t, view, "42")
}

func TestStudioCallsFunctionWithoutInputsDirectly(t *testing.T) {
	m, reader := newTestStudio(t)
	m, _ = send(t, m, runes("j"))

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, modeBrowse, m.mode)
	send(t, m, cmd())
	assert.Equal(t, 1, reader.calls)
}

func TestStudioShowsArgumentErrors(t *testing.T) {
	m, reader := newTestStudio(t)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, runes("not-an-address"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, 0, reader.calls)
	assert.Contains(t, m.View(), "invalid address")
}

func TestStudioConfirmsTransactions(t *testing.T) {
	m, _ := newTestStudio(t)
	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeEdit, m.mode)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Send a transaction calling transfer?")

	m, cmd = send(t, m, runes("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, modeEdit, m.mode)
}

func TestStudioWriteWithoutSignerFails(t *testing.T) {
	m, _ := newTestStudio(t)
	m.cursor = 2
	m, cmd := send(t, m, runes("s"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Contains(t, m.View(), "connected account is required")
}

func TestStudioQuit(t *testing.T) {
	m, _ := newTestStudio(t)
	m, cmd := send(t, m, runes("q"))
	assert.True(t, m.Quitting)
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestStudioLastErrorAndClear(t *testing.T) {
	m, _ := newTestStudio(t)
	assert.Contains(t, m.View(), "0 of 3")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, runes("0x1234"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	view := m.View()
	assert.Contains(t, view, "1 of 3")
	assert.Contains(t, view, "Last error:")

	m, _ = send(t, m, runes("x"))
	view = m.View()
	assert.Contains(t, view, "0 of 3")
	assert.NotContains(t, view, "Last error:")
	_, ok := m.ctrl.Store().Get("balanceOf")
	assert.False(t, ok)
}
