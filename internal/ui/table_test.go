package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Contract Call", [][2]string{
		{"Function", "balanceOf"},
		{"Chain", "Anvil (31337)"},
	})
	assert.Contains(t, result, "Contract Call")
	assert.Contains(t, result, "Function")
	assert.Contains(t, result, "balanceOf")
	assert.Contains(t, result, "Anvil (31337)")
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("", [][2]string{{"First", "A"}, {"Second", "B"}, {"Third", "C"}})
	first, second, third := strings.Index(result, "First"), strings.Index(result, "Second"), strings.Index(result, "Third")
	require.Greater(t, first, -1)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("Box", nil)
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╯")
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{{Title: "KEY", Width: 12}, {Title: "SELECTOR", Width: 10}})
	assert.Equal(t, -1, tbl.SelIdx)
	tbl.AddRow(Row{"balanceOf", "0x70a08231"})
	tbl.AddRow(Row{"transfer"})

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "KEY")
	assert.Contains(t, lines[0], "SELECTOR")
	assert.Contains(t, lines[1], "----------")
	assert.Contains(t, lines[2], "balanceOf")
	assert.Contains(t, lines[2], "0x70a08231")
	assert.Contains(t, lines[3], "transfer")
}

func TestTableAutoWidth(t *testing.T) {
	tbl := NewTable([]Column{{Title: "ID"}, {Title: "NAME"}})
	tbl.AddRow(Row{"11155111", "sepolia"})
	assert.Equal(t, []int{8, 7}, tbl.widths())
}

func TestTableSelectedRowStillRendered(t *testing.T) {
	tbl := NewTable([]Column{{Title: "A", Width: 5}})
	tbl.AddRow(Row{"one"})
	tbl.AddRow(Row{"two"})
	tbl.SelIdx = 1
	assert.Contains(t, tbl.Render(), "two")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad("ab", 5))
	assert.Equal(t, "abcde", pad("abcde", 5))
	assert.Equal(t, "abcd…", pad("abcdefgh", 5))
	assert.Equal(t, "é   ", pad("é", 4))
}
