package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	table := NewTable("State", "Field", "Value")
	table.AddRow("entropy", "46")
	table.AddRow("blueprint", "false", "ignored")

	view := table.View(NewStyles(DarkTheme()))
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")

	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], "State")
	assert.Contains(t, lines[1], "Field")
	assert.Contains(t, lines[3], "entropy")
	assert.Contains(t, lines[4], "blueprint")
	assert.NotContains(t, view, "ignored")
}

func TestTable_Empty(t *testing.T) {
	assert.Empty(t, NewTable("x", "a").View(DefaultStyles()))
}
