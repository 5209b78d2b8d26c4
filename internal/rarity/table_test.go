package rarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inj-ninja/raritas/internal/models"
)

func buildTable(t *testing.T) *Table {
	t.Helper()

	tokens := tokenMap(
		tokenWithTraits(1, map[string]string{"background": "red"}),
		tokenWithTraits(2, map[string]string{"background": "red"}),
		tokenWithTraits(3, map[string]string{"background": "blue"}),
		&models.TokenMetadata{
			Key:    models.KeyFromTitle("Special Edition"),
			Title:  "Special Edition",
			Traits: map[string]string{"background": "void"},
		},
	)

	result := Rank(tokens, []string{"background"})
	require.Len(t, result.Rows, 4)
	return NewTable(result.Rows, tokens, []string{"background"})
}

func TestTableLookupByNumber(t *testing.T) {
	table := buildTable(t)

	row, token, ok := table.Lookup("2")
	require.True(t, ok)
	assert.Equal(t, "2", row.Key.String())
	assert.Equal(t, "Ninja #2", token.Title)
}

func TestTableLookupByTitle(t *testing.T) {
	table := buildTable(t)

	row, token, ok := table.Lookup("ninja #3")
	require.True(t, ok)
	assert.Equal(t, "3", row.Key.String())
	assert.Equal(t, "Ninja #3", token.Title)

	row, token, ok = table.Lookup("special edition")
	require.True(t, ok)
	assert.False(t, row.Key.Numeric)
	assert.Equal(t, "Special Edition", token.Title)
}

func TestTableLookupMiss(t *testing.T) {
	table := buildTable(t)

	_, _, ok := table.Lookup("999")
	assert.False(t, ok)

	_, _, ok = table.Lookup("No Such Ninja")
	assert.False(t, ok)

	_, _, ok = table.Lookup("  ")
	assert.False(t, ok)
}

func TestTableTop(t *testing.T) {
	table := buildTable(t)

	top := table.Top(2)
	require.Len(t, top, 2)
	// blue and void are the 25% categories; reds sit at 50%.
	assert.Equal(t, "3", top[0].Key.String())
	assert.Equal(t, "Special Edition", top[1].Key.String())
	assert.LessOrEqual(t, top[0].Total, top[1].Total)

	// Asking for more rows than exist returns everything.
	assert.Len(t, table.Top(100), 4)
}
