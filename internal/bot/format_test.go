package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inj-ninja/raritas/internal/models"
)

type fakeLookup struct {
	tokens map[string]*models.TokenMetadata
	rows   map[string]*models.RarityRow
}

func (f *fakeLookup) Lookup(query string) (*models.RarityRow, *models.TokenMetadata, bool) {
	row, ok := f.rows[query]
	if !ok {
		return nil, nil, false
	}
	return row, f.tokens[query], true
}

func (f *fakeLookup) Top(n int) []*models.RarityRow { return nil }

func (f *fakeLookup) Traits() []string { return []string{"background", "weapon"} }

func testRow(key string, bg, weapon float64, bgRank, weaponRank, rankTotal int) *models.RarityRow {
	return &models.RarityRow{
		Key:       models.KeyFromString(key),
		Rarity:    map[string]float64{"background": bg, "weapon": weapon},
		Rank:      map[string]int{"background": bgRank, "weapon": weaponRank},
		Total:     (bg + weapon) / 2,
		RankTotal: rankTotal,
	}
}

func TestFormatRow(t *testing.T) {
	row := testRow("42", 20, 33.333333, 1, 2, 1)
	token := &models.TokenMetadata{
		Key:    models.KeyFromTitle("Ninja #42"),
		Title:  "Ninja #42",
		Traits: map[string]string{"background": "red", "weapon": "kunai"},
	}

	got := FormatRow(row, token, []string{"background", "weapon"})
	assert.Equal(t,
		"Ninja #42\n"+
			"Overall rank: 1 (score 26.67%)\n"+
			"background: red - 20.00%, rank 1\n"+
			"weapon: kunai - 33.33%, rank 2",
		got)
}

func TestFormatRowMissingValues(t *testing.T) {
	row := testRow("7", 60, 40, 3, 2, 3)
	token := &models.TokenMetadata{
		Key:    models.KeyFromTitle("Ninja #7"),
		Title:  "Ninja #7",
		Traits: map[string]string{"background": ""},
	}

	got := FormatRow(row, token, []string{"background", "weapon"})
	assert.Contains(t, got, "background: none - 60.00%, rank 3")
	assert.Contains(t, got, "weapon: none - 40.00%, rank 2")
}

func TestFormatRowWithoutToken(t *testing.T) {
	row := testRow("7", 60, 40, 3, 2, 3)

	got := FormatRow(row, nil, []string{"background"})
	assert.Contains(t, got, "7\n")
	assert.Contains(t, got, "background: none")
}

func TestFormatLeaderboard(t *testing.T) {
	rows := []*models.RarityRow{
		testRow("3", 10, 10, 1, 1, 1),
		testRow("1", 40, 20, 2, 1, 2),
	}
	lookup := &fakeLookup{
		tokens: map[string]*models.TokenMetadata{
			"3": {Title: "Ninja #3"},
			"1": {Title: "Ninja #1"},
		},
		rows: map[string]*models.RarityRow{
			"3": rows[0],
			"1": rows[1],
		},
	}

	got := FormatLeaderboard(rows, lookup)
	assert.Equal(t,
		"Rarest tokens:\n"+
			"1. Ninja #3 - rank 1 (10.00%)\n"+
			"2. Ninja #1 - rank 2 (30.00%)",
		got)
}
