package rarity

import (
	"sort"
	"strconv"
	"strings"

	"github.com/inj-ninja/raritas/internal/models"
)

// Table is the in-memory view of a persisted rarity table, joined with the
// token metadata it was computed from. Presentation surfaces load it once at
// startup and answer every lookup from it.
type Table struct {
	traits []string
	rows   []*models.RarityRow
	byKey  map[string]*models.RarityRow
	tokens map[string]*models.TokenMetadata
}

// NewTable builds a lookup table over the given rows and metadata.
func NewTable(rows []*models.RarityRow, tokens map[string]*models.TokenMetadata, traits []string) *Table {
	byKey := make(map[string]*models.RarityRow, len(rows))
	for _, row := range rows {
		byKey[row.Key.String()] = row
	}
	return &Table{traits: traits, rows: rows, byKey: byKey, tokens: tokens}
}

// Len returns the number of rows in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// Traits returns the configured trait column names in order.
func (t *Table) Traits() []string {
	return t.traits
}

// Lookup finds one token's rarity row by token number or by free-text title.
// Title matching is case-insensitive. A miss returns ok=false; it is a normal
// negative result.
func (t *Table) Lookup(query string) (*models.RarityRow, *models.TokenMetadata, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, false
	}

	if _, err := strconv.ParseInt(query, 10, 64); err == nil {
		if row, ok := t.byKey[query]; ok {
			return row, t.tokens[query], true
		}
	}

	if row, ok := t.byKey[query]; ok {
		return row, t.tokens[query], true
	}

	lowered := strings.ToLower(query)
	for key, token := range t.tokens {
		if strings.ToLower(token.Title) == lowered {
			if row, ok := t.byKey[key]; ok {
				return row, token, true
			}
		}
	}

	return nil, nil, false
}

// Top returns the n rarest tokens ordered by Total ascending, ties broken by
// key so the leaderboard is stable.
func (t *Table) Top(n int) []*models.RarityRow {
	sorted := make([]*models.RarityRow, len(t.rows))
	copy(sorted, t.rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total < sorted[j].Total
		}
		return sorted[i].Key.Less(sorted[j].Key)
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Token returns the metadata entry behind a rarity row.
func (t *Table) Token(key models.TokenKey) (*models.TokenMetadata, bool) {
	token, ok := t.tokens[key.String()]
	return token, ok
}
