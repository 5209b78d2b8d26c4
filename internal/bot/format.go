package bot

import (
	"fmt"
	"strings"

	"github.com/inj-ninja/raritas/internal/models"
)

// FormatRow renders one token's full rarity breakdown. Percentages are
// rounded here, at presentation time only; the persisted table keeps full
// precision.
func FormatRow(row *models.RarityRow, token *models.TokenMetadata, traits []string) string {
	var b strings.Builder

	title := row.Key.String()
	if token != nil && token.Title != "" {
		title = token.Title
	}
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Overall rank: %d (score %.2f%%)\n", row.RankTotal, row.Total)

	for _, trait := range traits {
		value := ""
		if token != nil {
			value = token.Traits[trait]
		}
		if value == "" {
			value = "none"
		}
		fmt.Fprintf(&b, "%s: %s - %.2f%%, rank %d\n", trait, value, row.Rarity[trait], row.Rank[trait])
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatLeaderboard renders the top-N rarest tokens, rarest first.
func FormatLeaderboard(rows []*models.RarityRow, lookup models.RarityLookup) string {
	var b strings.Builder
	b.WriteString("Rarest tokens:\n")
	for i, row := range rows {
		name := row.Key.String()
		if _, token, ok := lookup.Lookup(row.Key.String()); ok && token != nil && token.Title != "" {
			name = token.Title
		}
		fmt.Fprintf(&b, "%d. %s - rank %d (%.2f%%)\n", i+1, name, row.RankTotal, row.Total)
	}
	return strings.TrimRight(b.String(), "\n")
}
