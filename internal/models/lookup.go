package models

// RarityLookup is the read-only view of a computed rarity table consumed by
// the presentation surfaces (chat bot, HTTP API).
type RarityLookup interface {
	// Lookup finds one token by number or by free-text title
	// (case-insensitive). A miss is a normal negative result, not an error.
	Lookup(query string) (*RarityRow, *TokenMetadata, bool)

	// Top returns the n rarest tokens ordered by Total ascending.
	Top(n int) []*RarityRow

	// Traits returns the configured trait column names in order.
	Traits() []string
}
