package models

// RarityRow is one row of the rarity table, wholly derived from the token
// metadata and regenerated on every pipeline run.
type RarityRow struct {
	// Key echoes the token metadata key.
	Key TokenKey `json:"key"`
	// Rarity maps trait name to the token's rarity percentage for that trait:
	// the empirical frequency of its value across all tokens, times 100.
	// Lower means rarer.
	Rarity map[string]float64 `json:"rarity"`
	// Rank maps trait name to the token's rank by ascending rarity
	// percentage, min tie-break: tied tokens share the lowest rank and the
	// next distinct value jumps by the tie count.
	Rank map[string]int `json:"rank"`
	// Total is the arithmetic mean of the per-trait rarity percentages.
	Total float64 `json:"total"`
	// RankTotal ranks Total with the same min method.
	RankTotal int `json:"rank_total"`
}
