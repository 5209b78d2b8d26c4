package rarity

import (
	"sort"

	"github.com/inj-ninja/raritas/internal/models"
)

// Result is the output of one ranking run.
type Result struct {
	// Rows holds one rarity row per scored token, ordered by key.
	Rows []*models.RarityRow
	// Rejected counts the tokens dropped because their metadata was missing
	// a configured trait field.
	Rejected int
}

// Rank computes the rarity table from the full token metadata map.
//
// Per trait column the empirical frequency of every distinct value is taken
// across all scored tokens and each token's rarity percentage is its value's
// frequency times 100, so rarer values score lower. Ranks use the min
// tie-break: tied tokens share the lowest rank and the next distinct value's
// rank jumps by the tie count. The aggregate is the arithmetic mean of the
// per-trait percentages, ranked the same way.
//
// A token whose metadata lacks one of the configured trait fields is rejected
// and counted; a trait value that is present but empty is scored as its own
// category like any other value. The function is pure: rerunning it on an
// unchanged map yields identical rows.
func Rank(tokens map[string]*models.TokenMetadata, traits []string) *Result {
	result := &Result{}

	var scored []*models.TokenMetadata
	for _, token := range tokens {
		if missingTrait(token, traits) {
			result.Rejected++
			continue
		}
		scored = append(scored, token)
	}
	if len(scored) == 0 {
		return result
	}

	// Deterministic processing order regardless of map iteration.
	sort.Slice(scored, func(i, j int) bool { return scored[i].Key.Less(scored[j].Key) })

	rows := make([]*models.RarityRow, len(scored))
	for i, token := range scored {
		rows[i] = &models.RarityRow{
			Key:    token.Key,
			Rarity: make(map[string]float64, len(traits)),
			Rank:   make(map[string]int, len(traits)),
		}
	}

	total := float64(len(scored))
	for _, trait := range traits {
		counts := make(map[string]int)
		for _, token := range scored {
			counts[token.Traits[trait]]++
		}

		values := make([]float64, len(scored))
		for i, token := range scored {
			rarity := float64(counts[token.Traits[trait]]) / total * 100
			rows[i].Rarity[trait] = rarity
			values[i] = rarity
		}

		for i, rank := range minRanks(values) {
			rows[i].Rank[trait] = rank
		}
	}

	totals := make([]float64, len(rows))
	for i, row := range rows {
		sum := 0.0
		for _, trait := range traits {
			sum += row.Rarity[trait]
		}
		row.Total = sum / float64(len(traits))
		totals[i] = row.Total
	}
	for i, rank := range minRanks(totals) {
		rows[i].RankTotal = rank
	}

	result.Rows = rows
	return result
}

// missingTrait reports whether the token's metadata lacks any configured
// trait field. A present-but-empty value does not count as missing.
func missingTrait(token *models.TokenMetadata, traits []string) bool {
	for _, trait := range traits {
		if _, ok := token.Traits[trait]; !ok {
			return true
		}
	}
	return false
}

// minRanks ranks values ascending with the min tie-break method: tied values
// share the lowest possible rank and the next distinct value's rank accounts
// for the number of tied predecessors.
func minRanks(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks := make([]int, len(values))
	for pos, idx := range order {
		if pos > 0 && values[idx] == values[order[pos-1]] {
			ranks[idx] = ranks[order[pos-1]]
		} else {
			ranks[idx] = pos + 1
		}
	}
	return ranks
}
