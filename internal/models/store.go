package models

import "context"

// Store persists the token metadata map and the derived rarity table.
// Both saves fully overwrite the prior state: the pipeline is a batch job
// rerun in full, there is no incremental merge.
type Store interface {
	SaveMetadata(ctx context.Context, tokens map[string]*TokenMetadata) error
	LoadMetadata(ctx context.Context) (map[string]*TokenMetadata, error)

	SaveRarity(ctx context.Context, rows []*RarityRow) error
	LoadRarity(ctx context.Context) ([]*RarityRow, error)

	Close() error
}
