package raritas

import (
	"context"
	"fmt"

	"github.com/inj-ninja/raritas/internal/config"
	"github.com/inj-ninja/raritas/internal/explorer"
	"github.com/inj-ninja/raritas/internal/media"
	"github.com/inj-ninja/raritas/internal/metadata"
	"github.com/inj-ninja/raritas/internal/models"
	"github.com/inj-ninja/raritas/internal/rarity"
	"github.com/inj-ninja/raritas/pkg/logger"
)

// Raritas owns the batch pipeline: crawl mint transactions, resolve their
// metadata, score rarity, persist the table. It is constructed once at
// startup with its collaborators injected; there is no process-wide state.
type Raritas struct {
	logger *logger.Logger
	config *config.Config

	store    models.Store
	explorer *explorer.Client
	resolver *metadata.Resolver
	media    *media.Fetcher
}

// NewRaritas creates a new Raritas instance.
func NewRaritas(
	store models.Store,
	explorerClient *explorer.Client,
	resolver *metadata.Resolver,
	mediaFetcher *media.Fetcher,
	logger *logger.Logger,
	config *config.Config,
) *Raritas {
	return &Raritas{
		logger:   logger,
		config:   config,
		store:    store,
		explorer: explorerClient,
		resolver: resolver,
		media:    mediaFetcher,
	}
}

// Crawl runs the full pipeline: fetch every contract transaction, extract the
// mints, resolve their metadata documents, persist the metadata store, then
// recompute and persist the rarity table. Any prior persisted state is
// replaced wholesale.
func (r *Raritas) Crawl(ctx context.Context) error {
	pages, err := r.explorer.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("transaction fetch failed: %w", err)
	}
	r.logger.Info("Fetched transaction pages ", "pages ", len(pages))

	mints, badTxs := explorer.ExtractMints(pages, r.config.ContractAddress)
	r.logger.Info("Extracted mints ", "mints ", len(mints), " undecodable ", badTxs)
	if len(mints) == 0 {
		return fmt.Errorf("no mints found for contract %s", r.config.ContractAddress)
	}

	tokens, rejected, err := r.resolver.Resolve(ctx, mints)
	if err != nil {
		return fmt.Errorf("metadata resolution failed: %w", err)
	}
	if rejected > 0 {
		r.logger.Warn("Metadata documents rejected ", "count ", rejected)
	}

	if err := r.store.SaveMetadata(ctx, tokens); err != nil {
		return fmt.Errorf("failed to persist metadata: %w", err)
	}

	return r.rank(ctx, tokens)
}

// Rank recomputes the rarity table from the persisted metadata alone.
func (r *Raritas) Rank(ctx context.Context) error {
	tokens, err := r.store.LoadMetadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}
	return r.rank(ctx, tokens)
}

func (r *Raritas) rank(ctx context.Context, tokens map[string]*models.TokenMetadata) error {
	result := rarity.Rank(tokens, r.config.TraitNames)
	if result.Rejected > 0 {
		r.logger.Warn("Tokens rejected at scoring time ", "count ", result.Rejected)
	}
	if len(result.Rows) == 0 {
		return fmt.Errorf("no scorable tokens: every entry was missing a trait field")
	}

	if err := r.store.SaveRarity(ctx, result.Rows); err != nil {
		return fmt.Errorf("failed to persist rarity table: %w", err)
	}

	r.logger.Info("Rarity table computed ", "rows ", len(result.Rows), " rejected ", result.Rejected)
	return nil
}

// FetchMedia downloads every token's media from the persisted metadata.
func (r *Raritas) FetchMedia(ctx context.Context) error {
	tokens, err := r.store.LoadMetadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}

	saved, failed := r.media.FetchAll(ctx, tokens)
	if saved == 0 && failed > 0 {
		return fmt.Errorf("all %d media downloads failed", failed)
	}
	return nil
}

// LoadTable loads the persisted rarity table joined with the metadata store
// for the presentation surfaces.
func (r *Raritas) LoadTable(ctx context.Context) (*rarity.Table, error) {
	rows, err := r.store.LoadRarity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rarity table: %w", err)
	}
	tokens, err := r.store.LoadMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	return rarity.NewTable(rows, tokens, r.config.TraitNames), nil
}
