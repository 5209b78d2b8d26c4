package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/inj-ninja/raritas/internal/explorer"
	"github.com/inj-ninja/raritas/internal/models"
	"github.com/inj-ninja/raritas/pkg/logger"
)

// DefaultGateway is the public IPFS gateway used to dereference
// content-addressed metadata pointers.
const DefaultGateway = "https://ipfs.io/ipfs/"

// ResolveURI rewrites a content-addressed ipfs:// pointer to a fetchable
// HTTP(S) URL via the given gateway prefix. Non-IPFS URIs pass through as-is.
func ResolveURI(uri, gateway string) string {
	if cid, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		return gateway + cid
	}
	return uri
}

// Resolver dereferences mint metadata URIs and fetches the JSON documents
// behind them, concurrently in fixed-size batches.
type Resolver struct {
	logger *logger.Logger

	gateway    string
	batchSize  int
	batchPause time.Duration
	http       *http.Client

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewResolver creates a resolver fetching through the given gateway.
func NewResolver(gateway string, batchSize int, batchPause time.Duration, timeout time.Duration, logger *logger.Logger) *Resolver {
	return &Resolver{
		logger:     logger,
		gateway:    gateway,
		batchSize:  batchSize,
		batchPause: batchPause,
		http:       &http.Client{Timeout: timeout},
		sleep:      time.Sleep,
	}
}

type fetchResult struct {
	uri   string
	token *models.TokenMetadata
	err   error
}

// Resolve fetches the metadata document behind every mint record and maps it
// into a token metadata entry keyed by title. Fetches run through a bounded
// worker pool sized to the batch, one batch at a time, with a pause between
// batches as crude backpressure against the gateway. A failed or malformed
// document is dropped and counted, never retried; the rest of the batch
// continues. Returns the resolved entries and the rejected-record count.
func (r *Resolver) Resolve(ctx context.Context, mints []*explorer.MintRecord) (map[string]*models.TokenMetadata, int, error) {
	tokens := make(map[string]*models.TokenMetadata, len(mints))
	rejected := 0

	pool := pond.NewResultPool[*fetchResult](r.batchSize, pond.WithContext(ctx))
	defer pool.StopAndWait()

	for start := 0; start < len(mints); start += r.batchSize {
		end := start + r.batchSize
		if end > len(mints) {
			end = len(mints)
		}

		group := pool.NewGroup()
		for _, mint := range mints[start:end] {
			uri := mint.MetadataURI
			group.SubmitErr(func() (*fetchResult, error) {
				token, err := r.fetchDocument(ctx, uri)
				// Failures travel inside the result so one bad URI does not
				// cancel the rest of the group.
				return &fetchResult{uri: uri, token: token, err: err}, nil
			})
		}

		results, err := group.Wait()
		if err != nil {
			return nil, rejected, fmt.Errorf("metadata batch aborted: %w", err)
		}

		for _, res := range results {
			if res.err != nil {
				rejected++
				r.logger.Warn("Dropping metadata document ", "uri ", res.uri, " error ", res.err)
				continue
			}
			tokens[res.token.Key.String()] = res.token
		}

		if end < len(mints) {
			r.sleep(r.batchPause)
		}
	}

	r.logger.Info("Resolved metadata ", "tokens ", len(tokens), " rejected ", rejected)
	return tokens, rejected, nil
}

// fetchDocument fetches and maps a single metadata document.
func (r *Resolver) fetchDocument(ctx context.Context, uri string) (*models.TokenMetadata, error) {
	url := ResolveURI(uri, r.gateway)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}

	return MapDocument(body, r.gateway)
}

// MapDocument converts a raw metadata document into a token metadata entry.
// The title is required since it carries the token key; every other field is
// taken as-is. Trait fields present with a null value become the empty string
// so the rarity engine can score absence as its own category; trait fields
// missing entirely stay missing and are rejected later, at scoring time.
func MapDocument(raw []byte, gateway string) (*models.TokenMetadata, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed metadata document: %w", err)
	}

	title := decodeString(doc["title"])
	if title == "" {
		return nil, fmt.Errorf("metadata document has no title")
	}

	token := &models.TokenMetadata{
		Key:         models.KeyFromTitle(title),
		Title:       title,
		Description: decodeString(doc["description"]),
		Traits:      make(map[string]string),
		Tags:        doc["tags"],
	}

	if media := decodeString(doc["media"]); media != "" {
		token.Media = ResolveURI(media, gateway)
	}

	for name, value := range doc {
		switch name {
		case "title", "description", "media", "tags":
			continue
		}
		token.Traits[name] = decodeString(value)
	}

	return token, nil
}

// decodeString decodes a raw JSON value into its string form. JSON null and a
// missing field both come out as the empty string; non-string scalars keep
// their literal text.
func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
