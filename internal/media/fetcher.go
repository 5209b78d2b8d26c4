package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/gabriel-vasile/mimetype"

	"github.com/inj-ninja/raritas/internal/models"
	"github.com/inj-ninja/raritas/pkg/logger"
)

// Fetcher downloads token media into a local directory, keyed by token
// identifier. Existing files are overwritten; there is no retry and no
// checksum.
type Fetcher struct {
	logger *logger.Logger

	dir     string
	workers int
	http    *http.Client
}

// NewFetcher creates a media fetcher writing under dir.
func NewFetcher(dir string, workers int, timeout time.Duration, logger *logger.Logger) (*Fetcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Fetcher{
		logger:  logger,
		dir:     dir,
		workers: workers,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Fetch downloads one media resource and stores it at a path keyed by the
// token identifier, with the extension sniffed from the content.
func (f *Fetcher) Fetch(ctx context.Context, key models.TokenKey, mediaURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build media request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch media %s: %w", mediaURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media server returned status %d for %s", resp.StatusCode, mediaURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read media %s: %w", mediaURL, err)
	}

	path := filepath.Join(f.dir, key.String()+mimetype.Detect(data).Extension())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	f.logger.Debug("Saved media ", "key ", key.String(), " path ", path, " bytes ", len(data))
	return path, nil
}

// FetchAll downloads the media of every token that carries a media URL,
// through a bounded worker pool. Individual failures are logged and counted,
// never retried. Returns the number of files saved and the number of
// failures.
func (f *Fetcher) FetchAll(ctx context.Context, tokens map[string]*models.TokenMetadata) (int, int) {
	pool := pond.NewResultPool[error](f.workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	submitted := 0
	for _, token := range tokens {
		if token.Media == "" {
			continue
		}
		token := token
		submitted++
		group.SubmitErr(func() (error, error) {
			_, err := f.Fetch(ctx, token.Key, token.Media)
			if err != nil {
				f.logger.Warn("Failed to fetch media ", "key ", token.Key.String(), " error ", err)
			}
			return err, nil
		})
	}

	results, _ := group.Wait()
	failed := 0
	for _, err := range results {
		if err != nil {
			failed++
		}
	}

	f.logger.Info("Media fetch finished ", "saved ", submitted-failed, " failed ", failed)
	return submitted - failed, failed
}
