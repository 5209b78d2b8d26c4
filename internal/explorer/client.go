package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/inj-ninja/raritas/pkg/logger"
)

const (
	// PageSize is the server-side page size of the contractTxs endpoint.
	PageSize = 100
)

// Paging is the pagination metadata attached to every page.
type Paging struct {
	Total int `json:"total"`
}

// Transaction is one raw transaction record. Messages is kept raw: depending
// on the explorer version it is either a JSON array or a base64-encoded JSON
// string, and decoding is deferred to the mint extractor.
type Transaction struct {
	Hash     string          `json:"hash"`
	Messages json.RawMessage `json:"messages"`
}

// Page is one fetched batch of transactions. Skip records the offset the page
// was requested with so pages can be reassembled regardless of completion order.
type Page struct {
	Data   []Transaction `json:"data"`
	Paging Paging        `json:"paging"`

	Skip int `json:"-"`
}

// Client fetches contract transactions from the remote explorer API.
type Client struct {
	logger *logger.Logger

	baseURL  string
	contract string
	workers  int
	http     *http.Client
}

// NewClient creates a new explorer client for the given contract address.
func NewClient(baseURL, contract string, workers int, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		logger:   logger,
		baseURL:  baseURL,
		contract: contract,
		workers:  workers,
		http:     &http.Client{Timeout: timeout},
	}
}

// FetchPage retrieves up to PageSize transactions for the contract, offset by skip.
func (c *Client) FetchPage(ctx context.Context, skip int) (*Page, error) {
	url := fmt.Sprintf("%s/api/explorer/v1/contractTxs/%s", c.baseURL, c.contract)
	if skip > 0 {
		url = fmt.Sprintf("%s?skip=%d", url, skip)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build explorer request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page at skip %d: %w", skip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned status %d for skip %d", resp.StatusCode, skip)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read page at skip %d: %w", skip, err)
	}

	page := &Page{Skip: skip}
	if err := json.Unmarshal(body, page); err != nil {
		return nil, fmt.Errorf("failed to decode page at skip %d: %w", skip, err)
	}

	return page, nil
}

// FetchAll retrieves every transaction page for the contract. The total count
// comes off the first page; the remaining offsets are disjoint multiples of
// PageSize and are fetched through a bounded worker pool. Any single page
// failure aborts the whole fetch: the pipeline is a batch job and a partial
// transaction set would corrupt the frequency statistics downstream.
func (c *Client) FetchAll(ctx context.Context) ([]*Page, error) {
	first, err := c.FetchPage(ctx, 0)
	if err != nil {
		return nil, err
	}

	total := first.Paging.Total
	pageCount := (total + PageSize - 1) / PageSize
	c.logger.Info("Fetched first page ", "total ", total, " pages ", pageCount)

	if pageCount <= 1 {
		return []*Page{first}, nil
	}

	pool := pond.NewResultPool[*Page](c.workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for i := 1; i < pageCount; i++ {
		skip := i * PageSize
		group.SubmitErr(func() (*Page, error) {
			return c.FetchPage(ctx, skip)
		})
	}

	rest, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all pages: %w", err)
	}

	pages := append([]*Page{first}, rest...)
	// Completion order is arbitrary; reassemble by the skip each page carries.
	sort.Slice(pages, func(i, j int) bool { return pages[i].Skip < pages[j].Skip })

	fetched := 0
	for _, page := range pages {
		fetched += len(page.Data)
	}
	if fetched != total {
		c.logger.Warn("Transaction count drifted during fetch ", "expected ", total, " got ", fetched)
	}

	return pages, nil
}
