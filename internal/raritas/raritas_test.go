package raritas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inj-ninja/raritas/internal/config"
	"github.com/inj-ninja/raritas/internal/explorer"
	"github.com/inj-ninja/raritas/internal/media"
	"github.com/inj-ninja/raritas/internal/metadata"
	"github.com/inj-ninja/raritas/internal/repository"
	"github.com/inj-ninja/raritas/pkg/logger"
)

const testContract = "inj1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq"

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 16)...)

// fixture stands in for the explorer and the IPFS gateway at once.
type fixture struct {
	t           *testing.T
	backgrounds []string
}

func (f *fixture) mintTx(number int) map[string]interface{} {
	msg := map[string]interface{}{
		"mint": map[string]interface{}{
			"metadata_uri": fmt.Sprintf("ipfs://meta/%d", number),
		},
	}
	return map[string]interface{}{
		"hash": fmt.Sprintf("0xhash%d", number),
		"messages": []map[string]interface{}{{
			"type": explorer.MsgExecuteContractCompat,
			"value": map[string]interface{}{
				"contract": testContract,
				"msg":      msg,
			},
		}},
	}
}

func (f *fixture) serveExplorer(w http.ResponseWriter, r *http.Request) {
	txs := make([]map[string]interface{}, len(f.backgrounds))
	for i := range f.backgrounds {
		txs[i] = f.mintTx(i + 1)
	}
	resp := map[string]interface{}{
		"data":   txs,
		"paging": map[string]interface{}{"total": len(txs)},
	}
	require.NoError(f.t, json.NewEncoder(w).Encode(resp))
}

func (f *fixture) serveGateway(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/ipfs/")
	switch {
	case strings.HasPrefix(path, "meta/"):
		number, err := strconv.Atoi(strings.TrimPrefix(path, "meta/"))
		require.NoError(f.t, err)
		doc := map[string]interface{}{
			"title":      fmt.Sprintf("Ninja #%d", number),
			"background": f.backgrounds[number-1],
			"weapon":     "katana",
			"media":      fmt.Sprintf("ipfs://media/%d", number),
		}
		require.NoError(f.t, json.NewEncoder(w).Encode(doc))
	case strings.HasPrefix(path, "media/"):
		w.Write(pngBytes)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newPipeline(t *testing.T, backgrounds []string) (*Raritas, string) {
	t.Helper()

	f := &fixture{t: t, backgrounds: backgrounds}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/explorer/v1/contractTxs/", f.serveExplorer)
	mux.HandleFunc("/ipfs/", f.serveGateway)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	log := logger.NewNop()
	dataDir := t.TempDir()
	mediaDir := t.TempDir()

	cfg := &config.Config{
		ExplorerBaseURL: server.URL,
		ContractAddress: testContract,
		IPFSGateway:     server.URL + "/ipfs/",
		TraitNames:      []string{"background", "weapon"},
	}

	store, err := repository.NewFileStore(dataDir, cfg.TraitNames, log)
	require.NoError(t, err)

	client := explorer.NewClient(cfg.ExplorerBaseURL, cfg.ContractAddress, 4, 5*time.Second, log)
	resolver := metadata.NewResolver(cfg.IPFSGateway, 40, time.Millisecond, 5*time.Second, log)
	fetcher, err := media.NewFetcher(mediaDir, 4, 5*time.Second, log)
	require.NoError(t, err)

	return NewRaritas(store, client, resolver, fetcher, log, cfg), mediaDir
}

func TestCrawlPipeline(t *testing.T) {
	// Five tokens: blue and green unique, red appearing three times.
	r, _ := newPipeline(t, []string{"red", "red", "red", "blue", "green"})
	ctx := context.Background()

	require.NoError(t, r.Crawl(ctx))

	table, err := r.LoadTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	row, token, ok := table.Lookup("4")
	require.True(t, ok)
	assert.Equal(t, "Ninja #4", token.Title)
	assert.Equal(t, "blue", token.Traits["background"])
	assert.Equal(t, 20.0, row.Rarity["background"])
	assert.Equal(t, 1, row.Rank["background"])
	assert.Equal(t, 100.0, row.Rarity["weapon"])

	row, _, ok = table.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, 60.0, row.Rarity["background"])
	assert.Equal(t, 3, row.Rank["background"])

	// Lookup by title works too.
	_, token, ok = table.Lookup("ninja #5")
	require.True(t, ok)
	assert.Equal(t, "green", token.Traits["background"])

	_, _, ok = table.Lookup("99")
	assert.False(t, ok)
}

func TestCrawlThenRankIsStable(t *testing.T) {
	r, _ := newPipeline(t, []string{"red", "blue"})
	ctx := context.Background()

	require.NoError(t, r.Crawl(ctx))

	first, err := r.LoadTable(ctx)
	require.NoError(t, err)

	// Re-ranking from the persisted metadata reproduces the same table.
	require.NoError(t, r.Rank(ctx))

	second, err := r.LoadTable(ctx)
	require.NoError(t, err)
	require.Equal(t, first.Len(), second.Len())

	for _, key := range []string{"1", "2"} {
		a, _, ok := first.Lookup(key)
		require.True(t, ok)
		b, _, ok := second.Lookup(key)
		require.True(t, ok)
		assert.Equal(t, a.Rarity, b.Rarity)
		assert.Equal(t, a.Rank, b.Rank)
		assert.Equal(t, a.RankTotal, b.RankTotal)
	}
}

func TestFetchMedia(t *testing.T) {
	r, mediaDir := newPipeline(t, []string{"red", "blue"})
	ctx := context.Background()

	require.NoError(t, r.Crawl(ctx))
	require.NoError(t, r.FetchMedia(ctx))

	entries, err := os.ReadDir(mediaDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := []string{entries[0].Name(), entries[1].Name()}
	assert.ElementsMatch(t, []string{"1.png", "2.png"}, names)
}

func TestRankWithoutMetadataFails(t *testing.T) {
	r, _ := newPipeline(t, []string{"red"})
	assert.Error(t, r.Rank(context.Background()))
}
