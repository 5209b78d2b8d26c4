package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inj-ninja/raritas/internal/models"
	"github.com/inj-ninja/raritas/pkg/logger"
)

// Smallest valid PNG signature plus padding so sniffing has bytes to chew on.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 32)...)

func fakeMediaServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/png/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	})
	mux.HandleFunc("/text/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text payload"))
	})
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

func newTestFetcher(t *testing.T) (*Fetcher, string) {
	t.Helper()
	dir := t.TempDir()
	f, err := NewFetcher(dir, 4, 5*time.Second, logger.NewNop())
	require.NoError(t, err)
	return f, dir
}

func TestFetchSniffsExtension(t *testing.T) {
	server := fakeMediaServer()
	defer server.Close()

	f, dir := newTestFetcher(t)

	path, err := f.Fetch(context.Background(), models.KeyFromTitle("Ninja #42"), server.URL+"/png/42")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "42.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestFetchOverwrites(t *testing.T) {
	server := fakeMediaServer()
	defer server.Close()

	f, dir := newTestFetcher(t)
	key := models.KeyFromTitle("Ninja #7")

	stale := filepath.Join(dir, "7.png")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	path, err := f.Fetch(context.Background(), key, server.URL+"/png/7")
	require.NoError(t, err)
	assert.Equal(t, stale, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestFetchServerError(t *testing.T) {
	server := fakeMediaServer()
	defer server.Close()

	f, _ := newTestFetcher(t)

	_, err := f.Fetch(context.Background(), models.KeyFromTitle("Ninja #1"), server.URL+"/missing/1")
	assert.ErrorContains(t, err, "status 404")
}

func TestFetchAll(t *testing.T) {
	server := fakeMediaServer()
	defer server.Close()

	f, dir := newTestFetcher(t)

	tokens := map[string]*models.TokenMetadata{
		"1": {Key: models.KeyFromTitle("Ninja #1"), Media: server.URL + "/png/1"},
		"2": {Key: models.KeyFromTitle("Ninja #2"), Media: server.URL + "/png/2"},
		"3": {Key: models.KeyFromTitle("Ninja #3"), Media: server.URL + "/missing/3"},
		"4": {Key: models.KeyFromTitle("Ninja #4")}, // no media URL
	}

	saved, failed := f.FetchAll(context.Background(), tokens)
	assert.Equal(t, 2, saved)
	assert.Equal(t, 1, failed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
