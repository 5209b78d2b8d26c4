package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/inj-ninja/raritas/internal/models"
	"github.com/inj-ninja/raritas/pkg/logger"
)

const (
	metadataFile = "metadata.json"
	rarityFile   = "rarity.csv"
)

// FileStore persists the metadata map as a single JSON document and the
// rarity table as a CSV file under a data directory. Every save fully
// rewrites the artifact.
type FileStore struct {
	logger *logger.Logger

	dir    string
	traits []string
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, traits []string, logger *logger.Logger) (models.Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{logger: logger, dir: dir, traits: traits}, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) SaveMetadata(_ context.Context, tokens map[string]*models.TokenMetadata) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	path := filepath.Join(s.dir, metadataFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata store: %w", err)
	}

	s.logger.Info("Saved metadata store ", "path ", path, " tokens ", len(tokens))
	return nil
}

func (s *FileStore) LoadMetadata(_ context.Context) (map[string]*models.TokenMetadata, error) {
	path := filepath.Join(s.dir, metadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata store: %w", err)
	}

	tokens := make(map[string]*models.TokenMetadata)
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode metadata store: %w", err)
	}
	return tokens, nil
}

func (s *FileStore) SaveRarity(_ context.Context, rows []*models.RarityRow) error {
	ordered := make([]*models.RarityRow, len(rows))
	copy(ordered, rows)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Key.Less(ordered[j].Key) })

	path := filepath.Join(s.dir, rarityFile)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create rarity table: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(s.header()); err != nil {
		return fmt.Errorf("failed to write rarity header: %w", err)
	}

	for _, row := range ordered {
		record := make([]string, 0, 2*len(s.traits)+3)
		record = append(record, row.Key.String())
		for _, trait := range s.traits {
			record = append(record, formatFloat(row.Rarity[trait]))
		}
		for _, trait := range s.traits {
			record = append(record, strconv.Itoa(row.Rank[trait]))
		}
		record = append(record, formatFloat(row.Total), strconv.Itoa(row.RankTotal))
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write rarity row %s: %w", row.Key.String(), err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush rarity table: %w", err)
	}

	s.logger.Info("Saved rarity table ", "path ", path, " rows ", len(ordered))
	return nil
}

func (s *FileStore) LoadRarity(_ context.Context) ([]*models.RarityRow, error) {
	path := filepath.Join(s.dir, rarityFile)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rarity table: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rarity table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("rarity table is empty")
	}

	want := 2*len(s.traits) + 3
	rows := make([]*models.RarityRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != want {
			return nil, fmt.Errorf("rarity row has %d columns, expected %d", len(record), want)
		}

		row := &models.RarityRow{
			Key:    models.KeyFromString(record[0]),
			Rarity: make(map[string]float64, len(s.traits)),
			Rank:   make(map[string]int, len(s.traits)),
		}
		for i, trait := range s.traits {
			rarity, err := strconv.ParseFloat(record[1+i], 64)
			if err != nil {
				return nil, fmt.Errorf("bad rarity value for %s: %w", trait, err)
			}
			row.Rarity[trait] = rarity

			rank, err := strconv.Atoi(record[1+len(s.traits)+i])
			if err != nil {
				return nil, fmt.Errorf("bad rank value for %s: %w", trait, err)
			}
			row.Rank[trait] = rank
		}

		total, err := strconv.ParseFloat(record[want-2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad total value: %w", err)
		}
		row.Total = total

		rankTotal, err := strconv.Atoi(record[want-1])
		if err != nil {
			return nil, fmt.Errorf("bad total rank value: %w", err)
		}
		row.RankTotal = rankTotal

		rows = append(rows, row)
	}

	return rows, nil
}

func (s *FileStore) header() []string {
	header := make([]string, 0, 2*len(s.traits)+3)
	header = append(header, "number")
	for _, trait := range s.traits {
		header = append(header, "rarity_"+trait)
	}
	for _, trait := range s.traits {
		header = append(header, "rank_"+trait)
	}
	return append(header, "total", "rank_total")
}

// formatFloat keeps full float precision; rounding happens only at
// presentation time.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
