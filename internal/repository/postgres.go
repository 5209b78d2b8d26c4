package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/inj-ninja/raritas/internal/models"
	"github.com/inj-ninja/raritas/pkg/logger"
)

// tokenRecord is the persisted form of one token metadata entry.
type tokenRecord struct {
	Key         string `gorm:"column:key;primaryKey"`
	Title       string `gorm:"column:title;index"`
	Description string `gorm:"column:description"`
	Traits      string `gorm:"column:traits"`
	Media       string `gorm:"column:media"`
	Tags        string `gorm:"column:tags"`
}

func (tokenRecord) TableName() string { return "token_metadata" }

// rarityRecord is the persisted form of one rarity row.
type rarityRecord struct {
	Key       string  `gorm:"column:key;primaryKey"`
	Rarity    string  `gorm:"column:rarity"`
	Rank      string  `gorm:"column:rank"`
	Total     float64 `gorm:"column:total;index"`
	RankTotal int     `gorm:"column:rank_total"`
}

func (rarityRecord) TableName() string { return "rarity_rows" }

// PostgresStore persists the metadata map and the rarity table in Postgres.
// Saves replace whole tables inside a transaction: the pipeline is a batch
// job and its output has no incremental identity.
type PostgresStore struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewPostgresStore(user, password, dbname, host string, port int, logger *logger.Logger) (models.Store, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Only surface slow queries and errors from GORM.
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(&tokenRecord{}, &rarityRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresStore{Conn: db, logger: logger}, nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

func (s *PostgresStore) SaveMetadata(ctx context.Context, tokens map[string]*models.TokenMetadata) error {
	records := make([]*tokenRecord, 0, len(tokens))
	for key, token := range tokens {
		traits, err := json.Marshal(token.Traits)
		if err != nil {
			return fmt.Errorf("failed to encode traits for %s: %w", key, err)
		}
		records = append(records, &tokenRecord{
			Key:         key,
			Title:       token.Title,
			Description: token.Description,
			Traits:      string(traits),
			Media:       token.Media,
			Tags:        string(token.Tags),
		})
	}

	return s.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&tokenRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear token metadata: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 500).Error; err != nil {
			return fmt.Errorf("failed to insert token metadata: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) LoadMetadata(ctx context.Context) (map[string]*models.TokenMetadata, error) {
	var records []*tokenRecord
	if err := s.Conn.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load token metadata: %w", err)
	}

	tokens := make(map[string]*models.TokenMetadata, len(records))
	for _, record := range records {
		traits := make(map[string]string)
		if record.Traits != "" {
			if err := json.Unmarshal([]byte(record.Traits), &traits); err != nil {
				return nil, fmt.Errorf("failed to decode traits for %s: %w", record.Key, err)
			}
		}
		tokens[record.Key] = &models.TokenMetadata{
			Key:         models.KeyFromString(record.Key),
			Title:       record.Title,
			Description: record.Description,
			Traits:      traits,
			Media:       record.Media,
			Tags:        json.RawMessage(record.Tags),
		}
	}
	return tokens, nil
}

func (s *PostgresStore) SaveRarity(ctx context.Context, rows []*models.RarityRow) error {
	records := make([]*rarityRecord, 0, len(rows))
	for _, row := range rows {
		rarity, err := json.Marshal(row.Rarity)
		if err != nil {
			return fmt.Errorf("failed to encode rarity for %s: %w", row.Key.String(), err)
		}
		rank, err := json.Marshal(row.Rank)
		if err != nil {
			return fmt.Errorf("failed to encode ranks for %s: %w", row.Key.String(), err)
		}
		records = append(records, &rarityRecord{
			Key:       row.Key.String(),
			Rarity:    string(rarity),
			Rank:      string(rank),
			Total:     row.Total,
			RankTotal: row.RankTotal,
		})
	}

	return s.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&rarityRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear rarity rows: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 500).Error; err != nil {
			return fmt.Errorf("failed to insert rarity rows: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) LoadRarity(ctx context.Context) ([]*models.RarityRow, error) {
	var records []*rarityRecord
	if err := s.Conn.WithContext(ctx).Order("total asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load rarity rows: %w", err)
	}

	rows := make([]*models.RarityRow, 0, len(records))
	for _, record := range records {
		row := &models.RarityRow{
			Key:       models.KeyFromString(record.Key),
			Rarity:    make(map[string]float64),
			Rank:      make(map[string]int),
			Total:     record.Total,
			RankTotal: record.RankTotal,
		}
		if err := json.Unmarshal([]byte(record.Rarity), &row.Rarity); err != nil {
			return nil, fmt.Errorf("failed to decode rarity for %s: %w", record.Key, err)
		}
		if err := json.Unmarshal([]byte(record.Rank), &row.Rank); err != nil {
			return nil, fmt.Errorf("failed to decode ranks for %s: %w", record.Key, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
