package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/inj-ninja/raritas/pkg/validation"
)

const (
	// StoreBackendFile persists the metadata map as a JSON document and the
	// rarity table as a CSV file under DataDir.
	StoreBackendFile = "file"
	// StoreBackendPostgres persists both into Postgres tables.
	StoreBackendPostgres = "postgres"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Explorer configuration
	ExplorerBaseURL string
	ContractAddress string
	FetchWorkers    int
	// Metadata resolution configuration
	IPFSGateway       string
	ResolveBatchSize  int
	ResolveBatchPause time.Duration
	HTTPTimeout       time.Duration
	// Collection configuration
	TraitNames []string
	// Storage configuration
	StoreBackend string
	DataDir      string
	MediaDir     string
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Telegram configuration
	TelegramBotToken string
	OperatorChatID   string
	LeaderboardSize  int
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := LoadConfigUnchecked()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfigUnchecked loads the configuration without validating it, for
// callers that still apply CLI flag overrides before validation.
func LoadConfigUnchecked() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Development:       getEnvAsBool("DEVELOPMENT", false),
		APIPort:           getEnvAsInt("API_PORT", 8517),
		ExplorerBaseURL:   getEnv("EXPLORER_BASE_URL", "https://products.exchange.grpc-web.injective.network"),
		ContractAddress:   getEnv("CONTRACT_ADDRESS", ""),
		FetchWorkers:      getEnvAsInt("FETCH_WORKERS", 8),
		IPFSGateway:       getEnv("IPFS_GATEWAY", "https://ipfs.io/ipfs/"),
		ResolveBatchSize:  getEnvAsInt("RESOLVE_BATCH_SIZE", 40),
		ResolveBatchPause: getEnvAsDuration("RESOLVE_BATCH_PAUSE", time.Second),
		HTTPTimeout:       getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		TraitNames:        getEnvAsList("TRAIT_NAMES", []string{"background", "face", "body", "weapon", "head", "necklace"}),
		StoreBackend:      getEnv("STORE_BACKEND", StoreBackendFile),
		DataDir:           getEnv("DATA_DIR", "data"),
		MediaDir:          getEnv("MEDIA_DIR", "data/media"),
		PostgresUser:      getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:        getEnv("POSTGRES_DB", "raritas"),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		OperatorChatID:    getEnv("OPERATOR_CHAT_ID", ""),
		LeaderboardSize:   getEnvAsInt("LEADERBOARD_SIZE", 10),
	}
}

// Validate checks that all required configuration fields are properly set.
// A defect here is fatal at startup, never silently degraded.
func (c *Config) Validate() error {
	if c.ContractAddress == "" {
		return fmt.Errorf("CONTRACT_ADDRESS is required")
	}

	normalized, err := validation.ValidateAndNormalizeAddress(c.ContractAddress)
	if err != nil {
		return fmt.Errorf("invalid CONTRACT_ADDRESS format: %w", err)
	}
	c.ContractAddress = normalized

	if _, err := url.ParseRequestURI(c.ExplorerBaseURL); err != nil {
		return fmt.Errorf("invalid EXPLORER_BASE_URL: %w", err)
	}

	if _, err := url.ParseRequestURI(c.IPFSGateway); err != nil {
		return fmt.Errorf("invalid IPFS_GATEWAY: %w", err)
	}
	if !strings.HasSuffix(c.IPFSGateway, "/") {
		c.IPFSGateway += "/"
	}

	if len(c.TraitNames) == 0 {
		return fmt.Errorf("TRAIT_NAMES must list at least one trait column")
	}

	if c.StoreBackend != StoreBackendFile && c.StoreBackend != StoreBackendPostgres {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBackendFile, StoreBackendPostgres, c.StoreBackend)
	}

	if c.FetchWorkers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be positive")
	}

	if c.ResolveBatchSize <= 0 {
		return fmt.Errorf("RESOLVE_BATCH_SIZE must be positive")
	}

	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("LEADERBOARD_SIZE must be positive")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(name string, defaultValue []string) []string {
	if valueStr, exists := os.LookupEnv(name); exists {
		parts := strings.Split(valueStr, ",")
		values := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
		if len(values) > 0 {
			return values
		}
	}
	return defaultValue
}
