package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() string {
	return "inj1" + strings.Repeat("q", 58)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", validAddress())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://products.exchange.grpc-web.injective.network", cfg.ExplorerBaseURL)
	assert.Equal(t, "https://ipfs.io/ipfs/", cfg.IPFSGateway)
	assert.Equal(t, 40, cfg.ResolveBatchSize)
	assert.Equal(t, StoreBackendFile, cfg.StoreBackend)
	assert.Equal(t, []string{"background", "face", "body", "weapon", "head", "necklace"}, cfg.TraitNames)
}

func TestLoadConfigRequiresContract(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateRejectsBadBackend(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", validAddress())
	t.Setenv("STORE_BACKEND", "redis")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateNormalizesGateway(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", validAddress())
	t.Setenv("IPFS_GATEWAY", "https://gateway.example.com/ipfs")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example.com/ipfs/", cfg.IPFSGateway)
}

func TestTraitNamesFromEnv(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", validAddress())
	t.Setenv("TRAIT_NAMES", "background, eyes ,mouth")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"background", "eyes", "mouth"}, cfg.TraitNames)
}

func TestValidateRejectsBadBatchSize(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", validAddress())
	t.Setenv("RESOLVE_BATCH_SIZE", "0")

	cfg := LoadConfigUnchecked()
	cfg.ResolveBatchSize = 0
	assert.Error(t, cfg.Validate())
}
