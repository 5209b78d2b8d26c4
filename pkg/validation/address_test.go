package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateContractAddress(t *testing.T) {
	account := "inj1" + strings.Repeat("q", 38)
	contract := "inj1" + strings.Repeat("q", 58)

	assert.NoError(t, ValidateContractAddress(account))
	assert.NoError(t, ValidateContractAddress(contract))

	assert.Error(t, ValidateContractAddress(""))
	assert.Error(t, ValidateContractAddress("cosmos1"+strings.Repeat("q", 38)))
	assert.Error(t, ValidateContractAddress("inj1"+strings.Repeat("q", 10)))
	// bech32 excludes 'b', 'i' and 'o'
	assert.Error(t, ValidateContractAddress("inj1"+strings.Repeat("b", 38)))
}

func TestValidateAndNormalizeAddress(t *testing.T) {
	addr := "INJ1" + strings.Repeat("Q", 38)
	normalized, err := ValidateAndNormalizeAddress("  " + addr + " ")
	assert.NoError(t, err)
	assert.Equal(t, "inj1"+strings.Repeat("q", 38), normalized)

	_, err = ValidateAndNormalizeAddress("not-an-address")
	assert.Error(t, err)
}
