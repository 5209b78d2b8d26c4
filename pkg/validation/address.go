package validation

import (
	"fmt"
	"strings"
)

// bech32Charset is the character set used by bech32 address encodings.
const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

const (
	// accountAddressLen is the length of a bech32 account address (20-byte payload).
	accountAddressLen = 42
	// contractAddressLen is the length of a bech32 contract address (32-byte payload).
	contractAddressLen = 62
)

// ValidateContractAddress validates an Injective bech32 contract address format.
// Both account-length and contract-length addresses are accepted since some
// collections are administered from an account address.
func ValidateContractAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if !strings.HasPrefix(addr, "inj1") {
		return fmt.Errorf("invalid address prefix: expected inj1, got %q", addr)
	}

	if len(addr) != accountAddressLen && len(addr) != contractAddressLen {
		return fmt.Errorf("invalid address length: expected %d or %d characters, got %d",
			accountAddressLen, contractAddressLen, len(addr))
	}

	for _, c := range addr[4:] {
		if !strings.ContainsRune(bech32Charset, c) {
			return fmt.Errorf("invalid character %q in address", c)
		}
	}

	return nil
}

// NormalizeAddress converts an address to its canonical lowercase form.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ValidateAndNormalizeAddress validates an address and returns its normalized form.
func ValidateAndNormalizeAddress(addr string) (string, error) {
	normalized := NormalizeAddress(addr)
	if err := ValidateContractAddress(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
