package watchlist

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrChecksumMismatch is returned for a mixed-case address whose casing
// does not match its EIP-55 checksum.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ValidateAddress checks that addr is a 20-byte hex address and, when it
// uses mixed case, that the casing is a valid EIP-55 checksum. All-lower
// and all-upper inputs are accepted. It returns the checksummed form.
func ValidateAddress(addr string) (string, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	if len(clean) != 40 {
		return "", fmt.Errorf("invalid address length: expected 40 hex chars, got %d", len(clean))
	}
	if _, err := hex.DecodeString(clean); err != nil {
		return "", fmt.Errorf("invalid hex address: %w", err)
	}

	checksummed := ToChecksum(clean)
	if clean == strings.ToLower(clean) || clean == strings.ToUpper(clean) {
		return checksummed, nil
	}
	if "0x"+clean != checksummed {
		return "", fmt.Errorf("%w: %s (expected %s)", ErrChecksumMismatch, addr, checksummed)
	}
	return checksummed, nil
}

// ToChecksum implements EIP-55 mixed-case checksum encoding. addr may carry
// a 0x prefix.
func ToChecksum(addr string) string {
	lower := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X"))

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	hash := hex.EncodeToString(h.Sum(nil))

	var result strings.Builder
	result.WriteString("0x")
	for i, c := range lower {
		// letters whose hash nibble is >= 8 are uppercased
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			result.WriteByte(byte(c - 32))
			continue
		}
		result.WriteByte(byte(c))
	}
	return result.String()
}
