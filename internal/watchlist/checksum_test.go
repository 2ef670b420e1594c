package watchlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToChecksum_VitalikAddress(t *testing.T) {
	assert.Equal(t, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", ToChecksum("d8da6bf26964af9d7eed9e03e53415d37aa96045"))
}

func TestToChecksum_USDC(t *testing.T) {
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", ToChecksum("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"))
}

func TestToChecksum_DigitsOnly(t *testing.T) {
	assert.Equal(t, "0x0000000000000000000000000000000000000001", ToChecksum("0000000000000000000000000000000000000001"))
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"checksummed", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", nil},
		{"all lower", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", nil},
		{"all upper", "0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", nil},
		{"bad mixed case", "0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045", "", ErrChecksumMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAddress(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAddressRejectsMalformed(t *testing.T) {
	_, err := ValidateAddress("0x1234")
	assert.ErrorContains(t, err, "invalid address length")

	_, err = ValidateAddress("0xzz8da6bf26964af9d7eed9e03e53415d37aa9604")
	assert.ErrorContains(t, err, "invalid hex")
}
