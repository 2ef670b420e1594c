package random

import (
	"regexp"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbol(t *testing.T) {
	g := NewSeeded(1)
	for range 50 {
		assert.Regexp(t, `^[A-Z]{3}$`, g.Symbol(3))
	}
	assert.Len(t, g.Symbol(5), 5)
	assert.Empty(t, g.Symbol(0))
}

func TestName(t *testing.T) {
	g := New()
	re := regexp.MustCompile(`^Token-[A-Z]{3}[1-9][0-9]{2}$`)
	for range 50 {
		assert.Regexp(t, re, g.Name("Token"))
	}
	assert.Regexp(t, `^NFT-[A-Z]{3}[0-9]{3}$`, g.Name("NFT"))
}

func TestSeededIsDeterministic(t *testing.T) {
	assert.Equal(t, NewSeeded(42).Name("Token"), NewSeeded(42).Name("Token"))
}

func TestAmountWithinRange(t *testing.T) {
	g := NewSeeded(7)
	min := decimal.RequireFromString("0.00001")
	max := decimal.RequireFromString("0.00005")
	for range 200 {
		v := g.Amount(min, max, 8)
		assert.True(t, v.GreaterThanOrEqual(min), v.String())
		assert.True(t, v.LessThan(max), v.String())
		assert.LessOrEqual(t, -v.Exponent(), int32(8))
	}
}

func TestAmountDegenerateRange(t *testing.T) {
	g := NewSeeded(7)
	one := decimal.NewFromInt(1)
	assert.True(t, g.Amount(one, one, 8).Equal(one))
	assert.True(t, g.Amount(one, decimal.Zero, 8).Equal(one))
}

func TestAddressIsFresh(t *testing.T) {
	a, err := Address()
	require.NoError(t, err)
	b, err := Address()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, common.Address{}, a)
}
