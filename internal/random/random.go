// Package random generates throwaway names, amounts and recipients.
package random

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

const upper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator is a source of random values. The zero value is not usable.
type Generator struct {
	r *rand.Rand
}

// New returns a generator seeded from the runtime's random source.
func New() *Generator {
	return &Generator{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a deterministic generator.
func NewSeeded(seed uint64) *Generator {
	return &Generator{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Symbol returns n uppercase letters.
func (g *Generator) Symbol(n int) string {
	var sb strings.Builder
	for range n {
		sb.WriteByte(upper[g.r.IntN(len(upper))])
	}
	return sb.String()
}

// Name returns "<prefix>-XXXnnn", e.g. "Token-QWE123".
func (g *Generator) Name(prefix string) string {
	return fmt.Sprintf("%s-%s%d", prefix, g.Symbol(3), 100+g.r.IntN(900))
}

// Amount returns a value in [min, max) truncated to digits decimal places.
func (g *Generator) Amount(min, max decimal.Decimal, digits int32) decimal.Decimal {
	if max.LessThanOrEqual(min) {
		return min.Truncate(digits)
	}
	span := max.Sub(min)
	v := min.Add(span.Mul(decimal.NewFromFloat(g.r.Float64()))).Truncate(digits)
	if v.GreaterThanOrEqual(max) {
		v = min.Truncate(digits)
	}
	return v
}

// Address returns the address of a freshly generated key. The key is
// discarded, so anything sent there is unrecoverable.
func Address() (common.Address, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, fmt.Errorf("generating recipient: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}
