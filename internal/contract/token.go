package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Token reads token state through eth_call.
type Token struct {
	client  chain.Client
	address common.Address
	abi     abi.ABI
}

// NewERC20 returns a reader for an ERC-20 token.
func NewERC20(client chain.Client, address common.Address) *Token {
	return &Token{client: client, address: address, abi: ERC20.ABI}
}

// NewERC721 returns a reader for an ERC-721 collection.
func NewERC721(client chain.Client, address common.Address) *Token {
	return &Token{client: client, address: address, abi: ERC721.ABI}
}

// Address returns the token contract address.
func (t *Token) Address() common.Address { return t.address }

// Name returns name().
func (t *Token) Name(ctx context.Context) (string, error) {
	var out string
	err := t.call(ctx, &out, "name")
	return out, err
}

// Symbol returns symbol().
func (t *Token) Symbol(ctx context.Context) (string, error) {
	var out string
	err := t.call(ctx, &out, "symbol")
	return out, err
}

// Decimals returns decimals(). ERC-721 collections have none.
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	var out uint8
	err := t.call(ctx, &out, "decimals")
	return out, err
}

// TotalSupply returns totalSupply().
func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	out := new(big.Int)
	err := t.call(ctx, &out, "totalSupply")
	return out, err
}

// BalanceOf returns balanceOf(owner).
func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	out := new(big.Int)
	err := t.call(ctx, &out, "balanceOf", owner)
	return out, err
}

// OwnerOf returns ownerOf(id). Unminted ids revert.
func (t *Token) OwnerOf(ctx context.Context, id *big.Int) (common.Address, error) {
	var out common.Address
	err := t.call(ctx, &out, "ownerOf", id)
	return out, err
}

func (t *Token) call(ctx context.Context, out interface{}, method string, args ...interface{}) error {
	if _, ok := t.abi.Methods[method]; !ok {
		return fmt.Errorf("%s: method not in ABI", method)
	}
	data, err := t.abi.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", method, err)
	}
	raw, err := t.client.Call(ctx, t.address, data)
	if err != nil {
		return err
	}
	values, err := t.abi.Unpack(method, raw)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", method, err)
	}
	if len(values) != 1 {
		return fmt.Errorf("decoding %s: expected 1 value, got %d", method, len(values))
	}
	return assign(out, values[0], method)
}

func assign(out, v interface{}, method string) error {
	switch dst := out.(type) {
	case *string:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("decoding %s: unexpected %T", method, v)
		}
		*dst = s
	case *uint8:
		n, ok := v.(uint8)
		if !ok {
			return fmt.Errorf("decoding %s: unexpected %T", method, v)
		}
		*dst = n
	case **big.Int:
		n, ok := v.(*big.Int)
		if !ok {
			return fmt.Errorf("decoding %s: unexpected %T", method, v)
		}
		(*dst).Set(n)
	case *common.Address:
		a, ok := v.(common.Address)
		if !ok {
			return fmt.Errorf("decoding %s: unexpected %T", method, v)
		}
		*dst = a
	default:
		return fmt.Errorf("decoding %s: unsupported target %T", method, out)
	}
	return nil
}
