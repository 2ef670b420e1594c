package chain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrReverted is returned when a mined receipt reports status 0.
	ErrReverted = errors.New("transaction reverted")
	// ErrNotMined is returned when no receipt shows up before the timeout.
	ErrNotMined = errors.New("transaction not mined")
)

// Client is the chain capability every workflow depends on: one endpoint,
// one signing account.
type Client interface {
	Address() common.Address
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	FeeData(ctx context.Context) (*FeeData, error)
	NonceAt(ctx context.Context) (uint64, error)
	EstimateGas(ctx context.Context, req Request) (uint64, error)
	Send(ctx context.Context, req Request) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Request describes one chain-mutating call. A nil To deploys Data as
// contract creation code. GasLimit 0 leaves the limit to the client.
type Request struct {
	To       *common.Address
	Value    *big.Int
	Data     []byte
	GasLimit uint64
}

// IsDeploy reports whether the request creates a contract.
func (r Request) IsDeploy() bool { return r.To == nil }

// FeeData holds current fee suggestions in wei.
type FeeData struct {
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Receipt holds the parts of a mined receipt the workflows use.
type Receipt struct {
	Hash              common.Hash
	Status            uint64 // 1 = success, 0 = reverted
	BlockNumber       uint64
	GasUsed           uint64
	EffectiveGasPrice *big.Int       // nil when the node omits it
	ContractAddress   common.Address // zero unless the tx deployed a contract
}
