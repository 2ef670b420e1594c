package contract

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DeployRequest builds a contract-creation request from compiled bytecode
// and constructor arguments packed against parsed.
func DeployRequest(parsed abi.ABI, bytecode []byte, gasLimit uint64, args ...interface{}) (chain.Request, error) {
	if len(bytecode) == 0 {
		return chain.Request{}, fmt.Errorf("empty bytecode")
	}
	ctorArgs, err := parsed.Pack("", args...)
	if err != nil {
		return chain.Request{}, fmt.Errorf("encoding constructor: %w", err)
	}
	data := make([]byte, 0, len(bytecode)+len(ctorArgs))
	data = append(data, bytecode...)
	data = append(data, ctorArgs...)
	return chain.Request{Data: data, GasLimit: gasLimit}, nil
}

// Transfer builds an ERC-20 transfer. The gas limit is left to estimation.
func Transfer(token, to common.Address, amount *big.Int) (chain.Request, error) {
	return callRequest(ERC20.ABI, token, nil, 0, "transfer", to, amount)
}

// TransferFrom builds an ERC-721 transferFrom.
func TransferFrom(collection, from, to common.Address, tokenID *big.Int, gasLimit uint64) (chain.Request, error) {
	return callRequest(ERC721.ABI, collection, nil, gasLimit, "transferFrom", from, to, tokenID)
}

// OwnerMintBatch builds a SimpleERC721Batch mint of count sequential ids.
func OwnerMintBatch(collection common.Address, count int64, gasLimit uint64) (chain.Request, error) {
	return callRequest(ERC721.ABI, collection, nil, gasLimit, "ownerMintBatch", big.NewInt(count))
}

// WithdrawEth builds an ArbSys withdrawal of value to destination on L1.
func WithdrawEth(arbsys, destination common.Address, value *big.Int) (chain.Request, error) {
	return callRequest(ArbSys.ABI, arbsys, value, 0, "withdrawEth", destination)
}

func callRequest(parsed abi.ABI, to common.Address, value *big.Int, gasLimit uint64, method string, args ...interface{}) (chain.Request, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return chain.Request{}, fmt.Errorf("encoding %s: %w", method, err)
	}
	return chain.Request{To: &to, Value: value, Data: data, GasLimit: gasLimit}, nil
}
