package contracttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Mohsinsiddi/w3flow/internal/compiler"
	"github.com/Mohsinsiddi/w3flow/internal/contract"
)

// Creation code markers the simulator dispatches deployments on.
var (
	erc20Code  = []byte{0x60, 0x80, 0xe2, 0x0c}
	erc721Code = []byte{0x60, 0x80, 0xe7, 0x21}
)

// Compiler returns artifacts for the embedded units without running solc.
type Compiler struct {
	// Err, when set, fails every compilation.
	Err error

	mu    sync.Mutex
	units []string
}

var _ compiler.Compiler = (*Compiler)(nil)

func (c *Compiler) Compile(_ context.Context, unit string) (*compiler.Artifact, error) {
	c.mu.Lock()
	c.units = append(c.units, unit)
	c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	switch unit {
	case compiler.UnitERC20:
		return &compiler.Artifact{Unit: unit, ABI: contract.ERC20.ABI, Bytecode: append([]byte(nil), erc20Code...)}, nil
	case compiler.UnitERC721:
		return &compiler.Artifact{Unit: unit, ABI: contract.ERC721.ABI, Bytecode: append([]byte(nil), erc721Code...)}, nil
	}
	return nil, fmt.Errorf("unknown source unit %q", unit)
}

// Units returns the units requested so far.
func (c *Compiler) Units() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.units...)
}
