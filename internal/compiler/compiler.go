// Package compiler turns the embedded Solidity units into deployable
// artifacts.
package compiler

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Source units shipped with the binary.
const (
	UnitERC20  = "SimpleERC20"
	UnitERC721 = "SimpleERC721Batch"
)

//go:embed sources/*.sol
var sources embed.FS

// ErrCompilation is wrapped by every *CompilationError.
var ErrCompilation = errors.New("compilation failed")

// CompilationError carries the compiler's error-severity messages.
type CompilationError struct {
	Unit     string
	Messages []string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compiling %s: %s", e.Unit, strings.Join(e.Messages, "\n"))
}

func (e *CompilationError) Unwrap() error { return ErrCompilation }

// Artifact is the ABI and creation bytecode of one contract.
type Artifact struct {
	Unit     string
	ABI      abi.ABI
	ABIJSON  []byte
	Bytecode []byte
}

// Compiler produces an artifact for a named source unit.
type Compiler interface {
	Compile(ctx context.Context, unit string) (*Artifact, error)
}

// Source returns the embedded Solidity text for unit.
func Source(unit string) (string, error) {
	data, err := sources.ReadFile("sources/" + unit + ".sol")
	if err != nil {
		return "", fmt.Errorf("unknown source unit %q", unit)
	}
	return string(data), nil
}

// Units lists the embedded source units.
func Units() []string {
	return []string{UnitERC20, UnitERC721}
}
