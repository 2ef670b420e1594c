package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okOutput = `{
  "errors": [{"severity":"warning","formattedMessage":"Warning: unused variable"}],
  "contracts": {"SimpleERC20.sol": {"SimpleERC20": {
    "abi": [{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}],
    "evm": {"bytecode": {"object": "6080604052"}}
  }}}
}`

func fakeSolc(t *testing.T, out string, calls *int, seen *[]byte) *Solc {
	t.Helper()
	s := NewSolc("solc-test", 200, nil)
	s.run = func(_ context.Context, path string, input []byte) ([]byte, error) {
		assert.Equal(t, "solc-test", path)
		*calls++
		if seen != nil {
			*seen = input
		}
		return []byte(out), nil
	}
	return s
}

// ---------------------------------------------------------------------------
// embedded sources
// ---------------------------------------------------------------------------

func TestEmbeddedSources(t *testing.T) {
	for _, unit := range Units() {
		src, err := Source(unit)
		require.NoError(t, err, unit)
		assert.Contains(t, src, "contract "+unit+" {")
		assert.Contains(t, src, "pragma solidity ^0.8.20;")
	}
	src, _ := Source(UnitERC721)
	assert.Contains(t, src, "function ownerMintBatch(uint256 count)")

	_, err := Source("Nope")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Compile
// ---------------------------------------------------------------------------

func TestCompileBuildsStandardInput(t *testing.T) {
	calls := 0
	var input []byte
	s := fakeSolc(t, okOutput, &calls, &input)

	a, err := s.Compile(context.Background(), UnitERC20)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, a.Bytecode)
	assert.Contains(t, a.ABI.Methods, "name")
	assert.Equal(t, UnitERC20, a.Unit)

	var in standardInput
	require.NoError(t, json.Unmarshal(input, &in))
	assert.Equal(t, "Solidity", in.Language)
	assert.True(t, in.Settings.Optimizer.Enabled)
	assert.Equal(t, 200, in.Settings.Optimizer.Runs)
	assert.Equal(t, []string{"abi", "evm.bytecode.object"}, in.Settings.OutputSelection["*"]["*"])
	assert.Contains(t, in.Sources["SimpleERC20.sol"]["content"], "contract SimpleERC20")
}

func TestCompileCachesPerUnit(t *testing.T) {
	calls := 0
	s := fakeSolc(t, okOutput, &calls, nil)

	first, err := s.Compile(context.Background(), UnitERC20)
	require.NoError(t, err)
	second, err := s.Compile(context.Background(), UnitERC20)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCompileErrorSeverity(t *testing.T) {
	out := `{"errors":[
	  {"severity":"warning","formattedMessage":"Warning: shadowing"},
	  {"severity":"error","formattedMessage":"ParserError: Expected ';'\n"},
	  {"severity":"error","message":"TypeError: bad"}]}`
	calls := 0
	s := fakeSolc(t, out, &calls, nil)

	_, err := s.Compile(context.Background(), UnitERC20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompilation))

	var ce *CompilationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"ParserError: Expected ';'", "TypeError: bad"}, ce.Messages)
	assert.Contains(t, err.Error(), "compiling SimpleERC20")
}

func TestCompileFailureIsNotCached(t *testing.T) {
	calls := 0
	s := fakeSolc(t, `{"errors":[{"severity":"error","message":"boom"}]}`, &calls, nil)
	_, _ = s.Compile(context.Background(), UnitERC20)
	_, _ = s.Compile(context.Background(), UnitERC20)
	assert.Equal(t, 2, calls)
}

func TestCompileMissingContract(t *testing.T) {
	calls := 0
	s := fakeSolc(t, `{"contracts":{}}`, &calls, nil)
	_, err := s.Compile(context.Background(), UnitERC721)
	assert.ErrorIs(t, err, ErrCompilation)
}

func TestCompileEmptyBytecode(t *testing.T) {
	out := strings.Replace(okOutput, "6080604052", "", 1)
	calls := 0
	s := fakeSolc(t, out, &calls, nil)
	_, err := s.Compile(context.Background(), UnitERC20)
	assert.ErrorIs(t, err, ErrCompilation)
}

func TestCompileUnknownUnit(t *testing.T) {
	calls := 0
	s := fakeSolc(t, okOutput, &calls, nil)
	_, err := s.Compile(context.Background(), "Other")
	assert.Error(t, err)
	assert.Equal(t, 0, calls)
}

func TestCompileRunnerError(t *testing.T) {
	s := NewSolc("definitely-not-solc-binary", 200, nil)
	_, err := s.Compile(context.Background(), UnitERC20)
	assert.ErrorIs(t, err, ErrCompilation)
	var cerr *CompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, UnitERC20, cerr.Unit)
	assert.Contains(t, cerr.Messages[0], "running solc")
}

// ---------------------------------------------------------------------------
// real solc (optional)
// ---------------------------------------------------------------------------

func TestCompileWithInstalledSolc(t *testing.T) {
	path, err := exec.LookPath("solc")
	if err != nil {
		t.Skip("solc not installed")
	}
	s := NewSolc(path, 200, nil)
	for _, unit := range Units() {
		a, err := s.Compile(context.Background(), unit)
		require.NoError(t, err, unit)
		assert.NotEmpty(t, a.Bytecode)
	}
}
