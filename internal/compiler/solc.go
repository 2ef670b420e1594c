package compiler

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"go.uber.org/zap"
)

// runFunc executes solc with the standard-JSON input on stdin.
type runFunc func(ctx context.Context, solcPath string, input []byte) ([]byte, error)

// Solc compiles through the solc binary's --standard-json interface and
// caches artifacts for the life of the process.
type Solc struct {
	path   string
	runs   int
	run    runFunc
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]*Artifact
}

var _ Compiler = (*Solc)(nil)

// NewSolc creates a Solc compiler. runs is the optimizer run count.
func NewSolc(path string, runs int, logger *zap.Logger) *Solc {
	if path == "" {
		path = "solc"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solc{path: path, runs: runs, run: execSolc, logger: logger, cache: make(map[string]*Artifact)}
}

// Compile returns the artifact for unit, compiling it on first use.
func (s *Solc) Compile(ctx context.Context, unit string) (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.cache[unit]; ok {
		return a, nil
	}

	src, err := Source(unit)
	if err != nil {
		return nil, err
	}
	input, err := json.Marshal(s.standardInput(unit, src))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("compiling", zap.String("unit", unit), zap.String("solc", s.path))
	out, err := s.run(ctx, s.path, input)
	if err != nil {
		return nil, &CompilationError{Unit: unit, Messages: []string{fmt.Sprintf("running solc: %v", err)}}
	}

	a, err := parseOutput(unit, out)
	if err != nil {
		return nil, err
	}
	s.cache[unit] = a
	return a, nil
}

type standardInput struct {
	Language string                       `json:"language"`
	Sources  map[string]map[string]string `json:"sources"`
	Settings struct {
		Optimizer struct {
			Enabled bool `json:"enabled"`
			Runs    int  `json:"runs"`
		} `json:"optimizer"`
		OutputSelection map[string]map[string][]string `json:"outputSelection"`
	} `json:"settings"`
}

func (s *Solc) standardInput(unit, src string) standardInput {
	var in standardInput
	in.Language = "Solidity"
	in.Sources = map[string]map[string]string{unit + ".sol": {"content": src}}
	in.Settings.Optimizer.Enabled = true
	in.Settings.Optimizer.Runs = s.runs
	in.Settings.OutputSelection = map[string]map[string][]string{
		"*": {"*": {"abi", "evm.bytecode.object"}},
	}
	return in
}

type standardOutput struct {
	Errors []struct {
		Severity         string `json:"severity"`
		Message          string `json:"message"`
		FormattedMessage string `json:"formattedMessage"`
	} `json:"errors"`
	Contracts map[string]map[string]struct {
		ABI json.RawMessage `json:"abi"`
		EVM struct {
			Bytecode struct {
				Object string `json:"object"`
			} `json:"bytecode"`
		} `json:"evm"`
	} `json:"contracts"`
}

func parseOutput(unit string, out []byte) (*Artifact, error) {
	var so standardOutput
	if err := json.Unmarshal(out, &so); err != nil {
		return nil, fmt.Errorf("parsing solc output: %w", err)
	}

	var msgs []string
	for _, e := range so.Errors {
		if e.Severity != "error" {
			continue
		}
		msg := e.FormattedMessage
		if msg == "" {
			msg = e.Message
		}
		msgs = append(msgs, strings.TrimSpace(msg))
	}
	if len(msgs) > 0 {
		return nil, &CompilationError{Unit: unit, Messages: msgs}
	}

	c, ok := so.Contracts[unit+".sol"][unit]
	if !ok {
		return nil, &CompilationError{Unit: unit, Messages: []string{"contract missing from compiler output"}}
	}
	parsed, err := abi.JSON(bytes.NewReader(c.ABI))
	if err != nil {
		return nil, fmt.Errorf("parsing %s ABI: %w", unit, err)
	}
	code, err := hex.DecodeString(strings.TrimPrefix(c.EVM.Bytecode.Object, "0x"))
	if err != nil || len(code) == 0 {
		return nil, &CompilationError{Unit: unit, Messages: []string{"compiler returned no bytecode"}}
	}

	return &Artifact{Unit: unit, ABI: parsed, ABIJSON: c.ABI, Bytecode: code}, nil
}

func execSolc(ctx context.Context, solcPath string, input []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, solcPath, "--standard-json")
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w, output: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
