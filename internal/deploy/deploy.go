// Package deploy compiles, deploys and registers the built-in token
// contracts.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/Mohsinsiddi/w3flow/internal/compiler"
	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/contract"
	"github.com/Mohsinsiddi/w3flow/internal/random"
	"github.com/Mohsinsiddi/w3flow/internal/store"
	"github.com/Mohsinsiddi/w3flow/internal/watchlist"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrNoContractAddress is returned when a deployment confirms without
// creating a contract.
var ErrNoContractAddress = errors.New("deployment receipt has no contract address")

// Submitter sends a tracked transaction.
type Submitter interface {
	Submit(ctx context.Context, req chain.Request, fallbackGas uint64, label string) (*chain.Receipt, error)
}

// PanelRefresher redraws the token panel.
type PanelRefresher interface {
	RefreshTokens(ctx context.Context)
}

// ERC20Params describes a fungible token. Name and Symbol may be
// config.RandomPlaceholder; Supply is in whole tokens.
type ERC20Params struct {
	Name     string
	Symbol   string
	Decimals uint8
	Supply   string
}

// NFTParams describes a collection minted in chunks of MintChunk.
type NFTParams struct {
	Name      string
	Symbol    string
	Supply    int64
	MintChunk int64
}

// Pipeline deploys contracts through the tracker and records the result.
type Pipeline struct {
	compiler  compiler.Compiler
	submitter Submitter
	watchlist *watchlist.Registry
	store     *store.Store
	panel     PanelRefresher
	sink      console.Sink
	gas       config.GasConfig
	rand      *random.Generator
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRandom sets the generator used for placeholder names.
func WithRandom(g *random.Generator) Option {
	return func(p *Pipeline) { p.rand = g }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline.
func New(c compiler.Compiler, sub Submitter, reg *watchlist.Registry, st *store.Store, panel PanelRefresher, sink console.Sink, gas config.GasConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		compiler:  c,
		submitter: sub,
		watchlist: reg,
		store:     st,
		panel:     panel,
		sink:      sink,
		gas:       gas,
		rand:      random.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DeployERC20 deploys a SimpleERC20 holding the full supply for the
// sender, then registers and persists it.
func (p *Pipeline) DeployERC20(ctx context.Context, params ERC20Params) (*store.ERC20Record, error) {
	name := resolve(params.Name, func() string { return p.rand.Name("Token") })
	symbol := resolve(params.Symbol, func() string { return p.rand.Symbol(3) })

	supply, err := chain.ParseUnits(params.Supply, params.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid erc20 supply: %w", err)
	}

	p.sink.Log(console.LevelInfo, fmt.Sprintf("Deploy ERC20: %s (%s) supply=%s dec=%d", name, symbol, params.Supply, params.Decimals))
	addr, err := p.deploy(ctx, compiler.UnitERC20, p.gas.ERC20Deploy, "Deploy ERC20", name, symbol, params.Decimals, supply)
	if err != nil {
		return nil, err
	}

	if _, err := p.watchlist.Add(watchlist.ERC20, addr.Hex()); err != nil {
		return nil, err
	}
	p.panel.RefreshTokens(ctx)

	rec := &store.ERC20Record{Address: addr.Hex(), Name: name, Symbol: symbol, Decimals: params.Decimals}
	if err := p.store.SaveERC20(rec); err != nil {
		return nil, fmt.Errorf("failed to persist erc20 record: %w", err)
	}
	p.sink.Log(console.LevelSuccess, fmt.Sprintf("ERC20 deployed at %s", addr.Hex()))
	return rec, nil
}

// DeployERC721 deploys a SimpleERC721Batch and mints the full supply in
// chunks. The record is persisted as soon as the deployment confirms, so a
// failed chunk leaves a durable, partially minted collection behind.
func (p *Pipeline) DeployERC721(ctx context.Context, params NFTParams) (*store.NFTRecord, error) {
	if params.Supply <= 0 {
		return nil, fmt.Errorf("nft supply must be positive, got %d", params.Supply)
	}
	chunk := params.MintChunk
	if chunk <= 0 || chunk > params.Supply {
		chunk = params.Supply
	}
	name := resolve(params.Name, func() string { return p.rand.Name("NFT") })
	symbol := resolve(params.Symbol, func() string { return p.rand.Symbol(3) })

	p.sink.Log(console.LevelInfo, fmt.Sprintf("Deploy NFT: %s (%s) supply=%d", name, symbol, params.Supply))
	addr, err := p.deploy(ctx, compiler.UnitERC721, p.gas.NFTDeploy, "Deploy NFT", name, symbol, big.NewInt(params.Supply))
	if err != nil {
		return nil, err
	}

	rec := &store.NFTRecord{
		Address:     addr.Hex(),
		Name:        name,
		Symbol:      symbol,
		TotalSupply: params.Supply,
		NextToSend:  1,
	}
	if err := p.store.SaveNFT(rec); err != nil {
		return nil, fmt.Errorf("failed to persist nft record: %w", err)
	}

	for minted := int64(0); minted < params.Supply; {
		n := min(chunk, params.Supply-minted)
		req, err := contract.OwnerMintBatch(addr, n, p.gas.NFTMint)
		if err != nil {
			return rec, err
		}
		label := fmt.Sprintf("Mint %d..%d", minted+1, minted+n)
		if _, err := p.submitter.Submit(ctx, req, 0, label); err != nil {
			p.logger.Warn("minting aborted",
				zap.String("collection", addr.Hex()),
				zap.Int64("minted", minted),
				zap.Int64("supply", params.Supply))
			return rec, fmt.Errorf("minting %s: %w", label, err)
		}
		minted += n
	}

	if _, err := p.watchlist.Add(watchlist.ERC721, addr.Hex()); err != nil {
		return rec, err
	}
	p.panel.RefreshTokens(ctx)
	p.sink.Log(console.LevelSuccess, fmt.Sprintf("NFT deployed at %s (%d minted)", addr.Hex(), params.Supply))
	return rec, nil
}

func (p *Pipeline) deploy(ctx context.Context, unit string, gasLimit uint64, label string, args ...interface{}) (common.Address, error) {
	art, err := p.compiler.Compile(ctx, unit)
	if err != nil {
		return common.Address{}, err
	}
	req, err := contract.DeployRequest(art.ABI, art.Bytecode, gasLimit, args...)
	if err != nil {
		return common.Address{}, err
	}
	receipt, err := p.submitter.Submit(ctx, req, 0, label)
	if err != nil {
		return common.Address{}, err
	}
	if receipt.ContractAddress == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s: %w", label, ErrNoContractAddress)
	}
	p.logger.Info("contract deployed",
		zap.String("unit", unit),
		zap.String("address", receipt.ContractAddress.Hex()),
		zap.String("tx_hash", receipt.Hash.Hex()))
	return receipt.ContractAddress, nil
}

func resolve(v string, generate func() string) string {
	if v == config.RandomPlaceholder || v == "" {
		return generate()
	}
	return v
}
