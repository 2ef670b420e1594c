// Package portfolio builds the wallet and token panels from read-only
// chain queries.
package portfolio

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/contract"
	"github.com/Mohsinsiddi/w3flow/internal/tracker"
	"github.com/Mohsinsiddi/w3flow/internal/watchlist"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds parallel token lookups.
const maxConcurrentReads = 4

// Defaults shown when a token field cannot be read.
const (
	defaultERC20Name   = "ERC20"
	defaultERC20Symbol = "TKN"
	defaultDecimals    = 18
	defaultNFTName     = "NFT"
	defaultNFTSymbol   = "NFT"
)

// Portfolio refreshes the wallet and token panels.
type Portfolio struct {
	client    chain.Client
	watchlist *watchlist.Registry
	tracker   *tracker.Tracker
	sink      console.Sink
	network   config.NetworkConfig
	logger    *zap.Logger
}

// New creates a Portfolio.
func New(client chain.Client, reg *watchlist.Registry, tr *tracker.Tracker, sink console.Sink, network config.NetworkConfig, logger *zap.Logger) *Portfolio {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Portfolio{client: client, watchlist: reg, tracker: tr, sink: sink, network: network, logger: logger}
}

// Wallet reads balance, fee data and nonce. The max fee per gas also
// becomes the tracker's displayed gas price.
func (p *Portfolio) Wallet(ctx context.Context) (console.WalletView, error) {
	addr := p.client.Address()

	var (
		bal   *big.Int
		fees  *chain.FeeData
		nonce uint64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bal, err = p.client.BalanceAt(gctx, addr)
		return err
	})
	g.Go(func() (err error) {
		fees, err = p.client.FeeData(gctx)
		return err
	})
	g.Go(func() (err error) {
		nonce, err = p.client.NonceAt(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return console.WalletView{}, err
	}

	p.tracker.ObserveFeeData(fees.MaxFeePerGas)
	return console.WalletView{
		Address:       addr.Hex(),
		NativeBalance: chain.FormatEther(bal) + " " + p.network.NativeSymbol,
		Network:       p.network.Label,
		GasPrice:      fmt.Sprintf("%.2f gwei", chain.WeiToGwei(fees.MaxFeePerGas)),
		Nonce:         strconv.FormatUint(nonce, 10),
	}, nil
}

// RefreshWallet pushes a fresh wallet view and stats snapshot.
func (p *Portfolio) RefreshWallet(ctx context.Context) error {
	view, err := p.Wallet(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh wallet: %w", err)
	}
	p.sink.UpdateWallet(view)
	p.tracker.PushStats()
	return nil
}

// Tokens reads every watched token concurrently and returns the padded
// panel rows. With onlyPositive, zero balances are dropped unless that
// would leave nothing to show.
func (p *Portfolio) Tokens(ctx context.Context, onlyPositive bool) []console.TokenItem {
	entries := p.watchlist.Load().Entries()
	metas := make([]*tokenMeta, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, e := range entries {
		g.Go(func() error {
			meta, err := p.read(gctx, e)
			if err != nil {
				p.logger.Debug("skipping watched token", zap.String("address", e.Address), zap.Error(err))
				return nil
			}
			metas[i] = meta
			return nil
		})
	}
	_ = g.Wait()

	var all, positive []console.TokenItem
	for _, m := range metas {
		if m == nil {
			continue
		}
		all = append(all, m.item)
		if m.balance.Sign() > 0 {
			positive = append(positive, m.item)
		}
	}
	if onlyPositive && len(positive) > 0 {
		return console.PadTokens(positive)
	}
	return console.PadTokens(all)
}

// RefreshTokens pushes a fresh token panel.
func (p *Portfolio) RefreshTokens(ctx context.Context) {
	p.sink.SetTokens(p.Tokens(ctx, true))
}

// Refresh updates both panels. A wallet failure is logged, not returned.
func (p *Portfolio) Refresh(ctx context.Context) {
	if err := p.RefreshWallet(ctx); err != nil {
		p.sink.Log(console.LevelWarning, err.Error())
		p.logger.Warn("wallet refresh failed", zap.Error(err))
	}
	p.RefreshTokens(ctx)
}

type tokenMeta struct {
	item    console.TokenItem
	balance *big.Int
}

func (p *Portfolio) read(ctx context.Context, e watchlist.Entry) (*tokenMeta, error) {
	if !common.IsHexAddress(e.Address) {
		return nil, fmt.Errorf("invalid address %q", e.Address)
	}
	addr := common.HexToAddress(e.Address)
	owner := p.client.Address()

	if e.Kind == watchlist.ERC721 {
		tok := contract.NewERC721(p.client, addr)
		name := readText(ctx, tok.Name, defaultNFTName)
		symbol := readText(ctx, tok.Symbol, defaultNFTSymbol)
		bal, err := tok.BalanceOf(ctx, owner)
		if err != nil {
			bal = new(big.Int)
		}
		return &tokenMeta{
			item:    console.TokenItem{Enabled: true, Name: name, Symbol: symbol, Balance: bal.String() + " " + symbol},
			balance: bal,
		}, nil
	}

	tok := contract.NewERC20(p.client, addr)
	name := readText(ctx, tok.Name, defaultERC20Name)
	symbol := readText(ctx, tok.Symbol, defaultERC20Symbol)
	decimals, err := tok.Decimals(ctx)
	if err != nil {
		decimals = defaultDecimals
	}
	bal, err := tok.BalanceOf(ctx, owner)
	if err != nil {
		bal = new(big.Int)
	}
	return &tokenMeta{
		item:    console.TokenItem{Enabled: true, Name: name, Symbol: symbol, Balance: chain.FormatUnits(bal, decimals) + " " + symbol},
		balance: bal,
	}, nil
}

func readText(ctx context.Context, read func(context.Context) (string, error), def string) string {
	v, err := read(ctx)
	if err != nil || v == "" {
		return def
	}
	return v
}
