package workflow

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/Mohsinsiddi/w3flow/internal/deploy"
	"github.com/Mohsinsiddi/w3flow/internal/distribute"
	"github.com/Mohsinsiddi/w3flow/internal/store"
)

// Deployer creates the token contracts.
type Deployer interface {
	DeployERC20(ctx context.Context, params deploy.ERC20Params) (*store.ERC20Record, error)
	DeployERC721(ctx context.Context, params deploy.NFTParams) (*store.NFTRecord, error)
}

// Distributor performs the batch sends.
type Distributor interface {
	Withdraw(ctx context.Context, destination, amountEth string) error
	RandomNative(ctx context.Context, count int, minEth, maxEth string, delay time.Duration) (int, error)
	SendERC20(ctx context.Context, address string, count int, amountPerTx string, delay time.Duration) (int, error)
	SendNFT(ctx context.Context, address string, count int, delay time.Duration) (distribute.NFTResult, error)
}

// Workflow is one menu entry.
type Workflow struct {
	ID    string // metrics label
	Label string // menu text
	run   func(ctx context.Context) error
}

// actions binds the configured parameters to the domain operations.
type actions struct {
	cfg    *config.Config
	deploy Deployer
	dist   Distributor
}

func (a *actions) workflows() []Workflow {
	return []Workflow{
		{ID: "withdraw", Label: "1) Bridge L2 -> L1", run: a.withdraw},
		{ID: "random_native", Label: "2) Random Native Transfers", run: a.randomNative},
		{ID: "erc20_deploy", Label: "3) Deploy ERC-20", run: func(ctx context.Context) error {
			_, err := a.deployERC20(ctx)
			return err
		}},
		{ID: "erc20_send", Label: "4) Auto-send ERC-20", run: func(ctx context.Context) error {
			return a.sendERC20(ctx, "")
		}},
		{ID: "nft_deploy", Label: "5) Deploy NFT (ERC721)", run: func(ctx context.Context) error {
			_, err := a.deployNFT(ctx)
			return err
		}},
		{ID: "nft_send", Label: "6) Auto-send NFT (ERC721)", run: func(ctx context.Context) error {
			return a.sendNFT(ctx, "")
		}},
		{ID: "run_all", Label: "7) Run All Transactions", run: a.runAll},
	}
}

func (a *actions) withdraw(ctx context.Context) error {
	return a.dist.Withdraw(ctx, a.cfg.Withdraw.Destination, a.cfg.Withdraw.AmountEth)
}

func (a *actions) randomNative(ctx context.Context) error {
	rn := a.cfg.RandomNative
	_, err := a.dist.RandomNative(ctx, rn.TxCount, rn.MinEth, rn.MaxEth, rn.Delay)
	return err
}

func (a *actions) deployERC20(ctx context.Context) (*store.ERC20Record, error) {
	c := a.cfg.ERC20
	return a.deploy.DeployERC20(ctx, deploy.ERC20Params{Name: c.Name, Symbol: c.Symbol, Decimals: c.Decimals, Supply: c.Supply})
}

func (a *actions) sendERC20(ctx context.Context, address string) error {
	s := a.cfg.ERC20.AutoSend
	_, err := a.dist.SendERC20(ctx, address, s.TxCount, s.AmountPerTx, s.Delay)
	return err
}

func (a *actions) deployNFT(ctx context.Context) (*store.NFTRecord, error) {
	c := a.cfg.NFT
	return a.deploy.DeployERC721(ctx, deploy.NFTParams{Name: c.Name, Symbol: c.Symbol, Supply: c.Supply, MintChunk: c.MintChunk})
}

func (a *actions) sendNFT(ctx context.Context, address string) error {
	s := a.cfg.NFT.AutoSend
	_, err := a.dist.SendNFT(ctx, address, s.TxCount, s.Delay)
	return err
}

// runAll executes every enabled step in order and stops at the first
// failure. Completed steps are not rolled back.
func (a *actions) runAll(ctx context.Context) error {
	if a.cfg.Withdraw.Enabled {
		if err := a.withdraw(ctx); err != nil {
			return err
		}
	}
	if a.cfg.RandomNative.Enabled {
		if err := a.randomNative(ctx); err != nil {
			return err
		}
	}

	// auto-send targets the token deployed in this run, else the last record
	var erc20Addr, nftAddr string
	if a.cfg.ERC20.Enabled {
		rec, err := a.deployERC20(ctx)
		if err != nil {
			return err
		}
		erc20Addr = rec.Address
	}
	if a.cfg.ERC20.AutoSend.Enabled {
		if err := a.sendERC20(ctx, erc20Addr); err != nil {
			return err
		}
	}
	if a.cfg.NFT.Enabled {
		rec, err := a.deployNFT(ctx)
		if err != nil {
			return err
		}
		nftAddr = rec.Address
	}
	if a.cfg.NFT.AutoSend.Enabled {
		if err := a.sendNFT(ctx, nftAddr); err != nil {
			return err
		}
	}
	return nil
}
