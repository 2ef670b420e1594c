package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/deploy"
	"github.com/Mohsinsiddi/w3flow/internal/distribute"
	"github.com/Mohsinsiddi/w3flow/internal/store"
)

// calls records invocations across the fakes in order.
type calls struct {
	mu  sync.Mutex
	log []string
}

func (c *calls) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, s)
}

func (c *calls) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.log...)
}

type fakeDeployer struct {
	calls           *calls
	DeployERC20Err  error
	DeployERC721Err error
}

func (f *fakeDeployer) DeployERC20(_ context.Context, p deploy.ERC20Params) (*store.ERC20Record, error) {
	f.calls.add("deploy_erc20:" + p.Name)
	if f.DeployERC20Err != nil {
		return nil, f.DeployERC20Err
	}
	return &store.ERC20Record{Address: "0xERC20"}, nil
}

func (f *fakeDeployer) DeployERC721(_ context.Context, p deploy.NFTParams) (*store.NFTRecord, error) {
	f.calls.add("deploy_nft:" + p.Name)
	if f.DeployERC721Err != nil {
		return nil, f.DeployERC721Err
	}
	return &store.NFTRecord{Address: "0xNFT"}, nil
}

type fakeDistributor struct {
	calls       *calls
	WithdrawErr error
	// SendNFTFunc, when set, replaces the default SendNFT behaviour.
	SendNFTFunc func(ctx context.Context) error
}

func (f *fakeDistributor) Withdraw(_ context.Context, destination, amountEth string) error {
	f.calls.add("withdraw:" + amountEth)
	return f.WithdrawErr
}

func (f *fakeDistributor) RandomNative(_ context.Context, count int, _, _ string, _ time.Duration) (int, error) {
	f.calls.add("random_native")
	return count, nil
}

func (f *fakeDistributor) SendERC20(_ context.Context, address string, count int, _ string, _ time.Duration) (int, error) {
	f.calls.add("send_erc20:" + address)
	return count, nil
}

func (f *fakeDistributor) SendNFT(ctx context.Context, address string, count int, _ time.Duration) (distribute.NFTResult, error) {
	f.calls.add("send_nft:" + address)
	if f.SendNFTFunc != nil {
		return distribute.NFTResult{}, f.SendNFTFunc(ctx)
	}
	return distribute.NFTResult{Sent: count}, nil
}

type fakeRefresher struct {
	mu sync.Mutex
	n  int
}

func (f *fakeRefresher) Refresh(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() == nil {
		f.n++
	}
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

type fakeStats struct {
	mu sync.Mutex
	n  int
}

func (f *fakeStats) PushStats() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
}

// chanSource is a console.Source backed by a channel.
type chanSource chan int

func (c chanSource) Selections() <-chan int { return c }
