package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	cfg     *config.Config
	calls   *calls
	dep     *fakeDeployer
	dist    *fakeDistributor
	refresh *fakeRefresher
	stats   *fakeStats
	rec     *console.Recorder
	metrics *metrics.Metrics
	engine  *Engine
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.ERC20.Name = "Tok"
	cfg.NFT.Name = "Coll"
	if mutate != nil {
		mutate(cfg)
	}
	c := &calls{}
	f := &fixture{
		cfg:     cfg,
		calls:   c,
		dep:     &fakeDeployer{calls: c},
		dist:    &fakeDistributor{calls: c},
		refresh: &fakeRefresher{},
		stats:   &fakeStats{},
		rec:     &console.Recorder{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.engine = New(cfg, f.dep, f.dist, f.refresh, f.stats, f.rec, WithMetrics(f.metrics))
	return f
}

// ---------------------------------------------------------------------------
// Menu
// ---------------------------------------------------------------------------

func TestMenuOrder(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, []string{
		"1) Bridge L2 -> L1",
		"2) Random Native Transfers",
		"3) Deploy ERC-20",
		"4) Auto-send ERC-20",
		"5) Deploy NFT (ERC721)",
		"6) Auto-send NFT (ERC721)",
		"7) Run All Transactions",
	}, f.engine.Menu())
}

func TestRunDispatchesByIndex(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "withdraw:0.0001"},
		{1, "random_native"},
		{2, "deploy_erc20:Tok"},
		{3, "send_erc20:"},
		{4, "deploy_nft:Coll"},
		{5, "send_nft:"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			f := newFixture(t, nil)
			require.NoError(t, f.engine.Run(context.Background(), tt.index))
			assert.Equal(t, []string{tt.want}, f.calls.all())
		})
	}
}

func TestRunUnknownIndex(t *testing.T) {
	f := newFixture(t, nil)

	err := f.engine.Run(context.Background(), 7)
	assert.ErrorIs(t, err, ErrUnknownSelection)
	assert.Empty(t, f.calls.all())
	assert.Empty(t, f.rec.Activity)
	assert.Equal(t, []string{"Unknown menu selection 8"}, f.rec.Logged(console.LevelWarning))
	assert.Equal(t, 1, f.refresh.count())
	assert.Equal(t, 1, f.stats.n)

	// the run lock is released
	require.NoError(t, f.engine.Run(context.Background(), 1))
	assert.Equal(t, 2, f.refresh.count())
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestRunSuccessLifecycle(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.engine.Run(context.Background(), 1))

	assert.Equal(t, []bool{true, false}, f.rec.Activity)
	assert.Equal(t, 1, f.refresh.count())
	assert.Equal(t, 1, f.stats.n)
	assert.Equal(t, []string{"✔ 2) Random Native Transfers done"}, f.rec.Logged(console.LevelSuccess))

	cur := f.engine.Current()
	assert.Equal(t, Idle, cur.State)
	assert.Equal(t, "2) Random Native Transfers", cur.Name)
	assert.NotZero(t, cur.ID)
	assert.NoError(t, cur.Err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WorkflowRunsTotal.WithLabelValues("random_native", "success")))
}

func TestRunFailureStillRefreshes(t *testing.T) {
	f := newFixture(t, nil)
	f.dist.WithdrawErr = errors.New("insufficient funds")

	err := f.engine.Run(context.Background(), 0)
	assert.EqualError(t, err, "insufficient funds")

	assert.Equal(t, []bool{true, false}, f.rec.Activity)
	assert.Equal(t, 1, f.refresh.count())
	assert.Equal(t, []string{"1) Bridge L2 -> L1 failed: insufficient funds"}, f.rec.Logged(console.LevelError))
	assert.Equal(t, Idle, f.engine.Current().State)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WorkflowRunsTotal.WithLabelValues("withdraw", "failed")))

	// the lock was released
	f.dist.WithdrawErr = nil
	assert.NoError(t, f.engine.Run(context.Background(), 0))
}

func TestRunRecoversPanic(t *testing.T) {
	f := newFixture(t, nil)
	f.dist.SendNFTFunc = func(context.Context) error { panic("boom") }

	err := f.engine.Run(context.Background(), 5)
	assert.ErrorContains(t, err, "panic: boom")
	assert.Equal(t, Idle, f.engine.Current().State)
	assert.Equal(t, 1, f.refresh.count())
}

func TestRunRefreshesAfterCancellation(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	f.dist.SendNFTFunc = func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}

	err := f.engine.Run(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.refresh.count())
}

func TestRunRejectsReentry(t *testing.T) {
	f := newFixture(t, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	f.dist.SendNFTFunc = func(context.Context) error {
		close(started)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- f.engine.Run(context.Background(), 5) }()
	<-started

	assert.Equal(t, Running, f.engine.Current().State)
	for i := 0; i < 7; i++ {
		assert.ErrorIs(t, f.engine.Run(context.Background(), i), ErrBusy)
	}
	assert.Equal(t, []string{"send_nft:"}, f.calls.all())
	assert.Len(t, f.rec.Logged(console.LevelWarning), 7)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.refresh.count())
	assert.Equal(t, []bool{true, false}, f.rec.Activity)
}

// ---------------------------------------------------------------------------
// Run all
// ---------------------------------------------------------------------------

func TestRunAllOrder(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Withdraw.Enabled = true
		c.RandomNative.Enabled = true
	})

	require.NoError(t, f.engine.Run(context.Background(), 6))
	assert.Equal(t, []string{
		"withdraw:0.0001",
		"random_native",
		"deploy_erc20:Tok",
		"send_erc20:0xERC20",
		"deploy_nft:Coll",
		"send_nft:0xNFT",
	}, f.calls.all())
	assert.Equal(t, 1, f.refresh.count())
}

func TestRunAllDefaultsSkipDisabledSteps(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.ERC20.Enabled = false
		c.NFT.AutoSend.Enabled = false
	})

	require.NoError(t, f.engine.Run(context.Background(), 6))
	// auto-send without a deployment in this run falls back to the record
	assert.Equal(t, []string{"send_erc20:", "deploy_nft:Coll"}, f.calls.all())
}

func TestRunAllStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.dep.DeployERC20Err = errors.New("compilation failed")

	err := f.engine.Run(context.Background(), 6)
	assert.EqualError(t, err, "compilation failed")
	assert.Equal(t, []string{"deploy_erc20:Tok"}, f.calls.all())
	assert.Equal(t, 1, f.refresh.count())
}

// ---------------------------------------------------------------------------
// Serve
// ---------------------------------------------------------------------------

func TestServeDispatchesSelections(t *testing.T) {
	f := newFixture(t, nil)
	src := make(chanSource, 2)
	src <- 1
	src <- 99
	close(src)

	f.engine.Serve(context.Background(), src)

	assert.Equal(t, f.engine.Menu(), f.rec.Menu)
	assert.Equal(t, []string{"random_native"}, f.calls.all())
	assert.Equal(t, []string{"Unknown menu selection 100"}, f.rec.Logged(console.LevelWarning))
	assert.Equal(t, 2, f.refresh.count())
}

func TestServeSelectionDuringRunHitsLock(t *testing.T) {
	f := newFixture(t, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	f.dist.SendNFTFunc = func(context.Context) error {
		close(started)
		<-release
		return nil
	}

	src := make(chanSource)
	served := make(chan struct{})
	go func() {
		f.engine.Serve(context.Background(), src)
		close(served)
	}()

	src <- 5
	<-started
	src <- 0
	assert.Eventually(t, func() bool {
		return len(f.rec.Logged(console.LevelWarning)) == 1
	}, time.Second, 5*time.Millisecond)

	close(release)
	close(src)
	<-served
	assert.Equal(t, []string{"send_nft:"}, f.calls.all())
}

func TestServeStopsOnContextDone(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.engine.Serve(ctx, make(chanSource))
	assert.Empty(t, f.calls.all())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
}
