package cmd

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/Mohsinsiddi/w3flow/internal/compiler"
	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/deploy"
	"github.com/Mohsinsiddi/w3flow/internal/distribute"
	"github.com/Mohsinsiddi/w3flow/internal/metrics"
	"github.com/Mohsinsiddi/w3flow/internal/portfolio"
	"github.com/Mohsinsiddi/w3flow/internal/store"
	"github.com/Mohsinsiddi/w3flow/internal/tracker"
	"github.com/Mohsinsiddi/w3flow/internal/wallet"
	"github.com/Mohsinsiddi/w3flow/internal/watchlist"
	"github.com/Mohsinsiddi/w3flow/internal/workflow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// app is the fully wired workflow stack for one endpoint and one key.
type app struct {
	client  *chain.EVMClient
	tracker *tracker.Tracker
	panel   *portfolio.Portfolio
	engine  *workflow.Engine
	reg     *prometheus.Registry
}

// newApp resolves the signing key, probes the endpoint and wires every
// component to sink. Failures here are fatal for the caller.
func newApp(ctx context.Context, sink console.Sink) (*app, error) {
	key, origin, err := resolveKey()
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, config.DialTimeout)
	defer cancel()
	client, err := chain.Dial(dialCtx, cfg.Network.RPCURL, key,
		chain.WithChainID(cfg.Network.ChainID),
		chain.WithReceiptPolling(cfg.Gas.PollInterval, cfg.Gas.ConfirmTimeout),
		chain.WithLogger(logger.Named("chain")))
	if err != nil {
		return nil, err
	}
	logger.Info("signer ready",
		zap.String("address", client.Address().Hex()),
		zap.String("key_source", string(origin)))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	st := store.New(cfg.State.Dir)
	tr := tracker.New(client, sink,
		tracker.WithLogger(logger.Named("tracker")),
		tracker.WithMetrics(m),
		tracker.WithExplorer(cfg.Network.ExplorerTx),
		tracker.WithMarginPercent(cfg.Gas.MarginPercent))
	wl := watchlist.New(cfg.Watchlist, st, logger.Named("watchlist"))
	panel := portfolio.New(client, wl, tr, sink, cfg.Network, logger.Named("portfolio"))
	solc := compiler.NewSolc(cfg.Compiler.SolcPath, cfg.Compiler.OptimizerRuns, logger.Named("compiler"))
	dep := deploy.New(solc, tr, wl, st, panel, sink, cfg.Gas,
		deploy.WithLogger(logger.Named("deploy")))
	dist := distribute.New(client, tr, st, sink, cfg.Gas, cfg.Network,
		distribute.WithMetrics(m),
		distribute.WithLogger(logger.Named("distribute")))
	engine := workflow.New(cfg, dep, dist, panel, tr, sink,
		workflow.WithMetrics(m),
		workflow.WithLogger(logger.Named("workflow")))

	return &app{client: client, tracker: tr, panel: panel, engine: engine, reg: reg}, nil
}

func (a *app) close() { a.client.Close() }

// prime fills the panels before the first selection.
func (a *app) prime(ctx context.Context) {
	a.tracker.PushStats()
	a.panel.Refresh(ctx)
}

// serveMetrics exposes the registry until ctx is done.
func (a *app) serveMetrics(ctx context.Context) {
	if !cfg.Metrics.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", zap.String("addr", cfg.Metrics.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// resolveKey prefers PRIVATE_KEY and only opens the keychain without it.
func resolveKey() (*ecdsa.PrivateKey, wallet.Origin, error) {
	if strings.TrimSpace(os.Getenv(wallet.KeyEnv)) != "" {
		return wallet.Resolve(nil)
	}
	ks, err := wallet.OpenKeystore(cfg.State.Dir)
	if err != nil {
		return nil, "", fmt.Errorf("%w (%v)", wallet.ErrNoKey, err)
	}
	return wallet.Resolve(ks)
}
