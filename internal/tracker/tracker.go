package tracker

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/metrics"
	"go.uber.org/zap"
)

var (
	// ErrSubmission wraps failures before a transaction hash exists.
	ErrSubmission = errors.New("submission failed")
	// ErrConfirmation wraps failures while waiting for the receipt.
	ErrConfirmation = errors.New("confirmation failed")
	// ErrEstimation is recovered internally by falling back.
	ErrEstimation = errors.New("gas estimation failed")
)

// DefaultMarginPercent is added on top of every successful estimate.
const DefaultMarginPercent = 20

// Tracker routes chain-mutating calls through gas estimation, accounting
// and logging. Submit calls are expected to be serialised by the caller.
type Tracker struct {
	client        chain.Client
	sink          console.Sink
	logger        *zap.Logger
	metrics       *metrics.Metrics
	explorerTx    string
	marginPercent uint64

	mu    sync.Mutex
	stats Stats
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithExplorer sets the URL prefix the transaction hash is appended to.
func WithExplorer(base string) Option {
	return func(t *Tracker) { t.explorerTx = base }
}

// WithMarginPercent overrides the estimate safety margin.
func WithMarginPercent(pct uint64) Option {
	return func(t *Tracker) { t.marginPercent = pct }
}

// New creates a Tracker.
func New(client chain.Client, sink console.Sink, opts ...Option) *Tracker {
	t := &Tracker{
		client:        client,
		sink:          sink,
		logger:        zap.NewNop(),
		marginPercent: DefaultMarginPercent,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.metrics == nil {
		t.metrics = metrics.NewNop()
	}
	return t
}

// Submit sends req and waits for its receipt. With no explicit gas limit
// the estimate plus margin is used; if estimation fails, fallbackGas is
// used, and if that is zero the client picks the limit. Every failure is
// counted, logged and returned.
func (t *Tracker) Submit(ctx context.Context, req chain.Request, fallbackGas uint64, label string) (*chain.Receipt, error) {
	req.GasLimit = t.gasLimit(ctx, req, fallbackGas, label)

	t.apply(Outcome{Kind: Pending})

	hash, err := t.client.Send(ctx, req)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSubmission, err)
		t.fail(label, Outcome{Kind: Failed, Reason: err})
		return nil, err
	}
	t.sink.Log(console.LevelPending, fmt.Sprintf("%s: %s", label, hash.Hex()))

	receipt, err := t.client.WaitForReceipt(ctx, hash)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConfirmation, err)
		t.fail(label, Outcome{Kind: Failed, Hash: hash, Reason: err})
		return receipt, err
	}

	t.apply(Outcome{
		Kind:              Confirmed,
		Hash:              hash,
		EffectiveGasPrice: receipt.EffectiveGasPrice,
		GasUsed:           receipt.GasUsed,
	})
	t.sink.Log(console.LevelSuccess, fmt.Sprintf("%s OK → %s", label, t.ExplorerLink(hash.Hex())))
	t.logger.Info("transaction confirmed",
		zap.String("label", label),
		zap.String("tx_hash", hash.Hex()),
		zap.Uint64("gas_used", receipt.GasUsed),
		zap.Uint64("block", receipt.BlockNumber))
	return receipt, nil
}

// ExplorerLink returns the explorer URL for hash.
func (t *Tracker) ExplorerLink(hash string) string {
	return t.explorerTx + hash
}

// Stats returns a copy of the current accounting.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// PushStats sends the current snapshot to the console.
func (t *Tracker) PushStats() {
	t.sink.UpdateStats(t.Stats().Snapshot())
}

// ObserveFeeData overwrites the displayed gas price with a fee suggestion
// (max fee per gas) without touching the counters.
func (t *Tracker) ObserveFeeData(wei *big.Int) {
	if wei == nil {
		return
	}
	t.mu.Lock()
	t.stats.LastGasPriceGwei = chain.WeiToGwei(wei)
	t.mu.Unlock()
	t.metrics.LastGasPriceGwei.Set(chain.WeiToGwei(wei))
}

// ApplyMargin returns gas increased by pct percent, truncated.
func ApplyMargin(gas, pct uint64) uint64 {
	return gas * (100 + pct) / 100
}

func (t *Tracker) gasLimit(ctx context.Context, req chain.Request, fallbackGas uint64, label string) uint64 {
	if req.GasLimit != 0 {
		return req.GasLimit
	}
	est, err := t.client.EstimateGas(ctx, req)
	if err != nil {
		t.logger.Debug("gas estimation failed, using fallback",
			zap.String("label", label),
			zap.Uint64("fallback", fallbackGas),
			zap.Error(fmt.Errorf("%w: %w", ErrEstimation, err)))
		return fallbackGas
	}
	return ApplyMargin(est, t.marginPercent)
}

func (t *Tracker) fail(label string, o Outcome) {
	t.apply(o)
	t.sink.Log(console.LevelError, fmt.Sprintf("%s FAIL: %v", label, o.Reason))
	t.logger.Warn("transaction failed",
		zap.String("label", label),
		zap.String("tx_hash", o.Hash.Hex()),
		zap.Error(o.Reason))
}

// apply is the single place Stats change; it pushes a snapshot after
// every transition.
func (t *Tracker) apply(o Outcome) {
	t.mu.Lock()
	t.stats.apply(o, chain.WeiToGwei)
	snap := t.stats.Snapshot()
	pending := t.stats.PendingCount
	gwei := t.stats.LastGasPriceGwei
	t.mu.Unlock()

	switch o.Kind {
	case Confirmed:
		t.metrics.TransactionsTotal.WithLabelValues("success").Inc()
		t.metrics.GasUsed.Observe(float64(o.GasUsed))
		t.metrics.LastGasPriceGwei.Set(gwei)
	case Failed:
		t.metrics.TransactionsTotal.WithLabelValues("failed").Inc()
	}
	t.metrics.PendingTransactions.Set(float64(pending))

	t.sink.UpdateStats(snap)
}
