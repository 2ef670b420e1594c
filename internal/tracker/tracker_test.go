package tracker

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/contract/contracttest"
	"github.com/Mohsinsiddi/w3flow/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bob = common.HexToAddress("0x00000000000000000000000000000000000000B0")

func transfer() chain.Request {
	return chain.Request{To: &bob, Value: big.NewInt(1)}
}

func newTracker(sim *contracttest.Sim) (*Tracker, *console.Recorder, *metrics.Metrics) {
	rec := &console.Recorder{}
	m := metrics.New(prometheus.NewRegistry())
	return New(sim, rec, WithMetrics(m), WithExplorer("https://explorer/tx/")), rec, m
}

func assertInvariant(t *testing.T, s Stats) {
	t.Helper()
	assert.LessOrEqual(t, s.SuccessCount+s.FailedCount, s.TransactionCount)
}

// ---------------------------------------------------------------------------
// Gas limit policy
// ---------------------------------------------------------------------------

func TestApplyMargin(t *testing.T) {
	assert.Equal(t, uint64(60_000), ApplyMargin(50_000, 20))
	assert.Equal(t, uint64(25_201), ApplyMargin(21_001, 20)) // floor(25201.2)
	assert.Equal(t, uint64(100), ApplyMargin(100, 0))
}

func TestSubmitGasLimit(t *testing.T) {
	tests := []struct {
		name        string
		explicit    uint64
		estimateErr error
		fallback    uint64
		want        uint64
	}{
		{"estimate plus margin", 0, nil, 21_000, 60_000},
		{"estimate failure uses fallback", 0, errors.New("boom"), 21_000, 21_000},
		{"no fallback leaves limit unset", 0, errors.New("boom"), 0, 0},
		{"explicit limit skips estimation", 5_000_000, errors.New("boom"), 0, 5_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := contracttest.NewSim()
			sim.EstimateErr = tt.estimateErr
			tr, _, _ := newTracker(sim)

			req := transfer()
			req.GasLimit = tt.explicit
			_, err := tr.Submit(context.Background(), req, tt.fallback, "Native")
			require.NoError(t, err)

			sent := sim.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, tt.want, sent[0].GasLimit)
		})
	}
}

func TestEstimationFailureIsNotCounted(t *testing.T) {
	sim := contracttest.NewSim()
	sim.EstimateErr = errors.New("boom")
	tr, _, _ := newTracker(sim)

	_, err := tr.Submit(context.Background(), transfer(), 21_000, "Native")
	require.NoError(t, err)

	s := tr.Stats()
	assert.Equal(t, uint64(1), s.TransactionCount)
	assert.Equal(t, uint64(0), s.FailedCount)
}

func TestMarginOption(t *testing.T) {
	sim := contracttest.NewSim()
	tr := New(sim, &console.Recorder{}, WithMarginPercent(50))

	_, err := tr.Submit(context.Background(), transfer(), 0, "Native")
	require.NoError(t, err)
	assert.Equal(t, uint64(75_000), sim.Sent()[0].GasLimit)
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

func TestSubmitSuccess(t *testing.T) {
	sim := contracttest.NewSim()
	tr, rec, m := newTracker(sim)

	receipt, err := tr.Submit(context.Background(), transfer(), 21_000, "Native [1/1]")
	require.NoError(t, err)
	require.NotNil(t, receipt)

	s := tr.Stats()
	assert.Equal(t, Stats{TransactionCount: 1, SuccessCount: 1, LastGasPriceGwei: 2}, s)

	// pending push, then confirmation push
	require.Len(t, rec.Stats, 2)
	assert.Equal(t, uint64(1), rec.Stats[0].PendingTx)
	assert.Equal(t, console.Snapshot{
		TransactionCount: 1,
		SuccessRate:      100,
		CurrentGasPrice:  "2.00",
	}, rec.Stats[1])

	hash := receipt.Hash.Hex()
	assert.Equal(t, []string{"Native [1/1]: " + hash}, rec.Logged(console.LevelPending))
	assert.Equal(t, []string{"Native [1/1] OK → https://explorer/tx/" + hash}, rec.Logged(console.LevelSuccess))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PendingTransactions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LastGasPriceGwei))
}

func TestSubmitSendFailure(t *testing.T) {
	sim := contracttest.NewSim()
	sim.SendFunc = func(int, chain.Request) error { return errors.New("nonce too low") }
	tr, rec, m := newTracker(sim)

	receipt, err := tr.Submit(context.Background(), transfer(), 21_000, "Native")
	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, ErrSubmission)
	assert.NotErrorIs(t, err, ErrConfirmation)

	s := tr.Stats()
	assert.Equal(t, Stats{TransactionCount: 1, FailedCount: 1}, s)
	assert.Empty(t, rec.Logged(console.LevelPending))

	failures := rec.Logged(console.LevelError)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "Native FAIL: ")
	assert.Contains(t, failures[0], "nonce too low")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("failed")))
}

func TestSubmitRevert(t *testing.T) {
	sim := contracttest.NewSim()
	tr, rec, _ := newTracker(sim)

	// no contract at bob, so calldata reverts
	req := chain.Request{To: &bob, Data: []byte{1, 2, 3, 4}}
	receipt, err := tr.Submit(context.Background(), req, 0, "Call")
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(0), receipt.Status)
	assert.ErrorIs(t, err, ErrConfirmation)
	assert.ErrorIs(t, err, chain.ErrReverted)

	assert.Equal(t, Stats{TransactionCount: 1, FailedCount: 1}, tr.Stats())
	assert.Len(t, rec.Logged(console.LevelPending), 1)
	assert.Len(t, rec.Logged(console.LevelError), 1)
}

func TestSubmitConfirmationTimeout(t *testing.T) {
	sim := contracttest.NewSim()
	sim.ReceiptFunc = func(int, chain.Request) error { return chain.ErrNotMined }
	tr, _, _ := newTracker(sim)

	_, err := tr.Submit(context.Background(), transfer(), 21_000, "Native")
	assert.ErrorIs(t, err, ErrConfirmation)
	assert.ErrorIs(t, err, chain.ErrNotMined)
}

func TestStatsInvariantAcrossMixedOutcomes(t *testing.T) {
	sim := contracttest.NewSim()
	sim.SendFunc = func(n int, _ chain.Request) error {
		if n%3 == 2 {
			return errors.New("rejected")
		}
		return nil
	}
	tr, rec, _ := newTracker(sim)

	for i := 0; i < 9; i++ {
		_, _ = tr.Submit(context.Background(), transfer(), 21_000, "Native")
		assertInvariant(t, tr.Stats())
	}

	s := tr.Stats()
	assert.Equal(t, uint64(9), s.TransactionCount)
	assert.Equal(t, uint64(0), s.PendingCount)
	assert.Equal(t, s.TransactionCount, s.SuccessCount+s.FailedCount)
	for _, snap := range rec.Stats {
		assert.LessOrEqual(t, snap.FailedTx, snap.TransactionCount)
	}
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

func TestSnapshot(t *testing.T) {
	assert.Equal(t, console.Snapshot{CurrentGasPrice: "0.00"}, Stats{}.Snapshot())

	s := Stats{TransactionCount: 4, SuccessCount: 3, FailedCount: 1, PendingCount: 1, LastGasPriceGwei: 1.234}
	snap := s.Snapshot()
	assert.Equal(t, 75.0, snap.SuccessRate)
	assert.Equal(t, "75.00", snap.SuccessRateText())
	assert.Equal(t, "1.23", snap.CurrentGasPrice)
	assert.Equal(t, uint64(1), snap.PendingTx)
}

func TestPendingFloorsAtZero(t *testing.T) {
	var s Stats
	s.apply(Outcome{Kind: Failed}, chain.WeiToGwei)
	assert.Equal(t, Stats{TransactionCount: 1, FailedCount: 1}, s)
}

func TestObserveFeeData(t *testing.T) {
	sim := contracttest.NewSim()
	tr, rec, _ := newTracker(sim)

	tr.ObserveFeeData(big.NewInt(3_500_000_000))
	tr.ObserveFeeData(nil)
	tr.PushStats()

	assert.Equal(t, 3.5, tr.Stats().LastGasPriceGwei)
	assert.Equal(t, "3.50", rec.LastStats().CurrentGasPrice)
	assert.Zero(t, tr.Stats().TransactionCount)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
