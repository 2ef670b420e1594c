package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one process. Collectors are registered
// on the registry passed to New so tests can use a private one.
type Metrics struct {
	// TransactionsTotal counts tracked transactions by final status
	TransactionsTotal *prometheus.CounterVec

	// PendingTransactions is the number of submitted, unconfirmed transactions
	PendingTransactions prometheus.Gauge

	// LastGasPriceGwei is the effective gas price of the last confirmation
	LastGasPriceGwei prometheus.Gauge

	// GasUsed tracks gas used per confirmed transaction
	GasUsed prometheus.Histogram

	// WorkflowRunsTotal counts workflow runs by name and result
	WorkflowRunsTotal *prometheus.CounterVec

	// WorkflowDuration tracks workflow wall time
	WorkflowDuration *prometheus.HistogramVec

	// DistributionCursor is the next token id to consider per collection
	DistributionCursor *prometheus.GaugeVec
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TransactionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "w3flow_transactions_total",
				Help: "Total number of tracked transactions",
			},
			[]string{"status"},
		),
		PendingTransactions: f.NewGauge(prometheus.GaugeOpts{
			Name: "w3flow_pending_transactions",
			Help: "Number of submitted transactions awaiting confirmation",
		}),
		LastGasPriceGwei: f.NewGauge(prometheus.GaugeOpts{
			Name: "w3flow_last_gas_price_gwei",
			Help: "Effective gas price of the last confirmed transaction",
		}),
		GasUsed: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "w3flow_gas_used",
			Help:    "Gas used per confirmed transaction",
			Buckets: []float64{21_000, 50_000, 100_000, 300_000, 1_000_000, 3_000_000, 6_000_000},
		}),
		WorkflowRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "w3flow_workflow_runs_total",
				Help: "Total number of workflow runs",
			},
			[]string{"workflow", "result"},
		),
		WorkflowDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "w3flow_workflow_duration_seconds",
				Help:    "Workflow run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"workflow"},
		),
		DistributionCursor: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "w3flow_distribution_cursor",
				Help: "Next token id to consider for distribution",
			},
			[]string{"collection"},
		),
	}
}

// NewNop returns collectors registered nowhere.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
