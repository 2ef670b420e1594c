// Package distribute sends assets from the controlled account in
// sequential batches.
package distribute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/metrics"
	"github.com/Mohsinsiddi/w3flow/internal/random"
	"github.com/Mohsinsiddi/w3flow/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	// ErrMissingAddress is returned when no token address was given and no
	// deployment record exists.
	ErrMissingAddress = errors.New("no token address given and no deployment record found")
	// ErrOwnershipMismatch marks a token id the sender does not hold. The
	// cursor skips such ids.
	ErrOwnershipMismatch = errors.New("token not held by sender")
)

// Submitter sends a tracked transaction.
type Submitter interface {
	Submit(ctx context.Context, req chain.Request, fallbackGas uint64, label string) (*chain.Receipt, error)
}

// Distributor runs the batch-send workflows. Sends are strictly
// sequential.
type Distributor struct {
	client    chain.Client
	submitter Submitter
	store     *store.Store
	sink      console.Sink
	gas       config.GasConfig
	network   config.NetworkConfig
	metrics   *metrics.Metrics
	rand      *random.Generator
	recipient func() (common.Address, error)
	logger    *zap.Logger
}

// Option configures a Distributor.
type Option func(*Distributor)

// WithRandom sets the generator used for native amounts.
func WithRandom(g *random.Generator) Option {
	return func(d *Distributor) { d.rand = g }
}

// WithRecipients overrides how throwaway recipients are generated.
func WithRecipients(next func() (common.Address, error)) Option {
	return func(d *Distributor) { d.recipient = next }
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Distributor) { d.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Distributor) { d.logger = l }
}

// New creates a Distributor.
func New(client chain.Client, sub Submitter, st *store.Store, sink console.Sink, gas config.GasConfig, network config.NetworkConfig, opts ...Option) *Distributor {
	d := &Distributor{
		client:    client,
		submitter: sub,
		store:     st,
		sink:      sink,
		gas:       gas,
		network:   network,
		rand:      random.New(),
		recipient: random.Address,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.metrics == nil {
		d.metrics = metrics.NewNop()
	}
	return d
}

// parseAddress validates an explicit address, falling back to the address
// of a deployment record.
func parseAddress(explicit string, recorded func() (string, error)) (common.Address, error) {
	addr := explicit
	if addr == "" {
		rec, err := recorded()
		if err != nil {
			return common.Address{}, err
		}
		addr = rec
	}
	if addr == "" {
		return common.Address{}, ErrMissingAddress
	}
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("invalid token address %q", addr)
	}
	return common.HexToAddress(addr), nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
