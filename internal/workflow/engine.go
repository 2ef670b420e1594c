// Package workflow runs one operator-selected workflow at a time.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned when a workflow is triggered while another runs.
	ErrBusy = errors.New("a workflow is already running")
	// ErrUnknownSelection is returned for a menu index out of range.
	ErrUnknownSelection = errors.New("unknown menu selection")
)

// State is the run-lock state.
type State int32

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Run describes the current or most recent workflow execution.
type Run struct {
	ID        uuid.UUID
	Name      string
	State     State
	StartedAt time.Time
	Err       error
}

// Refresher redraws the wallet and token panels.
type Refresher interface {
	Refresh(ctx context.Context)
}

// StatsPusher pushes the current stats snapshot.
type StatsPusher interface {
	PushStats()
}

// Engine owns the run-lock. Every entry point goes through Run.
type Engine struct {
	workflows []Workflow
	sink      console.Sink
	refresher Refresher
	stats     StatsPusher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	state   atomic.Int32
	mu      sync.Mutex
	current Run
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine with the fixed menu bound to cfg.
func New(cfg *config.Config, dep Deployer, dist Distributor, refresher Refresher, stats StatsPusher, sink console.Sink, opts ...Option) *Engine {
	a := &actions{cfg: cfg, deploy: dep, dist: dist}
	e := &Engine{
		workflows: a.workflows(),
		sink:      sink,
		refresher: refresher,
		stats:     stats,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.NewNop()
	}
	return e
}

// Menu returns the menu labels in selection order.
func (e *Engine) Menu() []string {
	items := make([]string, len(e.workflows))
	for i, w := range e.workflows {
		items[i] = w.Label
	}
	return items
}

// Current returns the current or most recent run.
func (e *Engine) Current() Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Run executes the workflow at zero-based index. A trigger while another
// workflow is running is logged and rejected with ErrBusy without touching
// the chain. Failures are logged; the panels are refreshed and the engine
// returns to Idle whatever the outcome. The error is returned for headless
// callers.
func (e *Engine) Run(ctx context.Context, index int) error {
	if !e.state.CompareAndSwap(int32(Idle), int32(Running)) {
		e.sink.Log(console.LevelWarning, "A workflow is already running, please wait")
		return ErrBusy
	}
	defer e.state.Store(int32(Idle))

	if index < 0 || index >= len(e.workflows) {
		e.sink.Log(console.LevelWarning, fmt.Sprintf("Unknown menu selection %d", index+1))
		e.refresh(ctx)
		return fmt.Errorf("%w: %d", ErrUnknownSelection, index+1)
	}

	w := e.workflows[index]
	run := Run{ID: uuid.New(), Name: w.Label, State: Running, StartedAt: time.Now()}
	e.setCurrent(run)
	log := e.logger.With(zap.String("run_id", run.ID.String()), zap.String("workflow", w.ID))

	e.sink.SetActive(true)
	e.sink.Log(console.LevelInfo, "▶ "+w.Label)
	log.Info("workflow started")

	err := e.execute(ctx, w)

	result := "success"
	if err != nil {
		result = "failed"
		e.sink.Log(console.LevelError, fmt.Sprintf("%s failed: %v", w.Label, err))
		log.Error("workflow failed", zap.Error(err))
	} else {
		e.sink.Log(console.LevelSuccess, "✔ "+w.Label+" done")
		log.Info("workflow finished", zap.Duration("took", time.Since(run.StartedAt)))
	}
	e.metrics.WorkflowRunsTotal.WithLabelValues(w.ID, result).Inc()
	e.metrics.WorkflowDuration.WithLabelValues(w.ID).Observe(time.Since(run.StartedAt).Seconds())

	e.refresh(ctx)
	e.sink.SetActive(false)

	run.State = Idle
	run.Err = err
	e.setCurrent(run)
	return err
}

// refresh reloads the wallet and token panels and pushes the counters. It
// runs even when ctx was cancelled mid-workflow.
func (e *Engine) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.DialTimeout)
	defer cancel()
	e.refresher.Refresh(refreshCtx)
	e.stats.PushStats()
}

// execute converts a panic in a workflow into an error so the engine
// always returns to Idle.
func (e *Engine) execute(ctx context.Context, w Workflow) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.run(ctx)
}

func (e *Engine) setCurrent(r Run) {
	e.mu.Lock()
	e.current = r
	e.mu.Unlock()
}

// Serve publishes the menu and dispatches selections from src until ctx
// is done or the source closes. Each selection runs on its own goroutine,
// so a selection made during a run is rejected by the run-lock rather than
// queued. Serve waits for the in-flight run before returning.
func (e *Engine) Serve(ctx context.Context, src console.Source) {
	e.sink.SetMenu(e.Menu())

	var wg sync.WaitGroup
	defer wg.Wait()

	sel := src.Selections()
	for {
		select {
		case <-ctx.Done():
			return
		case idx, ok := <-sel:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = e.Run(ctx, idx)
			}()
		}
	}
}
