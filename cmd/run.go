package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/ui"
	"github.com/Mohsinsiddi/w3flow/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runSelect int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the operator console, or run one workflow with --select",
	Example: `  w3flow run
  w3flow run --select 7 --state-dir ./state`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cmd.Flags().Changed("select") {
			return runHeadless(ctx, cmd, runSelect)
		}
		return runInteractive(ctx, cmd)
	},
}

func init() {
	runCmd.Flags().IntVarP(&runSelect, "select", "s", 0, "run workflow N (1-based, see `w3flow menu`) headless and exit")
}

func runHeadless(ctx context.Context, cmd *cobra.Command, selection int) error {
	if n := len(menuLabels()); selection < 1 || selection > n {
		return fmt.Errorf("--select must be between 1 and %d", n)
	}
	sink := console.Multi{console.NewLogSink(logger), ui.NewPrinter(cmd.OutOrStdout())}

	a, err := connect(ctx, cmd, sink)
	if err != nil {
		return err
	}
	defer a.close()
	a.serveMetrics(ctx)
	a.prime(ctx)

	return a.engine.Run(ctx, selection-1)
}

func runInteractive(ctx context.Context, cmd *cobra.Command) error {
	a, dash, err := connectDashboard(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.serveMetrics(ctx)

	served := make(chan struct{})
	go func() {
		defer close(served)
		a.prime(ctx)
		a.engine.Serve(ctx, dash)
	}()

	err = dash.Run()
	cancel()
	<-served
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func connectDashboard(ctx context.Context, cmd *cobra.Command) (*app, *ui.Dashboard, error) {
	dash := ui.NewDashboard(cfg.Network.Label, tea.WithContext(ctx))
	a, err := connect(ctx, cmd, console.Multi{dash, console.NewLogSink(logger)})
	if err != nil {
		return nil, nil, err
	}
	return a, dash, nil
}

// connect wires the stack behind a spinner on stderr.
func connect(ctx context.Context, cmd *cobra.Command, sink console.Sink) (*app, error) {
	sp := ui.NewSpinner(cmd.ErrOrStderr(), "Connecting to "+cfg.Network.Label+"…")
	sp.Start()
	a, err := newApp(ctx, sink)
	sp.Stop()
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return nil, err
	}
	return a, nil
}

// menuLabels builds the menu without touching the chain.
func menuLabels() []string {
	return workflow.New(cfg, nil, nil, nil, nil, console.NewLogSink(logger)).Menu()
}
