package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/Mohsinsiddi/w3flow/internal/wallet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3flow/cmd.Version=1.2.3" .
var Version = "0.1.0"

const configEnv = "W3FLOW_CONFIG"

var (
	cfgFile  string
	stateDir string
	verbose  bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3flow",
	Short: "On-chain workflow runner",
	Long: `w3flow drives a fixed set of on-chain workflows against one EVM endpoint:

  bridge withdrawals, random native transfers, ERC-20 and ERC-721 deploys,
  chunked minting and resumable NFT distribution.

Run "w3flow run" for the operator console, or "w3flow run --select N" to
run a single workflow headless.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := wallet.LoadDotEnv(".env"); err != nil {
			return err
		}
		path := cfgFile
		if path == "" {
			path = os.Getenv(configEnv)
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if stateDir != "" {
			cfg.State.Dir = stateDir
		}
		return setupLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// setupLogger builds the process logger. Relative log files live in the
// state directory next to the records.
func setupLogger() error {
	lc := cfg.Logging
	if verbose {
		lc.Level = "debug"
	}
	switch lc.OutputPath {
	case "", "stdout", "stderr":
	default:
		if !filepath.IsAbs(lc.OutputPath) {
			if err := os.MkdirAll(cfg.State.Dir, 0o755); err != nil {
				return fmt.Errorf("creating state dir: %w", err)
			}
			lc.OutputPath = cfg.StatePath(lc.OutputPath)
		}
	}
	l, err := config.NewLogger(lc)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// Execute runs the root command. Any failure exits with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./"+config.DefaultFile+", env "+configEnv+")")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "directory for state records (overrides state.dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	// Register all sub-commands.
	rootCmd.AddCommand(
		runCmd,
		statusCmd,
		watchlistCmd,
		walletCmd,
		menuCmd,
	)
}
