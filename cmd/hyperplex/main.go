package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/hyperplex/internal/config"
	"github.com/fentz26/hyperplex/internal/logging"
	"github.com/fentz26/hyperplex/internal/tui"
)

var (
	configPath string
	verbose    bool
	seed       int64
	noDelay    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hyperplex",
	Short: "Hyperplex - agentic mission console",
	Long: `Hyperplex is a terminal console that dispatches missions to a simulated
swarm of agents, keeps a task stack and a bounded mission history, and
narrates every step as it happens.

Run without arguments to start the interactive console.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Log.Path, verbose || cfg.Log.Verbose)
		if err != nil {
			return err
		}
		logger.Debug("config loaded", zap.String("path", configPath), zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runConsole,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Seed for agent and tool selection")
	rootCmd.PersistentFlags().BoolVar(&noDelay, "no-delay", false, "Disable simulated latency")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(configCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	app := tui.New(sess.engine, tui.Config{Rand: sess.rand(), Logger: logger})
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
