package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fentz26/hyperplex/internal/config"
	"github.com/fentz26/hyperplex/internal/console"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the line-mode console",
	Long:  `Starts a readline console that prints events line by line. Type exit, quit or press Ctrl-D to leave; Ctrl-C cancels a running mission.`,
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	sh, err := console.NewShell(sess.engine, console.ShellConfig{
		HistoryFile: filepath.Join(config.Dir(), "shell_history"),
		Logger:      logger.Named("shell"),
	})
	if err != nil {
		return err
	}
	defer sh.Close()

	return sh.Run(cmd.Context())
}
