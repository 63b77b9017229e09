package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fentz26/hyperplex/internal/console"
)

var scriptFile string

var execCmd = &cobra.Command{
	Use:   "exec [command...]",
	Short: "Run console commands non-interactively",
	Long: `Runs one command given as arguments, or every line of --file (use - for
stdin). Put the command after -- when it carries its own flags. Blank
lines and lines starting with # are skipped. A divider is printed between
commands and a stats line at the end.`,
	Example: `  hyperplex exec -- run ship onboarding --priority=high
  hyperplex exec --no-delay --file mission.txt`,
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringVarP(&scriptFile, "file", "f", "", "Script of commands, one per line")
}

func runExec(cmd *cobra.Command, args []string) error {
	commands, err := execCommands(args)
	if err != nil {
		return err
	}
	if len(commands) == 0 {
		return fmt.Errorf("nothing to run: pass a command or --file")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	return console.RunScript(ctx, sess.engine, console.NewPrinter(cmd.OutOrStdout()), commands)
}

func execCommands(args []string) ([]string, error) {
	if scriptFile == "" {
		if len(args) == 0 {
			return nil, nil
		}
		return []string{strings.Join(args, " ")}, nil
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("use either arguments or --file, not both")
	}

	in := os.Stdin
	if scriptFile != "-" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return nil, fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		in = f
	}
	return console.ReadScript(in)
}
