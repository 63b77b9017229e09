package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fentz26/hyperplex/internal/journal"
	"github.com/fentz26/hyperplex/internal/models"
)

var journalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List journaled missions and decision records",
	Args:  cobra.NoArgs,
	RunE:  runJournal,
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "Maximum entries per section (0 for all)")
}

func runJournal(cmd *cobra.Command, args []string) error {
	if !cfg.Journal.Enabled {
		return fmt.Errorf("journal is disabled in %s", configPath)
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	missions, err := store.ListMissions(ctx, journalLimit)
	if err != nil {
		return err
	}
	decisions, err := store.ListDecisions(ctx, journalLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(missions) == 0 {
		fmt.Fprintln(out, "No missions journaled.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPLETED\tPRIORITY\tDELIVERABLE\tAGENTS\tTASK")
		for _, m := range missions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				models.ShortID(m.ID),
				m.CompletedAt.Local().Format("2006-01-02 15:04"),
				m.Priority,
				m.Deliverable,
				strings.Join(m.AgentIDs, ","),
				truncate(m.Task, 40),
			)
		}
		w.Flush()
	}

	fmt.Fprintln(out)
	if len(decisions) == 0 {
		fmt.Fprintln(out, "No decisions journaled.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tACTION\tOUTCOME\tSUBJECT\tINPUTS")
	for _, d := range decisions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			models.ShortID(d.ID),
			d.Timestamp.Local().Format("2006-01-02 15:04"),
			d.Action,
			d.Outcome,
			models.ShortID(d.SubjectID),
			d.InputsHash[:min(12, len(d.InputsHash))],
		)
	}
	return w.Flush()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
