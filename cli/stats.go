package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"othello/stats"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print recorded win, tie and loss ratios",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStats()
			if err != nil {
				return err
			}
			defer store.Close()
			return printStats(cmd.OutOrStdout(), store)
		},
	}
}

func printStats(w io.Writer, store *stats.Store) error {
	all, err := store.All()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(w, "no games recorded")
		return nil
	}
	labels := make([]string, 0, len(all))
	for label := range all {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	fmt.Fprintln(w, "matchup: win, tie, lose, (games)")
	for _, label := range labels {
		fmt.Fprintf(w, "%s: %s\n", label, all[label])
	}
	return nil
}
