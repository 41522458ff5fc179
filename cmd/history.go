package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vibe-studio/internal/history"
)

var (
	historyAction string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history [SUBJECT]",
	Short: "Show recent page and publish activity",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		filter := history.QueryFilter{Action: history.Action(historyAction), Limit: historyLimit}
		if len(args) == 1 {
			filter.Subject = args[0]
		}
		entries, err := ws.history.Query(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tACTION\tSUBJECT\tSUMMARY")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Subject, e.Summary)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyAction, "action", "", "only show entries with this action")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	rootCmd.AddCommand(historyCmd)
}
