package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vibe-studio/internal/dialog"
	"github.com/ziadkadry99/vibe-studio/internal/publish"
)

var publishPageID string

var publishCmd = &cobra.Command{
	Use:   "publish [NAME]",
	Short: "Publish the active page under a name",
	Long: `Snapshots the active page (or --page) into the publish registry. Without
NAME you are prompted, with the page name minus its extension suggested.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		if publishPageID != "" {
			if err := ws.shell.Select(cmd.Context(), publishPageID); err != nil {
				return err
			}
		}

		var p dialog.Prompter = dialog.Terminal{}
		if len(args) == 1 {
			p = dialog.Fixed(args[0])
		}
		link, ok, err := ws.shell.Publish(cmd.Context(), p, ws.origin())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing published.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published at: %s\n", link)
		return nil
	},
}

var publishedCmd = &cobra.Command{
	Use:   "published [NAME]",
	Short: "List published names, or print one snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()
		registry := ws.shell.Registry()

		if len(args) == 1 {
			html, found, err := registry.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no page published as %q", args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), html)
			return nil
		}

		names, err := registry.Names(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing published yet.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLINK")
		for _, name := range names {
			fmt.Fprintf(tw, "%s\t%s\n", name, publish.Link(ws.origin(), name))
		}
		return tw.Flush()
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishPageID, "page", "", "page id to publish instead of the active page")
	rootCmd.AddCommand(publishCmd, publishedCmd)
}
