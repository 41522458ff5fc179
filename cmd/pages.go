package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vibe-studio/internal/dialog"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List and manage the studio's pages",
}

var pagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pages in display order; the active page is marked with *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		list := ws.shell.Pages().List()
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No pages yet. Run `vibestudio pages add` to add one.")
			return nil
		}

		active := ws.shell.Pages().ActiveID()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\tID\tNAME\tCHARS")
		for _, p := range list {
			marker := ""
			if p.ID == active {
				marker = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", marker, p.ID, p.Name, len([]rune(p.Content)))
		}
		return tw.Flush()
	},
}

var pagesShowCmd = &cobra.Command{
	Use:   "show [ID]",
	Short: "Print a page's content (the active page by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		id := ws.shell.Pages().ActiveID()
		if len(args) == 1 {
			id = args[0]
		}
		page, ok := ws.shell.Pages().Get(id)
		if !ok {
			return fmt.Errorf("no page with id %q", id)
		}
		fmt.Fprint(cmd.OutOrStdout(), page.Content)
		return nil
	},
}

var pagesAddCmd = &cobra.Command{
	Use:   "add [NAME]",
	Short: "Add a page, prompting for its name when none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		var p dialog.Prompter = dialog.Terminal{}
		if len(args) == 1 {
			p = dialog.Fixed(args[0])
		}
		page, ok, err := ws.shell.AddPage(cmd.Context(), p)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", page.Name, page.ID)
		return nil
	},
}

var pagesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		if err := ws.shell.DeletePage(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var pagesSelectCmd = &cobra.Command{
	Use:   "select ID",
	Short: "Make a page the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()
		if err := ws.shell.Select(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", args[0])
		return nil
	},
}

func init() {
	pagesCmd.AddCommand(pagesListCmd, pagesShowCmd, pagesAddCmd, pagesDeleteCmd, pagesSelectCmd)
	rootCmd.AddCommand(pagesCmd)
}
