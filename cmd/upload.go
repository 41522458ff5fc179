package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vibe-studio/internal/progress"
	"github.com/ziadkadry99/vibe-studio/internal/walker"
)

var uploadExclude []string

var uploadCmd = &cobra.Command{
	Use:   "upload DIR",
	Short: "Replace the studio's pages with a project directory",
	Long: `Walks DIR the way a browser directory upload would and replaces the page
collection with it. When the directory holds any HTML documents only those
are loaded; otherwise every text file is. .gitignore rules and common
dependency directories are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		entries, err := walker.Walk(walker.Config{
			RootDir: args[0],
			Exclude: append(append([]string(nil), ws.cfg.Watch.Exclude...), uploadExclude...),
		})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No files found; pages left unchanged.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Found %d file(s): %s\n", len(entries), walker.Summarize(entries))

		reporter := progress.NewReporter("Uploading pages")
		files := progress.Track(walker.Files(args[0], entries), reporter)
		loaded, err := ws.shell.Upload(cmd.Context(), files)
		reporter.Finish()
		if err != nil {
			return err
		}
		if len(loaded) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No files loaded; pages left unchanged.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d page(s); active page is %s\n", len(loaded), loaded[0].Name)
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringSliceVar(&uploadExclude, "exclude", nil, "additional glob patterns to skip")
	rootCmd.AddCommand(uploadCmd)
}
