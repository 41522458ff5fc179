package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vibe-studio/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize vibestudio configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure vibestudio for your project and writes a .vibestudio.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (data in %s)\n", cfgFile, cfg.DataDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
