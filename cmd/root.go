package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vibe-studio/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vibestudio",
	Short: "Browser editor for small HTML sites with live preview and publishing",
	Long: `Vibe Studio is a browser-based code editor for small web projects. Pages
are edited beside a live preview, can be replayed as if typed by hand, and
can be published under a short name that anyone can open.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
