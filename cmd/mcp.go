package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/vibe-studio/internal/mcp"
	"github.com/ziadkadry99/vibe-studio/internal/search"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing page listing, editing, search and publishing tools to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		index, err := search.NewIndex(ws.log)
		if err != nil {
			return fmt.Errorf("creating search index: %w", err)
		}
		index.Follow(cmd.Context(), ws.shell.Pages())

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "vibestudio MCP server started on stdio (pages=%d)\n", ws.shell.Pages().Len())

		srv := mcpserver.NewServer(ws.shell, index, ws.origin())
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
