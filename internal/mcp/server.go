package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/vibe-studio/internal/search"
	"github.com/ziadkadry99/vibe-studio/internal/studio"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the studio's pages and publish
// registry to agents.
type Server struct {
	shell  *studio.Shell
	index  *search.Index
	origin string
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server. origin is used to build the links
// returned by publish_page. index may be nil, in which case search_pages
// reports an error.
func NewServer(shell *studio.Shell, index *search.Index, origin string) *Server {
	s := &Server{
		shell:  shell,
		index:  index,
		origin: origin,
	}

	s.mcp = server.NewMCPServer(
		"vibestudio",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listPagesTool, s.handleListPages)
	s.mcp.AddTool(getPageTool, s.handleGetPage)
	s.mcp.AddTool(updatePageTool, s.handleUpdatePage)
	s.mcp.AddTool(publishPageTool, s.handlePublishPage)
	s.mcp.AddTool(resolvePublishedTool, s.handleResolvePublished)
	s.mcp.AddTool(searchPagesTool, s.handleSearchPages)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
