package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/vibe-studio/internal/pages"
	"github.com/ziadkadry99/vibe-studio/internal/search"
)

// handleListPages lists every page with its id, marking the active one.
func (s *Server) handleListPages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.shell.Pages().List()
	if len(list) == 0 {
		return mcp.NewToolResultText("No pages yet."), nil
	}

	active := s.shell.Pages().ActiveID()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d page(s):\n", len(list)))
	for _, p := range list {
		marker := " "
		if p.ID == active {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %s  %s  (%d chars)\n", marker, p.ID, p.Name, len([]rune(p.Content))))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetPage returns the content of one page, looked up by id first and
// then by name.
func (s *Server) handleGetPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("page_id", "")
	name := request.GetString("name", "")
	if id == "" && name == "" {
		return mcp.NewToolResultError("one of page_id or name is required"), nil
	}

	page, ok := s.findPage(id, name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("No page found for %q.", firstNonEmpty(id, name))), nil
	}
	return mcp.NewToolResultText(page.Content), nil
}

// handleUpdatePage replaces a page's content.
func (s *Server) handleUpdatePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: page_id"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}

	page, ok := s.shell.Pages().Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("No page found for %q.", id)), nil
	}
	if err := s.shell.Edit(ctx, id, content); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated %s.", page.Name)), nil
}

// handlePublishPage snapshots a page into the publish registry. The active
// page is left unchanged.
func (s *Server) handlePublishPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil || name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	var (
		page pages.Page
		ok   bool
	)
	if id := request.GetString("page_id", ""); id != "" {
		page, ok = s.shell.Pages().Get(id)
	} else {
		page, ok = s.shell.Pages().Active()
	}
	if !ok {
		return mcp.NewToolResultError("No page to publish."), nil
	}

	link, err := s.shell.Registry().Publish(ctx, s.origin, name, page.Content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("publish failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Published %s at: %s", page.Name, link)), nil
}

// handleResolvePublished returns a published snapshot.
func (s *Server) handleResolvePublished(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	html, found, err := s.shell.Registry().Resolve(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading registry: %v", err)), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("No page found for %q.", name)), nil
	}
	return mcp.NewToolResultText(html), nil
}

// handleSearchPages runs a similarity search over page names and content.
func (s *Server) handleSearchPages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	if s.index == nil {
		return mcp.NewToolResultError("search index is not available"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	results, err := s.index.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results found."), nil
	}
	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

func (s *Server) findPage(id, name string) (pages.Page, bool) {
	if id != "" {
		return s.shell.Pages().Get(id)
	}
	for _, p := range s.shell.Pages().List() {
		if p.Name == name {
			return p, true
		}
	}
	return pages.Page{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// formatSearchResults renders search hits as plain text for agents.
func formatSearchResults(results []search.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Page: %s (%s)\n", r.Name, r.PageID))
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", r.Similarity*100))
		if r.Snippet != "" {
			sb.WriteString("\n")
			sb.WriteString(r.Snippet)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
