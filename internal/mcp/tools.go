package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listPagesTool defines the list_pages MCP tool.
var listPagesTool = mcp.NewTool("list_pages",
	mcp.WithDescription("List the studio's pages in display order, marking the active one."),
)

// getPageTool defines the get_page MCP tool.
var getPageTool = mcp.NewTool("get_page",
	mcp.WithDescription("Get the full content of a page by id or by name."),
	mcp.WithString("page_id",
		mcp.Description("Page id as returned by list_pages"),
	),
	mcp.WithString("name",
		mcp.Description("Page name; used when page_id is not given"),
	),
)

// updatePageTool defines the update_page MCP tool.
var updatePageTool = mcp.NewTool("update_page",
	mcp.WithDescription("Replace the content of a page. Open editors see the change immediately."),
	mcp.WithString("page_id",
		mcp.Required(),
		mcp.Description("Page id as returned by list_pages"),
	),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("New page content"),
	),
)

// publishPageTool defines the publish_page MCP tool.
var publishPageTool = mcp.NewTool("publish_page",
	mcp.WithDescription("Publish a snapshot of a page under a name and return its shareable link."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Publish name (letters, numbers, dashes)"),
	),
	mcp.WithString("page_id",
		mcp.Description("Page to publish; defaults to the active page"),
	),
)

// resolvePublishedTool defines the resolve_published MCP tool.
var resolvePublishedTool = mcp.NewTool("resolve_published",
	mcp.WithDescription("Get the HTML snapshot published under a name."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Published name"),
	),
)

// searchPagesTool defines the search_pages MCP tool.
var searchPagesTool = mcp.NewTool("search_pages",
	mcp.WithDescription("Search page names and content. Returns the closest pages with a short snippet."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)
