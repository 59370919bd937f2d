// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes journal tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jrnl/internal/apperr"
	"github.com/starford/jrnl/internal/journal"
)

// EntryFormatURI is the resource URI of the entry format contract.
const EntryFormatURI = "jrnl://entry-format"

// Server wraps the MCP server with journal tools.
type Server struct {
	mcp *server.MCPServer
	svc *journal.Service
}

// New creates a new MCP server with all journal tools registered.
func New(svc *journal.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"jrnl",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List journal entries, newest first by default."),
		mcp.WithString("tag", mcp.Description("Only entries carrying this tag")),
		mcp.WithString("sort", mcp.Description("Sort order"), mcp.Enum("date", "title", "filename")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 50)")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read the full text of a journal entry."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Entry filename, e.g. 2024-03-08_Fr_morning.md")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a journal entry dated now. The filename and JSON header are "+
			"derived from the title; only supply the title, body and optional tags. "+
			"See the get_entry_format tool or the "+EntryFormatURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Entry title")),
		mcp.WithString("body", mcp.Description("Markdown body text")),
		mcp.WithArray("tags", mcp.Description("Distinct tags"), mcp.Items(map[string]any{"type": "string"})),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through entry titles, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("validate_entry",
		mcp.WithDescription("Check whether text is a well-formed, valid journal entry without saving it."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Complete entry text")),
	), s.validateEntry)

	s.mcp.AddTool(mcp.NewTool("get_entry_format",
		mcp.WithDescription("Returns the journal entry format contract."),
	), s.getEntryFormat)

	s.mcp.AddResource(
		mcp.NewResource(EntryFormatURI, "Entry Format Contract",
			mcp.WithResourceDescription("Document layout and header schema every journal entry follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEntryFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolError reports err to the model with its error kind.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", apperr.KindOf(err), err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.List(ctx, journal.ListParams{
		Limit: req.GetInt("limit", 50),
		Tag:   req.GetString("tag", ""),
		Sort:  req.GetString("sort", ""),
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]any{"entries": items, "total": total})
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, _, err := s.svc.Raw(ctx, filename)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, err := s.svc.Create(ctx, journal.CreateInput{
		Title: title,
		Body:  req.GetString("body", ""),
		Tags:  req.GetStringSlice("tags", nil),
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(e)
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return toolError(err), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no entries found"), nil
	}
	return jsonResult(hits)
}

func (s *Server) validateEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Validate(ctx, []byte(content)))
}

func (s *Server) getEntryFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EntryFormatContract()), nil
}

func (s *Server) readEntryFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      EntryFormatURI,
			MIMEType: "text/markdown",
			Text:     EntryFormatContract(),
		},
	}, nil
}
