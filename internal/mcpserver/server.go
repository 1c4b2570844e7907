// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes lab search and entry tools for LLM integration via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/labnote/internal/apperr"
	"github.com/starford/labnote/internal/labservice"
	"github.com/starford/labnote/internal/search"
)

// EntryFormatURI is the resource URI of the entry format contract.
const EntryFormatURI = "labnote://entry-format"

// Server wraps the MCP server with lab tools.
type Server struct {
	mcp *server.MCPServer
	svc *labservice.Service
}

// New creates a new MCP server with all lab tools registered.
func New(svc *labservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"labnote",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_lab",
		mcp.WithDescription("Search lab entries, notebooks and tags. Results are ranked by keyword "+
			"relevance and the query is recorded in the search history."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithString("kind", mcp.Description("Optional result kind filter"), mcp.Enum("entry", "notebook", "tag")),
	), s.searchLab)

	s.mcp.AddTool(mcp.NewTool("suggest_queries",
		mcp.WithDescription("Autocomplete suggestions (entry titles, notebook titles, #tags) for a partial query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Partial query, at least 2 characters")),
	), s.suggestQueries)

	s.mcp.AddTool(mcp.NewTool("get_search_history",
		mcp.WithDescription("Recent committed search queries, most recent first."),
	), s.getSearchHistory)

	s.mcp.AddTool(mcp.NewTool("clear_search_history",
		mcp.WithDescription("Forget every recorded search query."),
	), s.clearSearchHistory)

	s.mcp.AddTool(mcp.NewTool("list_notebooks",
		mcp.WithDescription("List notebooks with their ids and entry counts."),
	), s.listNotebooks)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read a lab entry by id, including its body and tags."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id as returned by search_lab")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a new lab entry. Read the format first via get_entry_format "+
			"or the "+EntryFormatURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Entry title")),
		mcp.WithString("content", mcp.Description("Markdown body")),
		mcp.WithString("summary", mcp.Description("Optional one-line summary shown in search results")),
		mcp.WithString("notebook_id", mcp.Description("Owning notebook id (empty for General)")),
		mcp.WithArray("tags", mcp.Description("Tags without the leading #"), mcp.WithStringItems()),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("get_entry_format",
		mcp.WithDescription("Returns the lab entry format contract. Call this before creating entries."),
	), s.getEntryFormat)

	s.mcp.AddResource(
		mcp.NewResource(EntryFormatURI, "Lab Entry Format",
			mcp.WithResourceDescription("Markdown format that lab entries and notebook manifests follow."),
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

// decode converts tool arguments into T through JSON.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrInvalid), errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError("internal error")
	}
}

func (s *Server) searchLab(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[struct {
		Query string `json:"query"`
		Kind  string `json:"kind"`
	}](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	kind, ok := search.ParseKind(args.Kind)
	if !ok {
		return mcp.NewToolResultError("kind must be one of entry, notebook, tag"), nil
	}
	return mcp.NewToolResultJSON(s.svc.Search(args.Query, kind))
}

func (s *Server) suggestQueries(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultJSON(map[string][]string{"suggestions": s.svc.Suggest(query)})
}

func (s *Server) getSearchHistory(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(map[string][]string{"history": s.svc.History()})
}

func (s *Server) clearSearchHistory(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.svc.ClearHistory()
	return mcp.NewToolResultText("search history cleared"), nil
}

func (s *Server) listNotebooks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(map[string]any{"notebooks": s.svc.ListNotebooks(ctx)})
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.GetEntry(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultJSON(entry)
}

func (s *Server) createEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := decode[labservice.EntryInput](req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.CreateEntry(ctx, in)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultJSON(entry)
}

func (s *Server) getEntryFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EntryFormatContract), nil
}

func (s *Server) readEntryFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      EntryFormatURI,
			MIMEType: "text/markdown",
			Text:     EntryFormatContract,
		},
	}, nil
}
