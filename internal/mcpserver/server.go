// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes journal tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/journal/internal/apperr"
	"github.com/starford/journal/internal/journal"
)

// InputGrammarURI is the resource holding InputGrammar.
const InputGrammarURI = "journal://input-grammar"

// Server wraps the MCP server with journal tools.
type Server struct {
	mcp *server.MCPServer
	svc *journal.Service
}

// New creates a new MCP server with all journal tools registered.
func New(svc *journal.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"journal",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("open_page",
		mcp.WithDescription("Read an existing day page. The day is a date phrase such as "+
			"'today', '-1', 'next fri' or '2024-01-31'; see get_input_grammar."),
		mcp.WithString("day", mcp.Required(), mcp.Description("Date phrase naming the page")),
	), s.openPage)

	s.mcp.AddTool(mcp.NewTool("add_entry",
		mcp.WithDescription("Open or create a day page and add a memo. The input starts with a "+
			"date phrase, followed by the memo text and optional #flags ('#task' adds a task)."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Free-text input, e.g. 'tomorrow call the dentist #task'")),
	), s.addEntry)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note file in the notes folder of a day and link it from the page."),
		mcp.WithString("day", mcp.Required(), mcp.Description("Date phrase naming the page")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title; also used as the link label")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("sync_page",
		mcp.WithDescription("Link every file in the day's notes folder that the page does not reference yet."),
		mcp.WithString("day", mcp.Required(), mcp.Description("Date phrase naming the page")),
	), s.syncPage)

	s.mcp.AddTool(mcp.NewTool("search_journal",
		mcp.WithDescription("Full-text search through all day pages."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchJournal)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List day pages, newest first, optionally limited to a year or month."),
		mcp.WithString("month", mcp.Description("Optional YYYY or YYYY-MM prefix")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("get_input_grammar",
		mcp.WithDescription("Returns the date phrase and flag grammar accepted by the other tools."),
	), s.getInputGrammar)

	s.mcp.AddResource(
		mcp.NewResource(InputGrammarURI, "Journal Input Grammar",
			mcp.WithResourceDescription("Date phrases, memo text and flags accepted by the journal."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readInputGrammarResource,
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

// toolError turns a domain error into a tool result the model can act on.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case apperr.IsParse(err):
		return mcp.NewToolResultError(err.Error() + "; call get_input_grammar for accepted phrases")
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("page does not exist yet; use add_entry to create it")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) openPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := req.RequireString("day")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.GetPage(ctx, day)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(page.Content), nil
}

func (s *Server) addEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.Enter(ctx, input)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(page), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := req.RequireString("day")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.CreateNote(ctx, day, title)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.Path)), nil
}

func (s *Server) syncPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := req.RequireString("day")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	added, err := s.svc.Sync(ctx, day)
	if err != nil {
		return toolError(err), nil
	}
	if len(added) == 0 {
		return mcp.NewToolResultText("page is up to date"), nil
	}
	return mcp.NewToolResultText("linked:\n" + strings.Join(added, "\n")), nil
}

func (s *Server) searchJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	month := req.GetString("month", "")
	items, err := s.svc.ListPages(ctx, month, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = it.Date + "  " + it.Title
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getInputGrammar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(InputGrammar), nil
}

func (s *Server) readInputGrammarResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      InputGrammarURI,
			MIMEType: "text/markdown",
			Text:     InputGrammar,
		},
	}, nil
}
