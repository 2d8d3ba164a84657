// Package mcp exposes the memweave engine over the Model Context
// Protocol so AI tools can store items, query links, and drive the
// session tracker from stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/memweave/memweave/internal/config"
	"github.com/memweave/memweave/internal/item"
	"github.com/memweave/memweave/internal/session"
)

// Server wires the item store, the relationship engine, and the session
// tracker behind MCP tools.
type Server struct {
	root    string
	cfg     config.GlobalConfig
	store   *item.Store
	tracker *session.Tracker
	mcp     *server.MCPServer
}

// NewServer builds a Server and registers all tools.
func NewServer(root, version string, cfg config.GlobalConfig, store *item.Store, tracker *session.Tracker) *Server {
	s := &Server{
		root:    root,
		cfg:     cfg,
		store:   store,
		tracker: tracker,
	}

	s.mcp = server.NewMCPServer(
		"memweave",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Memweave stores memories and tasks, links related items automatically, and tracks work sessions. Track activities as you work; significant sessions are summarized into searchable memories."),
	)

	s.mcp.AddTool(mcp.NewTool("remember",
		mcp.WithDescription("Store a memory. Related items are linked automatically when links are queried."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The memory content")),
		mcp.WithArray("tags", mcp.Description("Optional tags"), mcp.WithStringItems()),
		mcp.WithString("project", mcp.Description("Project the memory belongs to")),
		mcp.WithString("category", mcp.Description("Free-form category")),
	), s.handleRemember)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Store a task item."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The task description")),
		mcp.WithArray("tags", mcp.Description("Optional tags"), mcp.WithStringItems()),
		mcp.WithString("project", mcp.Description("Project the task belongs to")),
		mcp.WithArray("related_ids", mcp.Description("IDs of items this task explicitly relates to"), mcp.WithStringItems()),
	), s.handleAddTask)

	s.mcp.AddTool(mcp.NewTool("get_links",
		mcp.WithDescription("Compute relationship links for one item, or graph-wide stats when no id is given."),
		mcp.WithString("id", mcp.Description("Item ID to get links for")),
		mcp.WithString("project", mcp.Description("Restrict linking to one project")),
	), s.handleGetLinks)

	s.mcp.AddTool(mcp.NewTool("session_start",
		mcp.WithDescription("Start a work session. Any open session is closed first."),
		mcp.WithString("project", mcp.Description("Project being worked on")),
		mcp.WithString("goal", mcp.Description("What this session aims to accomplish")),
		mcp.WithArray("tags", mcp.Description("Session tags"), mcp.WithStringItems()),
	), s.handleSessionStart)

	s.mcp.AddTool(mcp.NewTool("session_end",
		mcp.WithDescription("End the open session and summarize it. Significant sessions are stored as memories."),
	), s.handleSessionEnd)

	s.mcp.AddTool(mcp.NewTool("track_activity",
		mcp.WithDescription("Record an activity in the open session (one is started automatically if needed). Types: search, tool_use, file_access, error, solution, discovery."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Activity type")),
		mcp.WithObject("data", mcp.Description("Type-specific payload, e.g. {\"query\": ...} for search or {\"message\", \"severity\"} for error")),
	), s.handleTrackActivity)

	s.mcp.AddTool(mcp.NewTool("session_status",
		mcp.WithDescription("Show the open session, if any."),
	), s.handleSessionStatus)

	s.mcp.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List archived sessions, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum sessions to return (default 10)")),
	), s.handleListSessions)

	return s
}

// Serve runs the server on stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
