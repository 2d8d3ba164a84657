package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/memweave/memweave/internal/item"
	"github.com/memweave/memweave/internal/link"
	"github.com/memweave/memweave/internal/session"
)

func (s *Server) handleRemember(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}

	it := item.Item{
		Kind:     item.KindMemory,
		Content:  content,
		Tags:     req.GetStringSlice("tags", nil),
		Project:  req.GetString("project", ""),
		Category: req.GetString("category", ""),
	}
	id, insertErr := s.store.Insert(it)
	if insertErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store memory: %v", insertErr)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Remembered (id: %s)", id)), nil
}

func (s *Server) handleAddTask(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}

	it := item.Item{
		Kind:       item.KindTask,
		Content:    content,
		Tags:       req.GetStringSlice("tags", nil),
		Project:    req.GetString("project", ""),
		RelatedIDs: req.GetStringSlice("related_ids", nil),
	}
	id, insertErr := s.store.Insert(it)
	if insertErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store task: %v", insertErr)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task added (id: %s)", id)), nil
}

func (s *Server) handleGetLinks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	project := req.GetString("project", "")

	items, err := s.store.List(item.Filter{Project: project})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list items: %v", err)), nil
	}

	graph := link.NewBuilder(link.NewScorer(s.scorerOptions())).Build(items)

	var sb strings.Builder
	if id == "" {
		fmt.Fprintf(&sb, "%d items, %d links\n", len(items), len(graph.Edges))
		for _, e := range graph.Edges {
			fmt.Fprintf(&sb, "- %s <-> %s: %s\n", e.SourceID, e.TargetID, e.Label())
		}
		return mcp.NewToolResultText(sb.String()), nil
	}

	edges := graph.EdgesFor(id)
	if len(edges) == 0 {
		return mcp.NewToolResultText("No links found."), nil
	}
	fmt.Fprintf(&sb, "%d links for %s:\n", len(edges), id)
	for _, e := range edges {
		other := e.TargetID
		if other == id {
			other = e.SourceID
		}
		fmt.Fprintf(&sb, "- %s: %s\n", other, e.Label())
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleSessionStart(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := s.tracker.Start(
		req.GetString("project", ""),
		req.GetString("goal", ""),
		req.GetStringSlice("tags", nil),
	)
	return mcp.NewToolResultText(fmt.Sprintf("Session started (id: %s)", sess.ID)), nil
}

func (s *Server) handleSessionEnd(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.tracker.End(session.ReasonManual)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to end session: %v", err)), nil
	}
	if summary == nil {
		return mcp.NewToolResultText("No session was open."), nil
	}

	var sb strings.Builder
	sb.WriteString(summary.Narrative)
	fmt.Fprintf(&sb, "\n\nType: %s", strings.Join(summary.SessionTypes, ", "))
	if summary.IsSignificant {
		sb.WriteString("\nSignificant session; summary stored as a memory.")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleTrackActivity(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: type"), nil
	}
	data, _ := req.GetArguments()["data"].(map[string]any)

	if err := s.tracker.Track(session.ActivityType(typ), data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Activity recorded."), nil
}

func (s *Server) handleSessionStatus(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, ok := s.tracker.Current()
	if !ok {
		return mcp.NewToolResultText("No session is open."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Session %s", sess.ID)
	if sess.Context.Project != "" {
		fmt.Fprintf(&sb, " on %s", sess.Context.Project)
	}
	if sess.Context.Goal != "" {
		fmt.Fprintf(&sb, " (goal: %s)", sess.Context.Goal)
	}
	fmt.Fprintf(&sb, "\nOpen for %s, %d activities", sess.Duration(time.Now()).Round(time.Second), len(sess.Activities))
	fmt.Fprintf(&sb, "\nErrors: %d, solutions: %d, discoveries: %d, files: %d",
		len(sess.Errors), len(sess.Solutions), len(sess.Discoveries), len(sess.Files))
	if len(sess.KeyMoments) > 0 {
		fmt.Fprintf(&sb, "\nKey moments: %d", len(sess.KeyMoments))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleListSessions(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 10)

	records := s.tracker.History()
	if len(records) == 0 {
		return mcp.NewToolResultText("No sessions recorded."), nil
	}

	var sb strings.Builder
	// Newest first.
	for i := len(records) - 1; i >= 0 && len(records)-1-i < limit; i-- {
		r := records[i]
		fmt.Fprintf(&sb, "- %s ended %s (%s)", r.Session.ID, r.EndedAt.Format("2006-01-02 15:04"), r.Reason)
		if r.Summary != nil {
			fmt.Fprintf(&sb, ": %s", strings.Join(r.Summary.SessionTypes, ", "))
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// scorerOptions maps linker config to scorer options.
func (s *Server) scorerOptions() link.Options {
	return link.Options{
		SimilarityThreshold: s.cfg.Linker.SimilarityThreshold,
		MinSharedWords:      s.cfg.Linker.MinSharedWords,
		TemporalWindow:      s.cfg.Linker.TemporalWindow(),
		SourceTokenCap:      s.cfg.Linker.SourceTokenCap,
	}
}
