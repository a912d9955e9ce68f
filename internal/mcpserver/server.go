// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes note tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notesapp/internal/apperr"
	"github.com/starford/notesapp/internal/noteservice"
	"github.com/starford/notesapp/internal/status"
)

const formatURI = "notes://format"

// Server wraps the MCP server with note tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all note tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Notes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes in creation order, filtered by a search text or sorted by priority. "+
			"query and sort cannot be combined."),
		mcp.WithString("query", mcp.Description("Optional text that the title or description must contain")),
		mcp.WithString("sort", mcp.Description("Optional priority order"), mcp.Enum("high", "low")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read a single note by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Title or description must be non-blank. "+
			"See the "+formatURI+" resource for accepted priority values."),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("description", mcp.Description("Note body")),
		mcp.WithString("priority", mcp.Required(), mcp.Description("High Priority, Medium Priority or Low Priority")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the title, description and priority of a note."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New body")),
		mcp.WithString("priority", mcp.Required(), mcp.Description("High Priority, Medium Priority or Low Priority")),
		mcp.WithString("version", mcp.Description("Optional version from a previous read; the update fails if the note changed since")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note. The removed note is returned so it can be re-created."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("delete_all_notes",
		mcp.WithDescription("Delete every note. Ask the user first and pass confirm=true only if they agreed."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
	), s.deleteAllNotes)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format",
			mcp.WithResourceDescription("Note fields, validation rules and priority labels."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.List(ctx, noteservice.ListQuery{
		Query: req.GetString("query", ""),
		Sort:  req.GetString("sort", ""),
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(notes)
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Get(ctx, int64(id))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(note)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := noteInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Create(ctx, in)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(note)
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := noteInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Update(ctx, int64(id), in, req.GetString("version", ""))
	if err != nil {
		return toolError(err), nil
	}
	return messageResult(status.Updated, note)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Delete(ctx, int64(id))
	if err != nil {
		return toolError(err), nil
	}
	return messageResult(status.Removed(note.Title), note)
}

func (s *Server) deleteAllNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !req.GetBool("confirm", false) {
		return mcp.NewToolResultError(status.DeleteAllMessage + " Call again with confirm=true."), nil
	}
	if err := s.svc.DeleteAll(ctx); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(status.RemovedAll), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}

func noteInput(req mcp.CallToolRequest) (noteservice.NoteInput, error) {
	priority, err := req.RequireString("priority")
	if err != nil {
		return noteservice.NoteInput{}, err
	}
	return noteservice.NoteInput{
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
		Priority:    priority,
	}, nil
}

// toolError turns a service error into a tool-level error result.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrUnknownPriority):
		return mcp.NewToolResultError(fmt.Sprintf("%s (%v)", status.Incomplete, err))
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError("version mismatch: the note changed, read it again")
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func messageResult(msg string, note *noteservice.NoteView) (*mcp.CallToolResult, error) {
	return jsonResult(struct {
		Message string                `json:"message"`
		Note    *noteservice.NoteView `json:"note"`
	}{msg, note})
}
