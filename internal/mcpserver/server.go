// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes ScholarSync tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scholarsync/internal/classifier"
	"github.com/starford/scholarsync/internal/service"
)

const taxonomyURI = "scholarsync://alert-taxonomy"

// Server wraps the MCP server with ScholarSync tools.
type Server struct {
	mcp *server.MCPServer
	svc *service.Service
}

// New creates a new MCP server with all ScholarSync tools registered.
func New(svc *service.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"ScholarSync",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("classify_email",
		mcp.WithDescription("Classify a class email into an alert category (cancellation, exam_change, "+
			"extra_credit, assignment, schedule_change). Nothing is stored. "+
			"See the "+taxonomyURI+" resource for the keyword rules."),
		mcp.WithString("from", mcp.Description("Sender address")),
		mcp.WithString("subject", mcp.Description("Email subject")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Email body as plain text")),
	), s.classifyEmail)

	s.mcp.AddTool(mcp.NewTool("extract_events",
		mcp.WithDescription("Find dated events in document text, one per line. Nothing is stored."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Plain document text, e.g. a syllabus")),
	), s.extractEvents)

	s.mcp.AddTool(mcp.NewTool("list_alerts",
		mcp.WithDescription("List a user's alerts, newest first."),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("User id")),
	), s.listAlerts)

	s.mcp.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List a user's events ordered by start time."),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("from", mcp.Description("Earliest start, RFC 3339 or YYYY-MM-DD")),
		mcp.WithString("to", mcp.Description("Latest start, RFC 3339 or YYYY-MM-DD")),
	), s.listEvents)

	s.mcp.AddTool(mcp.NewTool("export_calendar",
		mcp.WithDescription("Render a user's events as an iCalendar (.ics) document."),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("from", mcp.Description("Earliest start, RFC 3339 or YYYY-MM-DD")),
		mcp.WithString("to", mcp.Description("Latest start, RFC 3339 or YYYY-MM-DD")),
	), s.exportCalendar)

	s.mcp.AddTool(mcp.NewTool("import_pdf",
		mcp.WithDescription("Import events from a PDF given as an http(s) URL or a base64 data: URI."),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("url", mcp.Required(), mcp.Description("https://... or data:application/pdf;base64,...")),
		mcp.WithString("filename", mcp.Description("Optional file name used for the archive")),
	), s.importPDF)

	s.mcp.AddResource(
		mcp.NewResource(taxonomyURI, "Alert Taxonomy",
			mcp.WithResourceDescription("Keyword rules used to classify class emails, in priority order."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTaxonomyResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) classifyEmail(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cand, ok := s.svc.Classify(classifier.Email{
		From:    req.GetString("from", ""),
		Subject: req.GetString("subject", ""),
		Body:    body,
	})
	if !ok {
		return mcp.NewToolResultText("no important updates detected"), nil
	}
	return jsonResult(cand), nil
}

func (s *Server) extractEvents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found := s.svc.PreviewText(text)
	if len(found) == 0 {
		return mcp.NewToolResultText("no events found"), nil
	}
	return jsonResult(found), nil
}

func (s *Server) listAlerts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := req.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	alerts, err := s.svc.ListAlerts(ctx, int64(uid))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(alerts), nil
}

func (s *Server) listEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := req.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, to, err := s.bounds(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	events, err := s.svc.ListEvents(ctx, int64(uid), from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(events), nil
}

func (s *Server) exportCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := req.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, to, err := s.bounds(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.ExportCalendar(ctx, int64(uid), from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(doc), nil
}

// bounds reads the optional from/to arguments. A date-only upper bound
// covers the whole day.
func (s *Server) bounds(req mcp.CallToolRequest) (time.Time, time.Time, error) {
	from, err := parseTime(req.GetString("from", ""), s.svc.Location(), false)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseTime(req.GetString("to", ""), s.svc.Location(), true)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
	}
	return from, to, nil
}

func parseTime(v string, loc *time.Location, upper bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("want RFC 3339 or YYYY-MM-DD, got %q", v)
	}
	if upper {
		d = d.AddDate(0, 0, 1).Add(-time.Second)
	}
	return d, nil
}
