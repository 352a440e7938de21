package mcpserver

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/scholarsync/internal/auth"
	"github.com/starford/scholarsync/internal/classifier"
	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/service"
	"github.com/starford/scholarsync/internal/storage"
	"github.com/starford/scholarsync/internal/testutil"
)

type fakePDF struct{}

func (fakePDF) ExtractText(context.Context, []byte) (string, error) {
	return "Course plan\nMidterm on October 5, 2024 at 2:30 PM\n", nil
}

func testServer(t *testing.T) (*Server, *models.User) {
	t.Helper()
	db := testutil.TestDB(t)
	tokens, err := auth.NewTokens("secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	uploads, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(service.Deps{Store: db, Tokens: tokens, PDF: fakePDF{}, Uploads: uploads, Location: time.UTC})
	return New(svc, "test"), testutil.SeedUser(t, db, "ada@example.edu")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "classify_email":
		result, err = srv.classifyEmail(ctx, req)
	case "extract_events":
		result, err = srv.extractEvents(ctx, req)
	case "list_alerts":
		result, err = srv.listAlerts(ctx, req)
	case "list_events":
		result, err = srv.listEvents(ctx, req)
	case "export_calendar":
		result, err = srv.exportCalendar(ctx, req)
	case "import_pdf":
		result, err = srv.importPDF(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func pdfDataURI() string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4\n%fake"))
}

func TestClassifyEmail(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "classify_email", map[string]any{"subject": "", "body": "EXAM RESCHEDULED to Friday"})
	if text := resultText(r); !strings.Contains(text, `"type": "exam_change"`) || !strings.Contains(text, `"urgency": "high"`) {
		t.Errorf("classify result = %s", text)
	}

	r = callTool(t, srv, "classify_email", map[string]any{"subject": "hi", "body": "see you in class"})
	if text := resultText(r); text != "no important updates detected" {
		t.Errorf("no-match result = %q", text)
	}

	r = callTool(t, srv, "classify_email", map[string]any{"subject": "x"})
	if !r.IsError {
		t.Error("expected error for missing body")
	}
}

func TestExtractEvents(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "extract_events", map[string]any{"text": "Quiz 9/3/25 10:00 AM\nnothing"})
	if text := resultText(r); !strings.Contains(text, `"title": "Quiz"`) || !strings.Contains(text, "2025-09-03T10:00:00Z") {
		t.Errorf("extract result = %s", text)
	}
	r = callTool(t, srv, "extract_events", map[string]any{"text": "no date here"})
	if resultText(r) != "no events found" {
		t.Errorf("empty result = %q", resultText(r))
	}
}

func TestImportListAndExport(t *testing.T) {
	srv, u := testServer(t)

	r := callTool(t, srv, "import_pdf", map[string]any{"user_id": float64(u.ID), "url": pdfDataURI(), "filename": "plan.pdf"})
	if r.IsError {
		t.Fatalf("import error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "Imported 1 events") {
		t.Errorf("import result = %s", resultText(r))
	}

	r = callTool(t, srv, "list_events", map[string]any{"user_id": float64(u.ID), "from": "2024-10-01", "to": "2024-10-31"})
	if !strings.Contains(resultText(r), `"title": "Midterm on"`) {
		t.Errorf("list_events = %s", resultText(r))
	}

	r = callTool(t, srv, "export_calendar", map[string]any{"user_id": float64(u.ID)})
	if text := resultText(r); !strings.Contains(text, "BEGIN:VCALENDAR") || !strings.Contains(text, "SUMMARY:Midterm on") {
		t.Errorf("export = %s", text)
	}

	r = callTool(t, srv, "list_events", map[string]any{"user_id": float64(u.ID), "from": "last week"})
	if !r.IsError {
		t.Error("expected error for bad from")
	}
}

func TestImportPDFRejectsBadInput(t *testing.T) {
	srv, u := testServer(t)
	notPDF := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))

	for name, url := range map[string]string{
		"not a pdf":   notPDF,
		"wrong mime":  "data:image/png;base64,AAAA",
		"plain data":  "data:application/pdf,hello",
		"bad scheme":  "ftp://example.com/a.pdf",
		"loopback ip": "http://127.0.0.1/a.pdf",
	} {
		r := callTool(t, srv, "import_pdf", map[string]any{"user_id": float64(u.ID), "url": url})
		if !r.IsError {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestListAlerts(t *testing.T) {
	srv, u := testServer(t)
	_, _, err := srv.svc.ProcessEmail(context.Background(), u.ID, nil, classifier.Email{From: "p@uni.edu", Subject: "x", Body: "no class today"})
	if err != nil {
		t.Fatal(err)
	}
	r := callTool(t, srv, "list_alerts", map[string]any{"user_id": float64(u.ID)})
	if !strings.Contains(resultText(r), `"type": "cancellation"`) {
		t.Errorf("list_alerts = %s", resultText(r))
	}
	r = callTool(t, srv, "list_alerts", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing user_id")
	}
}

func TestTaxonomyDoc(t *testing.T) {
	doc := TaxonomyDoc(classifier.DefaultTaxonomy())
	if !strings.HasPrefix(doc, "# ScholarSync Alert Taxonomy") {
		t.Errorf("doc header = %q", doc[:40])
	}
	if !strings.Contains(doc, "1. **Class Cancelled** (cancellation, urgency high): `class cancelled`") {
		t.Errorf("first rule missing:\n%s", doc)
	}
}

func TestFilenames(t *testing.T) {
	if got := filenameFromURL("https://uni.edu/files/syllabus.pdf?x=1"); got != "syllabus.pdf" {
		t.Errorf("filenameFromURL = %q", got)
	}
	if got := filenameFromURL("https://uni.edu/download"); !strings.HasSuffix(got, ".pdf") || len(got) != 40 {
		t.Errorf("fallback name = %q", got)
	}
	if got := sanitizeFilename("../my syllabus (v2).pdf"); got != "my_syllabus__v2_.pdf" {
		t.Errorf("sanitizeFilename = %q", got)
	}
}
