package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/scholarsync/internal/apperr"
)

const maxPDFSize = 10 << 20 // 10 MB

var safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type importResult struct {
	Message  string `json:"message"`
	Events   any    `json:"events"`
	Archived string `json:"archived,omitempty"`
}

func (s *Server) importPDF(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := req.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var data []byte
	if strings.HasPrefix(rawURL, "data:") {
		data, err = decodeDataURI(rawURL)
	} else {
		data, err = fetchHTTP(ctx, rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxPDFSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(data), maxPDFSize)), nil
	}
	if err := validatePDF(data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	filename := req.GetString("filename", "")
	if filename == "" {
		filename = filenameFromURL(rawURL)
	}
	filename = sanitizeFilename(filename)

	imp, err := s.svc.ImportDocument(ctx, int64(uid), filename, data)
	if errors.Is(err, apperr.ErrNoEvents) {
		return mcp.NewToolResultError("No recognizable events found in PDF."), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(importResult{
		Message:  fmt.Sprintf("Imported %d events", len(imp.Events)),
		Events:   imp.Events,
		Archived: imp.Archived,
	}), nil
}

// decodeDataURI parses a data:application/pdf;base64,<data> URI.
func decodeDataURI(uri string) ([]byte, error) {
	meta, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, fmt.Errorf("only base64 data URIs are supported")
	}
	if mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]; mime != "application/pdf" {
		return nil, fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, nil
}

// fetchHTTP downloads a file from an HTTP/HTTPS URL with security checks.
func fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}
	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxPDFSize {
		return nil, fmt.Errorf("file too large: exceeds %d bytes", maxPDFSize)
	}
	return data, nil
}

// checkBlockedHost rejects loopback and cloud metadata addresses.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ip = ips[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	// AWS/GCP/Azure metadata endpoint.
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("blocked host: cloud metadata address %s", host)
	}
	return nil
}

// filenameFromURL takes the last path segment of an http URL, falling back
// to a random name.
func filenameFromURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "data:") {
		if parsed, err := url.Parse(rawURL); err == nil {
			base := path.Base(parsed.Path)
			if strings.EqualFold(path.Ext(base), ".pdf") {
				return base
			}
		}
	}
	return uuid.New().String() + ".pdf"
}

// sanitizeFilename strips path separators and unsafe characters.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		name = uuid.New().String() + ".pdf"
	}
	return name
}

// validatePDF verifies the content starts like a PDF document.
func validatePDF(data []byte) error {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return fmt.Errorf("content is not a PDF (detected: %s)", http.DetectContentType(data))
	}
	return nil
}
