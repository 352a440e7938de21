// Package pdftext turns uploaded PDF bytes into plain text, one visual row
// per line.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/starford/scholarsync/internal/apperr"
)

// Backend names accepted by New.
const (
	BackendNative    = "native"
	BackendPdftotext = "pdftotext"
)

// Extractor renders a PDF document as text.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// New returns the extractor for backend.
func New(backend string) (Extractor, error) {
	switch backend {
	case BackendNative, "":
		return Native{}, nil
	case BackendPdftotext:
		return NewPdftotext(), nil
	default:
		return nil, fmt.Errorf("pdftext: unknown backend %q", backend)
	}
}

// Native extracts text in-process with github.com/ledongthuc/pdf.
type Native struct{}

// ExtractText implements Extractor.
func (Native) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("pdftext: empty document: %w", apperr.ErrInvalidInput)
	}
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdftext: malformed pdf: %v: %w", r, apperr.ErrInvalidInput)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdftext: open: %v: %w", err, apperr.ErrInvalidInput)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("pdftext: page %d: %w", i, err)
		}
		for _, row := range rows {
			if line := collapse(joinRow(row.Content)); line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return nonEmpty(b.String())
}

// joinRow concatenates the text runs of one row, inserting a space where
// the gap between runs is wider than a fifth of the font size.
func joinRow(texts []pdf.Text) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			if t.X-(prev.X+prev.W) > prev.FontSize*0.2 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return b.String()
}

// collapse squeezes runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nonEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("pdftext: no extractable text (image-based or protected file?): %w", apperr.ErrInvalidInput)
	}
	return text, nil
}
