package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Pdftotext shells out to poppler's pdftotext in raw mode.
type Pdftotext struct {
	Binary string
}

// NewPdftotext returns an extractor using the pdftotext found on PATH.
func NewPdftotext() *Pdftotext {
	return &Pdftotext{Binary: "pdftotext"}
}

// ExtractText implements Extractor.
func (p *Pdftotext) ExtractText(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "scholarsync-*.pdf")
	if err != nil {
		return "", fmt.Errorf("pdftext: create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("pdftext: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("pdftext: close temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.Binary, "-raw", name, "-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("pdftext: pdftotext: %w", ctx.Err())
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("pdftext: %s not found, install poppler-utils: %w", p.Binary, err)
		}
		return "", fmt.Errorf("pdftext: pdftotext failed: %w (stderr=%s)", err, strings.TrimSpace(stderr.String()))
	}
	return nonEmpty(out.String())
}
