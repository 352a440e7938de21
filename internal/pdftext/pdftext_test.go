package pdftext

import (
	"context"
	"errors"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/starford/scholarsync/internal/apperr"
)

func TestNewBackends(t *testing.T) {
	if _, err := New(BackendNative); err != nil {
		t.Errorf("native: %v", err)
	}
	if _, err := New(""); err != nil {
		t.Errorf("default: %v", err)
	}
	if x, err := New(BackendPdftotext); err != nil {
		t.Errorf("pdftotext: %v", err)
	} else if _, ok := x.(*Pdftotext); !ok {
		t.Errorf("pdftotext backend is %T", x)
	}
	if _, err := New("ocr"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNativeRejectsEmpty(t *testing.T) {
	_, err := Native{}.ExtractText(context.Background(), nil)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestNativeRejectsGarbage(t *testing.T) {
	_, err := Native{}.ExtractText(context.Background(), []byte("this is not a pdf at all"))
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestPdftotextMissingBinary(t *testing.T) {
	p := &Pdftotext{Binary: "definitely-not-a-real-pdftotext"}
	if _, err := p.ExtractText(context.Background(), []byte("%PDF-1.4")); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestNonEmpty(t *testing.T) {
	if _, err := nonEmpty(" \n\t"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank err = %v", err)
	}
	if got, err := nonEmpty("Quiz 9/3/25 10:00 AM\n"); err != nil || got == "" {
		t.Errorf("nonEmpty = %q, %v", got, err)
	}
}

func TestCollapse(t *testing.T) {
	if got := collapse("  Midterm   on\tOctober 5,  2024 "); got != "Midterm on October 5, 2024" {
		t.Errorf("collapse = %q", got)
	}
}

func TestJoinRowSpacing(t *testing.T) {
	texts := []pdf.Text{
		{S: "Mid", X: 0, W: 15, FontSize: 10},
		{S: "term", X: 15, W: 20, FontSize: 10},
		{S: "Oct", X: 40, W: 15, FontSize: 10},
	}
	if got := joinRow(texts); got != "Midterm Oct" {
		t.Errorf("joinRow = %q, want %q", got, "Midterm Oct")
	}
}
