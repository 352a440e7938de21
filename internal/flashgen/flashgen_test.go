package flashgen

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/starford/scholarsync/internal/models"
)

func TestTemplateFromNotesPatterns(t *testing.T) {
	notes := "Photosynthesis is the process plants use to make food. " +
		"Mitochondria are the powerhouse of the eukaryotic cell! " +
		"Short one. " +
		"Cells divide through mitosis and meiosis in multicellular organisms?"
	cards, err := Template{}.FromNotes(context.Background(), notes, 5)
	if err != nil {
		t.Fatalf("FromNotes: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("cards = %d, want 3 (short sentence skipped): %+v", len(cards), cards)
	}
	if cards[0].Question != "What is Photosynthesis?" || cards[0].Answer != "the process plants use to make food" {
		t.Errorf("is-card = %+v", cards[0])
	}
	if cards[1].Question != "What are Mitochondria?" || cards[1].Answer != "the powerhouse of the eukaryotic cell" {
		t.Errorf("are-card = %+v", cards[1])
	}
	want := "What do you know about: Cells divide through mitosis and meiosis in multic...?"
	if cards[2].Question != want {
		t.Errorf("generic question = %q, want %q", cards[2].Question, want)
	}
	if cards[2].Answer != "Cells divide through mitosis and meiosis in multicellular organisms" {
		t.Errorf("generic answer = %q", cards[2].Answer)
	}
}

func TestTemplateFromNotesRespectsCount(t *testing.T) {
	notes := strings.Repeat("The library opens early on weekdays. ", 10)
	cards, _ := Template{}.FromNotes(context.Background(), notes, 2)
	if len(cards) != 2 {
		t.Errorf("cards = %d, want 2", len(cards))
	}
	none, _ := Template{}.FromNotes(context.Background(), "tiny. text.", 5)
	if none == nil || len(none) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", none)
	}
}

func TestDifficulty(t *testing.T) {
	cases := []struct {
		words int
		want  string
	}{
		{3, models.DifficultyEasy},
		{9, models.DifficultyEasy},
		{10, models.DifficultyMedium},
		{19, models.DifficultyMedium},
		{20, models.DifficultyHard},
	}
	for _, tc := range cases {
		s := strings.TrimSpace(strings.Repeat("word ", tc.words))
		if got := Difficulty(s); got != tc.want {
			t.Errorf("Difficulty(%d words) = %q, want %q", tc.words, got, tc.want)
		}
	}
}

func TestTemplateFromTopic(t *testing.T) {
	cards, _ := Template{}.FromTopic(context.Background(), "Entropy", 3)
	if len(cards) != 3 {
		t.Fatalf("cards = %d, want 3", len(cards))
	}
	if cards[0].Question != "Define Entropy" || cards[2].Difficulty != models.DifficultyHard {
		t.Errorf("cards = %+v", cards)
	}
	all, _ := Template{}.FromTopic(context.Background(), "Entropy", 50)
	if len(all) != 5 {
		t.Errorf("cards = %d, want capped at 5", len(all))
	}
}

type fakeModels struct {
	text string
	err  error
}

func (f fakeModels) GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGeminiParsesCards(t *testing.T) {
	g := newGemini(fakeModels{text: `[
		{"question":"What is a cell?","answer":"The unit of life","difficulty":"easy"},
		{"question":"  ","answer":"dropped","difficulty":"easy"},
		{"question":"What is DNA?","answer":"Genetic material","difficulty":"extreme"}
	]`}, "", nil)

	cards, err := g.FromTopic(context.Background(), "Biology", 5)
	if err != nil {
		t.Fatalf("FromTopic: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("cards = %+v, want 2", cards)
	}
	if cards[1].Difficulty != models.DifficultyEasy {
		t.Errorf("unknown difficulty not regraded: %q", cards[1].Difficulty)
	}
	if g.model != DefaultModel {
		t.Errorf("model = %q", g.model)
	}
}

func TestGeminiFallsBackToTemplate(t *testing.T) {
	for name, fm := range map[string]fakeModels{
		"api error": {err: errors.New("quota exceeded")},
		"bad json":  {text: "not json"},
		"empty":     {text: "[]"},
	} {
		t.Run(name, func(t *testing.T) {
			g := newGemini(fm, "gemini-test", nil)
			cards, err := g.FromTopic(context.Background(), "Entropy", 2)
			if err != nil {
				t.Fatalf("FromTopic: %v", err)
			}
			if len(cards) != 2 || cards[0].Question != "Define Entropy" {
				t.Errorf("fallback cards = %+v", cards)
			}
		})
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", "", nil); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestWriteDocx(t *testing.T) {
	var buf bytes.Buffer
	set := models.FlashcardSet{Title: "Organic Chemistry", Description: "Week 3"}
	cards := []models.Flashcard{
		{Question: "What is an alkane?", Answer: "A saturated hydrocarbon", Difficulty: "easy", Mastery: 40},
	}
	if err := WriteDocx(&buf, set, cards); err != nil {
		t.Fatalf("WriteDocx: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("output is not a zip container: %v", err)
	}
	var doc string
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		doc = string(b)
	}
	for _, want := range []string{"Organic Chemistry", "1. What is an alkane?", "A saturated hydrocarbon"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
}
