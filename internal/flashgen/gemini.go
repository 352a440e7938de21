package flashgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/starford/scholarsync/internal/models"
)

// DefaultModel is used when no Gemini model is configured.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = `You write concise study flashcards for university students.
Each card has a single clear question, a short factual answer, and a difficulty of
"easy", "medium" or "hard". Never invent facts that are not supported by the notes.`

// contentGenerator is the part of the genai client used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model for cards and falls back to another generator
// when the call fails or returns nothing usable.
type Gemini struct {
	models   contentGenerator
	model    string
	fallback Generator
}

// NewGemini creates a Gemini generator. A nil fallback means Template.
func NewGemini(ctx context.Context, apiKey, model string, fallback Generator) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("flashgen: gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("flashgen: create gemini client: %w", err)
	}
	return newGemini(client.Models, model, fallback), nil
}

func newGemini(m contentGenerator, model string, fallback Generator) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if fallback == nil {
		fallback = Template{}
	}
	return &Gemini{models: m, model: model, fallback: fallback}
}

// FromNotes implements Generator.
func (g *Gemini) FromNotes(ctx context.Context, notes string, count int) ([]Card, error) {
	if count <= 0 {
		count = DefaultCount
	}
	prompt := fmt.Sprintf("Write %d flashcards from these study notes:\n\n---\n%s", count, notes)
	cards, err := g.generate(ctx, prompt, count)
	if err != nil {
		slog.Warn("gemini flashcards failed, using template", slog.String("error", err.Error()))
		return g.fallback.FromNotes(ctx, notes, count)
	}
	return cards, nil
}

// FromTopic implements Generator.
func (g *Gemini) FromTopic(ctx context.Context, topic string, count int) ([]Card, error) {
	if count <= 0 {
		count = DefaultCount
	}
	prompt := fmt.Sprintf("Write %d flashcards covering the topic %q.", count, topic)
	cards, err := g.generate(ctx, prompt, count)
	if err != nil {
		slog.Warn("gemini flashcards failed, using template", slog.String("error", err.Error()))
		return g.fallback.FromTopic(ctx, topic, count)
	}
	return cards, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, count int) ([]Card, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    cardsSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini call: %w", err)
	}

	var cards []Card
	if err := json.Unmarshal([]byte(resp.Text()), &cards); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	out := make([]Card, 0, min(count, len(cards)))
	for _, c := range cards {
		c.Question = strings.TrimSpace(c.Question)
		c.Answer = strings.TrimSpace(c.Answer)
		if c.Question == "" || c.Answer == "" {
			continue
		}
		switch c.Difficulty {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		default:
			c.Difficulty = Difficulty(c.Answer)
		}
		out = append(out, c)
		if len(out) == count {
			break
		}
	}
	if len(out) == 0 {
		return nil, errors.New("gemini returned no usable cards")
	}
	return out, nil
}

func cardsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question":   {Type: genai.TypeString, Description: "The question shown on the front of the card."},
				"answer":     {Type: genai.TypeString, Description: "The answer shown on the back of the card."},
				"difficulty": {Type: genai.TypeString, Enum: []string{"easy", "medium", "hard"}},
			},
			Required: []string{"question", "answer", "difficulty"},
		},
	}
}

var _ Generator = (*Gemini)(nil)
