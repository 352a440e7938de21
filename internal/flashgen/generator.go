// Package flashgen produces study flashcards from notes or a topic name.
package flashgen

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/scholarsync/internal/models"
)

// DefaultCount is the number of cards generated when none is requested.
const DefaultCount = 5

// Card is a generated question/answer pair.
type Card struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
}

// Generator creates flashcards.
type Generator interface {
	FromNotes(ctx context.Context, notes string, count int) ([]Card, error)
	FromTopic(ctx context.Context, topic string, count int) ([]Card, error)
}

const (
	minSentenceLen = 20
	genericPrefix  = 50
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+`)
	isPattern   = regexp.MustCompile(`(?i)^(.+?)\s+is\s+(.+)$`)
	arePattern  = regexp.MustCompile(`(?i)^(.+?)\s+are\s+(.+)$`)
)

// Template turns statements into questions with fixed patterns. It never
// calls out to a model.
type Template struct{}

// FromNotes implements Generator. Sentences of at most 20 characters are
// skipped; at most count cards are returned.
func (Template) FromNotes(_ context.Context, notes string, count int) ([]Card, error) {
	if count <= 0 {
		count = DefaultCount
	}
	cards := []Card{}
	for _, s := range sentenceEnd.Split(notes, -1) {
		if len(cards) == count {
			break
		}
		s = strings.Join(strings.Fields(s), " ")
		if len(s) <= minSentenceLen {
			continue
		}
		cards = append(cards, cardFromSentence(s))
	}
	return cards, nil
}

func cardFromSentence(s string) Card {
	c := Card{Difficulty: Difficulty(s)}
	if m := isPattern.FindStringSubmatch(s); m != nil {
		c.Question = fmt.Sprintf("What is %s?", strings.TrimSpace(m[1]))
		c.Answer = strings.TrimSpace(m[2])
		return c
	}
	if m := arePattern.FindStringSubmatch(s); m != nil {
		c.Question = fmt.Sprintf("What are %s?", strings.TrimSpace(m[1]))
		c.Answer = strings.TrimSpace(m[2])
		return c
	}
	prefix := s
	if r := []rune(s); len(r) > genericPrefix {
		prefix = string(r[:genericPrefix])
	}
	c.Question = fmt.Sprintf("What do you know about: %s...?", prefix)
	c.Answer = s
	return c
}

// Difficulty grades a sentence by word count.
func Difficulty(s string) string {
	switch n := len(strings.Fields(s)); {
	case n < 10:
		return models.DifficultyEasy
	case n < 20:
		return models.DifficultyMedium
	default:
		return models.DifficultyHard
	}
}

// FromTopic implements Generator with five fixed prompts about topic.
func (Template) FromTopic(_ context.Context, topic string, count int) ([]Card, error) {
	if count <= 0 {
		count = DefaultCount
	}
	cards := []Card{
		{fmt.Sprintf("Define %s", topic), fmt.Sprintf("%s is a key concept in this subject area.", topic), models.DifficultyEasy},
		{fmt.Sprintf("What are the main characteristics of %s?", topic), "The main characteristics include various important features.", models.DifficultyMedium},
		{fmt.Sprintf("How does %s relate to other concepts?", topic), fmt.Sprintf("%s connects to multiple related concepts in the field.", topic), models.DifficultyHard},
		{fmt.Sprintf("Why is %s important?", topic), fmt.Sprintf("%s is important because it forms a fundamental part of understanding.", topic), models.DifficultyMedium},
		{fmt.Sprintf("Give an example of %s", topic), fmt.Sprintf("An example of %s would demonstrate its practical application.", topic), models.DifficultyEasy},
	}
	return cards[:min(count, len(cards))], nil
}

var _ Generator = Template{}
