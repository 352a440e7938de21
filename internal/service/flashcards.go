package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/starford/scholarsync/internal/apperr"
	"github.com/starford/scholarsync/internal/flashgen"
	"github.com/starford/scholarsync/internal/models"
)

// GenerateRequest describes a generated flashcard set. Exactly one of Notes
// and Topic drives generation; Notes wins when both are set.
type GenerateRequest struct {
	Title       string
	Description string
	ClassID     *int64
	Notes       string
	Topic       string
	Count       int
}

// GeneratedSet is a new set with its cards.
type GeneratedSet struct {
	Set   *models.FlashcardSet `json:"set"`
	Cards []models.Flashcard   `json:"flashcards"`
}

// ListFlashcardSets returns the user's sets.
func (s *Service) ListFlashcardSets(ctx context.Context, userID int64) ([]models.FlashcardSet, error) {
	return s.db.ListFlashcardSets(ctx, userID)
}

// GetFlashcardSet returns one of the user's sets.
func (s *Service) GetFlashcardSet(ctx context.Context, userID, id int64) (*models.FlashcardSet, error) {
	return s.db.GetFlashcardSet(ctx, userID, id)
}

// CreateFlashcardSet adds an empty set for the user.
func (s *Service) CreateFlashcardSet(ctx context.Context, userID int64, set models.FlashcardSet) (*models.FlashcardSet, error) {
	if err := s.ownClass(ctx, userID, set.ClassID); err != nil {
		return nil, err
	}
	set.UserID = userID
	return s.db.CreateFlashcardSet(ctx, set)
}

// UpdateFlashcardSet renames one of the user's sets.
func (s *Service) UpdateFlashcardSet(ctx context.Context, userID, id int64, title, description string) (*models.FlashcardSet, error) {
	return s.db.UpdateFlashcardSet(ctx, userID, id, title, description)
}

// DeleteFlashcardSet removes one of the user's sets.
func (s *Service) DeleteFlashcardSet(ctx context.Context, userID, id int64) error {
	return s.db.DeleteFlashcardSet(ctx, userID, id)
}

// GenerateFlashcardSet creates a set and fills it with generated cards.
func (s *Service) GenerateFlashcardSet(ctx context.Context, userID int64, req GenerateRequest) (*GeneratedSet, error) {
	var (
		cards []flashgen.Card
		err   error
	)
	switch {
	case strings.TrimSpace(req.Notes) != "":
		cards, err = s.gen.FromNotes(ctx, req.Notes, req.Count)
	case strings.TrimSpace(req.Topic) != "":
		cards, err = s.gen.FromTopic(ctx, strings.TrimSpace(req.Topic), req.Count)
	default:
		return nil, fmt.Errorf("notes or topic is required: %w", apperr.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("no flashcards could be generated from the notes: %w", apperr.ErrInvalidInput)
	}

	title := req.Title
	if title == "" {
		title = req.Topic
	}
	if title == "" {
		title = "Generated Flashcards"
	}
	set, err := s.CreateFlashcardSet(ctx, userID, models.FlashcardSet{
		ClassID:     req.ClassID,
		Title:       title,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]models.Flashcard, len(cards))
	for i, c := range cards {
		rows[i] = models.Flashcard{SetID: set.ID, Question: c.Question, Answer: c.Answer, Difficulty: c.Difficulty}
	}
	created, err := s.db.CreateFlashcards(ctx, rows)
	if err != nil {
		return nil, err
	}
	set.CardCount = len(created)
	return &GeneratedSet{Set: set, Cards: created}, nil
}

// ExportFlashcardSet writes one of the user's sets as a .docx study sheet.
func (s *Service) ExportFlashcardSet(ctx context.Context, userID, id int64, w io.Writer) (*models.FlashcardSet, error) {
	set, err := s.db.GetFlashcardSet(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	cards, err := s.db.ListFlashcards(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return set, flashgen.WriteDocx(w, *set, cards)
}

// ListFlashcards returns the cards of one of the user's sets.
func (s *Service) ListFlashcards(ctx context.Context, userID, setID int64) ([]models.Flashcard, error) {
	if _, err := s.db.GetFlashcardSet(ctx, userID, setID); err != nil {
		return nil, err
	}
	return s.db.ListFlashcards(ctx, userID, setID)
}

// GetFlashcard returns a card from one of the user's sets.
func (s *Service) GetFlashcard(ctx context.Context, userID, id int64) (*models.Flashcard, error) {
	return s.db.GetFlashcard(ctx, userID, id)
}

// CreateFlashcard adds a card to one of the user's sets.
func (s *Service) CreateFlashcard(ctx context.Context, userID int64, c models.Flashcard) (*models.Flashcard, error) {
	if _, err := s.db.GetFlashcardSet(ctx, userID, c.SetID); err != nil {
		return nil, err
	}
	created, err := s.db.CreateFlashcards(ctx, []models.Flashcard{c})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// UpdateFlashcard replaces the content of a card.
func (s *Service) UpdateFlashcard(ctx context.Context, userID, id int64, c models.Flashcard) (*models.Flashcard, error) {
	c.ID = id
	if c.Difficulty == "" {
		c.Difficulty = models.DifficultyMedium
	}
	return s.db.UpdateFlashcard(ctx, userID, c)
}

// DeleteFlashcard removes a card.
func (s *Service) DeleteFlashcard(ctx context.Context, userID, id int64) error {
	return s.db.DeleteFlashcard(ctx, userID, id)
}

// ReviewFlashcard records a got_it or forgot review.
func (s *Service) ReviewFlashcard(ctx context.Context, userID, id int64, status string) (*models.Flashcard, error) {
	if status != models.ReviewGotIt && status != models.ReviewForgot {
		return nil, fmt.Errorf("status must be %q or %q: %w", models.ReviewGotIt, models.ReviewForgot, apperr.ErrInvalidInput)
	}
	return s.db.ReviewFlashcard(ctx, userID, id, status)
}
