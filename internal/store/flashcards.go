package store

import (
	"context"
	"fmt"

	"github.com/starford/scholarsync/internal/models"
)

const setSelect = `
	SELECT s.id, s.user_id, s.class_id, COALESCE(c.name, ''), s.title, s.description,
	       (SELECT COUNT(*) FROM flashcards f WHERE f.set_id = s.id),
	       s.created_at, s.updated_at
	FROM flashcard_sets s
	LEFT JOIN classes c ON s.class_id = c.id`

func scanSet(s scanner) (models.FlashcardSet, error) {
	var fs models.FlashcardSet
	err := s.Scan(&fs.ID, &fs.UserID, &fs.ClassID, &fs.ClassName, &fs.Title, &fs.Description,
		&fs.CardCount, &fs.CreatedAt, &fs.UpdatedAt)
	return fs, err
}

// ListFlashcardSets returns the user's sets, newest first, with card counts.
func (db *DB) ListFlashcardSets(ctx context.Context, userID int64) ([]models.FlashcardSet, error) {
	rows, err := db.conn.QueryContext(ctx,
		setSelect+` WHERE s.user_id = $1 ORDER BY s.created_at DESC, s.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list flashcard sets: %w", err)
	}
	return collect(rows, scanSet)
}

// GetFlashcardSet returns one of the user's sets.
func (db *DB) GetFlashcardSet(ctx context.Context, userID, id int64) (*models.FlashcardSet, error) {
	fs, err := scanSet(db.conn.QueryRowContext(ctx,
		setSelect+` WHERE s.id = $1 AND s.user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound("get flashcard set", err)
	}
	return &fs, nil
}

// CreateFlashcardSet inserts s for s.UserID.
func (db *DB) CreateFlashcardSet(ctx context.Context, s models.FlashcardSet) (*models.FlashcardSet, error) {
	var id int64
	now := db.timestamp()
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO flashcard_sets (user_id, class_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`,
		s.UserID, s.ClassID, s.Title, s.Description, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("store: create flashcard set: %w", err)
	}
	return db.GetFlashcardSet(ctx, s.UserID, id)
}

// UpdateFlashcardSet changes the title and description of one of the user's sets.
func (db *DB) UpdateFlashcardSet(ctx context.Context, userID, id int64, title, description string) (*models.FlashcardSet, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE flashcard_sets SET title = $1, description = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5`,
		title, description, db.timestamp(), id, userID)
	if err := expectRow("update flashcard set", res, err); err != nil {
		return nil, err
	}
	return db.GetFlashcardSet(ctx, userID, id)
}

// DeleteFlashcardSet removes one of the user's sets and its cards.
func (db *DB) DeleteFlashcardSet(ctx context.Context, userID, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM flashcard_sets WHERE id = $1 AND user_id = $2`, id, userID)
	return expectRow("delete flashcard set", res, err)
}

const (
	cardFields = `id, set_id, question, answer, difficulty, mastery_score, review_count,
	review_status, last_reviewed_at, created_at, updated_at`
	cardColumns = `f.id, f.set_id, f.question, f.answer, f.difficulty, f.mastery_score, f.review_count,
	f.review_status, f.last_reviewed_at, f.created_at, f.updated_at`
)

// cardOwned restricts a flashcards query to cards in sets owned by a user.
const cardOwned = ` JOIN flashcard_sets s ON s.id = f.set_id`

func scanCard(s scanner) (models.Flashcard, error) {
	var c models.Flashcard
	err := s.Scan(&c.ID, &c.SetID, &c.Question, &c.Answer, &c.Difficulty, &c.Mastery, &c.ReviewCount,
		&c.ReviewStatus, &c.LastReviewedAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListFlashcards returns the cards of one of the user's sets in creation order.
func (db *DB) ListFlashcards(ctx context.Context, userID, setID int64) ([]models.Flashcard, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards f`+cardOwned+` WHERE f.set_id = $1 AND s.user_id = $2 ORDER BY f.id`,
		setID, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list flashcards: %w", err)
	}
	return collect(rows, scanCard)
}

// GetFlashcard returns a card from one of the user's sets.
func (db *DB) GetFlashcard(ctx context.Context, userID, id int64) (*models.Flashcard, error) {
	c, err := scanCard(db.conn.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards f`+cardOwned+` WHERE f.id = $1 AND s.user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound("get flashcard", err)
	}
	return &c, nil
}

// CreateFlashcards inserts cards in one transaction. Ownership of the
// target sets is the caller's concern.
func (db *DB) CreateFlashcards(ctx context.Context, cards []models.Flashcard) ([]models.Flashcard, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	now := db.timestamp()
	out := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		if c.Difficulty == "" {
			c.Difficulty = models.DifficultyMedium
		}
		row := tx.QueryRowContext(ctx, `
			INSERT INTO flashcards (set_id, question, answer, difficulty, review_status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING `+cardFields,
			c.SetID, c.Question, c.Answer, c.Difficulty, models.ReviewNone, now)
		created, err := scanCard(row)
		if err != nil {
			return nil, fmt.Errorf("store: create flashcard: %w", err)
		}
		out = append(out, created)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit flashcards: %w", err)
	}
	return out, nil
}

// UpdateFlashcard replaces the content of a card in one of the user's sets.
func (db *DB) UpdateFlashcard(ctx context.Context, userID int64, c models.Flashcard) (*models.Flashcard, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE flashcards SET question = $1, answer = $2, difficulty = $3, updated_at = $4
		WHERE id = $5 AND set_id IN (SELECT id FROM flashcard_sets WHERE user_id = $6)`,
		c.Question, c.Answer, c.Difficulty, db.timestamp(), c.ID, userID)
	if err := expectRow("update flashcard", res, err); err != nil {
		return nil, err
	}
	return db.GetFlashcard(ctx, userID, c.ID)
}

// DeleteFlashcard removes a card from one of the user's sets.
func (db *DB) DeleteFlashcard(ctx context.Context, userID, id int64) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM flashcards
		WHERE id = $1 AND set_id IN (SELECT id FROM flashcard_sets WHERE user_id = $2)`, id, userID)
	return expectRow("delete flashcard", res, err)
}

// Mastery bounds and per-review adjustments.
const (
	MasteryMax   = 100
	masteryGain  = 10
	masteryLoss  = 5
	masteryFloor = 0
)

// ReviewFlashcard records a review outcome: got_it raises mastery by 10 up
// to 100, forgot lowers it by 5 down to 0.
func (db *DB) ReviewFlashcard(ctx context.Context, userID, id int64, status string) (*models.Flashcard, error) {
	var delta int
	switch status {
	case models.ReviewGotIt:
		delta = masteryGain
	case models.ReviewForgot:
		delta = -masteryLoss
	}
	now := db.timestamp()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE flashcards SET
			review_status    = $1,
			last_reviewed_at = $2,
			review_count     = review_count + 1,
			mastery_score    = CASE
				WHEN mastery_score + $3 > $4 THEN $4
				WHEN mastery_score + $3 < $5 THEN $5
				ELSE mastery_score + $3
			END,
			updated_at       = $2
		WHERE id = $6 AND set_id IN (SELECT id FROM flashcard_sets WHERE user_id = $7)`,
		status, now, delta, MasteryMax, masteryFloor, id, userID)
	if err := expectRow("review flashcard", res, err); err != nil {
		return nil, err
	}
	return db.GetFlashcard(ctx, userID, id)
}
