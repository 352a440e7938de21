// Package models defines the domain types shared by the store, services and API.
package models

import "time"

// User is a registered student account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Class is a course the user is enrolled in.
type Class struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Alert is a persisted notification, usually derived from an email.
type Alert struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	ClassID      *int64    `json:"class_id"`
	ClassName    string    `json:"class_name,omitempty"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	EmailSubject string    `json:"email_subject"`
	EmailFrom    string    `json:"email_from"`
	Urgency      string    `json:"urgency"`
	IsRead       bool      `json:"is_read"`
	DetectedAt   time.Time `json:"detected_at"`
}

// Event sources.
const (
	SourceManual = "manual"
	SourcePDF    = "pdf"
)

// Event is a calendar entry.
type Event struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	AllDay      bool       `json:"all_day"`
	Priority    string     `json:"priority"`
	Source      string     `json:"source"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventPatch carries the fields of a partial event update. Nil means unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      *bool
	Priority    *string
}

// FlashcardSet groups flashcards for one subject.
type FlashcardSet struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ClassID     *int64    `json:"class_id"`
	ClassName   string    `json:"class_name,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Review outcomes.
const (
	ReviewGotIt  = "got_it"
	ReviewForgot = "forgot"
)

// Review status of a card that was never reviewed.
const ReviewNone = "not_reviewed"

// Flashcard difficulties.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Flashcard is a single question/answer pair.
type Flashcard struct {
	ID             int64      `json:"id"`
	SetID          int64      `json:"set_id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Difficulty     string     `json:"difficulty"`
	Mastery        int        `json:"mastery_level"`
	ReviewCount    int        `json:"review_count"`
	ReviewStatus   string     `json:"review_status"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
