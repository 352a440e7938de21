package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/scholarsync/internal/auth"
	"github.com/starford/scholarsync/internal/classifier"
	"github.com/starford/scholarsync/internal/models"
)

// SignupRequest is the request body for creating an account.
type SignupRequest struct {
	Email    string `json:"email" example:"ada@example.edu" validate:"required"`
	Name     string `json:"name" example:"Ada Lovelace" validate:"required"`
	Password string `json:"password" example:"hunter22" validate:"required"`
}

// Validate validates the signup request.
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(auth.MinPasswordLen, 72)),
	)
}

// LoginRequest is the request body for opening a session.
type LoginRequest struct {
	Email    string `json:"email" example:"ada@example.edu" validate:"required"`
	Password string `json:"password" example:"hunter22" validate:"required"`
}

// Validate validates the login request.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateUserRequest is the request body for changing the current account.
type UpdateUserRequest struct {
	Email string `json:"email" example:"ada@example.edu" validate:"required"`
	Name  string `json:"name" example:"Ada Lovelace" validate:"required"`
}

// Validate validates the update request.
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}

// ClassRequest is the request body for creating or updating a class.
type ClassRequest struct {
	Name        string `json:"name" example:"Linear Algebra" validate:"required"`
	Code        string `json:"code" example:"MATH 221"`
	Description string `json:"description"`
	Instructor  string `json:"instructor" example:"Dr. Noether"`
}

// Validate validates the class request.
func (r ClassRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Code, validation.Length(0, 50)),
		validation.Field(&r.Instructor, validation.Length(0, 200)),
	)
}

func (r ClassRequest) model() models.Class {
	return models.Class{Name: r.Name, Code: r.Code, Description: r.Description, Instructor: r.Instructor}
}

var alertTypes = []any{
	string(classifier.CategoryCancellation),
	string(classifier.CategoryExamChange),
	string(classifier.CategoryExtraCredit),
	string(classifier.CategoryAssignment),
	string(classifier.CategoryScheduleChange),
	string(classifier.CategoryEventReminder),
}

var urgencies = []any{
	string(classifier.UrgencyHigh),
	string(classifier.UrgencyMedium),
	string(classifier.UrgencyLow),
}

// AlertRequest is the request body for a manually entered alert.
type AlertRequest struct {
	ClassID      *int64 `json:"classId"`
	Type         string `json:"type" example:"exam_change" validate:"required"`
	Title        string `json:"title" example:"Exam Schedule Change" validate:"required"`
	Message      string `json:"message" validate:"required"`
	EmailSubject string `json:"emailSubject"`
	EmailFrom    string `json:"emailFrom"`
	Urgency      string `json:"urgency" example:"high"`
}

// Validate validates the alert request.
func (r AlertRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(alertTypes...)),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.Urgency, validation.In(urgencies...)),
	)
}

func (r AlertRequest) model() models.Alert {
	return models.Alert{
		ClassID:      r.ClassID,
		Type:         r.Type,
		Title:        r.Title,
		Message:      r.Message,
		EmailSubject: r.EmailSubject,
		EmailFrom:    r.EmailFrom,
		Urgency:      r.Urgency,
	}
}

// ProcessEmailRequest is a simulated email submitted by a signed-in user.
type ProcessEmailRequest struct {
	ClassID *int64 `json:"classId"`
	From    string `json:"from" example:"prof@uni.edu" validate:"required"`
	Subject string `json:"subject" example:"Midterm moved" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// Validate validates the email request.
func (r ProcessEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.Subject, validation.Required),
		validation.Field(&r.Body, validation.Required),
	)
}

// WebhookEmailRequest is an email forwarded by a mail provider.
type WebhookEmailRequest struct {
	UserID  *int64 `json:"userId"`
	ClassID *int64 `json:"classId"`
	From    string `json:"from" validate:"required"`
	To      string `json:"to"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// Validate validates the webhook payload.
func (r WebhookEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.Subject, validation.Required),
		validation.Field(&r.Body, validation.Required),
	)
}

// EmailResponse reports the outcome of email processing.
type EmailResponse struct {
	Message   string        `json:"message" validate:"required"`
	Alert     *models.Alert `json:"alert,omitempty"`
	Processed bool          `json:"processed"`
}

var priorities = []any{"low", "medium", "high"}

// EventRequest is the request body for creating an event.
type EventRequest struct {
	Title       string     `json:"title" example:"Midterm" validate:"required"`
	Description string     `json:"description"`
	Location    string     `json:"location" example:"Hall B"`
	StartTime   time.Time  `json:"startTime" validate:"required"`
	EndTime     *time.Time `json:"endTime"`
	AllDay      bool       `json:"allDay"`
	Priority    string     `json:"priority" example:"medium"`
}

// Validate validates the event request.
func (r EventRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.StartTime, validation.Required),
		validation.Field(&r.Priority, validation.In(priorities...)),
	)
}

func (r EventRequest) model() models.Event {
	return models.Event{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		AllDay:      r.AllDay,
		Priority:    r.Priority,
	}
}

// EventPatchRequest changes only the fields it carries.
type EventPatchRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	AllDay      *bool      `json:"allDay"`
	Priority    *string    `json:"priority"`
}

// Validate validates the patch request.
func (r EventPatchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty),
		validation.Field(&r.Priority, validation.NilOrNotEmpty, validation.In(priorities...)),
	)
}

func (r EventPatchRequest) model() models.EventPatch {
	return models.EventPatch{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		AllDay:      r.AllDay,
		Priority:    r.Priority,
	}
}

// ExtractRequest carries raw document text for an extraction preview.
type ExtractRequest struct {
	Text string `json:"text" validate:"required"`
}

// Validate validates the extract request.
func (r ExtractRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	)
}

// ImportResponse is returned after a successful document import.
type ImportResponse struct {
	Message  string         `json:"message" example:"Imported 3 events" validate:"required"`
	Events   []models.Event `json:"events" validate:"required"`
	Archived string         `json:"archived,omitempty"`
}

// FlashcardSetRequest is the request body for creating or updating a set.
type FlashcardSetRequest struct {
	ClassID     *int64 `json:"classId"`
	Title       string `json:"title" example:"Chapter 3" validate:"required"`
	Description string `json:"description"`
}

// Validate validates the set request.
func (r FlashcardSetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
	)
}

// GenerateSetRequest asks for a set generated from notes or a topic.
type GenerateSetRequest struct {
	ClassID     *int64 `json:"classId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Topic       string `json:"topic" example:"Photosynthesis"`
	Notes       string `json:"notes"`
	Count       int    `json:"count" example:"5"`
}

// Validate validates the generate request.
func (r GenerateSetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Topic, validation.Required.When(r.Notes == "").Error("either topic or notes is required")),
		validation.Field(&r.Count, validation.Min(0), validation.Max(50)),
	)
}

var difficulties = []any{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}

// FlashcardRequest is the request body for creating or updating a card.
type FlashcardRequest struct {
	SetID      int64  `json:"flashcardSetId"`
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Difficulty string `json:"difficulty" example:"medium"`
}

// Validate validates the card request.
func (r FlashcardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Question, validation.Required),
		validation.Field(&r.Answer, validation.Required),
		validation.Field(&r.Difficulty, validation.In(difficulties...)),
	)
}

func (r FlashcardRequest) model() models.Flashcard {
	return models.Flashcard{SetID: r.SetID, Question: r.Question, Answer: r.Answer, Difficulty: r.Difficulty}
}

// ReviewRequest records a study outcome.
type ReviewRequest struct {
	Status string `json:"status" example:"got_it" validate:"required"`
}

// Validate validates the review request.
func (r ReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(models.ReviewGotIt, models.ReviewForgot)),
	)
}
