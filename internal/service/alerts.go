package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/starford/scholarsync/internal/apperr"
	"github.com/starford/scholarsync/internal/classifier"
	"github.com/starford/scholarsync/internal/models"
)

// InboundEmail is an email delivered by the webhook or the inbox watcher.
// UserID wins over To when both are set.
type InboundEmail struct {
	classifier.Email
	To      string
	UserID  *int64
	ClassID *int64
}

// ListAlerts returns the user's alerts, newest first.
func (s *Service) ListAlerts(ctx context.Context, userID int64) ([]models.Alert, error) {
	return s.db.ListAlerts(ctx, userID)
}

// GetAlert returns one of the user's alerts.
func (s *Service) GetAlert(ctx context.Context, userID, id int64) (*models.Alert, error) {
	return s.db.GetAlert(ctx, userID, id)
}

// CreateAlert stores a manually entered alert.
func (s *Service) CreateAlert(ctx context.Context, userID int64, a models.Alert) (*models.Alert, error) {
	if err := s.ownClass(ctx, userID, a.ClassID); err != nil {
		return nil, err
	}
	a.UserID = userID
	if a.Urgency == "" {
		a.Urgency = string(classifier.UrgencyFor(classifier.Category(a.Type)))
	}
	a.DetectedAt = a.DetectedAt.UTC()
	return s.RaiseAlert(ctx, a)
}

// MarkAlertRead flags one of the user's alerts as read.
func (s *Service) MarkAlertRead(ctx context.Context, userID, id int64) (*models.Alert, error) {
	return s.db.MarkAlertRead(ctx, userID, id)
}

// DeleteAlert removes one of the user's alerts.
func (s *Service) DeleteAlert(ctx context.Context, userID, id int64) error {
	return s.db.DeleteAlert(ctx, userID, id)
}

// Classify runs the keyword classifier without persisting anything.
func (s *Service) Classify(e classifier.Email) (classifier.Candidate, bool) {
	return s.classifier.ClassifyEmail(e)
}

// ProcessEmail classifies e and, on a match, stores an alert for the user.
// The bool is false when the email carries no important update.
func (s *Service) ProcessEmail(ctx context.Context, userID int64, classID *int64, e classifier.Email) (*models.Alert, bool, error) {
	cand, ok := s.classifier.ClassifyEmail(e)
	if !ok {
		return nil, false, nil
	}
	if err := s.ownClass(ctx, userID, classID); err != nil {
		return nil, false, err
	}
	a, err := s.RaiseAlert(ctx, alertFromCandidate(userID, classID, cand))
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// ProcessInbound classifies an email that arrived without a session and
// resolves its recipient first by explicit user id, then by the To address.
func (s *Service) ProcessInbound(ctx context.Context, in InboundEmail) (*models.Alert, bool, error) {
	if _, ok := s.classifier.ClassifyEmail(in.Email); !ok {
		return nil, false, nil
	}
	userID, err := s.recipient(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return s.ProcessEmail(ctx, userID, in.ClassID, in.Email)
}

func (s *Service) recipient(ctx context.Context, in InboundEmail) (int64, error) {
	if in.UserID != nil {
		u, err := s.db.GetUser(ctx, *in.UserID)
		if err != nil {
			return 0, err
		}
		return u.ID, nil
	}
	if in.To == "" {
		return 0, fmt.Errorf("userId or to is required: %w", apperr.ErrInvalidInput)
	}
	addrs, err := mail.ParseAddressList(in.To)
	if err != nil {
		return 0, fmt.Errorf("parse recipient %q: %v: %w", in.To, err, apperr.ErrInvalidInput)
	}
	for _, a := range addrs {
		u, err := s.db.GetUserByEmail(ctx, normalizeEmail(a.Address))
		if err == nil {
			return u.ID, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return 0, err
		}
	}
	return 0, fmt.Errorf("no user for recipient %q: %w", in.To, apperr.ErrNotFound)
}

func alertFromCandidate(userID int64, classID *int64, c classifier.Candidate) models.Alert {
	return models.Alert{
		UserID:       userID,
		ClassID:      classID,
		Type:         string(c.Category),
		Title:        c.Title,
		Message:      c.Message,
		EmailSubject: c.SourceSubject,
		EmailFrom:    c.SourceFrom,
		Urgency:      string(c.Urgency),
	}
}
