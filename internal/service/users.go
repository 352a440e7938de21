package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/scholarsync/internal/apperr"
	"github.com/starford/scholarsync/internal/auth"
	"github.com/starford/scholarsync/internal/models"
)

// Session is the result of a successful signup or login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Signup registers a new account and opens a session for it.
func (s *Service) Signup(ctx context.Context, email, name, password string) (*Session, error) {
	email = normalizeEmail(email)
	if len(password) < auth.MinPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", auth.MinPasswordLen, apperr.ErrInvalidInput)
	}
	if _, err := s.db.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.db.CreateUser(ctx, models.User{Email: email, Name: strings.TrimSpace(name), PasswordHash: hash})
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.db.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *Service) Authenticate(token string) (int64, error) {
	return s.tokens.Verify(token)
}

// GetUser returns the account of userID.
func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.db.GetUser(ctx, userID)
}

// UpdateUser changes the email and name of the account.
func (s *Service) UpdateUser(ctx context.Context, userID int64, email, name string) (*models.User, error) {
	return s.db.UpdateUser(ctx, userID, normalizeEmail(email), strings.TrimSpace(name))
}

// DeleteUser removes the account and everything it owns.
func (s *Service) DeleteUser(ctx context.Context, userID int64) error {
	return s.db.DeleteUser(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
