package service

import (
	"context"

	"github.com/starford/scholarsync/internal/models"
)

// ListClasses returns the user's classes.
func (s *Service) ListClasses(ctx context.Context, userID int64) ([]models.Class, error) {
	return s.db.ListClasses(ctx, userID)
}

// GetClass returns one of the user's classes.
func (s *Service) GetClass(ctx context.Context, userID, id int64) (*models.Class, error) {
	return s.db.GetClass(ctx, userID, id)
}

// CreateClass adds a class for the user.
func (s *Service) CreateClass(ctx context.Context, userID int64, c models.Class) (*models.Class, error) {
	c.UserID = userID
	return s.db.CreateClass(ctx, c)
}

// UpdateClass replaces the editable fields of one of the user's classes.
func (s *Service) UpdateClass(ctx context.Context, userID, id int64, c models.Class) (*models.Class, error) {
	c.ID, c.UserID = id, userID
	return s.db.UpdateClass(ctx, c)
}

// DeleteClass removes one of the user's classes.
func (s *Service) DeleteClass(ctx context.Context, userID, id int64) error {
	return s.db.DeleteClass(ctx, userID, id)
}

// ownClass verifies that classID, when set, belongs to the user.
func (s *Service) ownClass(ctx context.Context, userID int64, classID *int64) error {
	if classID == nil {
		return nil
	}
	_, err := s.db.GetClass(ctx, userID, *classID)
	return err
}
