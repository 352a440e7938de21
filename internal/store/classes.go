package store

import (
	"context"
	"fmt"

	"github.com/starford/scholarsync/internal/models"
)

const classColumns = `id, user_id, name, code, description, instructor, created_at, updated_at`

func scanClass(s scanner) (models.Class, error) {
	var c models.Class
	err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Code, &c.Description, &c.Instructor, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListClasses returns the user's classes ordered by name.
func (db *DB) ListClasses(ctx context.Context, userID int64) ([]models.Class, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list classes: %w", err)
	}
	return collect(rows, scanClass)
}

// GetClass returns one of the user's classes.
func (db *DB) GetClass(ctx context.Context, userID, id int64) (*models.Class, error) {
	c, err := scanClass(db.conn.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound("get class", err)
	}
	return &c, nil
}

// CreateClass inserts c for c.UserID.
func (db *DB) CreateClass(ctx context.Context, c models.Class) (*models.Class, error) {
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO classes (user_id, name, code, description, instructor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING `+classColumns,
		c.UserID, c.Name, c.Code, c.Description, c.Instructor, db.timestamp())
	out, err := scanClass(row)
	if err != nil {
		return nil, fmt.Errorf("store: create class: %w", err)
	}
	return &out, nil
}

// UpdateClass replaces the editable fields of a class owned by c.UserID.
func (db *DB) UpdateClass(ctx context.Context, c models.Class) (*models.Class, error) {
	row := db.conn.QueryRowContext(ctx, `
		UPDATE classes SET name = $1, code = $2, description = $3, instructor = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
		RETURNING `+classColumns,
		c.Name, c.Code, c.Description, c.Instructor, db.timestamp(), c.ID, c.UserID)
	out, err := scanClass(row)
	if err != nil {
		return nil, notFound("update class", err)
	}
	return &out, nil
}

// DeleteClass removes one of the user's classes.
func (db *DB) DeleteClass(ctx context.Context, userID, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM classes WHERE id = $1 AND user_id = $2`, id, userID)
	return expectRow("delete class", res, err)
}
