package store

import (
	"context"
	"fmt"

	"github.com/starford/scholarsync/internal/apperr"
	"github.com/starford/scholarsync/internal/models"
)

const userColumns = `id, email, name, password_hash, created_at, updated_at`

func scanUser(s scanner) (models.User, error) {
	var u models.User
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts u and returns the stored row. A duplicate email yields
// apperr.ErrAlreadyExists.
func (db *DB) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	now := db.timestamp()
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+userColumns,
		u.Email, u.Name, u.PasswordHash, now)
	out, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("store: create user: %w", apperr.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}
	return &out, nil
}

// GetUser returns the user with id.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound("get user", err)
	}
	return &u, nil
}

// GetUserByEmail returns the user registered with email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, notFound("get user by email", err)
	}
	return &u, nil
}

// UpdateUser changes the email and name of an existing user.
func (db *DB) UpdateUser(ctx context.Context, id int64, email, name string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, `
		UPDATE users SET email = $1, name = $2, updated_at = $3
		WHERE id = $4
		RETURNING `+userColumns,
		email, name, db.timestamp(), id)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("store: update user: %w", apperr.ErrAlreadyExists)
		}
		return nil, notFound("update user", err)
	}
	return &u, nil
}

// DeleteUser removes a user and, through cascades, everything they own.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return expectRow("delete user", res, err)
}
