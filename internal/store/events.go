package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/starford/scholarsync/internal/models"
)

const eventColumns = `id, user_id, title, description, location, start_time, end_time, all_day, priority, source, created_at, updated_at`

func scanEvent(s scanner) (models.Event, error) {
	var e models.Event
	err := s.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Location, &e.StartTime, &e.EndTime,
		&e.AllDay, &e.Priority, &e.Source, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// EventFilter narrows ListEvents. Zero bounds are ignored; both are inclusive.
type EventFilter struct {
	From time.Time
	To   time.Time
}

// ListEvents returns the user's events ordered by start time.
func (db *DB) ListEvents(ctx context.Context, userID int64, f EventFilter) ([]models.Event, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	if !f.From.IsZero() {
		args = append(args, utc(f.From))
		where = append(where, "start_time >= $"+strconv.Itoa(len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, utc(f.To))
		where = append(where, "start_time <= $"+strconv.Itoa(len(args)))
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE `+strings.Join(where, " AND ")+` ORDER BY start_time, id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	return collect(rows, scanEvent)
}

// ListEventsStartingBetween returns events of every user starting in (after, until].
func (db *DB) ListEventsStartingBetween(ctx context.Context, after, until time.Time) ([]models.Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE start_time > $1 AND start_time <= $2 ORDER BY start_time, id`,
		utc(after), utc(until))
	if err != nil {
		return nil, fmt.Errorf("store: list upcoming events: %w", err)
	}
	return collect(rows, scanEvent)
}

// GetEvent returns one of the user's events.
func (db *DB) GetEvent(ctx context.Context, userID, id int64) (*models.Event, error) {
	e, err := scanEvent(db.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound("get event", err)
	}
	return &e, nil
}

// CreateEvent inserts e for e.UserID.
func (db *DB) CreateEvent(ctx context.Context, e models.Event) (*models.Event, error) {
	if e.Priority == "" {
		e.Priority = "medium"
	}
	if e.Source == "" {
		e.Source = models.SourceManual
	}
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO events (user_id, title, description, location, start_time, end_time, all_day, priority, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING `+eventColumns,
		e.UserID, e.Title, e.Description, e.Location, utc(e.StartTime), utcPtr(e.EndTime),
		e.AllDay, e.Priority, e.Source, db.timestamp())
	out, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("store: create event: %w", err)
	}
	return &out, nil
}

// UpdateEvent applies the non-nil fields of p to one of the user's events.
func (db *DB) UpdateEvent(ctx context.Context, userID, id int64, p models.EventPatch) (*models.Event, error) {
	row := db.conn.QueryRowContext(ctx, `
		UPDATE events SET
			title       = COALESCE($1, title),
			description = COALESCE($2, description),
			location    = COALESCE($3, location),
			start_time  = COALESCE($4, start_time),
			end_time    = COALESCE($5, end_time),
			all_day     = COALESCE($6, all_day),
			priority    = COALESCE($7, priority),
			updated_at  = $8
		WHERE id = $9 AND user_id = $10
		RETURNING `+eventColumns,
		p.Title, p.Description, p.Location, utcPtr(p.StartTime), utcPtr(p.EndTime), p.AllDay, p.Priority,
		db.timestamp(), id, userID)
	out, err := scanEvent(row)
	if err != nil {
		return nil, notFound("update event", err)
	}
	return &out, nil
}

// DeleteEvent removes one of the user's events.
func (db *DB) DeleteEvent(ctx context.Context, userID, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, id, userID)
	return expectRow("delete event", res, err)
}
