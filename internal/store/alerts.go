package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/scholarsync/internal/models"
)

const alertSelect = `
	SELECT a.id, a.user_id, a.class_id, COALESCE(c.name, ''), a.type, a.title, a.message,
	       a.email_subject, a.email_from, a.urgency, a.is_read, a.detected_at
	FROM alerts a
	LEFT JOIN classes c ON a.class_id = c.id`

func scanAlert(s scanner) (models.Alert, error) {
	var a models.Alert
	err := s.Scan(&a.ID, &a.UserID, &a.ClassID, &a.ClassName, &a.Type, &a.Title, &a.Message,
		&a.EmailSubject, &a.EmailFrom, &a.Urgency, &a.IsRead, &a.DetectedAt)
	return a, err
}

// ListAlerts returns the user's alerts, newest first, with class names.
func (db *DB) ListAlerts(ctx context.Context, userID int64) ([]models.Alert, error) {
	rows, err := db.conn.QueryContext(ctx,
		alertSelect+` WHERE a.user_id = $1 ORDER BY a.detected_at DESC, a.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list alerts: %w", err)
	}
	return collect(rows, scanAlert)
}

// GetAlert returns one of the user's alerts.
func (db *DB) GetAlert(ctx context.Context, userID, id int64) (*models.Alert, error) {
	a, err := scanAlert(db.conn.QueryRowContext(ctx,
		alertSelect+` WHERE a.id = $1 AND a.user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound("get alert", err)
	}
	return &a, nil
}

// CreateAlert inserts a and returns the stored row. A zero DetectedAt is
// stamped with the current time.
func (db *DB) CreateAlert(ctx context.Context, a models.Alert) (*models.Alert, error) {
	detected := a.DetectedAt
	if detected.IsZero() {
		detected = db.now()
	}
	var id int64
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO alerts (user_id, class_id, type, title, message, email_subject, email_from, urgency, is_read, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		a.UserID, a.ClassID, a.Type, a.Title, a.Message, a.EmailSubject, a.EmailFrom, a.Urgency, a.IsRead, utc(detected),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("store: create alert: %w", err)
	}
	return db.GetAlert(ctx, a.UserID, id)
}

// MarkAlertRead flags one of the user's alerts as read.
func (db *DB) MarkAlertRead(ctx context.Context, userID, id int64) (*models.Alert, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE alerts SET is_read = $1 WHERE id = $2 AND user_id = $3`, true, id, userID)
	if err := expectRow("mark alert read", res, err); err != nil {
		return nil, err
	}
	return db.GetAlert(ctx, userID, id)
}

// DeleteAlert removes one of the user's alerts.
func (db *DB) DeleteAlert(ctx context.Context, userID, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1 AND user_id = $2`, id, userID)
	return expectRow("delete alert", res, err)
}

// likeEscaper makes a LIKE pattern match its input literally under ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// HasRecentAlert reports whether the user has an alert of type whose message
// mentions needle, detected at or after since. The match is literal and
// ignores case on both drivers.
func (db *DB) HasRecentAlert(ctx context.Context, userID int64, typ, needle string, since time.Time) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM alerts
		WHERE user_id = $1 AND type = $2 AND LOWER(message) LIKE LOWER($3) ESCAPE '\' AND detected_at >= $4`,
		userID, typ, "%"+likeEscaper.Replace(needle)+"%", utc(since),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: recent alert: %w", err)
	}
	return n > 0, nil
}
