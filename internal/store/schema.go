// Package store provides relational persistence on SQLite or Postgres.
package store

import "strings"

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// schemaTemplate is shared by both dialects; only identity and time column
// types differ.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS users (
	id            {{id}},
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL DEFAULT '',
	created_at    {{ts}} NOT NULL,
	updated_at    {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS classes (
	id          {{id}},
	user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	code        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	instructor  TEXT NOT NULL DEFAULT '',
	created_at  {{ts}} NOT NULL,
	updated_at  {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_classes_user ON classes(user_id);

CREATE TABLE IF NOT EXISTS alerts (
	id            {{id}},
	user_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	class_id      BIGINT REFERENCES classes(id) ON DELETE SET NULL,
	type          TEXT NOT NULL,
	title         TEXT NOT NULL,
	message       TEXT NOT NULL,
	email_subject TEXT NOT NULL DEFAULT '',
	email_from    TEXT NOT NULL DEFAULT '',
	urgency       TEXT NOT NULL DEFAULT 'medium',
	is_read       BOOLEAN NOT NULL DEFAULT FALSE,
	detected_at   {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id, detected_at);

CREATE TABLE IF NOT EXISTS events (
	id          {{id}},
	user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	start_time  {{ts}} NOT NULL,
	end_time    {{ts}},
	all_day     BOOLEAN NOT NULL DEFAULT FALSE,
	priority    TEXT NOT NULL DEFAULT 'medium',
	source      TEXT NOT NULL DEFAULT 'manual',
	created_at  {{ts}} NOT NULL,
	updated_at  {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_user_start ON events(user_id, start_time);

CREATE TABLE IF NOT EXISTS flashcard_sets (
	id          {{id}},
	user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	class_id    BIGINT REFERENCES classes(id) ON DELETE SET NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  {{ts}} NOT NULL,
	updated_at  {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flashcard_sets_user ON flashcard_sets(user_id);

CREATE TABLE IF NOT EXISTS flashcards (
	id               {{id}},
	set_id           BIGINT NOT NULL REFERENCES flashcard_sets(id) ON DELETE CASCADE,
	question         TEXT NOT NULL,
	answer           TEXT NOT NULL,
	difficulty       TEXT NOT NULL DEFAULT 'medium',
	review_status    TEXT NOT NULL DEFAULT 'not_reviewed',
	review_count     INTEGER NOT NULL DEFAULT 0,
	mastery_score    INTEGER NOT NULL DEFAULT 0,
	last_reviewed_at {{ts}},
	created_at       {{ts}} NOT NULL,
	updated_at       {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flashcards_set ON flashcards(set_id);
`

var dialects = map[string]*strings.Replacer{
	DriverSQLite: strings.NewReplacer(
		"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{ts}}", "DATETIME",
	),
	DriverPostgres: strings.NewReplacer(
		"{{id}}", "BIGSERIAL PRIMARY KEY",
		"{{ts}}", "TIMESTAMPTZ",
	),
}

// schemaStatements renders the schema for driver and splits it into single
// statements.
func schemaStatements(driver string) []string {
	r, ok := dialects[driver]
	if !ok {
		return nil
	}
	var out []string
	for stmt := range strings.SplitSeq(r.Replace(schemaTemplate), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
