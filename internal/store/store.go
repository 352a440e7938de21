package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"

	"github.com/starford/scholarsync/internal/apperr"
)

// DB wraps a sql.DB with the application's accessors.
type DB struct {
	conn   *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to the database for driver and applies the schema.
// SQLite DSNs are plain file paths; pragmas are appended here.
func Open(driver, dsn string) (*DB, error) {
	stmts := schemaStatements(driver)
	if stmts == nil {
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
	if driver == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("store: apply schema: %w", err)
		}
	}
	return &DB{conn: conn, driver: driver, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Driver returns the database/sql driver name in use.
func (db *DB) Driver() string {
	return db.driver
}

// timestamp returns the current time normalized for storage.
func (db *DB) timestamp() time.Time {
	return utc(db.now())
}

// utc normalizes t to second precision in UTC so that SQLite's textual
// timestamps compare in chronological order.
func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := utc(*t)
	return &v
}

// notFound maps sql.ErrNoRows to apperr.ErrNotFound.
func notFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store: %s: %w", op, apperr.ErrNotFound)
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

// expectRow turns a zero-row exec into ErrNotFound.
func expectRow(op string, res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("store: %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("store: %s: %w", op, apperr.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
