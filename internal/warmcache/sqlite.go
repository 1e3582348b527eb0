package warmcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS warm_entries (
	session   TEXT    NOT NULL,
	key       TEXT    NOT NULL,
	value     TEXT    NOT NULL,
	stored_at INTEGER NOT NULL,
	PRIMARY KEY (session, key)
);

CREATE INDEX IF NOT EXISTS idx_warm_stored_at ON warm_entries(stored_at);
`

// SQLite is a Backend persisted in a SQLite database file.
type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

// withPragmas appends the WAL and busy-timeout options to dsn, keeping any
// query the caller already supplied.
func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_journal_mode=WAL&_busy_timeout=5000"
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	if dsn == "" {
		return nil, errors.New("warmcache: missing sqlite path")
	}
	conn, err := sql.Open("sqlite3", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("warmcache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("warmcache: ping: %w", err)
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("warmcache: apply schema: %w", err)
	}
	return &SQLite{conn: conn, now: time.Now}, nil
}

func (s *SQLite) Load(ctx context.Context, session, key string) (string, bool, error) {
	var v string
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM warm_entries WHERE session = ? AND key = ?`, session, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("warmcache: load: %w", err)
	}
	return v, true, nil
}

func (s *SQLite) Save(ctx context.Context, session, key, value string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO warm_entries (session, key, value, stored_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session, key) DO UPDATE SET
			value     = excluded.value,
			stored_at = excluded.stored_at
	`, session, key, value, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("warmcache: save: %w", err)
	}
	return nil
}

func (s *SQLite) Purge(ctx context.Context, before time.Time) (int, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM warm_entries WHERE stored_at < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("warmcache: purge: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
