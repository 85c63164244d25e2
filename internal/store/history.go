// Package store keeps the optional search and directory history in a
// local SQLite database. Nothing is written unless history is enabled.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS searches (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	query      TEXT NOT NULL,
	results    INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS searches_created ON searches(created_at);

CREATE TABLE IF NOT EXISTS visits (
	path       TEXT PRIMARY KEY,
	visited_at INTEGER NOT NULL,
	count      INTEGER NOT NULL DEFAULT 1
);
`

// SearchRecord is one past search.
type SearchRecord struct {
	Query   string
	Results int
	At      time.Time
}

// Visit is a directory the browser has shown.
type Visit struct {
	Path  string
	At    time.Time
	Count int
}

// History is the SQLite-backed history.
type History struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, errors.OperationFailure, "history open", dbPath)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.OperationFailure, "history open", dbPath)
	}
	// One connection keeps an in-memory database (":memory:") consistent.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(err, errors.OperationFailure, "history open", dbPath)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.OperationFailure, "history schema", dbPath)
	}

	debug.Log(debug.STORE, "history opened at %s", dbPath)
	return &History{conn: db, now: time.Now}, nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.conn.Close()
}

// AddSearch records a completed search.
func (h *History) AddSearch(ctx context.Context, query string, results int) error {
	_, err := h.conn.ExecContext(ctx,
		"INSERT INTO searches (query, results, created_at) VALUES (?, ?, ?)",
		query, results, h.now().UnixNano())
	if err != nil {
		debug.Error(debug.STORE, err, "AddSearch %q", query)
		return errors.Wrap(err, errors.OperationFailure, "history add", query)
	}
	return nil
}

// RecentSearches returns up to limit searches, newest first. Repeated
// queries are listed once, at their latest time.
func (h *History) RecentSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	rows, err := h.conn.QueryContext(ctx, `
		SELECT s.query, s.results, s.created_at
		FROM searches s
		JOIN (SELECT query, MAX(id) AS id FROM searches GROUP BY query) latest
		  ON latest.id = s.id
		ORDER BY s.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.OperationFailure, "history recent", "")
	}
	defer rows.Close()

	var out []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var at int64
		if err := rows.Scan(&rec.Query, &rec.Results, &at); err != nil {
			return nil, errors.Wrap(err, errors.OperationFailure, "history recent", "")
		}
		rec.At = time.Unix(0, at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AddVisit records that dir was shown.
func (h *History) AddVisit(ctx context.Context, dir string) error {
	_, err := h.conn.ExecContext(ctx, `
		INSERT INTO visits (path, visited_at) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET visited_at = excluded.visited_at, count = count + 1`,
		dir, h.now().UnixNano())
	if err != nil {
		debug.Error(debug.STORE, err, "AddVisit %q", dir)
		return errors.Wrap(err, errors.OperationFailure, "history visit", dir)
	}
	return nil
}

// RecentVisits returns up to limit directories, most recently visited first.
func (h *History) RecentVisits(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := h.conn.QueryContext(ctx,
		"SELECT path, visited_at, count FROM visits ORDER BY visited_at DESC, path LIMIT ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.OperationFailure, "history visits", "")
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var v Visit
		var at int64
		if err := rows.Scan(&v.Path, &at, &v.Count); err != nil {
			return nil, errors.Wrap(err, errors.OperationFailure, "history visits", "")
		}
		v.At = time.Unix(0, at)
		out = append(out, v)
	}
	return out, rows.Err()
}

// Clear deletes all history.
func (h *History) Clear(ctx context.Context) error {
	if _, err := h.conn.ExecContext(ctx, "DELETE FROM searches; DELETE FROM visits;"); err != nil {
		return errors.Wrap(err, errors.OperationFailure, "history clear", "")
	}
	return nil
}
