// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains a SQLite full-text index over the mirrored
// documents so synced content is searchable locally. The Markdown tree is
// the source of truth; the index is derived and can be rebuilt at any time
// by deleting the database file and re-syncing.
package index

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBFile is the index database name, kept at the output root next to the
// sync ledger.
const DBFile = ".lotion-index.db"

// DB wraps the SQLite handle.
type DB struct {
	db *sql.DB
}

// Open opens or creates the index database under outputDir and ensures the
// schema exists.
func Open(outputDir string) (*DB, error) {
	path := filepath.Join(outputDir, DBFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	d := &DB{db: db}
	if err := d.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close releases the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			page_id TEXT NOT NULL UNIQUE,
			target TEXT NOT NULL,
			title TEXT,
			path TEXT NOT NULL,
			body TEXT,
			synced_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_target ON pages(target)`,
	}
	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := d.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='pages_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE pages_fts USING fts5(title, body, content=pages, content_rowid=rowid)`,
			`CREATE TRIGGER pages_ai AFTER INSERT ON pages BEGIN
				INSERT INTO pages_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
			END`,
			`CREATE TRIGGER pages_ad AFTER DELETE ON pages BEGIN
				INSERT INTO pages_fts(pages_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
			END`,
			`CREATE TRIGGER pages_au AFTER UPDATE ON pages BEGIN
				INSERT INTO pages_fts(pages_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
				INSERT INTO pages_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := d.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IndexPage inserts or refreshes one synced document.
func (d *DB) IndexPage(pageID, target, title, path, body string, syncedAt time.Time) error {
	_, err := d.db.Exec(
		`INSERT INTO pages (page_id, target, title, path, body, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(page_id) DO UPDATE SET
			target = excluded.target,
			title = excluded.title,
			path = excluded.path,
			body = excluded.body,
			synced_at = excluded.synced_at`,
		pageID, target, title, path, body, syncedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("indexing page %s: %w", pageID, err)
	}
	return nil
}

// Result is one full-text search hit.
type Result struct {
	PageID  string
	Target  string
	Title   string
	Path    string
	Snippet string
}

// Search runs an FTS5 query over titles and bodies, best matches first.
func (d *DB) Search(query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.Query(
		`SELECT p.page_id, p.target, p.title, p.path,
			snippet(pages_fts, 1, '[', ']', '…', 12)
		 FROM pages_fts
		 JOIN pages p ON p.rowid = pages_fts.rowid
		 WHERE pages_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var title sql.NullString
		if err := rows.Scan(&r.PageID, &r.Target, &title, &r.Path, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r.Title = title.String
		results = append(results, r)
	}
	return results, rows.Err()
}
