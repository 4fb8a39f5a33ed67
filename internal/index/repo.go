package index

import (
	"fmt"
	"time"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path      string    `json:"path"`
	Day       string    `json:"day"` // YYYY-MM-DD
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Notes     []string  `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Day     string `json:"day"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertPage inserts or replaces a page, its FTS entry and its note links within a transaction.
func (db *DB) UpsertPage(p PageRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO pages (path, day, title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			day        = excluded.day,
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, p.Path, p.Day, p.Title, p.Checksum, body, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert page: %w", err)
	}

	if err := ftsUpsert(tx, p.Path, p.Title, body); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM page_notes WHERE page = ?`, p.Path)
	if len(p.Notes) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO page_notes (page, file) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare note insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range p.Notes {
			if _, err := stmt.Exec(p.Path, f); err != nil {
				return fmt.Errorf("index: insert note link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePage removes a page, its FTS entry and its note links.
func (db *DB) DeletePage(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM page_notes WHERE page = ?`, path)
	_, _ = tx.Exec(`DELETE FROM pages WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a page, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM pages WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed page.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListPages returns pages whose day starts with prefix ("2024", "2024-01"),
// newest first. An empty prefix lists every page.
func (db *DB) ListPages(prefix string, limit int) ([]PageRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.conn.Query(`
		SELECT path, day, title, checksum, updated_at
		FROM pages
		WHERE day LIKE ?
		ORDER BY day DESC
		LIMIT ?
	`, prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()

	var out []PageRow
	for rows.Next() {
		var r PageRow
		if err := rows.Scan(&r.Path, &r.Day, &r.Title, &r.Checksum, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		notes, err := db.NotesOf(out[i].Path)
		if err != nil {
			return nil, err
		}
		out[i].Notes = notes
	}
	return out, nil
}

// NotesOf returns the note files linked from a page.
func (db *DB) NotesOf(page string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT file FROM page_notes WHERE page = ? ORDER BY file`, page)
	if err != nil {
		return nil, fmt.Errorf("index: notes of: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
