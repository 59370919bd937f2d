package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/starford/jrnl/internal/apperr"
)

// EntryRow represents a row in the entries table.
type EntryRow struct {
	Filename  string
	Title     string
	Date      string
	Tags      []string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Filename string
	Title    string
	Date     string
	Snippet  string
}

// TagCount is a tag with the number of entries carrying it.
type TagCount struct {
	Tag   string
	Count int
}

// Sort orders accepted by ListEntries.
const (
	SortDate     = "date"
	SortTitle    = "title"
	SortFilename = "filename"
)

var sortColumns = map[string]string{
	"":           "date DESC, filename DESC",
	SortDate:     "date DESC, filename DESC",
	SortTitle:    "title COLLATE NOCASE ASC, filename ASC",
	SortFilename: "filename ASC",
}

// ListQuery selects a page of entries.
type ListQuery struct {
	Limit  int
	Offset int
	Tag    string
	Sort   string
}

// UpsertEntry inserts or replaces an entry, its tags and FTS row within a
// transaction.
func (db *DB) UpsertEntry(e EntryRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("index: encode tags: %w", err)
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO entries (filename, title, date, tags, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			title      = excluded.title,
			date       = excluded.date,
			tags       = excluded.tags,
			body       = excluded.body,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, e.Filename, e.Title, e.Date, string(tagsJSON), body, e.Checksum, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}

	if err := ftsUpsert(tx, e.Filename, e.Title, body, tags); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM entry_tags WHERE filename = ?`, e.Filename); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if len(tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO entry_tags (filename, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range tags {
			if _, err := stmt.Exec(e.Filename, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteEntry removes an entry, its tags and FTS row.
func (db *DB) DeleteEntry(filename string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, filename)
	if _, err := tx.Exec(`DELETE FROM entry_tags WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("index: delete tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM entries WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("index: delete entry: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for an entry, or empty string if
// it is not indexed.
func (db *DB) GetChecksum(filename string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM entries WHERE filename = ?`, filename).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetEntry returns one indexed entry or apperr.ErrNotFound.
func (db *DB) GetEntry(filename string) (*EntryRow, error) {
	row := db.conn.QueryRow(`
		SELECT filename, title, date, tags, checksum, updated_at
		FROM entries WHERE filename = ?
	`, filename)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: entry %s: %w", filename, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get entry: %w", err)
	}
	return &e, nil
}

// ListEntries returns a page of entries and the total number matching the
// tag filter.
func (db *DB) ListEntries(q ListQuery) ([]EntryRow, int, error) {
	order, ok := sortColumns[q.Sort]
	if !ok {
		return nil, 0, fmt.Errorf("index: unknown sort %q", q.Sort)
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	where := ""
	var args []any
	if q.Tag != "" {
		where = `WHERE filename IN (SELECT filename FROM entry_tags WHERE tag = ?)`
		args = append(args, q.Tag)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count entries: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT filename, title, date, tags, checksum, updated_at
		FROM entries `+where+`
		ORDER BY `+order+`
		LIMIT ? OFFSET ?
	`, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list entries: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Tags returns every tag with its usage count, most used first.
func (db *DB) Tags() ([]TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT tag, count(*) AS n FROM entry_tags
		GROUP BY tag
		ORDER BY n DESC, tag ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: tags: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// AllChecksums returns filename → checksum for every indexed entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT filename, checksum FROM entries`)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (EntryRow, error) {
	var (
		e        EntryRow
		tagsJSON string
	)
	if err := s.Scan(&e.Filename, &e.Title, &e.Date, &tagsJSON, &e.Checksum, &e.UpdatedAt); err != nil {
		return EntryRow{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return EntryRow{}, fmt.Errorf("index: decode tags for %s: %w", e.Filename, err)
	}
	return e, nil
}
