//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the entries table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string, _ []string) error {
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
// The snippet is the body text around the first match.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + escapeLike(query) + "%"
	rows, err := db.conn.Query(`
		SELECT filename, title, date, body
		FROM entries
		WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\'
		ORDER BY date DESC
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var (
			r    SearchResult
			body string
		)
		if err := rows.Scan(&r.Filename, &r.Title, &r.Date, &body); err != nil {
			return nil, err
		}
		r.Snippet = snippet(body, query, 64)
		out = append(out, r)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// snippet returns up to width bytes of body on either side of the first
// case-insensitive occurrence of query.
func snippet(body, query string, width int) string {
	i := strings.Index(strings.ToLower(body), strings.ToLower(query))
	if i < 0 {
		i = 0
	}
	from := max(0, i-width)
	to := min(len(body), i+len(query)+width)
	for from > 0 && !isRuneStart(body[from]) {
		from--
	}
	for to < len(body) && !isRuneStart(body[to]) {
		to++
	}
	s := body[from:to]
	if from > 0 {
		s = "..." + s
	}
	if to < len(body) {
		s += "..."
	}
	return s
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
