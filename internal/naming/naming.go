// Package naming derives entry filenames from a timestamp and a title.
package naming

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSlugLength is the slug length limit used when creating entries.
const DefaultSlugLength = 32

// Ext is the file extension of every entry.
const Ext = ".md"

var weekdays = [...]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// Weekday returns the two-letter abbreviation used in filenames.
func Weekday(d time.Weekday) string {
	return weekdays[d]
}

// Slugify reduces title to lower-case words of [a-z0-9_] joined by single
// underscores. Words are kept while the slug built so far plus the word and a
// separator fits in maxLength; maxLength <= 0 disables the limit.
func Slugify(title string, maxLength int) string {
	var words []string
	for _, f := range strings.Fields(title) {
		if w := simplifyWord(f); w != "" {
			words = append(words, w)
		}
	}

	var b strings.Builder
	for i, w := range words {
		if maxLength > 0 && b.Len()+len(w)+1 > maxLength {
			break
		}
		if i > 0 {
			b.WriteByte('_')
		}
		b.WriteString(w)
	}
	return b.String()
}

// simplifyWord lower-cases w, drops non-word characters and normalises
// underscores so the result never starts, ends or repeats one.
func simplifyWord(w string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(w) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ParseDate parses an entry date: RFC 3339 with seconds and a zone, optional
// fractional seconds. The "T" and "Z" designators may be lower case.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.ToUpper(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DDThh:mm:ss with Z or ±hh:mm", s)
	}
	return t, nil
}

// Prefix returns the "YYYY-MM-DD_Wd" part of a filename for t, using the
// calendar date in t's own location.
func Prefix(t time.Time) string {
	return t.Format(time.DateOnly) + "_" + Weekday(t.Weekday())
}

// Filename builds the canonical entry filename for t and title.
func Filename(t time.Time, title string, maxLength int) string {
	name := Prefix(t)
	if slug := Slugify(title, maxLength); slug != "" {
		name += "_" + slug
	}
	return name + Ext
}

// Matches reports whether filename is consistent with t and title: the date
// and weekday must match t, and the optional slug must be a whole-word prefix
// of the title's untruncated slug. Every such prefix is what Filename yields
// for some slug length, so entries written under a different length limit
// still match.
func Matches(filename string, t time.Time, title string) bool {
	stem, ok := strings.CutSuffix(filename, Ext)
	if !ok {
		return false
	}
	rest, ok := strings.CutPrefix(stem, Prefix(t))
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	slug, ok := strings.CutPrefix(rest, "_")
	if !ok || slug == "" {
		return false
	}
	full := Slugify(title, 0)
	return full == slug || strings.HasPrefix(full, slug+"_")
}
