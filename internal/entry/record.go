package entry

import (
	"slices"
	"time"

	"github.com/starford/jrnl/internal/naming"
)

// Record is a decoded entry: a header plus trimmed body text. Records are
// values; use the With methods to derive changed copies.
type Record struct {
	header Header
	body   string
}

// NewRecord builds a record, normalizing body the way decoding would.
// The header is not validated here; see Codec.Validate.
func NewRecord(h Header, body string) *Record {
	h.Tags = slices.Clone(h.Tags)
	return &Record{header: h, body: normalizeBody(body)}
}

// New creates an empty entry titled title, dated now, with a derived
// filename. slugLength limits the filename slug (<= 0 for no limit).
func New(title string, now time.Time, slugLength int) *Record {
	now = now.Truncate(time.Second)
	return NewRecord(Header{
		Date:     NewTimestamp(now),
		Title:    title,
		Filename: naming.Filename(now, title, slugLength),
	}, "")
}

// Header returns a copy of the record's header.
func (r *Record) Header() Header {
	h := r.header
	h.Tags = slices.Clone(h.Tags)
	return h
}

// Body returns the body text.
func (r *Record) Body() string {
	return r.body
}

// Filename returns the header filename.
func (r *Record) Filename() string {
	return r.header.Filename
}

// WithBody returns a copy of r with a new body.
func (r *Record) WithBody(body string) *Record {
	return NewRecord(r.header, body)
}

// WithTags returns a copy of r with tags replaced. A nil slice removes the
// tags key entirely.
func (r *Record) WithTags(tags []string) *Record {
	h := r.header
	h.Tags = tags
	return NewRecord(h, r.body)
}
