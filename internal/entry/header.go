package entry

import (
	"fmt"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/starford/jrnl/internal/apperr"
	"github.com/starford/jrnl/internal/naming"
)

// Timestamp is an RFC 3339 timestamp kept in its original textual form so
// that fractional seconds and offsets survive a round trip.
type Timestamp string

// NewTimestamp formats t with second precision in t's own offset.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.Format(time.RFC3339))
}

// Time parses the timestamp.
func (ts Timestamp) Time() (time.Time, error) {
	return naming.ParseDate(string(ts))
}

// Header is the structured, schema-validated part of an entry.
//
// A nil Tags means the document has no "tags" key; an empty non-nil slice
// means it has an empty list.
type Header struct {
	Date     Timestamp
	Title    string
	Filename string
	Tags     []string
}

// wireHeader fixes the serialized field order.
type wireHeader struct {
	Date     Timestamp `json:"date"`
	Title    string    `json:"title"`
	Filename string    `json:"filename"`
	Tags     *[]string `json:"tags,omitempty"`
}

func (h Header) wire() wireHeader {
	w := wireHeader{Date: h.Date, Title: h.Title, Filename: h.Filename}
	if h.Tags != nil {
		tags := slices.Clone(h.Tags)
		w.Tags = &tags
	}
	return w
}

// MarshalJSON implements json.Marshaler.
func (h Header) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.wire())
}

// UnmarshalJSON implements json.Unmarshaler. It performs no schema checks.
func (h *Header) UnmarshalJSON(data []byte) error {
	var w wireHeader
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*h = Header{Date: w.Date, Title: w.Title, Filename: w.Filename}
	if w.Tags != nil {
		h.Tags = *w.Tags
		if h.Tags == nil {
			h.Tags = []string{}
		}
	}
	return nil
}

// HasTag reports whether tag is among the header's tags.
func (h Header) HasTag(tag string) bool {
	return slices.Contains(h.Tags, tag)
}

// candidate converts h into the generic form the schema validator expects.
func (h Header) candidate() (any, error) {
	raw, err := json.Marshal(h.wire())
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// extractHeader parses and validates the JSON between the fences. Only the
// first block is ever considered.
func extractHeader(lines []string, start, end int, v Validator) (Header, error) {
	if start == notFound || end == notFound || end <= start {
		return Header{}, fmt.Errorf("entry: %w: header fencing missing", apperr.ErrFormat)
	}
	raw := []byte(strings.Join(lines[start+1:end], "\n"))

	var candidate any
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return Header{}, fmt.Errorf("entry: %w: header is not valid JSON: %v", apperr.ErrParse, err)
	}
	if err := v.Validate(candidate); err != nil {
		dump, _ := json.Marshal(candidate)
		return Header{}, fmt.Errorf("entry: %w: header schema violation: %s: %v", apperr.ErrFormat, dump, err)
	}

	var h Header
	if err := json.Unmarshal(raw, &h); err != nil {
		return Header{}, fmt.Errorf("entry: %w: decode header: %v", apperr.ErrFormat, err)
	}
	return h, nil
}
