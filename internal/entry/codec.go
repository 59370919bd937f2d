// Package entry implements the journal entry document format:
//
//	# Optional title
//
//	```json
//	{ "date": ..., "title": ..., "filename": ..., "tags": [...] }
//	```
//
//	Body text
//
// Decoding classifies the input as text, locates the fenced JSON header,
// checks the title region, validates the header against a compiled schema and
// trims the body. Encoding writes the canonical form back.
package entry

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/starford/jrnl/internal/apperr"
	"github.com/starford/jrnl/internal/schema"
)

// Validator checks a decoded JSON value against the header schema.
type Validator interface {
	Validate(candidate any) error
}

// Codec decodes and encodes entries with a fixed header validator. It holds
// no mutable state and is safe for concurrent use.
type Codec struct {
	validator Validator
}

// NewCodec returns a codec validating headers with v.
func NewCodec(v Validator) *Codec {
	return &Codec{validator: v}
}

var defaultCodec = sync.OnceValue(func() *Codec {
	return NewCodec(schema.Default())
})

// Default returns the codec backed by the built-in header schema.
func Default() *Codec {
	return defaultCodec()
}

// Decode parses data into a Record using the default codec.
func Decode(data []byte) (*Record, error) {
	return Default().Decode(data)
}

// Encode serializes r in canonical form.
func Encode(r *Record) ([]byte, error) {
	return Default().Encode(r)
}

// IsWellFormed reports whether data has a legal document structure. The
// header content is not validated.
func IsWellFormed(data []byte) bool {
	_, lines := decodeLines(data)
	start, end := locateFences(lines)
	return wellFormed(lines, start, end)
}

// Decode parses data into a Record. Failures wrap exactly one of
// apperr.ErrInvalidFileType, apperr.ErrFormat or apperr.ErrParse.
func (c *Codec) Decode(data []byte) (*Record, error) {
	if IsBinary(data) {
		return nil, fmt.Errorf("entry: %w: content is not text", apperr.ErrInvalidFileType)
	}
	_, lines := decodeLines(data)
	start, end := locateFences(lines)
	if !wellFormed(lines, start, end) {
		return nil, fmt.Errorf("entry: %w: document violates entry structure", apperr.ErrFormat)
	}
	h, err := extractHeader(lines, start, end, c.validator)
	if err != nil {
		return nil, err
	}
	return &Record{header: h, body: extractBody(lines, end)}, nil
}

// ExtractHeader returns only the validated header of data. Unlike Decode it
// does not check the title region.
func (c *Codec) ExtractHeader(data []byte) (Header, error) {
	_, lines := decodeLines(data)
	start, end := locateFences(lines)
	return extractHeader(lines, start, end, c.validator)
}

// ExtractBody returns the text after the first bare closing fence in data.
func (c *Codec) ExtractBody(data []byte) (string, error) {
	_, lines := decodeLines(data)
	_, end := locateFences(lines)
	if end == notFound {
		return "", fmt.Errorf("entry: %w: closing fence missing for body text", apperr.ErrFormat)
	}
	return extractBody(lines, end), nil
}

// Validate checks r's header against the codec's schema.
func (c *Codec) Validate(r *Record) error {
	v, err := r.header.candidate()
	if err != nil {
		return fmt.Errorf("entry: %w: %v", apperr.ErrFormat, err)
	}
	if err := c.validator.Validate(v); err != nil {
		return fmt.Errorf("entry: %w: header schema violation: %v", apperr.ErrFormat, err)
	}
	return nil
}

// Encode writes
//
//	# {title}
//
//	```json
//	{header, two-space indent, fields: date, title, filename, tags}
//	```
//
//	{body}
//
// The title line is omitted when the title is blank, since "# " alone does
// not survive line trimming. Line breaks inside the title are folded into
// spaces on the title line; the header keeps the exact title.
func (c *Codec) Encode(r *Record) ([]byte, error) {
	header, err := json.MarshalIndent(r.header.wire(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("entry: encode header: %w", err)
	}

	var b bytes.Buffer
	if heading := strings.Join(strings.Fields(r.header.Title), " "); heading != "" {
		b.WriteString("# ")
		b.WriteString(heading)
		b.WriteString("\n\n")
	}
	b.WriteString(openFence + "\n")
	b.Write(header)
	b.WriteString("\n" + closeFence + "\n\n")
	b.WriteString(r.body)
	b.WriteByte('\n')
	return b.Bytes(), nil
}
