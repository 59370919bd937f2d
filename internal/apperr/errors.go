// Package apperr defines the closed set of failure conditions reported by jrnl.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFormat          = errors.New("format error")
	ErrParse           = errors.New("parse error")
)

// Kind classifies an error into one of the conditions above.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindAlreadyExists
	KindInvalidFileType
	KindFormat
	KindParse
)

var kinds = []struct {
	err  error
	kind Kind
}{
	// Most specific first.
	{ErrParse, KindParse},
	{ErrFormat, KindFormat},
	{ErrInvalidFileType, KindInvalidFileType},
	{ErrNotFound, KindNotFound},
	{ErrAlreadyExists, KindAlreadyExists},
	{ErrConflict, KindConflict},
}

// KindOf returns the Kind of err, or KindUnknown when err wraps none of the
// sentinels. A nil error is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidFileType:
		return "invalid_file_type"
	case KindFormat:
		return "format_error"
	case KindParse:
		return "parse_error"
	default:
		return "unknown"
	}
}
