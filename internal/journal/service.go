// Package journal is the domain service over a journal directory: entries
// are read and written through the entry codec, stored by a storage.Provider
// and mirrored into the SQLite index.
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/starford/jrnl/internal/apperr"
	"github.com/starford/jrnl/internal/checksum"
	"github.com/starford/jrnl/internal/entry"
	"github.com/starford/jrnl/internal/index"
	"github.com/starford/jrnl/internal/naming"
	"github.com/starford/jrnl/internal/storage"
)

// EntryDetail is the full representation of an entry.
type EntryDetail struct {
	Filename string   `json:"filename"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Tags     []string `json:"tags"`
	Body     string   `json:"body"`
	Checksum string   `json:"checksum"`
}

// EntryListItem is a lightweight item in a list response.
type EntryListItem struct {
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Tags      []string  `json:"tags"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput describes a new entry. A nil Tags leaves the header without
// a tags key.
type CreateInput struct {
	Title string
	Body  string
	Tags  []string
}

// UpdateInput carries the fields to change; nil fields are left alone.
// IfMatch, when set, must match the checksum of the stored file.
type UpdateInput struct {
	Title   *string
	Body    *string
	Tags    *[]string
	IfMatch string
}

// ListParams selects a page of entries.
type ListParams struct {
	Limit  int
	Offset int
	Tag    string
	Sort   string
}

// Validation is the outcome of checking raw entry text.
type Validation struct {
	WellFormed bool         `json:"well_formed"`
	Valid      bool         `json:"valid"`
	Kind       string       `json:"kind,omitempty"`
	Error      string       `json:"error,omitempty"`
	Entry      *EntryDetail `json:"entry,omitempty"`
}

// Service coordinates codec, storage and index operations.
type Service struct {
	store      storage.Provider
	db         index.EntryIndex
	codec      *entry.Codec
	slugLength int
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSlugLength sets the maximum filename slug length for new entries.
func WithSlugLength(n int) Option {
	return func(s *Service) { s.slugLength = n }
}

// WithClock overrides the time source used to date new entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCodec replaces the default entry codec.
func WithCodec(c *entry.Codec) Option {
	return func(s *Service) { s.codec = c }
}

// NewService creates a new journal service.
func NewService(store storage.Provider, db index.EntryIndex, opts ...Option) *Service {
	s := &Service{
		store:      store,
		db:         db,
		codec:      entry.Default(),
		slugLength: naming.DefaultSlugLength,
		now:        time.Now,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create writes a new entry dated now and indexes it. An entry with the
// same derived filename is never overwritten.
func (s *Service) Create(_ context.Context, in CreateInput) (*EntryDetail, error) {
	rec := entry.New(in.Title, s.now(), s.slugLength).WithBody(in.Body)
	if in.Tags != nil {
		rec = rec.WithTags(in.Tags)
	}
	data, err := s.encode(rec)
	if err != nil {
		return nil, err
	}

	name := rec.Filename()
	exists, err := s.store.Exists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("journal: create %s: %w", name, apperr.ErrAlreadyExists)
	}
	if err := s.store.Write(name, data); err != nil {
		return nil, err
	}
	if err := s.index(name, data); err != nil {
		return nil, err
	}
	s.logger.Info("journal: created", slog.String("filename", name))
	return detail(name, rec, data), nil
}

// Get reads and decodes one entry.
func (s *Service) Get(_ context.Context, filename string) (*EntryDetail, error) {
	data, err := s.store.Read(filename)
	if err != nil {
		return nil, err
	}
	rec, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("journal: %s: %w", filename, err)
	}
	return detail(filename, rec, data), nil
}

// Raw returns the stored bytes of an entry and their checksum.
func (s *Service) Raw(_ context.Context, filename string) ([]byte, string, error) {
	data, err := s.store.Read(filename)
	if err != nil {
		return nil, "", err
	}
	return data, checksum.Sum(data), nil
}

// Update rewrites an entry. Changing the title derives a new filename from
// the entry's original date and moves the file.
func (s *Service) Update(_ context.Context, filename string, in UpdateInput) (*EntryDetail, error) {
	existing, err := s.store.Read(filename)
	if err != nil {
		return nil, err
	}
	if !checksum.Matches(existing, in.IfMatch) {
		return nil, fmt.Errorf("journal: update %s: %w", filename, apperr.ErrConflict)
	}
	rec, err := s.codec.Decode(existing)
	if err != nil {
		return nil, fmt.Errorf("journal: %s: %w", filename, err)
	}

	if in.Body != nil {
		rec = rec.WithBody(*in.Body)
	}
	if in.Tags != nil {
		rec = rec.WithTags(*in.Tags)
	}
	target := filename
	if in.Title != nil {
		rec, err = s.retitle(rec, *in.Title)
		if err != nil {
			return nil, err
		}
		target = path.Join(path.Dir(filename), rec.Filename())
	}

	data, err := s.encode(rec)
	if err != nil {
		return nil, err
	}

	if target != filename {
		exists, err := s.store.Exists(target)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("journal: rename to %s: %w", target, apperr.ErrAlreadyExists)
		}
	}
	// Rewrite in place, then rename; a failed rename restores the old bytes.
	if err := s.store.Write(filename, data); err != nil {
		return nil, err
	}
	if target != filename {
		if err := s.store.Move(filename, target); err != nil {
			if rerr := s.store.Write(filename, existing); rerr != nil {
				s.logger.Error("journal: restore after failed rename",
					slog.String("filename", filename), slog.String("error", rerr.Error()))
			}
			return nil, err
		}
		if err := s.db.DeleteEntry(filename); err != nil {
			return nil, err
		}
	}
	if err := s.index(target, data); err != nil {
		return nil, err
	}
	s.logger.Info("journal: updated", slog.String("filename", target))
	return detail(target, rec, data), nil
}

func (s *Service) retitle(rec *entry.Record, title string) (*entry.Record, error) {
	h := rec.Header()
	t, err := h.Date.Time()
	if err != nil {
		return nil, fmt.Errorf("journal: %s: %w", rec.Filename(), apperr.ErrFormat)
	}
	h.Title = title
	h.Filename = naming.Filename(t, title, s.slugLength)
	return entry.NewRecord(h, rec.Body()), nil
}

// Delete removes an entry from storage and index.
func (s *Service) Delete(_ context.Context, filename, ifMatch string) error {
	if ifMatch != "" {
		existing, err := s.store.Read(filename)
		if err != nil {
			return err
		}
		if !checksum.Matches(existing, ifMatch) {
			return fmt.Errorf("journal: delete %s: %w", filename, apperr.ErrConflict)
		}
	}
	if err := s.store.Delete(filename); err != nil {
		return err
	}
	s.logger.Info("journal: deleted", slog.String("filename", filename))
	return s.db.DeleteEntry(filename)
}

// List returns paginated entries with optional tag filter.
func (s *Service) List(_ context.Context, p ListParams) ([]EntryListItem, int, error) {
	rows, total, err := s.db.ListEntries(index.ListQuery(p))
	if err != nil {
		return nil, 0, err
	}
	items := make([]EntryListItem, len(rows))
	for i, r := range rows {
		items[i] = EntryListItem{
			Filename:  r.Filename,
			Title:     r.Title,
			Date:      r.Date,
			Tags:      nonNilSlice(r.Tags),
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Tags returns tag usage counts.
func (s *Service) Tags(_ context.Context) ([]index.TagCount, error) {
	return s.db.Tags()
}

// Validate checks raw entry text without storing it.
func (s *Service) Validate(_ context.Context, data []byte) Validation {
	v := Validation{WellFormed: !entry.IsBinary(data) && entry.IsWellFormed(data)}
	rec, err := s.codec.Decode(data)
	if err != nil {
		v.Kind = apperr.KindOf(err).String()
		v.Error = err.Error()
		return v
	}
	v.Valid = true
	v.Entry = detail(rec.Filename(), rec, data)
	return v
}

// Reindex decodes and indexes a file already present in storage.
func (s *Service) Reindex(filename string) error {
	data, err := s.store.Read(filename)
	if err != nil {
		return err
	}
	return s.index(filename, data)
}

func (s *Service) encode(rec *entry.Record) ([]byte, error) {
	if err := s.codec.Validate(rec); err != nil {
		return nil, err
	}
	return s.codec.Encode(rec)
}

func (s *Service) index(filename string, data []byte) error {
	return index.IndexFile(s.db, filename, data)
}

func detail(filename string, rec *entry.Record, data []byte) *EntryDetail {
	h := rec.Header()
	return &EntryDetail{
		Filename: filename,
		Title:    h.Title,
		Date:     string(h.Date),
		Tags:     nonNilSlice(h.Tags),
		Body:     rec.Body(),
		Checksum: checksum.Sum(data),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
