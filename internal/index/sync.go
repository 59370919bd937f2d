package index

import (
	"fmt"
	"log/slog"

	"github.com/starford/jrnl/internal/apperr"
	"github.com/starford/jrnl/internal/checksum"
	"github.com/starford/jrnl/internal/entry"
	"github.com/starford/jrnl/internal/storage"
)

// Sync walks the journal and brings the index up to date:
//   - new/changed files are decoded and upserted
//   - files that no longer decode are dropped from the index
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: decode failed",
				slog.String("path", m.Path),
				slog.String("kind", apperr.KindOf(err).String()),
				slog.String("error", err.Error()))
			if _, ok := checksums[m.Path]; ok {
				_ = db.DeleteEntry(m.Path)
			}
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteEntry(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile decodes data as an entry and upserts it under path.
func IndexFile(db EntryIndex, path string, data []byte) error {
	rec, err := entry.Decode(data)
	if err != nil {
		return fmt.Errorf("index: %s: %w", path, err)
	}
	h := rec.Header()
	row := EntryRow{
		Filename: path,
		Title:    h.Title,
		Date:     string(h.Date),
		Tags:     h.Tags,
		Checksum: checksum.Sum(data),
	}
	return db.UpsertEntry(row, rec.Body())
}
