// Package entryio loads and saves entries by path. It is the only place the
// codec meets the file system directly.
package entryio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/jrnl/internal/apperr"
	"github.com/starford/jrnl/internal/entry"
)

// Load reads the file at path and decodes it.
func Load(path string) (*entry.Record, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	r, err := entry.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Check reports whether the file at path is a text file with a well-formed
// entry structure. Read failures are returned as errors.
func Check(path string) (bool, error) {
	data, err := readFile(path)
	if err != nil {
		return false, err
	}
	if entry.IsBinary(data) {
		return false, fmt.Errorf("%s: %w: not a text file", path, apperr.ErrInvalidFileType)
	}
	return entry.IsWellFormed(data), nil
}

// Save validates r and writes it to dir under its header filename,
// replacing any existing file. dir must be an existing directory.
func Save(r *entry.Record, dir string) (string, error) {
	if err := checkDir(dir); err != nil {
		return "", err
	}
	if err := entry.Default().Validate(r); err != nil {
		return "", err
	}
	data, err := entry.Encode(r)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, r.Filename())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("entryio: write %s: %w", path, err)
	}
	return path, nil
}

// Create makes a new empty entry titled title in dir. It refuses to replace
// an existing entry with the same filename.
func Create(dir, title string, now time.Time, slugLength int) (*entry.Record, string, error) {
	if err := checkDir(dir); err != nil {
		return nil, "", err
	}
	r := entry.New(title, now, slugLength)
	path := filepath.Join(dir, r.Filename())
	if _, err := os.Stat(path); err == nil {
		return nil, "", fmt.Errorf("entryio: %s: %w", path, apperr.ErrAlreadyExists)
	}
	if _, err := Save(r, dir); err != nil {
		return nil, "", err
	}
	return r, path, nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("entryio: %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("entryio: stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("entryio: %s: %w: not a regular file", path, apperr.ErrInvalidFileType)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("entryio: read %s: %w", path, err)
	}
	return data, nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("entryio: path %s does not exist: %w", dir, apperr.ErrInvalidFileType)
		}
		return fmt.Errorf("entryio: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("entryio: %s is not a directory: %w", dir, apperr.ErrInvalidFileType)
	}
	return nil
}
