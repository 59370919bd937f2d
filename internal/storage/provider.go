// Package storage defines the journal directory abstraction.
package storage

import "github.com/starford/jrnl/internal/models"

// Provider is the interface for journal file operations. Paths are relative
// to the journal root. Missing files are reported as apperr.ErrNotFound.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.EntryFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Root returns the absolute journal directory.
	Root() string
}
