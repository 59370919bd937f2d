// Package models defines the shared domain types for jrnl.
package models

import "time"

// EntryFile is lightweight metadata about an entry file in the journal
// directory, as returned by storage listings.
type EntryFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
