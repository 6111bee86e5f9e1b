// Package journal keeps a record of analysis reports alongside the text the
// user wrote when requesting them. Calibration data is never stored here.
package journal

import (
	"errors"
	"time"

	"github.com/teslashibe/recemotion/pkg/session"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("journal entry not found")

// Entry is one saved analysis.
type Entry struct {
	ID        string         `json:"id"`
	InputText string         `json:"input_text"`
	Report    session.Report `json:"report"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewEntry wraps a report. ID and CreatedAt are assigned on Save.
func NewEntry(inputText string, report session.Report) *Entry {
	return &Entry{
		InputText: inputText,
		Report:    report,
	}
}

// Store defines the interface for journal storage operations.
type Store interface {
	// Save stores an entry, assigning an ID if it has none
	Save(entry *Entry) error

	// Get retrieves an entry by ID
	Get(id string) (*Entry, error)

	// Latest returns the most recently created entry
	Latest() (*Entry, error)

	// List returns all entries, newest first
	List() ([]*Entry, error)

	// Search finds entries whose input text contains query (case-insensitive)
	Search(query string) ([]*Entry, error)

	// Delete removes an entry by ID
	Delete(id string) error

	// Count returns the total number of entries
	Count() int
}
