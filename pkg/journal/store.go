package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONStore implements Store using a JSON file for persistence.
// A store with an empty path keeps entries in memory only.
type JSONStore struct {
	path    string
	entries map[string]*Entry
	mu      sync.RWMutex
	now     func() time.Time
}

// storeData is the JSON structure for the store file.
type storeData struct {
	Version   int      `json:"version"`
	UpdatedAt string   `json:"updated_at"`
	Entries   []*Entry `json:"entries"`
}

const currentVersion = 1

// NewJSONStore creates a new JSON-based store at the given path.
// If the file doesn't exist, it will be created on first save.
func NewJSONStore(path string) (*JSONStore, error) {
	store := &JSONStore{
		path:    path,
		entries: make(map[string]*Entry),
		now:     time.Now,
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Load existing data if file exists
	if _, err := os.Stat(path); err == nil {
		if err := store.load(); err != nil {
			return nil, fmt.Errorf("failed to load journal: %w", err)
		}
	}

	return store, nil
}

// NewMemoryStore creates a store that is never written to disk.
func NewMemoryStore() *JSONStore {
	return &JSONStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// DefaultPath returns ~/.recemotion/journal.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".recemotion", "journal.json"), nil
}

// load reads the store from disk.
func (s *JSONStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var stored storeData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	s.entries = make(map[string]*Entry, len(stored.Entries))
	for _, entry := range stored.Entries {
		s.entries[entry.ID] = entry
	}

	return nil
}

// save writes the store to disk. Caller holds s.mu.
func (s *JSONStore) save() error {
	if s.path == "" {
		return nil
	}

	stored := storeData{
		Version:   currentVersion,
		UpdatedAt: s.now().Format(time.RFC3339),
		Entries:   s.sortedLocked(),
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	// Write to temp file first, then rename (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// sortedLocked returns entries newest first. Caller holds s.mu.
func (s *JSONStore) sortedLocked() []*Entry {
	entries := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

// Save stores an entry.
func (s *JSONStore) Save(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	s.entries[entry.ID] = entry
	return s.save()
}

// Get retrieves an entry by ID.
func (s *JSONStore) Get(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry, nil
}

// Latest returns the most recently created entry.
func (s *JSONStore) Latest() (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.sortedLocked()
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries[0], nil
}

// List returns all entries, newest first.
func (s *JSONStore) List() ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(), nil
}

// Search finds entries whose input text contains query.
func (s *JSONStore) Search(query string) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queryLower := strings.ToLower(query)
	var results []*Entry
	for _, entry := range s.sortedLocked() {
		if strings.Contains(strings.ToLower(entry.InputText), queryLower) {
			results = append(results, entry)
		}
	}
	return results, nil
}

// Delete removes an entry by ID.
func (s *JSONStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(s.entries, id)
	return s.save()
}

// Count returns the total number of entries.
func (s *JSONStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Path returns the file path of the store, empty for memory stores.
func (s *JSONStore) Path() string {
	return s.path
}
