// Package docstore persists document records in a flat JSON file.
//
// The file is the source of truth: every read goes through an in-memory
// copy that is reloaded when the file changes on disk, so manual edits
// (or a second process) take effect without a restart.
package docstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DuplicateError is returned by Add when a document with the same content
// hash already exists. It carries the existing document so callers can
// surface its identity as a conflict.
type DuplicateError struct {
	Existing Document
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("document already ingested as %q (id: %s)",
		e.Existing.Metadata.Title, e.Existing.ID)
}

// Store is a file-backed document store.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	docs    []Document
	watcher *fsnotify.Watcher
}

// New opens (or creates) the document database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{path: path, logger: logger}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to initialize document database: %w", err)
		}
	}

	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Watch reloads the store when the database file changes on disk.
// It returns immediately; events are handled on a background goroutine
// until Close is called.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.reload(); err != nil {
					s.logger.Warn("failed to reload document database", "error", err)
				} else {
					s.logger.Debug("document database reloaded", "path", s.path)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

// Close stops the file watcher, if one was started.
func (s *Store) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// reload reads the database file into memory.
func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read document database: %w", err)
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("failed to parse document database: %w", err)
	}

	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
	return nil
}

// save writes the in-memory documents to disk atomically (write to a temp
// file in the same directory, then rename over the database).
func (s *Store) save(docs []Document) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "documents-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write documents: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace document database: %w", err)
	}
	return nil
}

// Add appends a document and persists the database.
// Returns a *DuplicateError if a document with the same content hash exists.
func (s *Store) Add(doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.docs {
		if existing.ContentHash != "" && existing.ContentHash == doc.ContentHash {
			return Document{}, &DuplicateError{Existing: existing}
		}
	}

	docs := append(append([]Document(nil), s.docs...), doc)
	if err := s.save(docs); err != nil {
		return Document{}, err
	}
	s.docs = docs
	return doc, nil
}

// Get returns a document by ID.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return Document{}, false
}

// List returns all documents in insertion order.
func (s *Store) List() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Document(nil), s.docs...)
}

// FindByHash returns the document with the given content hash, if any.
func (s *Store) FindByHash(hash string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.ContentHash == hash {
			return doc, true
		}
	}
	return Document{}, false
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
