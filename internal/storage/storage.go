// Package storage provides the JSON document store backing the AgileFlow
// ledgers. All core state lives in two JSON documents (status.json and
// ideation-index.json) plus an append-only JSONL bus log; this package owns
// the read-tolerant load and atomic-replace save discipline for the JSON
// documents.
//
// Malformed documents are deliberately treated the same as missing ones:
// a corrupt metadata or ledger file degrades to defaults instead of
// blocking every operation that touches it.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a document is absent or unreadable as JSON.
// Callers distinguish "no data yet" from real failures with errors.Is.
var ErrNotFound = errors.New("not found")

// Store abstracts document persistence so tests can substitute an
// in-memory implementation and production code can later add locking
// without touching call sites.
type Store interface {
	// Load reads and unmarshals the document at path into v.
	// Missing files and malformed JSON both return ErrNotFound.
	Load(path string, v any) error

	// Save marshals v and writes the full document at path, creating
	// parent directories as needed. The write is atomic-replace: a
	// partially written document is never visible at path.
	Save(path string, v any) error

	// Exists reports whether a document is present at path.
	Exists(path string) bool
}

// FileStore is the production Store over the local filesystem.
type FileStore struct{}

// NewFileStore creates a filesystem-backed store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads a JSON document from disk.
func (fs *FileStore) Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Corrupt document degrades to not-found rather than failing hard.
		return fmt.Errorf("%s: malformed document: %w", path, ErrNotFound)
	}
	return nil
}

// Save writes a JSON document via write-new-then-rename.
func (fs *FileStore) Save(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Exists reports whether the file is present.
func (fs *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MemStore is an in-memory Store for tests. Documents are kept as
// marshaled JSON so load/save round trips behave like the file store.
type MemStore struct {
	docs map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string][]byte)}
}

// Load unmarshals a stored document into v.
func (ms *MemStore) Load(path string, v any) error {
	data, ok := ms.docs[path]
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: malformed document: %w", path, ErrNotFound)
	}
	return nil
}

// Save marshals and stores the document.
func (ms *MemStore) Save(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	ms.docs[path] = data
	return nil
}

// Exists reports whether the document was saved.
func (ms *MemStore) Exists(path string) bool {
	_, ok := ms.docs[path]
	return ok
}

// Put injects raw document bytes, useful for seeding malformed content in tests.
func (ms *MemStore) Put(path string, data []byte) {
	ms.docs[path] = data
}
