// Package store records produced packages in a local JSON index.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultPath is the index location relative to the working directory.
const DefaultPath = ".kiln/packages.json"

var _ ports.PackageStore = (*Store)(nil)

// Store implements ports.PackageStore using a flat JSON file keyed by
// package reference.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.PackageRecord
}

// NewStore creates a new PackageStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.PackageRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read package index"), "path", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to unmarshal package index"), "path", s.path)
	}

	return nil
}

// save writes the index. The caller must hold the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal package index")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for package index")
	}

	tmp, err := os.CreateTemp(dir, ".packages-*.json")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary package index")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to write package index")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to close package index")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace package index"), "path", s.path)
	}
	return nil
}

// Get retrieves the record for a package reference.
func (s *Store) Get(ref domain.Reference) (*domain.PackageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.cache[ref.String()]
	if !ok {
		return nil, nil
	}
	record.Requirements = append([]string(nil), record.Requirements...)
	return &record, nil
}

// Put stores the record, replacing any previous record for the same reference.
func (s *Store) Put(record domain.PackageRecord) error {
	if record.Name == "" || record.Version == "" {
		return zerr.With(zerr.Wrap(domain.ErrInvalidReference, "cannot store package"), "reference", record.Reference().String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.Requirements = append([]string(nil), record.Requirements...)
	s.cache[record.Reference().String()] = record
	return s.save()
}
