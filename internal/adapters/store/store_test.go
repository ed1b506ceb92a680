package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/store"
	"go.trai.ch/kiln/internal/core/domain"
)

func record() domain.PackageRecord {
	return domain.PackageRecord{
		Name:         "terminus_log",
		Version:      "1.0.2",
		Dir:          "/work/build/package",
		Digest:       "8f2d5a1c9e0b7734",
		Fingerprint:  "0d1e2f3a4b5c6d7e",
		Requirements: []string{"boost/>=1.89"},
		Timestamp:    time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_PutAndGet(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "packages.json"))
	require.NoError(t, err)

	require.NoError(t, s.Put(record()))

	got, err := s.Get(domain.Reference{Name: "terminus_log", Version: "1.0.2"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record(), *got)
}

func TestStore_GetMissing(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "packages.json"))
	require.NoError(t, err)

	got, err := s.Get(domain.Reference{Name: "terminus_log", Version: "9.9.9"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "packages.json")

	s1, err := store.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Put(record()))

	s2, err := store.NewStore(path)
	require.NoError(t, err)

	got, err := s2.Get(record().Reference())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "8f2d5a1c9e0b7734", got.Digest)
	assert.True(t, record().Timestamp.Equal(got.Timestamp))
}

func TestStore_PutReplaces(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "packages.json"))
	require.NoError(t, err)

	first := record()
	require.NoError(t, s.Put(first))

	second := record()
	second.Digest = "ffffffffffffffff"
	require.NoError(t, s.Put(second))

	got, err := s.Get(first.Reference())
	require.NoError(t, err)
	assert.Equal(t, "ffffffffffffffff", got.Digest)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "packages.json"))
	require.NoError(t, err)
	require.NoError(t, s.Put(record()))

	got, err := s.Get(record().Reference())
	require.NoError(t, err)
	got.Requirements[0] = "changed"

	again, err := s.Get(record().Reference())
	require.NoError(t, err)
	assert.Equal(t, []string{"boost/>=1.89"}, again.Requirements)
}

func TestStore_PutRejectsIncompleteReference(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "packages.json"))
	require.NoError(t, err)

	err = s.Put(domain.PackageRecord{Name: "terminus_log"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidReference))
}

func TestNewStore_CorruptIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packages.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := store.NewStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal package index")
}

func TestNewStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packages.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	s, err := store.NewStore(path)
	require.NoError(t, err)

	got, err := s.Get(record().Reference())
	require.NoError(t, err)
	assert.Nil(t, got)
}
