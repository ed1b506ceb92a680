package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/manifest"
	"go.trai.ch/kiln/internal/core/domain"
)

func testManifest() domain.Manifest {
	return domain.Manifest{
		APIVersion: domain.ManifestAPIVersion,
		Kind:       domain.ManifestKind,
		Package:    domain.ManifestPackage{Name: "terminus_log", Version: "1.0.2"},
		Dependencies: []domain.ManifestRecord{
			{Name: "boost", Constraint: ">=1.89", Kind: domain.KindRuntime, Options: map[string]string{"shared": "true", "header_only": "false"}},
			{Name: "cmake", Constraint: "4.1.2", Kind: domain.KindBuild},
		},
	}
}

func TestEncode(t *testing.T) {
	data, err := manifest.Encode(testManifest())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "apiVersion: kiln.trai.ch/v1\nkind: DependencyManifest\n"), out)
	assert.Less(t, strings.Index(out, "name: boost"), strings.Index(out, "name: cmake"), "graph order must be kept")
	assert.Less(t, strings.Index(out, "header_only"), strings.Index(out, "shared"), "option keys must be sorted")
	assert.NotContains(t, out, "options: {}")

	again, err := manifest.Encode(testManifest())
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	w := manifest.NewWriter()

	path, err := w.Write(context.Background(), dir, testManifest())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, domain.ManifestFilename), path)

	got, err := manifest.Read(path)
	require.NoError(t, err)
	assert.Equal(t, testManifest(), got)
}

func TestWriter_Write_ByteIdentical(t *testing.T) {
	dir := t.TempDir()
	w := manifest.NewWriter()

	path, err := w.Write(context.Background(), dir, testManifest())
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = w.Write(context.Background(), dir, testManifest())
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestWriter_Write_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	_, err := manifest.NewWriter().Write(ctx, dir, testManifest())
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, domain.ManifestFilename))
}

func TestRead_Missing(t *testing.T) {
	_, err := manifest.Read(filepath.Join(t.TempDir(), domain.ManifestFilename))
	require.Error(t, err)
}
