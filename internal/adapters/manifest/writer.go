// Package manifest writes dependency manifests as YAML files.
package manifest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ManifestWriter = (*Writer)(nil)

// Writer implements ports.ManifestWriter.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write encodes the manifest to dir/kiln.deps.yaml, replacing any previous
// file atomically.
func (w *Writer) Write(ctx context.Context, dir string, m domain.Manifest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := Encode(m)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create manifest directory"), "dir", dir)
	}

	path := filepath.Join(dir, domain.ManifestFilename)
	tmp, err := os.CreateTemp(dir, ".kiln.deps-*.yaml")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create temporary manifest"), "dir", dir)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", zerr.With(zerr.Wrap(err, "failed to write manifest"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to close manifest"), "path", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // manifest is read by the build tool
		return "", zerr.With(zerr.Wrap(err, "failed to set manifest permissions"), "path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to replace manifest"), "path", path)
	}

	return path, nil
}

// Encode renders the manifest as YAML. Map keys are emitted in sorted order.
func Encode(m domain.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, zerr.Wrap(err, "failed to encode manifest")
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to encode manifest")
	}
	return buf.Bytes(), nil
}

// Read decodes the manifest file at path.
func Read(path string) (domain.Manifest, error) {
	var m domain.Manifest
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return m, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, zerr.With(zerr.Wrap(err, "failed to parse manifest"), "path", path)
	}
	return m, nil
}
