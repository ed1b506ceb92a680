package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactLocator = (*Locator)(nil)

// Locator finds build artifacts by trying candidate paths in order.
type Locator struct{}

// NewLocator creates a new Locator.
func NewLocator() *Locator {
	return &Locator{}
}

// Locate returns the first candidate below root that exists as a regular file.
func (l *Locator) Locate(root string, candidates []string) (string, bool, error) {
	for _, candidate := range candidates {
		path := filepath.Join(root, candidate)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return "", false, zerr.With(zerr.Wrap(err, "failed to stat artifact"), "path", path)
		}
		if info.Mode().IsRegular() {
			return path, true, nil
		}
	}
	return "", false, nil
}
