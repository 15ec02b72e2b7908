// Package files writes project thumbnails to local disk.
package files

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists thumbnails under a base directory, one PNG per project code.
type Store struct {
	dir string
}

// NewStore creates the base directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SaveThumbnail writes the PNG bytes for a project code, replacing any
// previous thumbnail.
func (s *Store) SaveThumbnail(code string, png []byte) error {
	path := filepath.Join(s.dir, code+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write thumbnail %s: %w", code, err)
	}
	return nil
}
