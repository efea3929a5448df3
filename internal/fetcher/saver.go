package fetcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiskSaver writes subtitle files into a single download directory
type DiskSaver struct {
	dir string
}

// NewDiskSaver creates the download directory if needed
func NewDiskSaver(dir string) (*DiskSaver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	return &DiskSaver{dir: dir}, nil
}

// Save writes data under the download directory. The filename is a plain
// token-joined name, never a path.
func (s *DiskSaver) Save(filename string, data []byte) error {
	return os.WriteFile(filepath.Join(s.dir, filepath.Base(filename)), data, 0644)
}
