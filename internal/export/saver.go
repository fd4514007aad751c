package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Saver stores an exported file and returns where it went
type Saver interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// DirSaver writes exports into one directory
type DirSaver struct {
	Dir string
}

// NewDirSaver creates a saver rooted at dir
func NewDirSaver(dir string) *DirSaver {
	return &DirSaver{Dir: dir}
}

// Save writes data to Dir/filename, creating Dir if needed
func (s *DirSaver) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
