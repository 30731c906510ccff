package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aromas-andinas/storefront/internal/errs"
)

// FileBackend keeps one JSON file per collection key inside the data
// directory. The directory is created on first write. When the deployment
// marks the filesystem read-only, writes fail fast with a configuration
// error; a silent write failure there is worse than an explicit one.
type FileBackend struct {
	dataDir  string
	readOnly bool
}

func NewFileBackend(dataDir string, readOnly bool) *FileBackend {
	return &FileBackend{dataDir: dataDir, readOnly: readOnly}
}

func (f *FileBackend) Name() string { return "file" }

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dataDir, key+".json")
}

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyMissing
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f *FileBackend) Set(_ context.Context, key string, data []byte) error {
	if f.readOnly {
		return errs.NewConfiguration("file backend selected but filesystem is read-only; configure the remote key-value store")
	}

	if err := os.MkdirAll(f.dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Write through a temp file so a partial failure never leaves a
	// truncated collection behind.
	tmp, err := os.CreateTemp(f.dataDir, key+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}
