package objectstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fileExt keeps key paths from colliding with the directories of their
// children (key "a" vs key "a/b").
const fileExt = ".dat"

// FileBackend is a filesystem Backend used as the local fallback for the
// durable store. Writes go to a temp file and are renamed into place so a
// crash never leaves a torn value.
type FileBackend struct {
	basePath string
	mu       sync.Mutex
}

// NewFileBackend creates a file backend rooted at basePath.
func NewFileBackend(basePath string) *FileBackend {
	return &FileBackend{basePath: basePath}
}

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) Ping(ctx context.Context) error {
	return os.MkdirAll(b.basePath, 0o755)
}

func (b *FileBackend) keyToFile(key string) string {
	return filepath.Join(b.basePath, filepath.FromSlash(key)) + fileExt
}

func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.keyToFile(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (b *FileBackend) Put(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	filePath := b.keyToFile(key)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

func (b *FileBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.keyToFile(key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (b *FileBackend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(b.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, fileExt) {
			return nil
		}

		rel, err := filepath.Rel(b.basePath, path)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(filepath.ToSlash(rel), fileExt)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", b.basePath, err)
	}

	return keys, nil
}
