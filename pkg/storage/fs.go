package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FileStorage maps keys to files below a root directory
type FileStorage struct {
	root string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a filesystem backend rooted at root
func NewFileStorage(root string) (*FileStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("storage: filesystem root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	return &FileStorage{root: abs}, nil
}

// Root returns the absolute root directory
func (f *FileStorage) Root() string {
	return f.root
}

func (f *FileStorage) pathFor(key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	p := filepath.Join(f.root, filepath.FromSlash(clean))
	if p != f.root && !strings.HasPrefix(p, f.root+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return p, nil
}

// List walks the directory that contains prefix and returns matching keys
func (f *FileStorage) List(ctx context.Context, prefix string) ([]string, error) {
	dir := f.root
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		p, err := f.pathFor(prefix[:i])
		if err != nil {
			return nil, err
		}
		dir = p
	}

	keys := make([]string, 0)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Read returns the file contents, ok=false when the file does not exist
func (f *FileStorage) Read(_ context.Context, key string) ([]byte, bool, error) {
	p, err := f.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("storage: read %q: %w", key, err)
	}
	return data, true, nil
}

// Write replaces the file atomically: temp file, fsync, rename
func (f *FileStorage) Write(_ context.Context, key string, data []byte) error {
	p, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for %q: %w", key, err)
	}
	if err := atomicWriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	return nil
}

// Exists reports whether the file exists
func (f *FileStorage) Exists(_ context.Context, key string) (bool, error) {
	p, err := f.pathFor(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat %q: %w", key, err)
	}
	return !info.IsDir(), nil
}

// Delete removes the file; a missing file is not an error
func (f *FileStorage) Delete(_ context.Context, key string) error {
	p, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

func atomicWriteFile(p string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-"+path.Base(filepath.ToSlash(p))+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}
