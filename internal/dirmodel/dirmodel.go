// Package dirmodel is the directory-listing collaborator: it enumerates
// folders, answers directory checks and reports changes on disk.
package dirmodel

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wilbur182/flowfiler/internal/projection"
)

// Lister is the narrow view of the filesystem the flow core consumes.
type Lister interface {
	List(path string) ([]projection.Entry, error)
	IsDir(path string) bool
}

// DefaultCacheEntries is the listing cache size when none is configured.
const DefaultCacheEntries = 256

// FS lists the local filesystem through a metadata-checked cache.
type FS struct {
	cache  *Cache[[]projection.Entry]
	logger *slog.Logger
}

// NewFS creates an FS whose cache holds up to cacheEntries listings.
func NewFS(cacheEntries int, logger *slog.Logger) *FS {
	if cacheEntries <= 0 {
		cacheEntries = DefaultCacheEntries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FS{
		cache:  NewCache[[]projection.Entry](cacheEntries),
		logger: logger,
	}
}

// List returns the children of dir. The returned slice is owned by the
// caller.
func (f *FS) List(dir string) ([]projection.Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("list %s: not a directory", dir)
	}

	if cached, ok := f.cache.Get(dir, info.Size(), info.ModTime()); ok {
		return append([]projection.Entry(nil), cached...), nil
	}

	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	entries := make([]projection.Entry, 0, len(des))
	for _, de := range des {
		p := filepath.Join(dir, de.Name())
		fi, err := de.Info()
		if err != nil {
			// Entry vanished between ReadDir and Info.
			continue
		}
		e := projection.Entry{
			Path:    p,
			Name:    de.Name(),
			IsDir:   de.IsDir(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			if target, err := os.Stat(p); err == nil {
				e.IsDir = target.IsDir()
			}
		}
		entries = append(entries, e)
	}

	f.cache.Set(dir, entries, info.Size(), info.ModTime())
	return append([]projection.Entry(nil), entries...), nil
}

// IsDir reports whether path exists and is a directory.
func (f *FS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Invalidate drops the cached listings of the given directories.
func (f *FS) Invalidate(dirs ...string) {
	for _, d := range dirs {
		f.cache.Delete(d)
	}
	f.logger.Debug("listing cache invalidated", "dirs", len(dirs))
}

// InvalidateTree drops cached listings at or below root.
func (f *FS) InvalidateTree(root string) {
	prefix := root + string(filepath.Separator)
	f.cache.DeleteIf(func(key string) bool {
		return key == root || strings.HasPrefix(key, prefix)
	})
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Canonicalize expands a leading ~, makes path absolute and cleans it.
func Canonicalize(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("canonicalize %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}
