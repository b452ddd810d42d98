// Package fileops holds the filesystem side effects behind the file pane
// actions: clipboard aggregation, batch paste, delete, rename, new folder,
// shortcuts and archive handling.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wilbur182/flowfiler/internal/flow"
)

// Mode says whether a paste copies or moves its sources.
type Mode int

const (
	Copy Mode = iota
	Move
)

func (m Mode) String() string {
	if m == Move {
		return "move"
	}
	return "copy"
}

// Result reports a batch operation. Created holds the paths written;
// Err joins the per-item failures and is nil when every item succeeded.
type Result struct {
	Created []string
	Failed  int
	Err     error
}

// OK reports whether every item succeeded.
func (r Result) OK() bool { return r.Err == nil }

func (r *Result) fail(err error) {
	r.Failed++
	r.Err = errors.Join(r.Err, err)
}

// Aggregate collapses a set of selected paths for the clipboard: duplicates
// are dropped, and so is anything inside a directory that is itself part of
// the set. Shorter paths come first.
func Aggregate(paths []string) []string {
	sorted := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		sorted = append(sorted, abs)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) < len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	var out, dirs []string
	for _, p := range sorted {
		if underAny(p, dirs) {
			continue
		}
		out = append(out, p)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		}
	}
	return out
}

func underAny(p string, dirs []string) bool {
	for _, d := range dirs {
		rel, err := filepath.Rel(d, p)
		if err != nil || rel == "." {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// UniqueName returns a path in dir for name that does not exist yet,
// appending _1, _2 ... before the extension on collision.
func UniqueName(dir, name string) string {
	dest := filepath.Join(dir, name)
	if !exists(dest) {
		return dest
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
		if !exists(dest) {
			return dest
		}
	}
}

// Paste copies or moves each source into dest. Missing sources are
// skipped; a failing item is logged and the batch continues.
func Paste(src []string, dest string, mode Mode, logger *slog.Logger) Result {
	var res Result
	info, err := os.Stat(dest)
	if err != nil || !info.IsDir() {
		res.fail(fmt.Errorf("paste into %s: %w", dest, flow.ErrInvalidTarget))
		return res
	}
	for _, s := range src {
		if !exists(s) {
			continue
		}
		if mode == Move && filepath.Dir(filepath.Clean(s)) == filepath.Clean(dest) {
			continue
		}
		if isWithin(dest, s) {
			res.fail(fmt.Errorf("paste %s into itself", s))
			continue
		}
		target := UniqueName(dest, filepath.Base(s))
		var opErr error
		if mode == Move {
			opErr = move(s, target)
		} else {
			opErr = copyPath(s, target)
		}
		if opErr != nil {
			if logger != nil {
				logger.Warn("paste item failed", "src", s, "dest", target, "mode", mode.String(), "error", opErr)
			}
			res.fail(fmt.Errorf("%s %s: %w", mode, s, opErr))
			continue
		}
		res.Created = append(res.Created, target)
	}
	return res
}

// isWithin reports whether path is dir or below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Cross-device: copy then remove.
	if err := copyPath(src, dst); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

func copyPath(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		link, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(link, dst)
	case info.IsDir():
		return copyTree(src, dst)
	default:
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		return copyPath(p, target)
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if info, err := os.Stat(src); err == nil {
		_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	}
	return nil
}

// Delete permanently removes every path.
func Delete(paths []string, logger *slog.Logger) Result {
	var res Result
	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil {
			if logger != nil {
				logger.Warn("delete failed", "path", p, "error", err)
			}
			res.fail(fmt.Errorf("delete %s: %w", p, err))
		}
	}
	return res
}

// ValidateName rejects names that cannot be a single path component.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return errors.New("name cannot be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid name %q", name)
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator):
		return errors.New("name cannot contain path separators")
	}
	return nil
}

// Rename renames path within its folder and returns the new path.
func Rename(path, newName string) (string, error) {
	if err := ValidateName(newName); err != nil {
		return "", err
	}
	dst := filepath.Join(filepath.Dir(path), strings.TrimSpace(newName))
	if dst == filepath.Clean(path) {
		return dst, nil
	}
	if exists(dst) {
		return "", fmt.Errorf("%s already exists", filepath.Base(dst))
	}
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return dst, nil
}

// Mkdir creates a folder named name inside dir.
func Mkdir(dir, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	p := filepath.Join(dir, strings.TrimSpace(name))
	if exists(p) {
		return "", fmt.Errorf("%s already exists", filepath.Base(p))
	}
	if err := os.Mkdir(p, 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	return p, nil
}

// CreateShortcut places a "<name> - Shortcut" symlink next to each target.
func CreateShortcut(paths []string, logger *slog.Logger) Result {
	var res Result
	for _, target := range paths {
		abs, err := filepath.Abs(target)
		if err != nil {
			res.fail(err)
			continue
		}
		dir := filepath.Dir(abs)
		base := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
		link := filepath.Join(dir, base+" - Shortcut")
		for n := 1; exists(link); n++ {
			link = filepath.Join(dir, fmt.Sprintf("%s - Shortcut (%d)", base, n))
		}
		if err := os.Symlink(abs, link); err != nil {
			if logger != nil {
				logger.Warn("create shortcut failed", "target", abs, "error", err)
			}
			res.fail(fmt.Errorf("shortcut %s: %w", filepath.Base(abs), err))
			continue
		}
		res.Created = append(res.Created, link)
	}
	return res
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
