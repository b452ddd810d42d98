// Package shell hands paths to the host environment: default-application
// open, reveal in the system file manager, terminal here, file properties
// and copying paths to the system clipboard.
package shell

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/wilbur182/flowfiler/internal/flow"
)

// Shell launches external programs detached from the TUI.
type Shell struct {
	goos   string
	start  func(name string, args ...string) error
	copy   func(text string) error
	logger *slog.Logger
}

// New returns a Shell for the running platform.
func New(logger *slog.Logger) *Shell {
	return &Shell{
		goos: runtime.GOOS,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
		copy:   clipboard.WriteAll,
		logger: logger,
	}
}

// NewWith builds a Shell with explicit platform and hooks, for tests.
func NewWith(goos string, start func(string, ...string) error, copy func(string) error, logger *slog.Logger) *Shell {
	return &Shell{goos: goos, start: start, copy: copy, logger: logger}
}

func (s *Shell) launch(what, name string, args ...string) error {
	if err := s.start(name, args...); err != nil {
		err = fmt.Errorf("%s: %v: %w", what, err, flow.ErrExternalToolFailure)
		if s.logger != nil {
			s.logger.Error("shell launch failed", "cmd", name, "error", err)
		}
		return err
	}
	return nil
}

// Open opens path with its default application.
func (s *Shell) Open(path string) error {
	switch s.goos {
	case "darwin":
		return s.launch("open", "open", path)
	case "windows":
		return s.launch("open", "cmd", "/c", "start", "", path)
	case "linux", "freebsd", "openbsd", "netbsd":
		return s.launch("open", "xdg-open", path)
	}
	return fmt.Errorf("open on %s: %w", s.goos, flow.ErrExternalToolFailure)
}

// Reveal shows path in the system file manager, selected where supported.
func (s *Shell) Reveal(path string) error {
	switch s.goos {
	case "darwin":
		return s.launch("reveal", "open", "-R", path)
	case "windows":
		return s.launch("reveal", "explorer", "/select,"+path)
	}
	dir := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		dir = filepath.Dir(path)
	}
	return s.Open(dir)
}

// TerminalDir picks the folder a terminal should start in: the first path
// when it is a folder, its parent otherwise, fallback when paths is empty.
func TerminalDir(paths []string, fallback string) string {
	if len(paths) == 0 {
		return fallback
	}
	if info, err := os.Stat(paths[0]); err == nil && info.IsDir() {
		return paths[0]
	}
	return filepath.Dir(paths[0])
}

// Terminal opens a new terminal window in dir.
func (s *Shell) Terminal(dir string) error {
	switch s.goos {
	case "darwin":
		return s.launch("terminal", "open", "-a", "Terminal", dir)
	case "windows":
		return s.launch("terminal", "cmd", "/c", "start", "cmd", "/k", "cd", "/d", dir)
	}
	term := os.Getenv("TERMINAL")
	if term == "" {
		term = "x-terminal-emulator"
	}
	return s.launch("terminal", term, "--working-directory="+dir)
}

// PathFormat selects how CopyPaths renders each path.
type PathFormat int

const (
	FullPath PathFormat = iota
	NameOnly
	ParentDir
	Quoted
	UnixPath
)

// FormatPaths renders paths one per line in the given format.
func FormatPaths(paths []string, f PathFormat) string {
	lines := make([]string, len(paths))
	for i, p := range paths {
		switch f {
		case NameOnly:
			lines[i] = filepath.Base(p)
		case ParentDir:
			lines[i] = filepath.Dir(p)
		case Quoted:
			lines[i] = `"` + p + `"`
		case UnixPath:
			lines[i] = strings.ReplaceAll(p, `\`, "/")
		default:
			lines[i] = p
		}
	}
	return strings.Join(lines, "\n")
}

// CopyPaths writes the formatted paths to the system clipboard and returns
// the copied text.
func (s *Shell) CopyPaths(paths []string, f PathFormat) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	text := FormatPaths(paths, f)
	if err := s.copy(text); err != nil {
		return "", fmt.Errorf("copy to clipboard: %v: %w", err, flow.ErrExternalToolFailure)
	}
	return text, nil
}

// Info is the properties card of a path.
type Info struct {
	Path    string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
	Files   int
	Dirs    int
	Target  string
}

// Properties collects size and counts for path. Folder sizes are summed
// over their whole tree.
func Properties(path string) (Info, error) {
	lst, err := os.Lstat(path)
	if err != nil {
		return Info{}, fmt.Errorf("properties %s: %w", filepath.Base(path), flow.ErrStaleReference)
	}
	info := Info{Path: path, Mode: lst.Mode(), ModTime: lst.ModTime(), Size: lst.Size()}
	if lst.Mode()&os.ModeSymlink != 0 {
		info.Target, _ = os.Readlink(path)
	}
	st, err := os.Stat(path)
	if err != nil || !st.IsDir() {
		return info, nil
	}
	info.IsDir = true
	info.Size = 0
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p == path {
			return nil
		}
		if d.IsDir() {
			info.Dirs++
			return nil
		}
		info.Files++
		if fi, err := d.Info(); err == nil {
			info.Size += fi.Size()
		}
		return nil
	})
	return info, nil
}
