package shell

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wilbur182/flowfiler/internal/flow"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) start(name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func TestOpenPerPlatform(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", "/tmp/a.txt"}},
		{"linux", []string{"xdg-open", "/tmp/a.txt"}},
		{"windows", []string{"cmd", "/c", "start", "", "/tmp/a.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			r := &recorder{}
			s := NewWith(tt.goos, r.start, nil, nil)
			if err := s.Open("/tmp/a.txt"); err != nil {
				t.Fatalf("Open: %v", err)
			}
			if len(r.calls) != 1 || !reflect.DeepEqual(r.calls[0], tt.want) {
				t.Errorf("calls = %v, want %v", r.calls, tt.want)
			}
		})
	}

	s := NewWith("plan9", (&recorder{}).start, nil, nil)
	if err := s.Open("/x"); !errors.Is(err, flow.ErrExternalToolFailure) {
		t.Errorf("unsupported platform err = %v", err)
	}
}

func TestLaunchFailure(t *testing.T) {
	r := &recorder{err: errors.New("exec: not found")}
	s := NewWith("linux", r.start, nil, nil)
	if err := s.Open("/tmp/x"); !errors.Is(err, flow.ErrExternalToolFailure) {
		t.Errorf("err = %v", err)
	}
}

func TestRevealLinuxOpensParent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	r := &recorder{}
	s := NewWith("linux", r.start, nil, nil)
	if err := s.Reveal(file); err != nil {
		t.Fatal(err)
	}
	if want := []string{"xdg-open", dir}; !reflect.DeepEqual(r.calls[0], want) {
		t.Errorf("reveal = %v, want %v", r.calls[0], want)
	}
}

func TestTerminalDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := TerminalDir([]string{file}, "/fallback"); got != dir {
		t.Errorf("file -> %s", got)
	}
	if got := TerminalDir([]string{dir}, "/fallback"); got != dir {
		t.Errorf("dir -> %s", got)
	}
	if got := TerminalDir(nil, "/fallback"); got != "/fallback" {
		t.Errorf("empty -> %s", got)
	}
}

func TestCopyPaths(t *testing.T) {
	paths := []string{"/home/u/a.txt", "/home/u/docs"}
	tests := []struct {
		name   string
		format PathFormat
		want   string
	}{
		{"full", FullPath, "/home/u/a.txt\n/home/u/docs"},
		{"name", NameOnly, "a.txt\ndocs"},
		{"parent", ParentDir, "/home/u\n/home/u"},
		{"quoted", Quoted, "\"/home/u/a.txt\"\n\"/home/u/docs\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			s := NewWith("linux", nil, func(text string) error { got = text; return nil }, nil)
			if _, err := s.CopyPaths(paths, tt.format); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("clipboard = %q, want %q", got, tt.want)
			}
		})
	}

	if got := FormatPaths([]string{`C:\Users\a`}, UnixPath); got != "C:/Users/a" {
		t.Errorf("unix path = %q", got)
	}
}

func TestProperties(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a"), []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b"), []byte("123"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := Properties(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir || info.Files != 2 || info.Dirs != 1 || info.Size != 8 {
		t.Errorf("info = %+v", info)
	}

	if _, err := Properties(filepath.Join(dir, "gone")); !errors.Is(err, flow.ErrStaleReference) {
		t.Errorf("missing err = %v", err)
	}
}
