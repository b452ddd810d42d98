package preview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/flowfiler/internal/dirmodel"
)

func write(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadKinds(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"))
	write(t, filepath.Join(dir, "README.md"), []byte("# Title\n\nbody"))
	write(t, filepath.Join(dir, "blob.bin"), []byte{0x7f, 0, 1, 2})
	write(t, filepath.Join(dir, "pic.PNG"), []byte("not really"))
	write(t, filepath.Join(dir, "sub", "x.txt"), []byte("x"))

	fs := dirmodel.NewFS(0, nil)
	tests := []struct {
		name string
		want Kind
	}{
		{"main.go", KindText},
		{"README.md", KindMarkdown},
		{"blob.bin", KindBinary},
		{"pic.PNG", KindImage},
		{"sub", KindDirectory},
		{"missing", KindError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Load(filepath.Join(dir, tt.name), 0, fs)
			if a.Kind != tt.want {
				t.Errorf("kind = %s, want %s (err %v)", a.Kind, tt.want, a.Err)
			}
		})
	}
}

func TestLoadTruncatesLargeFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "big.txt")
	write(t, p, []byte(strings.Repeat("a", 2048)))

	a := Load(p, 1024, nil)
	if !a.Truncated || len(a.Content) != 1024 {
		t.Errorf("truncated=%v len=%d", a.Truncated, len(a.Content))
	}
}

func TestDirectoryArtifact(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.txt"), nil)
	write(t, filepath.Join(dir, "b", "c.txt"), nil)

	a := Load(dir, 0, dirmodel.NewFS(0, nil))
	if a.Dirs != 1 || a.Files != 1 {
		t.Errorf("dirs=%d files=%d", a.Dirs, a.Files)
	}
	found := false
	for _, l := range a.Lines {
		if l == "b"+string(filepath.Separator) {
			found = true
		}
	}
	if !found {
		t.Errorf("lines = %v", a.Lines)
	}
}

func TestQuickLookVisibility(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "notes.txt")
	write(t, p, []byte("hello"))

	q := NewQuickLook(dirmodel.NewFS(0, nil), 0, nil)
	if q.Visible() {
		t.Fatal("new quick look should be hidden")
	}
	if lines := q.Lines(40); len(lines) != 1 {
		t.Errorf("empty lines = %v", lines)
	}

	q.Open(p)
	if !q.Visible() || q.Artifact().Path != p {
		t.Fatalf("open: visible=%v path=%s", q.Visible(), q.Artifact().Path)
	}
	if !strings.HasPrefix(q.Title(), "notes.txt") {
		t.Errorf("title = %q", q.Title())
	}

	write(t, p, []byte("hello again"))
	q.ShowArtifact(p)
	if q.Artifact().Size != int64(len("hello again")) {
		t.Errorf("changed file not reloaded: size %d", q.Artifact().Size)
	}

	q.Close()
	if q.Visible() {
		t.Error("close should hide")
	}
}

func TestWrapLine(t *testing.T) {
	lines := wrapLine("alpha beta gamma delta", 10)
	if len(lines) < 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, l := range lines {
		if w := ansi.StringWidth(l); w > 10 {
			t.Errorf("line %q width %d", l, w)
		}
	}
	if got := wrapLine("short", 10); len(got) != 1 || got[0] != "short" {
		t.Errorf("short = %q", got)
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KiB",
		1536:        "1.5 KiB",
		1024 * 1024: "1.0 MiB",
	}
	for n, want := range tests {
		if got := FormatSize(n); got != want {
			t.Errorf("FormatSize(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestMarkdownRendererNarrowFallsBack(t *testing.T) {
	r := NewMarkdownRenderer(nil)
	lines := r.Render("# Title\none two three four", 10)
	if len(lines) != 3 || lines[0] != "# Title" || strings.TrimSpace(lines[1]) != "one two" {
		t.Errorf("lines = %q", lines)
	}
	if got := r.Render("", 80); len(got) != 0 {
		t.Errorf("empty render = %q", got)
	}
}
