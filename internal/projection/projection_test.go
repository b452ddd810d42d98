package projection

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type fakeMarks map[string]bool

func (m fakeMarks) IsMarked(p string) bool { return m[p] }

type fakeTree map[string][]Entry

func (f fakeTree) List(path string) ([]Entry, error) {
	kids, ok := f[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return kids, nil
}

func dir(root, name string) Entry {
	return Entry{Path: filepath.Join(root, name), Name: name, IsDir: true}
}

func file(root, name string, size int64, mod time.Time) Entry {
	return Entry{Path: filepath.Join(root, name), Name: name, Size: size, ModTime: mod}
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestProjectFilters(t *testing.T) {
	root := "/r"
	t0 := time.Unix(1000, 0)
	listing := []Entry{
		dir(root, "src"),
		dir(root, ".git"),
		dir(root, "docs"),
		file(root, "main.go", 10, t0),
		file(root, ".env", 1, t0),
		file(root, "README.md", 5, t0),
	}

	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"default hides dot entries", Config{}, []string{"docs", "src", "main.go", "README.md"}},
		{"show hidden", Config{ShowHidden: true}, []string{".git", "docs", "src", ".env", "main.go", "README.md"}},
		{"dirs only", Config{Mode: ModeDirsOnly}, []string{"docs", "src"}},
		{"files only", Config{Mode: ModeFilesOnly}, []string{"main.go", "README.md"}},
		{"files only rescues target ancestor", Config{Mode: ModeFilesOnly, TargetRoot: "/r/src/pkg"}, []string{"src", "main.go", "README.md"}},
		{"target compare ignores case", Config{Mode: ModeFilesOnly, TargetRoot: "/R/SRC"}, []string{"src", "main.go", "README.md"}},
		{"hidden target stays visible", Config{TargetRoot: "/r/.git/hooks"}, []string{".git", "docs", "src", "main.go", "README.md"}},
		{"target root itself is not rescued", Config{Mode: ModeFilesOnly, TargetRoot: "/r"}, []string{"main.go", "README.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Project(root, listing, tt.cfg, nil))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Project() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectRecursiveSearch(t *testing.T) {
	tree := fakeTree{
		"/r/src":      {dir("/r/src", "deep"), {Path: "/r/src/a.go", Name: "a.go"}},
		"/r/src/deep": {{Path: "/r/src/deep/Needle.txt", Name: "Needle.txt"}},
		"/r/docs":     {{Path: "/r/docs/guide.md", Name: "guide.md"}},
	}
	listing := []Entry{dir("/r", "src"), dir("/r", "docs"), {Path: "/r/needles.go", Name: "needles.go"}, {Path: "/r/other", Name: "other"}}

	got := names(Project("/r", listing, Config{SearchText: "NEEDLE"}, tree))
	want := []string{"src", "needles.go"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("search = %v, want %v", got, want)
	}

	// Mode filtering applies to the search survivors.
	got = names(Project("/r", listing, Config{SearchText: "needle", Mode: ModeDirsOnly}, tree))
	if !reflect.DeepEqual(got, []string{"src"}) {
		t.Fatalf("search+dirs = %v", got)
	}

	// Depth bound stops the descent.
	got = names(Project("/r", listing, Config{SearchText: "needle", SearchDepth: 1}, tree))
	if !reflect.DeepEqual(got, []string{"needles.go"}) {
		t.Fatalf("bounded search = %v", got)
	}
}

func TestSortDirectoriesFirst(t *testing.T) {
	root := "/r"
	early := time.Unix(100, 0)
	late := time.Unix(200, 0)
	listing := []Entry{
		file(root, "b.txt", 30, early),
		dir(root, "Zeta"),
		file(root, "A.md", 10, late),
		dir(root, "alpha"),
		file(root, "c.txt", 10, early),
	}

	tests := []struct {
		sort Sort
		want []string
	}{
		{Sort{SortName, Ascending}, []string{"alpha", "Zeta", "A.md", "b.txt", "c.txt"}},
		{Sort{SortName, Descending}, []string{"Zeta", "alpha", "c.txt", "b.txt", "A.md"}},
		{Sort{SortSize, Ascending}, []string{"alpha", "Zeta", "A.md", "c.txt", "b.txt"}},
		{Sort{SortSize, Descending}, []string{"alpha", "Zeta", "b.txt", "A.md", "c.txt"}},
		{Sort{SortModified, Ascending}, []string{"alpha", "Zeta", "b.txt", "c.txt", "A.md"}},
		{Sort{SortType, Ascending}, []string{"alpha", "Zeta", "A.md", "b.txt", "c.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.sort.Column.String()+" "+tt.sort.Order.String(), func(t *testing.T) {
			first := names(Project(root, listing, Config{Sort: tt.sort}, nil))
			if !reflect.DeepEqual(first, tt.want) {
				t.Fatalf("order = %v, want %v", first, tt.want)
			}
			for i := 0; i < 5; i++ {
				again := names(Project(root, listing, Config{Sort: tt.sort}, nil))
				if !reflect.DeepEqual(again, first) {
					t.Fatalf("nondeterministic order: %v vs %v", again, first)
				}
			}
		})
	}
}

func TestAnnotateMarks(t *testing.T) {
	listing := []Entry{dir("/r", "a"), dir("/r", "b")}
	marks := fakeMarks{"/r/b": true}
	rows := Project("/r", listing, Config{Marks: marks}, nil)
	if rows[0].Marked || !rows[1].Marked {
		t.Fatalf("marks = %v/%v", rows[0].Marked, rows[1].Marked)
	}

	marks["/r/a"] = true
	Annotate(rows, marks)
	if !rows[0].Marked {
		t.Error("Annotate did not refresh mark flag")
	}
	if len(rows) != 2 {
		t.Errorf("Annotate changed row count: %d", len(rows))
	}
}

func TestDisplayModeNext(t *testing.T) {
	m := ModeAll
	seq := []DisplayMode{ModeDirsOnly, ModeFilesOnly, ModeAll}
	for _, want := range seq {
		m = m.Next()
		if m != want {
			t.Fatalf("Next() = %v, want %v", m, want)
		}
	}
}

func TestContinuity(t *testing.T) {
	tests := []struct {
		name     string
		prev     []string
		current  []string
		expected []string
	}{
		{"fresh selection", nil, []string{"/a", "/b"}, []string{"/a", "/b"}},
		{"previous first", []string{"/x"}, []string{"/w", "/x", "/y"}, []string{"/x", "/w", "/y"}},
		{"previous order kept", []string{"/y", "/x"}, []string{"/x", "/y"}, []string{"/y", "/x"}},
		{"dropped items removed", []string{"/x", "/y"}, []string{"/y"}, []string{"/y"}},
		{"empty", []string{"/x"}, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Continuity(tt.prev, tt.current)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Continuity() = %v, want %v", got, tt.expected)
			}
			if again := Continuity(got, tt.current); !reflect.DeepEqual(again, got) {
				t.Errorf("not idempotent: %v then %v", got, again)
			}
		})
	}
}
