package favorites

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wilbur182/flowfiler/internal/flow"
)

func TestStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "favorites.json")
	s := Open(path, nil)
	if s.Len() != 0 {
		t.Fatalf("new store len = %d", s.Len())
	}

	for _, p := range []string{"/srv/a", "/srv/b", "/srv/a", "/home/c"} {
		if err := s.Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if got := s.Items(); !reflect.DeepEqual(got, []string{"/srv/a", "/srv/b", "/home/c"}) {
		t.Fatalf("items = %v", got)
	}

	if j, err := s.Move(2, -5); err != nil || j != 0 {
		t.Fatalf("Move = %d, %v", j, err)
	}
	if err := s.Remove(1); err != nil {
		t.Fatal(err)
	}

	reloaded := Open(path, nil)
	if got := reloaded.Items(); !reflect.DeepEqual(got, []string{"/home/c", "/srv/b"}) {
		t.Fatalf("reloaded = %v", got)
	}
	if p, ok := reloaded.At(1); !ok || p != "/srv/b" {
		t.Errorf("At(1) = %q/%v", p, ok)
	}
}

func TestCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	if err := os.WriteFile(path, []byte(`{"not":"array"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, flow.ErrPersistenceCorruption) {
		t.Fatalf("Load err = %v", err)
	}
	if s := Open(path, nil); s.Len() != 0 {
		t.Errorf("corrupt store len = %d", s.Len())
	}
}

func TestFilterAndLabels(t *testing.T) {
	s := &Store{path: filepath.Join(t.TempDir(), "f.json"), items: []string{"/work/projects", "/music", "/work/photos"}}

	all := s.Filter("")
	if len(all) != 3 || all[2].Index != 2 {
		t.Fatalf("empty filter = %+v", all)
	}
	got := s.Filter("phot")
	if len(got) != 1 || got[0].Path != "/work/photos" || got[0].Index != 2 {
		t.Fatalf("Filter = %+v", got)
	}

	if l := Label(0, "/work/projects"); l != "[q] projects" {
		t.Errorf("Label = %q", l)
	}
	if l := Label(9, "/x"); l != "    x" {
		t.Errorf("Label beyond hotkeys = %q", l)
	}
}
