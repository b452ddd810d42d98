package command

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestKindNamesRoundTrip(t *testing.T) {
	seen := make(map[string]bool)
	for _, id := range IDs() {
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
		k, ok := Parse(id)
		if !ok || k.String() != id {
			t.Errorf("Parse(%s) = %v, %v", id, k, ok)
		}
	}
	if _, ok := Parse("bogus"); ok {
		t.Error("bogus id parsed")
	}
	if None.String() != "none" {
		t.Errorf("None = %s", None.String())
	}
}

func TestCommandPayloadIsCopied(t *testing.T) {
	paths := []string{"/a", "/b"}
	c := WithPaths(Delete, paths...)
	paths[0] = "/changed"
	if c.Paths[0] != "/a" {
		t.Errorf("payload aliased caller slice: %v", c.Paths)
	}
	if !c.Destructive() || !c.Modifies() {
		t.Error("delete should be destructive and modifying")
	}
	if New(GoUp).Modifies() {
		t.Error("go up does not modify files")
	}
}

func labels(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func find(items []Item, label string) (Item, bool) {
	for _, it := range items {
		if it.Label == label {
			return it, true
		}
	}
	return Item{}, false
}

func TestMenuForMixedSelection(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	doc := filepath.Join(dir, "report.docx")
	arc := filepath.Join(dir, "bundle.zip")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{doc, arc} {
		if err := os.WriteFile(f, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	items := Menu(MenuContext{
		Selected: []string{sub, doc, arc},
		IsMarked: func(p string) bool { return p == doc },
	})

	for _, want := range []string{
		"Mark Selected (Add to Bucket)",
		"Unmark Selected (Remove from Bucket)",
		"Convert to PDF",
		"Extract Here (Smart)",
		"Cut (2 files, 1 dirs)",
		"Copy (2 files, 1 dirs)",
		"Rename",
		"Delete",
	} {
		if _, ok := find(items, want); !ok {
			t.Errorf("missing %q in %v", want, labels(items))
		}
	}
	for _, absent := range []string{"Paste", "Properties", "Add to Favorites"} {
		if _, ok := find(items, absent); ok {
			t.Errorf("unexpected %q", absent)
		}
	}

	pdf, _ := find(items, "Convert to PDF")
	if !reflect.DeepEqual(pdf.Command.Paths, []string{doc}) {
		t.Errorf("pdf payload = %v", pdf.Command.Paths)
	}
	unzip, _ := find(items, "Extract Here (Smart)")
	if unzip.Command.Kind != Unzip || !reflect.DeepEqual(unzip.Command.Paths, []string{arc}) {
		t.Errorf("unzip = %+v", unzip.Command)
	}
}

func TestMenuBatchSectionAndPaste(t *testing.T) {
	dir := t.TempDir()
	items := Menu(MenuContext{
		Selected:      []string{dir},
		Marked:        []string{"/m/a.xlsx", "/m/b.txt"},
		ClipboardFull: true,
		PasteDir:      dir,
	})
	if !items[0].Header || !strings.Contains(items[0].Label, "2 marked") {
		t.Errorf("first item = %+v", items[0])
	}
	if it, ok := find(items, "Convert 1 marked office files to PDF"); !ok || it.Command.Paths[0] != "/m/a.xlsx" {
		t.Errorf("batch pdf = %+v, %v", it, ok)
	}
	paste, ok := find(items, "Paste")
	if !ok || paste.Command.Paths[0] != dir {
		t.Errorf("paste = %+v", paste)
	}
	if _, ok := find(items, "Add to Favorites"); !ok {
		t.Error("folder selection should offer favorites")
	}
	if _, ok := find(items, "Properties"); !ok {
		t.Error("single selection should offer properties")
	}
}

func TestMenuEmptySelection(t *testing.T) {
	items := Menu(MenuContext{})
	if got := labels(items); !reflect.DeepEqual(got, []string{"New Folder"}) {
		t.Errorf("labels = %v", got)
	}
}
