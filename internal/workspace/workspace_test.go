package workspace

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wilbur182/flowfiler/internal/dirmodel"
	"github.com/wilbur182/flowfiler/internal/flow"
	"github.com/wilbur182/flowfiler/internal/projection"
)

func newTestWorkspace(t *testing.T, dirs ...string) (*Workspace, *flow.QueueScheduler, string) {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	sched := &flow.QueueScheduler{}
	env := flow.NewEnv(dirmodel.NewFS(64, nil), sched, slog.New(slog.NewTextHandler(io.Discard, nil)))
	env.WorkDir = root
	return New(env), sched, root
}

// shape reduces a workspace to what a restore must reproduce.
func shape(w *Workspace) []TabRecord {
	return w.Snapshot().Tabs
}

func TestTabs(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	if len(w.Tabs()) != 1 || w.Tabs()[0].Title != "Workspace 1" {
		t.Fatalf("default tabs = %+v", w.Tabs())
	}

	w.AddTab("")
	if w.ActiveIndex() != 1 || w.ActiveTab().Title != "Workspace 2" {
		t.Fatalf("AddTab: active=%d title=%q", w.ActiveIndex(), w.ActiveTab().Title)
	}

	dup := w.DuplicateTab(0)
	if dup.Title != "Workspace 1 (Copy)" || w.ActiveTab() != dup {
		t.Fatalf("DuplicateTab = %q", dup.Title)
	}
	if dup.Area == w.Tabs()[0].Area {
		t.Fatal("duplicate shares the area")
	}

	if !w.RenameTab(2, "  Photos ") || w.Tabs()[2].Title != "Photos" {
		t.Errorf("RenameTab: %q", w.Tabs()[2].Title)
	}
	if w.RenameTab(2, " ") {
		t.Error("blank rename accepted")
	}

	if !w.CloseTab(2) || w.ActiveIndex() != 1 {
		t.Fatalf("CloseTab: active=%d", w.ActiveIndex())
	}
	w.CloseTab(0)
	if w.CloseTab(0) {
		t.Fatal("closed the last tab")
	}
	if len(w.Tabs()) != 1 {
		t.Errorf("tabs = %d", len(w.Tabs()))
	}
}

func TestClipboardAndHover(t *testing.T) {
	w, _, root := newTestWorkspace(t, "a")
	w.SetClipboard([]string{"/x"}, ClipCut)
	if c := w.Clipboard(); c.Mode != ClipCut || c.Empty() {
		t.Fatalf("clipboard = %+v", c)
	}
	w.ClearClipboard()
	if !w.Clipboard().Empty() {
		t.Error("clipboard not cleared")
	}

	area := w.ActiveArea()
	p := area.ActiveLane().AddPane()
	w.SetHovered(p)
	if w.Hovered() != p || area.ActivePane() != p {
		t.Fatal("hovered pane not activated")
	}

	w.AddTab("")
	if w.Hovered() == p {
		t.Error("hovered pane from another tab returned")
	}

	w.SetActive(0)
	p.DisplayFolders([]string{filepath.Join(root, "a")})
	w.SetHovered(p)
	l := w.SplitActiveLane()
	if got := l.First().Paths(); !reflect.DeepEqual(got, []string{filepath.Join(root, "a")}) {
		t.Errorf("split seed = %v", got)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	w, sched, root := newTestWorkspace(t, "a/x", "b")
	a := filepath.Join(root, "a")
	x := filepath.Join(a, "x")

	p0 := w.ActiveArea().ActiveLane().First()
	p0.DisplayFolders([]string{a, filepath.Join(root, "b")})
	p0.SetSelection(p0.Views()[0], x)
	sched.Flush()
	p0.ToggleSort(projection.SortModified)
	p0.ToggleHidden()

	w.AddTab("Second")
	w.SplitActiveLane()
	w.ActiveArea().ActiveLane().First().CycleDisplayMode()
	w.SetActive(0)
	w.Geometry = EncodeGeometry(Geometry{Width: 200, Height: 50})
	w.SplitterState = EncodeSplitter(Splitter{SidebarWidth: 30, SidebarVisible: true})
	w.ActiveArea().Marks().Mark(a)

	path := filepath.Join(root, "state", "session.json")
	if err := w.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	restored := New(w.Env())
	restored.RestoreFile(path)

	if !reflect.DeepEqual(shape(restored), shape(w)) {
		t.Fatalf("restored tabs differ:\n got %+v\nwant %+v", shape(restored), shape(w))
	}
	if restored.ActiveIndex() != 0 {
		t.Errorf("active tab = %d", restored.ActiveIndex())
	}
	g, err := DecodeGeometry(restored.Geometry)
	if err != nil || g != (Geometry{Width: 200, Height: 50}) {
		t.Errorf("geometry = %+v, %v", g, err)
	}
	s, err := DecodeSplitter(restored.SplitterState)
	if err != nil || s != (Splitter{SidebarWidth: 30, SidebarVisible: true}) {
		t.Errorf("splitter = %+v, %v", s, err)
	}
	if restored.ActiveArea().Marks().Len() != 0 {
		t.Error("marks were restored")
	}
}

func TestSessionFormat(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	w.Geometry = []byte{0x01, 0xab}
	path := filepath.Join(root, "session.json")
	if err := w.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["geometry"] != "01ab" || raw["splitter_state"] != "" {
		t.Errorf("blobs = %v / %v", raw["geometry"], raw["splitter_state"])
	}
	for _, key := range []string{"tabs", "active_tab_index"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing %s", key)
		}
	}
	for _, key := range []string{`"paths"`, `"display_mode"`, `"show_hidden"`, `"sort_col"`, `"sort_order"`, `"is_compact"`, `"lanes"`, `"panes"`, `"title"`, `"state"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("session missing %s", key)
		}
	}
}

func TestRestoreDeletedFolderFallsBackToWorkDir(t *testing.T) {
	w, _, root := newTestWorkspace(t, "one", "two")
	rec := Session{
		Tabs: []TabRecord{
			{Title: "A", State: flow.AreaState{Lanes: []flow.LaneState{{Panes: []flow.PaneState{{Paths: []string{filepath.Join(root, "one")}}}}}}},
			{Title: "B", State: flow.AreaState{Lanes: []flow.LaneState{{Panes: []flow.PaneState{{Paths: []string{filepath.Join(root, "two")}}}}}}},
			{Title: "C", State: flow.AreaState{Lanes: []flow.LaneState{{Panes: []flow.PaneState{{Paths: []string{filepath.Join(root, "deleted")}}}}}}},
		},
		ActiveTabIndex: 2,
	}
	path := filepath.Join(root, "session.json")
	if err := SaveSession(path, rec); err != nil {
		t.Fatal(err)
	}

	w.RestoreFile(path)
	if len(w.Tabs()) != 3 || w.ActiveIndex() != 2 {
		t.Fatalf("tabs = %d active = %d", len(w.Tabs()), w.ActiveIndex())
	}
	got := w.Tabs()[2].Area.ActiveLane().First().Paths()
	if !reflect.DeepEqual(got, []string{root}) {
		t.Errorf("third tab pane = %v, want [%s]", got, root)
	}
}

func TestRestoreFileFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		write   bool
	}{
		{"missing file", "", false},
		{"not json", "{tabs: nope", true},
		{"bad hex", `{"geometry":"zz","tabs":[]}`, true},
		{"wrong types", `{"tabs":"x"}`, true},
		{"no tabs", `{"tabs":[],"active_tab_index":4}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, root := newTestWorkspace(t)
			w.AddTab("extra")
			path := filepath.Join(root, "session.json")
			if tt.write {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			w.RestoreFile(path)
			if len(w.Tabs()) != 1 {
				t.Fatalf("tabs = %d, want 1", len(w.Tabs()))
			}
			if got := w.ActiveArea().ActiveLane().First().Paths(); !reflect.DeepEqual(got, []string{root}) {
				t.Errorf("default pane = %v", got)
			}
		})
	}
}

func TestLoadSessionErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadSession(filepath.Join(dir, "none.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing: %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSession(bad); !errors.Is(err, flow.ErrPersistenceCorruption) {
		t.Errorf("corrupt: %v", err)
	}
}

func TestChromeBlobs(t *testing.T) {
	if _, err := DecodeGeometry([]byte{1}); err == nil {
		t.Error("short geometry accepted")
	}
	if _, err := DecodeSplitter(nil); err == nil {
		t.Error("short splitter accepted")
	}
	g := Geometry{Width: 70000, Height: -3}
	got, _ := DecodeGeometry(EncodeGeometry(g))
	if got != (Geometry{Width: 0xFFFF, Height: 0}) {
		t.Errorf("clamped geometry = %+v", got)
	}
}
