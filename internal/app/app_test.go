package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flowfiler/internal/command"
	"github.com/wilbur182/flowfiler/internal/config"
	"github.com/wilbur182/flowfiler/internal/drives"
	"github.com/wilbur182/flowfiler/internal/flow"
	"github.com/wilbur182/flowfiler/internal/input"
	"github.com/wilbur182/flowfiler/internal/mouse"
	"github.com/wilbur182/flowfiler/internal/shell"
	"github.com/wilbur182/flowfiler/internal/workspace"
)

type fixture struct {
	m      Model
	root   string
	cfg    *config.Config
	opened []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"alpha/inner", "beta"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "note.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := t.TempDir()
	cfg := config.Default()
	cfg.Session.Path = filepath.Join(state, "session.json")
	cfg.Favorites.Path = filepath.Join(state, "favorites.json")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	f := &fixture{root: root, cfg: cfg}
	f.m = f.model(false)
	return f
}

func (f *fixture) model(restore bool) Model {
	sh := shell.NewWith("linux", func(name string, args ...string) error {
		f.opened = append(f.opened, strings.Join(append([]string{name}, args...), " "))
		return nil
	}, func(string) error { return nil }, nil)
	m := New(Options{
		Config:   f.cfg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Shell:    sh,
		StartDir: f.root,
		Restore:  restore,
		Drives:   func(*slog.Logger) ([]drives.Drive, error) { return nil, nil },
	})
	if m.width == 0 {
		m.width, m.height = 120, 40
	}
	return m
}

func (f *fixture) path(rel string) string { return filepath.Join(f.root, rel) }

func (f *fixture) pane() (*flow.Pane, *flow.SubView) {
	p := f.m.ws.Hovered()
	return p, p.Focused()
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestIdleSchedulerFlushesOnce(t *testing.T) {
	s := &idleScheduler{}
	if s.cmd() != nil {
		t.Fatal("cmd armed with empty queue")
	}
	n := 0
	s.Defer(func() {
		n++
		s.Defer(func() { n += 10 })
	})
	c := s.cmd()
	if c == nil {
		t.Fatal("cmd not armed")
	}
	if s.cmd() != nil {
		t.Fatal("cmd armed twice")
	}
	if _, ok := c().(idleMsg); !ok {
		t.Fatal("cmd did not return idleMsg")
	}
	s.flush()
	if n != 1 {
		t.Fatalf("n = %d after first flush, want 1", n)
	}
	if s.Pending() != 1 || s.cmd() == nil {
		t.Fatal("work queued during flush should wait for the next tick")
	}
	s.flush()
	if n != 11 {
		t.Fatalf("n = %d, want 11", n)
	}
}

func TestSelectionFlowsDownstreamOnIdle(t *testing.T) {
	f := newFixture(t)
	p, v := f.pane()
	p.SetSelection(v, f.path("alpha"))

	if got := len(p.Lane().Panes()); got != 1 {
		t.Fatalf("panes before idle = %d, want 1", got)
	}
	if f.m.sched.Pending() == 0 {
		t.Fatal("no propagation scheduled")
	}
	f.m = update(t, f.m, idleMsg{})

	panes := p.Lane().Panes()
	if len(panes) != 2 {
		t.Fatalf("panes after idle = %d, want 2", len(panes))
	}
	if got := panes[1].Paths(); len(got) != 1 || got[0] != f.path("alpha") {
		t.Fatalf("downstream paths = %v", got)
	}
	if got := f.m.addressInput.Value(); got != f.path("alpha") {
		t.Fatalf("address = %q, want %q", got, f.path("alpha"))
	}
}

func TestCursorKeysSelect(t *testing.T) {
	f := newFixture(t)
	_, v := f.pane()

	f.m = update(t, f.m, tea.KeyMsg{Type: tea.KeyDown})
	if v.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", v.Cursor())
	}
	if !v.IsSelected(f.path("beta")) {
		t.Fatalf("selection = %v, want beta", v.Selection())
	}
}

func TestCopyPaste(t *testing.T) {
	f := newFixture(t)
	p, v := f.pane()
	p.SetSelection(v, f.path("note.txt"))

	f.m.execute(command.New(command.Copy))
	clip := f.m.ws.Clipboard()
	if clip.Mode != workspace.ClipCopy || len(clip.Paths) != 1 || clip.Paths[0] != f.path("note.txt") {
		t.Fatalf("clipboard = %+v", clip)
	}

	if err := p.NavigateTo(v, f.path("beta")); err != nil {
		t.Fatal(err)
	}
	cmd := f.m.execute(command.New(command.Paste))
	if cmd == nil {
		t.Fatal("paste returned no command")
	}
	msg, ok := cmd().(opDoneMsg)
	if !ok {
		t.Fatal("paste did not report opDoneMsg")
	}
	f.m = update(t, f.m, msg)

	if _, err := os.Stat(f.path("beta/note.txt")); err != nil {
		t.Fatalf("pasted file missing: %v", err)
	}
	if f.m.ws.Clipboard().Empty() {
		t.Fatal("copy clipboard should survive a paste")
	}
	if f.m.statusIsError {
		t.Fatalf("unexpected error toast %q", f.m.statusMsg)
	}
}

func TestCutPasteClearsClipboard(t *testing.T) {
	f := newFixture(t)
	p, v := f.pane()
	p.SetSelection(v, f.path("note.txt"))
	f.m.execute(command.New(command.Cut))

	cmd := f.m.execute(command.WithPaths(command.Paste, f.path("alpha")))
	f.m = update(t, f.m, cmd())

	if _, err := os.Stat(f.path("alpha/note.txt")); err != nil {
		t.Fatalf("moved file missing: %v", err)
	}
	if _, err := os.Stat(f.path("note.txt")); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
	if !f.m.ws.Clipboard().Empty() {
		t.Fatal("clipboard should be cleared after a cut is pasted")
	}
}

func TestFileOpsRunOneAtATime(t *testing.T) {
	f := newFixture(t)
	p, v := f.pane()
	p.SetSelection(v, f.path("note.txt"))
	f.m.execute(command.New(command.Cut))

	first := f.m.execute(command.WithPaths(command.Paste, f.path("alpha")))
	if first == nil {
		t.Fatal("first paste returned no command")
	}
	if cmd := f.m.execute(command.WithPaths(command.Paste, f.path("beta"))); cmd != nil {
		t.Fatal("second paste started while the first was running")
	}
	if !f.m.statusIsError || !strings.Contains(f.m.statusMsg, "paste still running") {
		t.Fatalf("status = %q, want a still-running notice", f.m.statusMsg)
	}
	if cmd := f.m.perform(command.WithPaths(command.Delete, f.path("note.txt"))); cmd != nil {
		t.Fatal("delete started while a paste was running")
	}

	f.m = update(t, f.m, first())
	if _, err := os.Stat(f.path("alpha/note.txt")); err != nil {
		t.Fatalf("moved file missing: %v", err)
	}
	if _, err := os.Stat(f.path("beta/note.txt")); !os.IsNotExist(err) {
		t.Fatalf("refused paste still wrote: %v", err)
	}
	if f.m.busy != "" {
		t.Fatalf("busy = %q after the paste finished", f.m.busy)
	}
	if cmd := f.m.perform(command.WithPaths(command.Delete, f.path("alpha/note.txt"))); cmd == nil {
		t.Fatal("delete refused after the paste finished")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	p, v := f.pane()
	p.SetSelection(v, f.path("note.txt"))

	f.m.execute(command.New(command.Delete))
	if f.m.confirm == nil {
		t.Fatal("delete did not ask for confirmation")
	}
	if _, err := os.Stat(f.path("note.txt")); err != nil {
		t.Fatal("file deleted before confirmation")
	}

	cmd := f.m.handleConfirmKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	f.m = update(t, f.m, cmd())
	if _, err := os.Stat(f.path("note.txt")); !os.IsNotExist(err) {
		t.Fatalf("file not deleted: %v", err)
	}
}

func TestInvalidAddressSuggests(t *testing.T) {
	f := newFixture(t)
	f.m.focusAddress()
	f.m.navigateAddress(f.path("alpah"))

	if f.m.addressErr == "" {
		t.Fatal("expected an address error")
	}
	if f.m.suggestion != f.path("alpha") {
		t.Fatalf("suggestion = %q, want %q", f.m.suggestion, f.path("alpha"))
	}
	if f.m.focus != focusAddress {
		t.Fatal("address bar should keep focus on error")
	}

	f.m.handleAddressKey(tea.KeyMsg{Type: tea.KeyTab})
	f.m.navigateAddress(f.m.addressInput.Value())
	if f.m.addressErr != "" {
		t.Fatalf("addressErr = %q after accepting suggestion", f.m.addressErr)
	}
	p, _ := f.pane()
	if got := p.Paths(); len(got) != 1 || got[0] != f.path("alpha") {
		t.Fatalf("flow root = %v", got)
	}
}

func TestContextMenuPick(t *testing.T) {
	f := newFixture(t)
	p, v := f.pane()
	p.SetSelection(v, f.path("note.txt"))

	f.m.openMenu(p)
	if !f.m.menuOpen {
		t.Fatal("menu not open")
	}
	if f.m.menuItems[f.m.menuCursor].Header {
		t.Fatal("menu cursor on a header")
	}
	pick := -1
	for i, it := range f.m.menuItems {
		if it.Command.Kind == command.Copy {
			pick = i
		}
	}
	if pick < 0 {
		t.Fatal("no Copy item in menu")
	}
	f.m.applyIntent(input.Intent{Kind: input.IntentMenuPick, Index: pick})

	if f.m.menuOpen {
		t.Fatal("menu still open after pick")
	}
	if clip := f.m.ws.Clipboard(); len(clip.Paths) != 1 || clip.Paths[0] != f.path("note.txt") {
		t.Fatalf("clipboard = %+v", clip)
	}
}

func TestResizeIntents(t *testing.T) {
	f := newFixture(t)
	p, _ := f.pane()
	second := p.Lane().AddPane()

	f.m.applyIntent(input.Intent{Kind: input.IntentResizeAdjacent, Axis: input.Horizontal, PaneID: p.ID(), Amount: 10})
	if p.Weight() != 110 || second.Weight() != 90 {
		t.Fatalf("weights = %d/%d, want 110/90", p.Weight(), second.Weight())
	}

	area := f.m.ws.ActiveArea()
	lower := area.AddLane()
	upper := p.Lane()
	f.m.applyIntent(input.Intent{Kind: input.IntentResizeAdjacent, Axis: input.Vertical, PaneID: p.ID(), Amount: -20})
	if upper.Weight() != 80 || lower.Weight() != 120 {
		t.Fatalf("lane weights = %d/%d, want 80/120", upper.Weight(), lower.Weight())
	}

	f.m.applyIntent(input.Intent{Kind: input.IntentResizeAdjacent, Axis: input.Horizontal, PaneID: p.ID(), Amount: 1000})
	if p.Weight() != 110 {
		t.Fatalf("resize past the minimum applied: %d", p.Weight())
	}
}

func TestFocusHighlightsSeparator(t *testing.T) {
	f := newFixture(t)
	lane := f.m.activeLaneID()

	f.m = update(t, f.m, tea.BlurMsg{})
	if f.m.litLane != "" || f.m.termFocused {
		t.Fatalf("litLane = %q after blur", f.m.litLane)
	}
	f.m = update(t, f.m, tea.FocusMsg{})
	if f.m.litLane != lane {
		t.Fatalf("litLane = %q, want %q", f.m.litLane, lane)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	f := newFixture(t)
	p, v := f.pane()
	if err := p.NavigateTo(v, f.path("beta")); err != nil {
		t.Fatal(err)
	}
	f.m.ws.AddTab("second")
	f.m.sidebarWidth = 33
	f.m.showSidebar = false
	if err := f.m.SaveSession(); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	m := f.model(true)
	tabs := m.ws.Tabs()
	if len(tabs) != 2 || tabs[1].Title != "second" {
		t.Fatalf("tabs = %d", len(tabs))
	}
	if m.ws.ActiveIndex() != 1 {
		t.Fatalf("active tab = %d, want 1", m.ws.ActiveIndex())
	}
	first := tabs[0].Area.Lanes()[0].First()
	if got := first.Paths(); len(got) != 1 || got[0] != f.path("beta") {
		t.Fatalf("restored paths = %v", got)
	}
	if m.sidebarWidth != 33 || m.showSidebar {
		t.Fatalf("sidebar = %d/%v, want 33/false", m.sidebarWidth, m.showSidebar)
	}
	if m.width != 120 || m.height != 40 {
		t.Fatalf("geometry = %dx%d", m.width, m.height)
	}
}

func TestViewRegistersRegions(t *testing.T) {
	f := newFixture(t)
	out := f.m.View()
	if out == "" {
		t.Fatal("empty view")
	}
	if got := len(strings.Split(out, "\n")); got != f.m.height {
		t.Fatalf("view has %d lines, want %d", got, f.m.height)
	}

	var row *mouse.Region
	seen := map[string]bool{}
	for _, r := range f.m.mouse.HitMap.Regions() {
		seen[r.ID] = true
		if hit, ok := r.Data.(input.RowHit); ok && hit.Path == f.path("beta") {
			row = &r
		}
	}
	for _, id := range []string{input.RegionTab, input.RegionAddress, input.RegionPane, input.RegionSeparator, input.RegionRow} {
		if !seen[id] {
			t.Errorf("region %q not registered", id)
		}
	}
	if row == nil {
		t.Fatal("no row region for beta")
	}

	f.m = update(t, f.m, tea.MouseMsg{
		X: row.Rect.X + 1, Y: row.Rect.Y,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	})
	_, v := f.pane()
	if !v.IsSelected(f.path("beta")) {
		t.Fatalf("click did not select beta: %v", v.Selection())
	}
}

func TestViewWithOverlays(t *testing.T) {
	f := newFixture(t)
	p, _ := f.pane()
	f.m.openMenu(p)
	f.m.View()

	items := 0
	for _, r := range f.m.mouse.HitMap.Regions() {
		if r.ID == input.RegionMenuItem {
			items++
		}
	}
	if items == 0 {
		t.Fatal("menu items not registered")
	}

	f.m.closeMenu()
	f.m.showHelp = true
	if !strings.Contains(f.m.View(), "Keys") {
		t.Fatal("help overlay missing")
	}
}

func TestQuitSavesSession(t *testing.T) {
	f := newFixture(t)
	f.m.execute(command.New(command.Quit))
	if !f.m.quitting {
		t.Fatal("not quitting")
	}
	if _, err := os.Stat(f.cfg.Session.Path); err != nil {
		t.Fatalf("session not saved: %v", err)
	}
}
