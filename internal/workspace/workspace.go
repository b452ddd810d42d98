// Package workspace holds the tabs of flow areas, the window chrome state
// and the internal clipboard, and persists them as a session record.
package workspace

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/wilbur182/flowfiler/internal/flow"
)

// Tab is one titled flow area.
type Tab struct {
	ID    string
	Title string
	Area  *flow.Area
}

// ClipMode says what a paste does with the clipboard paths.
type ClipMode int

const (
	ClipCopy ClipMode = iota
	ClipCut
)

func (m ClipMode) String() string {
	if m == ClipCut {
		return "cut"
	}
	return "copy"
}

// Clipboard is the internal file clipboard shared by every tab.
type Clipboard struct {
	Paths []string
	Mode  ClipMode
}

// Empty reports whether there is nothing to paste.
func (c Clipboard) Empty() bool { return len(c.Paths) == 0 }

// Workspace is the whole window: tabs, active tab, chrome blobs,
// clipboard and the pane under the pointer.
type Workspace struct {
	env       *flow.Env
	tabs      []*Tab
	active    int
	hovered   *flow.Pane
	clipboard Clipboard

	Geometry      []byte
	SplitterState []byte
}

// New returns a workspace with one default tab at the working directory.
func New(env *flow.Env) *Workspace {
	w := &Workspace{env: env}
	w.AddTab("")
	return w
}

// Env returns the shared collaborators.
func (w *Workspace) Env() *flow.Env { return w.env }

// Tabs returns the tabs in order.
func (w *Workspace) Tabs() []*Tab { return w.tabs }

// ActiveIndex returns the active tab index.
func (w *Workspace) ActiveIndex() int { return w.active }

// ActiveTab returns the active tab.
func (w *Workspace) ActiveTab() *Tab {
	if len(w.tabs) == 0 {
		return nil
	}
	return w.tabs[clampIndex(w.active, len(w.tabs))]
}

// ActiveArea returns the active tab's area.
func (w *Workspace) ActiveArea() *flow.Area {
	if t := w.ActiveTab(); t != nil {
		return t.Area
	}
	return nil
}

// SetActive switches tabs and reports the first folder of the new tab's
// active lane to the observer.
func (w *Workspace) SetActive(i int) {
	if i < 0 || i >= len(w.tabs) {
		return
	}
	w.active = i
	w.hovered = nil
	if l := w.tabs[i].Area.ActiveLane(); l != nil && l.First() != nil {
		if paths := l.First().Paths(); len(paths) > 0 && w.env.Observer != nil {
			w.env.Observer.AddressChanged(paths[0])
		}
	}
}

// AddTab appends a tab at the working directory and activates it. An
// empty title becomes "Workspace N".
func (w *Workspace) AddTab(title string) *Tab {
	return w.appendTab(title, flow.NewArea(w.env))
}

func (w *Workspace) appendTab(title string, area *flow.Area) *Tab {
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Workspace %d", len(w.tabs)+1)
	}
	t := &Tab{ID: uuid.NewString(), Title: title, Area: area}
	w.tabs = append(w.tabs, t)
	w.SetActive(len(w.tabs) - 1)
	return t
}

// CloseTab removes tab i unless it is the last one.
func (w *Workspace) CloseTab(i int) bool {
	if i < 0 || i >= len(w.tabs) || len(w.tabs) <= 1 {
		return false
	}
	w.tabs[i].Area.Close()
	w.tabs = slices.Delete(w.tabs, i, i+1)
	if w.active >= len(w.tabs) || w.active > i {
		w.active = max(0, w.active-1)
	}
	w.SetActive(w.active)
	return true
}

// DuplicateTab appends an independent copy of tab i titled "<title> (Copy)"
// and activates it.
func (w *Workspace) DuplicateTab(i int) *Tab {
	if i < 0 || i >= len(w.tabs) {
		return nil
	}
	src := w.tabs[i]
	return w.appendTab(src.Title+" (Copy)", src.Area.Duplicate())
}

// RenameTab retitles tab i; blank titles are ignored.
func (w *Workspace) RenameTab(i int, title string) bool {
	title = strings.TrimSpace(title)
	if i < 0 || i >= len(w.tabs) || title == "" {
		return false
	}
	w.tabs[i].Title = title
	return true
}

// SetHovered records the pane under the pointer and activates it in its
// area.
func (w *Workspace) SetHovered(p *flow.Pane) {
	w.hovered = p
	if a := w.ActiveArea(); a != nil && a.Owns(p) {
		a.Activate(p)
	}
}

// Hovered returns the pane under the pointer if it still belongs to the
// active tab, else the active tab's active pane.
func (w *Workspace) Hovered() *flow.Pane {
	a := w.ActiveArea()
	if a == nil {
		return nil
	}
	if w.hovered != nil && a.Owns(w.hovered) {
		return w.hovered
	}
	return a.ActivePane()
}

// SplitActiveLane splits the active area seeded from the hovered pane.
func (w *Workspace) SplitActiveLane() *flow.Lane {
	a := w.ActiveArea()
	if a == nil {
		return nil
	}
	return a.SplitLaneVertically(w.hovered)
}

// ResetFlowFrom re-seeds the active area at path.
func (w *Workspace) ResetFlowFrom(path string) error {
	a := w.ActiveArea()
	if a == nil {
		a = w.AddTab("").Area
	}
	return a.ResetFlowFrom(path)
}

// Clipboard returns the internal clipboard.
func (w *Workspace) Clipboard() Clipboard { return w.clipboard }

// SetClipboard replaces the clipboard contents.
func (w *Workspace) SetClipboard(paths []string, mode ClipMode) {
	w.clipboard = Clipboard{Paths: append([]string(nil), paths...), Mode: mode}
}

// ClearClipboard empties the clipboard.
func (w *Workspace) ClearClipboard() {
	w.clipboard = Clipboard{}
}

// Folders returns every folder shown in every tab.
func (w *Workspace) Folders() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range w.tabs {
		for _, f := range t.Area.Folders() {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// Refresh re-lists views bound to dirs in every tab.
func (w *Workspace) Refresh(dirs ...string) {
	for _, t := range w.tabs {
		t.Area.Refresh(dirs...)
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
