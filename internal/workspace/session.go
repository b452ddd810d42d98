package workspace

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/wilbur182/flowfiler/internal/flow"
)

// HexBytes is a byte blob persisted as a hex string.
type HexBytes []byte

// MarshalJSON encodes the blob as lowercase hex.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// UnmarshalJSON decodes a hex string.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*h = b
	return nil
}

// TabRecord is one persisted tab.
type TabRecord struct {
	Title string         `json:"title"`
	State flow.AreaState `json:"state"`
}

// Session is the persisted workspace record.
type Session struct {
	Geometry       HexBytes    `json:"geometry"`
	SplitterState  HexBytes    `json:"splitter_state"`
	Tabs           []TabRecord `json:"tabs"`
	ActiveTabIndex int         `json:"active_tab_index"`
}

// Snapshot walks every tab into a session record.
func (w *Workspace) Snapshot() Session {
	s := Session{
		Geometry:       append(HexBytes(nil), w.Geometry...),
		SplitterState:  append(HexBytes(nil), w.SplitterState...),
		Tabs:           make([]TabRecord, len(w.tabs)),
		ActiveTabIndex: w.active,
	}
	for i, t := range w.tabs {
		s.Tabs[i] = TabRecord{Title: t.Title, State: t.Area.GetState()}
	}
	return s
}

// Restore rebuilds the tabs from s. A record without tabs yields one
// default tab; the mark buckets always start empty.
func (w *Workspace) Restore(s Session) {
	for _, t := range w.tabs {
		t.Area.Close()
	}
	w.tabs = nil
	w.hovered = nil
	w.clipboard = Clipboard{}
	w.Geometry = append([]byte(nil), s.Geometry...)
	w.SplitterState = append([]byte(nil), s.SplitterState...)

	for _, rec := range s.Tabs {
		area := flow.NewArea(w.env)
		area.RestoreState(rec.State)
		title := rec.Title
		if title == "" {
			title = "Workspace"
		}
		w.tabs = append(w.tabs, &Tab{ID: uuid.NewString(), Title: title, Area: area})
	}
	if len(w.tabs) == 0 {
		w.AddTab("")
		return
	}

	idx := s.ActiveTabIndex
	if idx < 0 || idx >= len(w.tabs) {
		idx = 0
	}
	w.SetActive(idx)
}

// LoadSession reads a session record. A missing file returns an error
// matching fs.ErrNotExist; an unreadable or malformed one matches
// flow.ErrPersistenceCorruption.
func LoadSession(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("read session %s: %w: %w", path, flow.ErrPersistenceCorruption, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parse session %s: %w: %w", path, flow.ErrPersistenceCorruption, err)
	}
	return s, nil
}

// SaveSession writes s to path, creating the directory if needed.
func SaveSession(path string, s Session) error {
	if s.Tabs == nil {
		s.Tabs = []TabRecord{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// RestoreFile restores the workspace from path. A missing file keeps the
// default tab; a corrupt one is logged and replaced by a default tab.
// It never fails.
func (w *Workspace) RestoreFile(path string) {
	s, err := LoadSession(path)
	switch {
	case err == nil:
		w.Restore(s)
	case errors.Is(err, fs.ErrNotExist):
		w.env.Logger.Debug("no session to restore", "path", path)
		w.Restore(Session{})
	default:
		w.env.Logger.Warn("session restore failed", "path", path, "error", err)
		w.Restore(Session{})
	}
}

// SaveFile snapshots the workspace to path.
func (w *Workspace) SaveFile(path string) error {
	return SaveSession(path, w.Snapshot())
}
