// Package favorites stores bookmarked paths as a flat JSON array.
package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/sahilm/fuzzy"
	"github.com/wilbur182/flowfiler/internal/flow"
)

// Hotkeys label the first favorites; pressing one while the sidebar has
// focus jumps to that favorite.
var Hotkeys = []string{"q", "a", "z", "w", "s", "x", "e", "d", "c"}

// Store is an ordered, duplicate-free list of paths backed by a file.
type Store struct {
	path   string
	items  []string
	logger *slog.Logger
}

// Open loads the store at path. A missing file yields an empty store; a
// corrupt one is logged and treated as empty.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}
	items, err := Load(path)
	switch {
	case err == nil:
		s.items = items
	case errors.Is(err, fs.ErrNotExist):
	default:
		logger.Warn("favorites load failed", "path", path, "error", err)
	}
	return s
}

// Load reads a favorites file.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("read favorites: %w: %w", flow.ErrPersistenceCorruption, err)
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse favorites: %w: %w", flow.ErrPersistenceCorruption, err)
	}
	return dedupe(items), nil
}

// Items returns the favorites in order.
func (s *Store) Items() []string {
	return append([]string(nil), s.items...)
}

// Len returns the number of favorites.
func (s *Store) Len() int { return len(s.items) }

// At returns favorite i.
func (s *Store) At(i int) (string, bool) {
	if i < 0 || i >= len(s.items) {
		return "", false
	}
	return s.items[i], true
}

// Add appends path unless it is already present, then saves.
func (s *Store) Add(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if slices.Contains(s.items, path) {
		return nil
	}
	s.items = append(s.items, path)
	return s.Save()
}

// Remove deletes favorite i and saves.
func (s *Store) Remove(i int) error {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	s.items = slices.Delete(s.items, i, i+1)
	return s.Save()
}

// Move shifts favorite i by delta positions and saves. It returns the new
// index.
func (s *Store) Move(i, delta int) (int, error) {
	if i < 0 || i >= len(s.items) {
		return i, nil
	}
	j := max(0, min(len(s.items)-1, i+delta))
	if j == i {
		return i, nil
	}
	item := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	s.items = slices.Insert(s.items, j, item)
	return j, s.Save()
}

// Save writes the list as an indented JSON array.
func (s *Store) Save() error {
	items := s.items
	if items == nil {
		items = []string{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create favorites dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	return nil
}

// Match is a filtered favorite.
type Match struct {
	Index int
	Path  string
}

// Filter returns favorites matching query by fuzzy match, best first. An
// empty query returns every favorite in order.
func (s *Store) Filter(query string) []Match {
	if query == "" {
		out := make([]Match, len(s.items))
		for i, p := range s.items {
			out[i] = Match{Index: i, Path: p}
		}
		return out
	}
	found := fuzzy.Find(query, s.items)
	out := make([]Match, 0, len(found))
	for _, m := range found {
		out = append(out, Match{Index: m.Index, Path: m.Str})
	}
	return out
}

// Label renders a favorite with its hotkey prefix, e.g. "[q] src".
func Label(i int, path string) string {
	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = path
	}
	if i >= 0 && i < len(Hotkeys) {
		return "[" + Hotkeys[i] + "] " + name
	}
	return "    " + name
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != "" && !slices.Contains(out, it) {
			out = append(out, it)
		}
	}
	return out
}
