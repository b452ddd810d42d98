package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wilbur182/flowfiler/internal/projection"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	d := Default()
	if cfg.Flow.SearchDepth != d.Flow.SearchDepth || cfg.Cache.Entries != d.Cache.Entries {
		t.Errorf("got %+v, want defaults", cfg.Flow)
	}
	if !cfg.UI.ShowSidebar || cfg.UI.Theme.Name != "default" {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.DisplayMode() != projection.ModeAll {
		t.Errorf("DisplayMode = %v, want All", cfg.DisplayMode())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "flow": {"defaultDisplayMode": "dirs", "searchDepth": 3, "defaultShowHidden": true},
  "ui": {"sidebarWidth": 40, "theme": {"name": "nord", "overrides": {"Primary": "#123456"}}},
  "keymap": {"overrides": {"G": "cursor.bottom", "ctrl+y": "file.copy"}}
}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLOWFILER_FLOW_RESIZESTEP", "4")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DisplayMode() != projection.ModeDirsOnly || !cfg.Flow.DefaultShowHidden {
		t.Errorf("flow = %+v", cfg.Flow)
	}
	if cfg.Flow.SearchDepth != 3 {
		t.Errorf("SearchDepth = %d, want 3", cfg.Flow.SearchDepth)
	}
	if cfg.Flow.ResizeStep != 4 {
		t.Errorf("ResizeStep = %d, want 4 from env", cfg.Flow.ResizeStep)
	}
	if cfg.UI.SidebarWidth != 40 || cfg.UI.Theme.Name != "nord" {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.Keymap.Overrides["G"] != "cursor.bottom" {
		t.Errorf("keymap overrides = %v, want case preserved", cfg.Keymap.Overrides)
	}
	if cfg.UI.Theme.Overrides["Primary"] != "#123456" {
		t.Errorf("theme overrides = %v", cfg.UI.Theme.Overrides)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{"flow": `},
		{"bad theme", `{"ui": {"theme": {"name": "neon"}}}`},
		{"bad mode", `{"flow": {"defaultDisplayMode": "pictures"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidateRepairs(t *testing.T) {
	cfg := Default()
	cfg.Flow.SearchDepth = -1
	cfg.UI.SidebarWidth = 2
	cfg.Preview.MaxBytes = 0
	cfg.Keymap.Overrides = nil
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Flow.SearchDepth != defaultSearchDepth || cfg.UI.SidebarWidth != defaultSidebarWidth {
		t.Errorf("not repaired: %+v %+v", cfg.Flow, cfg.UI)
	}
	if cfg.Preview.MaxBytes != defaultMaxBytes || cfg.Keymap.Overrides == nil {
		t.Errorf("not repaired: %+v %+v", cfg.Preview, cfg.Keymap)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := Default()
	cfg.Flow.MinPaneWidth = 20
	cfg.Keymap.Overrides["Q"] = "quit"
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if err := SaveTheme(path, "dracula"); err != nil {
		t.Fatalf("SaveTheme: %v", err)
	}
	if err := SaveTheme(path, "neon"); err == nil {
		t.Error("SaveTheme accepted unknown theme")
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Flow.MinPaneWidth != 20 || got.UI.Theme.Name != "dracula" {
		t.Errorf("got %+v %+v", got.Flow, got.UI.Theme)
	}
	if got.Keymap.Overrides["Q"] != "quit" {
		t.Errorf("overrides = %v", got.Keymap.Overrides)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath = %q", got)
	}
	if got := ExpandPath("/abs"); got != "/abs" {
		t.Errorf("ExpandPath(/abs) = %q", got)
	}
}
