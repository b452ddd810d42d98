package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wilbur182/flowfiler/internal/projection"
	"github.com/wilbur182/flowfiler/internal/styles"
)

// Config is the root configuration structure.
type Config struct {
	Session   SessionConfig   `json:"session" mapstructure:"session"`
	Favorites FavoritesConfig `json:"favorites" mapstructure:"favorites"`
	UI        UIConfig        `json:"ui" mapstructure:"ui"`
	Flow      FlowConfig      `json:"flow" mapstructure:"flow"`
	Preview   PreviewConfig   `json:"preview" mapstructure:"preview"`
	Cache     CacheConfig     `json:"cache" mapstructure:"cache"`
	Keymap    KeymapConfig    `json:"keymap" mapstructure:"keymap"`
}

// SessionConfig locates the saved workspace session.
type SessionConfig struct {
	Path string `json:"path" mapstructure:"path"` // supports ~ expansion
}

// FavoritesConfig locates the favorites list.
type FavoritesConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	Theme        ThemeConfig `json:"theme" mapstructure:"theme"`
	ShowSidebar  bool        `json:"showSidebar" mapstructure:"showSidebar"`
	SidebarWidth int         `json:"sidebarWidth" mapstructure:"sidebarWidth"`
}

// ThemeConfig configures the color theme.
type ThemeConfig struct {
	Name      string            `json:"name" mapstructure:"name"`
	Overrides map[string]string `json:"overrides" mapstructure:"overrides"`
}

// FlowConfig holds the defaults new panes start with and the flow limits.
type FlowConfig struct {
	// DefaultDisplayMode is one of "all", "dirs" or "files".
	DefaultDisplayMode string `json:"defaultDisplayMode" mapstructure:"defaultDisplayMode"`
	DefaultShowHidden  bool   `json:"defaultShowHidden" mapstructure:"defaultShowHidden"`
	// SearchDepth bounds the recursive name search below a pane's folder.
	SearchDepth int `json:"searchDepth" mapstructure:"searchDepth"`
	// ResizeStep is the weight moved per wheel notch when resizing.
	ResizeStep   int `json:"resizeStep" mapstructure:"resizeStep"`
	MinPaneWidth int `json:"minPaneWidth" mapstructure:"minPaneWidth"`
}

// PreviewConfig configures quick look.
type PreviewConfig struct {
	MaxBytes int64 `json:"maxBytes" mapstructure:"maxBytes"`
}

// CacheConfig sizes the directory listing cache.
type CacheConfig struct {
	Entries int `json:"entries" mapstructure:"entries"`
}

// KeymapConfig holds key binding overrides: key -> command ID.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides" mapstructure:"overrides"`
}

const (
	defaultSidebarWidth = 28
	defaultSearchDepth  = 8
	defaultResizeStep   = 10
	defaultMinPaneWidth = 12
	defaultMaxBytes     = 512 * 1024
	defaultCacheEntries = 256
	defaultTheme        = "default"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Session:   SessionConfig{Path: filepath.Join(Dir(), "session.json")},
		Favorites: FavoritesConfig{Path: filepath.Join(Dir(), "favorites.json")},
		UI: UIConfig{
			Theme: ThemeConfig{
				Name:      defaultTheme,
				Overrides: make(map[string]string),
			},
			ShowSidebar:  true,
			SidebarWidth: defaultSidebarWidth,
		},
		Flow: FlowConfig{
			DefaultDisplayMode: "all",
			SearchDepth:        defaultSearchDepth,
			ResizeStep:         defaultResizeStep,
			MinPaneWidth:       defaultMinPaneWidth,
		},
		Preview: PreviewConfig{MaxBytes: defaultMaxBytes},
		Cache:   CacheConfig{Entries: defaultCacheEntries},
		Keymap:  KeymapConfig{Overrides: make(map[string]string)},
	}
}

// Validate repairs out-of-range values and rejects unusable ones.
func (c *Config) Validate() error {
	if c.UI.SidebarWidth < 10 {
		c.UI.SidebarWidth = defaultSidebarWidth
	}
	if c.Flow.SearchDepth <= 0 {
		c.Flow.SearchDepth = defaultSearchDepth
	}
	if c.Flow.ResizeStep <= 0 {
		c.Flow.ResizeStep = defaultResizeStep
	}
	if c.Flow.MinPaneWidth <= 0 {
		c.Flow.MinPaneWidth = defaultMinPaneWidth
	}
	if c.Preview.MaxBytes <= 0 {
		c.Preview.MaxBytes = defaultMaxBytes
	}
	if c.Cache.Entries <= 0 {
		c.Cache.Entries = defaultCacheEntries
	}
	if c.UI.Theme.Name == "" {
		c.UI.Theme.Name = defaultTheme
	}
	if !styles.IsValidTheme(c.UI.Theme.Name) {
		return fmt.Errorf("unknown theme %q (available: %s)", c.UI.Theme.Name, strings.Join(styles.ListThemes(), ", "))
	}
	if _, err := ParseDisplayMode(c.Flow.DefaultDisplayMode); err != nil {
		return err
	}
	if c.Session.Path == "" {
		return fmt.Errorf("session.path is empty")
	}
	if c.Favorites.Path == "" {
		return fmt.Errorf("favorites.path is empty")
	}
	c.Session.Path = ExpandPath(c.Session.Path)
	c.Favorites.Path = ExpandPath(c.Favorites.Path)
	if c.Keymap.Overrides == nil {
		c.Keymap.Overrides = make(map[string]string)
	}
	if c.UI.Theme.Overrides == nil {
		c.UI.Theme.Overrides = make(map[string]string)
	}
	return nil
}

// DisplayMode returns the parsed default display mode.
func (c *Config) DisplayMode() projection.DisplayMode {
	m, _ := ParseDisplayMode(c.Flow.DefaultDisplayMode)
	return m
}

// ParseDisplayMode maps a config value to a display mode. Empty means all.
func ParseDisplayMode(s string) (projection.DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return projection.ModeAll, nil
	case "dirs", "folders":
		return projection.ModeDirsOnly, nil
	case "files":
		return projection.ModeFilesOnly, nil
	}
	return projection.ModeAll, fmt.Errorf("unknown display mode %q (want all, dirs or files)", s)
}

// Dir is the configuration directory, ~/.config/flowfiler.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowfiler"
	}
	return filepath.Join(home, ".config", "flowfiler")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
