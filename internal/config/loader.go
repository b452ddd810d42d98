package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix prefixes environment overrides: FLOWFILER_FLOW_SEARCHDEPTH
// sets flow.searchDepth.
const envPrefix = "FLOWFILER"

// ConfigPath returns the config file location. FLOWFILER_CONFIG overrides
// the default ~/.config/flowfiler/config.json.
func ConfigPath() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return ExpandPath(p)
	}
	return filepath.Join(Dir(), "config.json")
}

// Load reads the config from ConfigPath.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads configuration from path and the environment on top of
// the defaults. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		raw = nil
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// viper lowercases map keys; key bindings and color names are case
	// sensitive, so those maps come straight from the file.
	if err := readCaseSensitive(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("session.path", d.Session.Path)
	v.SetDefault("favorites.path", d.Favorites.Path)
	v.SetDefault("ui.theme.name", d.UI.Theme.Name)
	v.SetDefault("ui.showSidebar", d.UI.ShowSidebar)
	v.SetDefault("ui.sidebarWidth", d.UI.SidebarWidth)
	v.SetDefault("flow.defaultDisplayMode", d.Flow.DefaultDisplayMode)
	v.SetDefault("flow.defaultShowHidden", d.Flow.DefaultShowHidden)
	v.SetDefault("flow.searchDepth", d.Flow.SearchDepth)
	v.SetDefault("flow.resizeStep", d.Flow.ResizeStep)
	v.SetDefault("flow.minPaneWidth", d.Flow.MinPaneWidth)
	v.SetDefault("preview.maxBytes", d.Preview.MaxBytes)
	v.SetDefault("cache.entries", d.Cache.Entries)
}

func readCaseSensitive(raw []byte, cfg *Config) error {
	cfg.Keymap.Overrides = make(map[string]string)
	cfg.UI.Theme.Overrides = make(map[string]string)
	if len(raw) == 0 {
		return nil
	}
	var maps struct {
		UI struct {
			Theme struct {
				Overrides map[string]string `json:"overrides"`
			} `json:"theme"`
		} `json:"ui"`
		Keymap struct {
			Overrides map[string]string `json:"overrides"`
		} `json:"keymap"`
	}
	if err := json.Unmarshal(raw, &maps); err != nil {
		return err
	}
	for k, v := range maps.Keymap.Overrides {
		cfg.Keymap.Overrides[k] = v
	}
	for k, v := range maps.UI.Theme.Overrides {
		cfg.UI.Theme.Overrides[k] = v
	}
	return nil
}
