package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wilbur182/flowfiler/internal/styles"
)

// SaveTo writes the config as indented JSON to path.
func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SaveTheme updates only the theme name in the config at path and saves.
func SaveTheme(path, themeName string) error {
	if !styles.IsValidTheme(themeName) {
		return fmt.Errorf("unknown theme %q", themeName)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return err
	}
	cfg.UI.Theme.Name = themeName
	cfg.UI.Theme.Overrides = make(map[string]string)
	return SaveTo(path, cfg)
}
