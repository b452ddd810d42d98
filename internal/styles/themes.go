package styles

import (
	"maps"
	"regexp"
	"slices"
	"sync"
)

var (
	themeMu      sync.RWMutex
	currentTheme = "default"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// ColorPalette assigns a color to each role in the file manager. Keys in
// the config's ui.theme.overrides map use the JSON names.
type ColorPalette struct {
	Accent      string `json:"accent"`      // cursor row, active tab, titles
	Folder      string `json:"folder"`      // directory rows
	File        string `json:"file"`        // regular file rows
	Hidden      string `json:"hidden"`      // dot entries
	Marked      string `json:"marked"`      // rows in the mark bucket
	Label       string `json:"label"`       // sub-view labels inside a pane
	Text        string `json:"text"`        // body text
	Dim         string `json:"dim"`         // pane headers
	Muted       string `json:"muted"`       // hints, metadata columns
	Selection   string `json:"selection"`   // selected rows, inactive tabs
	Surface     string `json:"surface"`     // address bar, footer, modals
	Border      string `json:"border"`      // inactive panes, separators
	BorderFocus string `json:"borderFocus"` // hovered pane, lit separator
	Ok          string `json:"ok"`
	Warn        string `json:"warn"`
	Fail        string `json:"fail"`

	SyntaxTheme   string `json:"syntaxTheme"`   // chroma style
	MarkdownTheme string `json:"markdownTheme"` // glamour style
}

// colorSlots maps override keys to palette fields. The two style names are
// not colors and are handled separately.
func (p *ColorPalette) colorSlots() map[string]*string {
	return map[string]*string{
		"accent":      &p.Accent,
		"folder":      &p.Folder,
		"file":        &p.File,
		"hidden":      &p.Hidden,
		"marked":      &p.Marked,
		"label":       &p.Label,
		"text":        &p.Text,
		"dim":         &p.Dim,
		"muted":       &p.Muted,
		"selection":   &p.Selection,
		"surface":     &p.Surface,
		"border":      &p.Border,
		"borderFocus": &p.BorderFocus,
		"ok":          &p.Ok,
		"warn":        &p.Warn,
		"fail":        &p.Fail,
	}
}

// Theme is a named palette.
type Theme struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Colors      ColorPalette `json:"colors"`
}

var themes = map[string]Theme{
	"default": {
		Name:        "default",
		DisplayName: "Default Dark",
		Colors: ColorPalette{
			Accent: "#7C3AED", Folder: "#3B82F6", File: "#F9FAFB", Hidden: "#4B5563",
			Marked: "#FBBF24", Label: "#F59E0B", Text: "#F9FAFB", Dim: "#9CA3AF",
			Muted: "#6B7280", Selection: "#374151", Surface: "#1F2937",
			Border: "#374151", BorderFocus: "#7C3AED",
			Ok: "#10B981", Warn: "#F59E0B", Fail: "#EF4444",
			SyntaxTheme: "monokai", MarkdownTheme: "dark",
		},
	},
	"dracula": {
		Name:        "dracula",
		DisplayName: "Dracula",
		Colors: ColorPalette{
			Accent: "#BD93F9", Folder: "#8BE9FD", File: "#F8F8F2", Hidden: "#6272A4",
			Marked: "#F1FA8C", Label: "#FFB86C", Text: "#F8F8F2", Dim: "#BFBFBF",
			Muted: "#6272A4", Selection: "#44475A", Surface: "#343746",
			Border: "#44475A", BorderFocus: "#BD93F9",
			Ok: "#50FA7B", Warn: "#FFB86C", Fail: "#FF5555",
			SyntaxTheme: "dracula", MarkdownTheme: "dark",
		},
	},
	"nord": {
		Name:        "nord",
		DisplayName: "Nord",
		Colors: ColorPalette{
			Accent: "#88C0D0", Folder: "#81A1C1", File: "#D8DEE9", Hidden: "#4C566A",
			Marked: "#EBCB8B", Label: "#EBCB8B", Text: "#D8DEE9", Dim: "#E5E9F0",
			Muted: "#4C566A", Selection: "#434C5E", Surface: "#3B4252",
			Border: "#4C566A", BorderFocus: "#88C0D0",
			Ok: "#A3BE8C", Warn: "#EBCB8B", Fail: "#BF616A",
			SyntaxTheme: "nord", MarkdownTheme: "dark",
		},
	},
	"tokyo-night": {
		Name:        "tokyo-night",
		DisplayName: "Tokyo Night",
		Colors: ColorPalette{
			Accent: "#7AA2F7", Folder: "#BB9AF7", File: "#C0CAF5", Hidden: "#414868",
			Marked: "#E0AF68", Label: "#FF9E64", Text: "#C0CAF5", Dim: "#A9B1D6",
			Muted: "#565F89", Selection: "#414868", Surface: "#24283B",
			Border: "#565F89", BorderFocus: "#7AA2F7",
			Ok: "#9ECE6A", Warn: "#E0AF68", Fail: "#F7768E",
			SyntaxTheme: "tokyo-night", MarkdownTheme: "dark",
		},
	},
}

// IsValidHexColor reports whether s is #RRGGBB or #RRGGBBAA.
func IsValidHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// IsValidTheme reports whether name is a built-in theme.
func IsValidTheme(name string) bool {
	_, ok := themes[name]
	return ok
}

// GetTheme returns the named theme, or the default one.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["default"]
}

// GetCurrentThemeName returns the name of the applied theme.
func GetCurrentThemeName() string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// ListThemes returns the theme names, sorted.
func ListThemes() []string {
	return slices.Sorted(maps.Keys(themes))
}

// ApplyTheme applies the named theme with per-role overrides from the
// config. Unknown keys and malformed colors are ignored.
func ApplyTheme(name string, overrides map[string]string) {
	theme := GetTheme(name)
	slots := theme.Colors.colorSlots()
	for key, value := range overrides {
		switch key {
		case "syntaxTheme":
			theme.Colors.SyntaxTheme = value
		case "markdownTheme":
			theme.Colors.MarkdownTheme = value
		default:
			if slot, ok := slots[key]; ok && IsValidHexColor(value) {
				*slot = value
			}
		}
	}
	ApplyThemeColors(theme)

	themeMu.Lock()
	currentTheme = theme.Name
	themeMu.Unlock()
}

// GetSyntaxTheme returns the chroma style of the applied theme.
func GetSyntaxTheme() string {
	return Palette.SyntaxTheme
}

// GetMarkdownTheme returns the glamour style of the applied theme.
func GetMarkdownTheme() string {
	return Palette.MarkdownTheme
}
