package styles

import "github.com/charmbracelet/lipgloss"

// Palette is the applied palette. Set it through ApplyTheme before the
// program starts; styles are not safe to swap under a running renderer.
var Palette ColorPalette

// Styles, rebuilt on theme change.
var (
	// Panes
	PaneActive   lipgloss.Style
	PaneInactive lipgloss.Style
	PaneTitle    lipgloss.Style
	PaneHeader   lipgloss.Style
	PaneWaiting  lipgloss.Style
	ViewLabel    lipgloss.Style

	// Rows
	RowDir      lipgloss.Style
	RowFile     lipgloss.Style
	RowHidden   lipgloss.Style
	RowSelected lipgloss.Style
	RowCursor   lipgloss.Style
	RowMarked   lipgloss.Style
	RowMeta     lipgloss.Style

	// Lane separators
	Separator       lipgloss.Style
	SeparatorActive lipgloss.Style
	ScrollTrack     lipgloss.Style
	ScrollThumb     lipgloss.Style

	// Tabs and address bar
	TabActive    lipgloss.Style
	TabInactive  lipgloss.Style
	Address      lipgloss.Style
	AddressError lipgloss.Style
	Suggestion   lipgloss.Style
	SearchPrompt lipgloss.Style

	// Sidebar
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style
	SidebarFocused  lipgloss.Style

	// Status bar and toasts
	Footer       lipgloss.Style
	KeyHint      lipgloss.Style
	Muted        lipgloss.Style
	MarkCount    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style

	// Modals
	ModalBox   lipgloss.Style
	ModalTitle lipgloss.Style
)

func init() {
	ApplyThemeColors(GetTheme("default"))
}

// ApplyThemeColors rebuilds every style from theme.
func ApplyThemeColors(theme Theme) {
	Palette = theme.Colors
	if Palette.Marked == "" {
		Palette.Marked = Palette.Accent
	}
	p := Palette
	c := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }

	PaneActive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c(p.BorderFocus))

	PaneInactive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c(p.Border))

	PaneTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(p.Accent))

	PaneHeader = lipgloss.NewStyle().
		Foreground(c(p.Dim))

	PaneWaiting = lipgloss.NewStyle().
		Foreground(c(p.Hidden)).
		Italic(true)

	ViewLabel = lipgloss.NewStyle().
		Foreground(c(p.Label)).
		Bold(true)

	RowDir = lipgloss.NewStyle().
		Foreground(c(p.Folder)).
		Bold(true)

	RowFile = lipgloss.NewStyle().
		Foreground(c(p.File))

	RowHidden = lipgloss.NewStyle().
		Foreground(c(p.Hidden))

	RowSelected = lipgloss.NewStyle().
		Foreground(c(p.Text)).
		Background(c(p.Selection))

	RowCursor = lipgloss.NewStyle().
		Foreground(c(p.Text)).
		Background(c(p.Accent))

	RowMarked = lipgloss.NewStyle().
		Foreground(c(p.Marked)).
		Bold(true)

	RowMeta = lipgloss.NewStyle().
		Foreground(c(p.Muted))

	Separator = lipgloss.NewStyle().
		Foreground(c(p.Border))

	SeparatorActive = lipgloss.NewStyle().
		Foreground(c(p.BorderFocus)).
		Bold(true)

	ScrollTrack = lipgloss.NewStyle().
		Foreground(c(p.Border))

	ScrollThumb = lipgloss.NewStyle().
		Foreground(c(p.BorderFocus))

	TabActive = lipgloss.NewStyle().
		Foreground(c(p.Text)).
		Background(c(p.Accent)).
		Padding(0, 1).
		Bold(true)

	TabInactive = lipgloss.NewStyle().
		Foreground(c(p.Muted)).
		Background(c(p.Selection)).
		Padding(0, 1)

	Address = lipgloss.NewStyle().
		Foreground(c(p.Text)).
		Background(c(p.Surface))

	AddressError = lipgloss.NewStyle().
		Foreground(c(p.Fail)).
		Background(c(p.Surface)).
		Bold(true)

	Suggestion = lipgloss.NewStyle().
		Foreground(c(p.Warn))

	SearchPrompt = lipgloss.NewStyle().
		Foreground(c(p.Muted))

	SidebarTitle = lipgloss.NewStyle().
		Foreground(c(p.Muted)).
		Bold(true)

	SidebarItem = lipgloss.NewStyle().
		Foreground(c(p.Text))

	SidebarSelected = lipgloss.NewStyle().
		Foreground(c(p.Text)).
		Background(c(p.Selection))

	SidebarFocused = lipgloss.NewStyle().
		Foreground(c(p.Text)).
		Background(c(p.Accent))

	Footer = lipgloss.NewStyle().
		Foreground(c(p.Muted)).
		Background(c(p.Surface))

	KeyHint = lipgloss.NewStyle().
		Foreground(c(p.Muted)).
		Background(c(p.Selection)).
		Padding(0, 1)

	Muted = lipgloss.NewStyle().
		Foreground(c(p.Muted))

	MarkCount = lipgloss.NewStyle().
		Foreground(c(p.Marked))

	ToastSuccess = lipgloss.NewStyle().
		Background(c(p.Ok)).
		Foreground(lipgloss.Color("#000000")).
		Bold(true).
		Padding(0, 1)

	ToastError = lipgloss.NewStyle().
		Background(c(p.Fail)).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c(p.Accent)).
		Background(c(p.Surface)).
		Padding(1, 2)

	ModalTitle = lipgloss.NewStyle().
		Foreground(c(p.Text)).
		Bold(true).
		MarginBottom(1)
}
