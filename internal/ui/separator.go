package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/wilbur182/flowfiler/internal/styles"
)

// RenderSeparator draws the horizontal rule between lanes. A highlighted
// separator uses the active border color and a heavier line.
func RenderSeparator(width int, label string, highlighted bool) string {
	if width <= 0 {
		return ""
	}
	char := "─"
	style := styles.Separator
	if highlighted {
		char = "━"
		style = styles.SeparatorActive
	}
	if label == "" {
		return style.Render(strings.Repeat(char, width))
	}
	label = ansi.Truncate(" "+label+" ", max(0, width-2), "…")
	rest := max(0, width-2-ansi.StringWidth(label))
	return style.Render(strings.Repeat(char, 2) + label + strings.Repeat(char, rest))
}
