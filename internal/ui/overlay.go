package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Overlay draws box over background with its top-left corner at (x, y).
// Background cells outside the box keep their styling.
func Overlay(background, box string, x, y int) string {
	bg := strings.Split(background, "\n")
	fg := strings.Split(box, "\n")
	x, y = max(0, x), max(0, y)
	for i, line := range fg {
		row := y + i
		if row >= len(bg) {
			break
		}
		w := ansi.StringWidth(line)
		base := bg[row]
		left := ansi.Truncate(base, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(base, x+w, "")
		bg[row] = left + line + right
	}
	return strings.Join(bg, "\n")
}

// Centered returns the top-left corner that centers box in a
// width x height screen.
func Centered(box string, width, height int) (x, y int) {
	w, h := lipgloss.Size(box)
	return max(0, (width-w)/2), max(0, (height-h)/2)
}

// OverlayModal centers modal over background.
func OverlayModal(background, modal string, width, height int) string {
	x, y := Centered(modal, width, height)
	return Overlay(background, modal, x, y)
}
