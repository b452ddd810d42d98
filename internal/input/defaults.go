package input

import (
	"github.com/wilbur182/flowfiler/internal/command"
	"github.com/wilbur182/flowfiler/internal/favorites"
)

// DefaultRegistry returns a registry with the standard bindings.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults installs the standard bindings into r.
func RegisterDefaults(r *Registry) {
	n := command.New

	global := []struct {
		key string
		cmd command.Command
	}{
		{"ctrl+t", n(command.NewTab)},
		{"ctrl+w", n(command.CloseTab)},
		{"ctrl+d", n(command.DuplicateTab)},
		{"ctrl+r", n(command.RenameTab)},
		{"]", n(command.NextTab)},
		{"[", n(command.PrevTab)},
		{"alt+right", n(command.NextTab)},
		{"alt+left", n(command.PrevTab)},
		{"ctrl+l", n(command.FocusAddress)},
		{"alt+d", n(command.FocusAddress)},
		{"ctrl+b", n(command.ToggleSidebar)},
		{"f", n(command.FocusFavorites)},
		{"?", n(command.Help)},
		{"ctrl+q", n(command.Quit)},
		{"f5", n(command.Refresh)},
	}
	for _, b := range global {
		r.Bind(ContextGlobal, b.key, b.cmd)
	}

	pane := []struct {
		key string
		cmd command.Command
	}{
		// Flow
		{"n", n(command.AddPane)},
		{"w", n(command.RemovePane)},
		{"W", n(command.PopView)},
		{"q", n(command.GoUp)},
		{"backspace", n(command.GoUp)},
		{"v", n(command.SplitLane)},
		{".", n(command.ToggleHidden)},
		{"c", n(command.ToggleCompact)},
		{"d", n(command.CycleMode)},
		{"a", n(command.SortName)},
		{"s", n(command.SortType)},
		{"z", n(command.SortModified)},
		{"x", n(command.SortSize)},
		{"e", n(command.Reveal)},
		{"m", n(command.ToggleMark)},
		{"alt+c", n(command.ClearMarks)},
		{"esc", n(command.ClearSelection)},
		{"space", n(command.QuickLook)},
		{"/", n(command.Search)},

		// Cursor and focus
		{"up", n(command.CursorUp)},
		{"k", n(command.CursorUp)},
		{"down", n(command.CursorDown)},
		{"j", n(command.CursorDown)},
		{"g g", n(command.CursorTop)},
		{"home", n(command.CursorTop)},
		{"G", n(command.CursorBottom)},
		{"end", n(command.CursorBottom)},
		{"pgup", n(command.PageUp)},
		{"pgdown", n(command.PageDown)},
		{"insert", n(command.ToggleSelect)},
		{"ctrl+@", n(command.ToggleSelect)},
		{"enter", n(command.OpenSelected)},
		{"tab", n(command.NextView)},
		{"left", n(command.PrevPane)},
		{"h", n(command.PrevPane)},
		{"right", n(command.NextPane)},
		{"l", n(command.NextPane)},
		{"ctrl+up", n(command.PrevLane)},
		{"ctrl+down", n(command.NextLane)},

		// File operations
		{"ctrl+c", n(command.Copy)},
		{"ctrl+x", n(command.Cut)},
		{"ctrl+v", n(command.Paste)},
		{"delete", n(command.Delete)},
		{"f2", n(command.Rename)},
		{"ctrl+n", n(command.NewFolder)},
		{"ctrl+k", command.WithIndex(command.CopyPath, 0)},
		{"t", n(command.Terminal)},
		{"+", n(command.AddFavorite)},
		{"ctrl+o", n(command.ContextMenu)},
	}
	for _, b := range pane {
		r.Bind(ContextPane, b.key, b.cmd)
	}

	// Favorite slot hotkeys replace the pane hotkeys on the same letters
	// while the sidebar has focus.
	for i, k := range favorites.Hotkeys {
		r.Bind(ContextFavorites, k, command.WithIndex(command.JumpFavorite, i))
	}
	favs := []struct {
		key string
		cmd command.Command
	}{
		{"up", n(command.CursorUp)},
		{"k", n(command.CursorUp)},
		{"down", n(command.CursorDown)},
		{"j", n(command.CursorDown)},
		{"enter", command.WithIndex(command.JumpFavorite, -1)},
		{"delete", n(command.RemoveFavorite)},
		{"shift+up", n(command.MoveFavoriteUp)},
		{"K", n(command.MoveFavoriteUp)},
		{"shift+down", n(command.MoveFavoriteDown)},
		{"J", n(command.MoveFavoriteDown)},
		{"+", n(command.AddFavorite)},
		{"/", n(command.Search)},
		{"esc", n(command.FocusFavorites)},
		{"f", n(command.FocusFavorites)},
	}
	for _, b := range favs {
		r.Bind(ContextFavorites, b.key, b.cmd)
	}

	ql := []struct {
		key string
		cmd command.Command
	}{
		{"space", n(command.QuickLook)},
		{"esc", n(command.QuickLook)},
		{"up", n(command.CursorUp)},
		{"k", n(command.CursorUp)},
		{"down", n(command.CursorDown)},
		{"j", n(command.CursorDown)},
		{"pgup", n(command.PageUp)},
		{"pgdown", n(command.PageDown)},
		{"home", n(command.CursorTop)},
		{"end", n(command.CursorBottom)},
	}
	for _, b := range ql {
		r.Bind(ContextQuickLook, b.key, b.cmd)
	}

	menu := []struct {
		key string
		cmd command.Command
	}{
		{"up", n(command.CursorUp)},
		{"k", n(command.CursorUp)},
		{"down", n(command.CursorDown)},
		{"j", n(command.CursorDown)},
		{"enter", n(command.OpenSelected)},
		{"esc", n(command.ContextMenu)},
	}
	for _, b := range menu {
		r.Bind(ContextMenu, b.key, b.cmd)
	}
}
