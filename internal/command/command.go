// Package command defines the actions a user can trigger as plain values:
// a Kind tag plus the payload it needs. Key bindings, the context menu and
// the mouse router all produce Commands; the app executes them.
package command

import "sort"

// Kind identifies an action.
type Kind int

const (
	None Kind = iota

	// Pane and flow
	GoUp
	AddPane
	RemovePane
	SplitLane
	ToggleHidden
	ToggleCompact
	CycleMode
	SortName
	SortSize
	SortType
	SortModified
	PopView
	ToggleMark
	ClearMarks
	ClearSelection
	MarkSelected
	UnmarkSelected
	OpenSelected
	Reveal
	Search
	QuickLook
	Refresh

	// Cursor
	CursorUp
	CursorDown
	CursorTop
	CursorBottom
	PageUp
	PageDown
	ToggleSelect
	NextView
	PrevPane
	NextPane
	PrevLane
	NextLane

	// File operations
	Cut
	Copy
	Paste
	Delete
	Rename
	NewFolder
	Zip
	Unzip
	CreateShortcut
	ConvertPDF
	Properties
	Terminal
	CopyPath
	AddFavorite
	ContextMenu

	// Tabs and chrome
	NewTab
	CloseTab
	DuplicateTab
	RenameTab
	NextTab
	PrevTab
	FocusAddress
	ToggleSidebar
	FocusFavorites
	JumpFavorite
	RemoveFavorite
	MoveFavoriteUp
	MoveFavoriteDown
	Help
	Quit
)

var names = map[Kind]string{
	GoUp:           "pane.up",
	AddPane:        "pane.add",
	RemovePane:     "pane.remove",
	SplitLane:      "lane.split",
	ToggleHidden:   "pane.hidden",
	ToggleCompact:  "pane.compact",
	CycleMode:      "pane.mode",
	SortName:       "sort.name",
	SortSize:       "sort.size",
	SortType:       "sort.type",
	SortModified:   "sort.modified",
	PopView:        "pane.pop-view",
	ToggleMark:     "mark.toggle",
	ClearMarks:     "mark.clear",
	ClearSelection: "select.clear",
	MarkSelected:   "mark.selected",
	UnmarkSelected: "mark.unselect",
	OpenSelected:   "open",
	Reveal:         "reveal",
	Search:         "pane.search",
	QuickLook:      "quicklook",
	Refresh:        "refresh",

	CursorUp:     "cursor.up",
	CursorDown:   "cursor.down",
	CursorTop:    "cursor.top",
	CursorBottom: "cursor.bottom",
	PageUp:       "cursor.page-up",
	PageDown:     "cursor.page-down",
	ToggleSelect: "select.toggle",
	NextView:     "view.next",
	PrevPane:     "pane.prev",
	NextPane:     "pane.next",
	PrevLane:     "lane.prev",
	NextLane:     "lane.next",

	Cut:            "file.cut",
	Copy:           "file.copy",
	Paste:          "file.paste",
	Delete:         "file.delete",
	Rename:         "file.rename",
	NewFolder:      "file.new-folder",
	Zip:            "file.zip",
	Unzip:          "file.unzip",
	CreateShortcut: "file.shortcut",
	ConvertPDF:     "file.pdf",
	Properties:     "file.properties",
	Terminal:       "terminal",
	CopyPath:       "file.copy-path",
	AddFavorite:    "favorites.add",
	ContextMenu:    "menu",

	NewTab:           "tab.new",
	CloseTab:         "tab.close",
	DuplicateTab:     "tab.duplicate",
	RenameTab:        "tab.rename",
	NextTab:          "tab.next",
	PrevTab:          "tab.prev",
	FocusAddress:     "address.focus",
	ToggleSidebar:    "sidebar.toggle",
	FocusFavorites:   "favorites.focus",
	JumpFavorite:     "favorites.jump",
	RemoveFavorite:   "favorites.remove",
	MoveFavoriteUp:   "favorites.up",
	MoveFavoriteDown: "favorites.down",
	Help:             "help",
	Quit:             "quit",
}

var byName = func() map[string]Kind {
	m := make(map[string]Kind, len(names))
	for k, n := range names {
		m[n] = k
	}
	return m
}()

// String returns the stable command ID used in key binding config.
func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "none"
}

// Parse returns the Kind for a command ID.
func Parse(id string) (Kind, bool) {
	k, ok := byName[id]
	return k, ok
}

// IDs lists every command ID, sorted.
func IDs() []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Command is one action with its payload. Paths is the subject of file
// operations; Index carries a favorite slot, path format or similar small
// argument; Text carries typed input such as a new name.
type Command struct {
	Kind  Kind
	Paths []string
	Index int
	Text  string
}

// New returns a payload-free command.
func New(k Kind) Command { return Command{Kind: k} }

// WithPaths returns a command acting on paths.
func WithPaths(k Kind, paths ...string) Command {
	return Command{Kind: k, Paths: append([]string(nil), paths...)}
}

// WithIndex returns a command with a small integer argument.
func WithIndex(k Kind, i int) Command { return Command{Kind: k, Index: i} }

// Destructive reports whether the command needs confirmation.
func (c Command) Destructive() bool {
	return c.Kind == Delete
}

// Modifies reports whether the command writes to the filesystem.
func (c Command) Modifies() bool {
	switch c.Kind {
	case Paste, Delete, Rename, NewFolder, Zip, Unzip, CreateShortcut, ConvertPDF:
		return true
	}
	return false
}
